package stubs

import (
	"context"
	"log/slog"

	"github.com/tidwall/gjson"

	"github.com/roach88/auditlocal/internal/trace"
)

// Genvar answers suggestion requests with an empty tag set per endpoint,
// so audits that ask for AI suggestions complete with their detected tags
// unchanged.
type Genvar struct {
	logger   *slog.Logger
	recorder trace.Recorder
}

// NewGenvar creates a Genvar stub.
func NewGenvar(logger *slog.Logger, recorder trace.Recorder) *Genvar {
	return &Genvar{
		logger:   discardIfNil(logger).With("service", "genvar"),
		recorder: nopIfNil(recorder),
	}
}

// GenerateSuggestions keys the result by every detectedTags entry of body.
// An unparsable body yields an empty result, not an error.
func (g *Genvar) GenerateSuggestions(ctx context.Context, body, endpoint string) (map[string]any, error) {
	result := map[string]any{}
	args := map[string]any{"endpoint": endpoint}

	if !gjson.Valid(body) {
		g.logger.Error("could not parse request body", "endpoint", endpoint, "bytes", len(body))
		g.recorder.Record(ctx, "genvar", "generateSuggestions", args, result, nil)
		return result, nil
	}

	gjson.Get(body, "detectedTags").ForEach(func(key, _ gjson.Result) bool {
		result[key.String()] = map[string]any{}
		return true
	})

	g.logger.Info("returning empty suggestions", "endpoint", endpoint, "endpoints", len(result))
	g.recorder.Record(ctx, "genvar", "generateSuggestions", args, result, nil)
	return result, nil
}
