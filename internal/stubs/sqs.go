package stubs

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"github.com/roach88/auditlocal/internal/trace"
)

// ZeroMessageID is returned for every sent message.
const ZeroMessageID = "00000000-0000-0000-0000-000000000000"

// BrokenLinksGuidance is the payload type whose sends are summarised.
const BrokenLinksGuidance = "guidance:broken-links"

// Queue is a queue sender that delivers nothing and counts sends per
// payload type.
type Queue struct {
	mu       sync.Mutex
	counts   map[string]int
	logger   *slog.Logger
	recorder trace.Recorder
}

// NewQueue creates a queue stub.
func NewQueue(logger *slog.Logger, recorder trace.Recorder) *Queue {
	return &Queue{
		counts:   make(map[string]int),
		logger:   discardIfNil(logger).With("service", "sqs"),
		recorder: nopIfNil(recorder),
	}
}

// SendMessage counts payload under its "type" ("unknown" when unset).
// The first send of a type is logged; later ones are only counted.
func (q *Queue) SendMessage(ctx context.Context, queueURL string, payload map[string]any) (string, error) {
	typ, _ := payload["type"].(string)
	if typ == "" {
		typ = "unknown"
	}

	q.mu.Lock()
	prev := q.counts[typ]
	q.counts[typ] = prev + 1
	q.mu.Unlock()

	data, _ := payload["data"].(map[string]any)
	switch {
	case typ == BrokenLinksGuidance && data != nil:
		broken := lenOf(data["brokenLinks"])
		alternatives := lenOf(data["alternativeUrls"])
		q.logger.Info("suppressed broken-links guidance",
			"queue", queueURL, "broken_links", broken, "alternative_urls", alternatives)
		if alternatives == 0 {
			q.logger.Warn("no alternative URLs in broken-links guidance")
		}
	case prev == 0:
		q.logger.Info("suppressed queue messages", "queue", queueURL, "type", typ)
	}

	q.recorder.Record(ctx, "sqs", "SendMessage",
		map[string]any{"queueUrl": queueURL, "type": typ},
		map[string]any{"MessageId": ZeroMessageID}, nil)
	return ZeroMessageID, nil
}

// Counts returns sends per payload type.
func (q *Queue) Counts() map[string]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return maps.Clone(q.counts)
}

func lenOf(v any) int {
	if s, ok := v.([]any); ok {
		return len(s)
	}
	return 0
}
