// Package stubs holds the auxiliary service clients a local run needs:
// a queue sender that only counts, a RUM client that injects the domain
// key, and a Genvar client that returns empty suggestions.
package stubs

import (
	"io"
	"log/slog"

	"github.com/roach88/auditlocal/internal/trace"
)

func discardIfNil(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l
}

func nopIfNil(r trace.Recorder) trace.Recorder {
	if r == nil {
		return trace.Nop{}
	}
	return r
}
