package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
)

// Call is one journalled emulator operation.
type Call struct {
	Seq       int64           `json:"seq"`
	Service   string          `json:"service"`
	Operation string          `json:"operation"`
	Args      json.RawMessage `json:"args"`
	Result    json.RawMessage `json:"result"`
	Error     string          `json:"error,omitempty"`
}

// Recorder receives every emulated call. Implementations must not fail the
// call they are recording.
type Recorder interface {
	Record(ctx context.Context, service, operation string, args, result any, err error)
}

// Nop discards everything.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, string, string, any, any, error) {}

// Journal records calls for a single run into a Store.
type Journal struct {
	store  *Store
	runID  string
	clock  *Clock
	logger *slog.Logger
}

// NewJournal writes the run record and returns a journal appending to it.
func NewJournal(ctx context.Context, st *Store, run Run, logger *slog.Logger) (*Journal, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return nil, fmt.Errorf("start journal: %w", err)
	}
	return &Journal{
		store:  st,
		runID:  run.ID,
		clock:  NewClock(),
		logger: logger,
	}, nil
}

// RunID returns the id of the run being journalled.
func (j *Journal) RunID() string {
	return j.runID
}

// Record implements Recorder. Serialisation or write failures are logged
// and dropped so the emulated call still completes.
func (j *Journal) Record(ctx context.Context, service, operation string, args, result any, callErr error) {
	c := Call{
		Seq:       j.clock.Next(),
		Service:   service,
		Operation: operation,
	}

	var err error
	if c.Args, err = json.Marshal(args); err != nil {
		j.logger.Warn("journal: cannot encode args", "operation", operation, "error", err)
		c.Args = json.RawMessage("null")
	}
	if c.Result, err = json.Marshal(result); err != nil {
		j.logger.Warn("journal: cannot encode result", "operation", operation, "error", err)
		c.Result = json.RawMessage("null")
	}
	if callErr != nil {
		c.Error = callErr.Error()
	}

	if err := j.store.WriteCall(ctx, j.runID, c); err != nil {
		j.logger.Warn("journal: cannot write call", "operation", operation, "error", err)
	}
}

// Calls returns everything journalled so far, in seq order.
func (j *Journal) Calls(ctx context.Context) ([]Call, error) {
	return j.store.ReadCalls(ctx, j.runID)
}
