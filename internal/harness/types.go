package harness

import (
	"context"

	"github.com/roach88/auditlocal/internal/appctx"
	"github.com/roach88/auditlocal/internal/dataaccess"
	"github.com/roach88/auditlocal/internal/trace"
)

// Pipeline is an audit pipeline entry point.
type Pipeline interface {
	// Init runs the pipeline's own startup against ctx. A non-nil return
	// replaces the context's item store; the harness merges its seeded
	// collections into it before Handle runs.
	Init(ctx context.Context, actx *appctx.Context) (*dataaccess.DataAccess, error)

	// Handle processes msg and returns the pipeline's result value.
	Handle(ctx context.Context, msg appctx.Message, actx *appctx.Context) (any, error)
}

// Result is the outcome of one harness run.
type Result struct {
	// Value is what the pipeline's Handle returned.
	Value any `json:"value"`

	RunID string `json:"run_id"`

	// Calls is every emulated call in seq order.
	Calls []trace.Call `json:"calls"`

	// QueueCounts is sends per queue payload type.
	QueueCounts map[string]int `json:"queue_counts"`

	// Merged names the item store collections injected after Init.
	Merged []string `json:"merged,omitempty"`

	// Pass is false when a scenario assertion failed.
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

func newResult() *Result {
	return &Result{
		Pass:        true,
		Calls:       []trace.Call{},
		QueueCounts: map[string]int{},
	}
}

// AddError records a failed assertion.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
