package appctx

import (
	"context"
	"log/slog"

	"github.com/roach88/auditlocal/internal/dataaccess"
	"github.com/roach88/auditlocal/internal/objectstore"
)

// Default runtime identity of a local run.
const (
	DefaultRegion  = "us-east-1"
	DefaultVersion = "latest"
)

// ObjectClient sends object store requests.
type ObjectClient interface {
	Send(ctx context.Context, req objectstore.Request) (objectstore.Response, error)
}

// QueueSender delivers a payload to a queue and returns the message id.
type QueueSender interface {
	SendMessage(ctx context.Context, queueURL string, payload map[string]any) (string, error)
}

// RUMClient queries real-user-monitoring data.
type RUMClient interface {
	Query(ctx context.Context, name string, opts map[string]any) (any, error)
	QueryMulti(ctx context.Context, names []string, opts map[string]any) (any, error)
	RetrieveDomainkey(ctx context.Context, domain string) (string, error)
}

// GenvarClient generates AI suggestions for detected tags.
type GenvarClient interface {
	GenerateSuggestions(ctx context.Context, body, endpoint string) (map[string]any, error)
}

// Runtime describes where the step is running.
type Runtime struct {
	Region string `json:"region"`
}

// Func identifies the deployed function version.
type Func struct {
	Version string `json:"version"`
}

// Invocation carries the raw event the step was invoked with.
type Invocation struct {
	Event Message `json:"event"`
}

// Context is what a pipeline step is invoked with. A nil service field
// means the harness did not attach that service.
type Context struct {
	Env        map[string]string
	Log        *slog.Logger
	Runtime    Runtime
	Func       Func
	Invocation Invocation

	SQS    QueueSender
	S3     ObjectClient
	RUM    RUMClient
	Genvar GenvarClient

	// ScrapeResultPaths is set when the object store emulator is attached.
	ScrapeResultPaths *objectstore.ScrapeResultPaths

	DataAccess *dataaccess.DataAccess
}

// New creates a context for event with the default runtime identity.
func New(event Message, env map[string]string, logger *slog.Logger) *Context {
	return &Context{
		Env:        env,
		Log:        logger,
		Runtime:    Runtime{Region: DefaultRegion},
		Func:       Func{Version: DefaultVersion},
		Invocation: Invocation{Event: event},
	}
}
