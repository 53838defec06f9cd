package stubs

import (
	"context"
	"errors"
	"log/slog"
	"maps"

	"github.com/roach88/auditlocal/internal/config"
	"github.com/roach88/auditlocal/internal/trace"
)

// ErrNoUpstream is returned by RUM queries when no upstream querier is
// configured. Local runs have no RUM backend.
var ErrNoUpstream = errors.New("rum: no upstream querier configured")

// Querier is the real RUM backend the stub forwards to.
type Querier interface {
	Query(ctx context.Context, name string, opts map[string]any) (any, error)
	QueryMulti(ctx context.Context, names []string, opts map[string]any) (any, error)
}

// RUM injects the configured domain key into every query's options
// before forwarding. The domain key is never logged in full.
type RUM struct {
	domainKey string
	upstream  Querier
	logger    *slog.Logger
	recorder  trace.Recorder
}

// NewRUM creates a RUM stub. upstream may be nil.
func NewRUM(domainKey string, upstream Querier, logger *slog.Logger, recorder trace.Recorder) *RUM {
	return &RUM{
		domainKey: domainKey,
		upstream:  upstream,
		logger:    discardIfNil(logger).With("service", "rum"),
		recorder:  nopIfNil(recorder),
	}
}

func (r *RUM) withKey(opts map[string]any) map[string]any {
	out := maps.Clone(opts)
	if out == nil {
		out = make(map[string]any, 1)
	}
	out["domainkey"] = r.domainKey
	return out
}

// Query forwards a named query upstream with the domain key injected.
// Without an upstream it fails with ErrNoUpstream.
func (r *RUM) Query(ctx context.Context, name string, opts map[string]any) (any, error) {
	r.logger.Info("query", "name", name, "domainkey", config.MaskKey(r.domainKey))
	args := map[string]any{"name": name}
	if r.upstream == nil {
		r.recorder.Record(ctx, "rum", "query", args, nil, ErrNoUpstream)
		return nil, ErrNoUpstream
	}
	res, err := r.upstream.Query(ctx, name, r.withKey(opts))
	r.recorder.Record(ctx, "rum", "query", args, nil, err)
	return res, err
}

// QueryMulti forwards several named queries upstream in one call.
func (r *RUM) QueryMulti(ctx context.Context, names []string, opts map[string]any) (any, error) {
	r.logger.Info("queryMulti", "queries", len(names), "domainkey", config.MaskKey(r.domainKey))
	args := map[string]any{"names": names}
	if r.upstream == nil {
		r.recorder.Record(ctx, "rum", "queryMulti", args, nil, ErrNoUpstream)
		return nil, ErrNoUpstream
	}
	res, err := r.upstream.QueryMulti(ctx, names, r.withKey(opts))
	r.recorder.Record(ctx, "rum", "queryMulti", args, nil, err)
	return res, err
}

// RetrieveDomainkey returns the configured key for any domain.
func (r *RUM) RetrieveDomainkey(ctx context.Context, domain string) (string, error) {
	r.logger.Info("retrieveDomainkey", "domain", domain)
	r.recorder.Record(ctx, "rum", "retrieveDomainkey", map[string]any{"domain": domain},
		config.MaskKey(r.domainKey), nil)
	return r.domainKey, nil
}
