package appctx

import (
	"io"
	"log/slog"

	"github.com/roach88/auditlocal/internal/dataaccess"
)

// SeededCollections are the item store collections the interceptor carries
// over into a replacement value.
var SeededCollections = []string{"Organization", "Entitlement", "Site", "SiteTopPage", "Audit"}

// Interceptor guards the item store of a Context. The collections present
// on the context when it is wrapped are the seed; every later
// SetDataAccess fills the seeded collections the replacement lacks.
type Interceptor struct {
	ctx    *Context
	seed   dataaccess.DataAccess
	merges int
	logger *slog.Logger
}

// Wrap captures ctx's current item store as the seed.
func Wrap(ctx *Context, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	i := &Interceptor{ctx: ctx, logger: logger}
	if ctx.DataAccess != nil {
		i.seed = *ctx.DataAccess
	}
	return i
}

// Context returns the wrapped context.
func (i *Interceptor) Context() *Context {
	return i.ctx
}

// Merges is the number of SetDataAccess calls so far.
func (i *Interceptor) Merges() int {
	return i.merges
}

// SetDataAccess commits incoming as the context's item store after merging
// the seed into it. A nil incoming is committed as is. Returns the names of
// the injected collections.
func (i *Interceptor) SetDataAccess(incoming *dataaccess.DataAccess) []string {
	i.merges++
	if incoming == nil {
		i.ctx.DataAccess = nil
		return nil
	}
	added := Merge(incoming, &i.seed)
	i.logger.Info("merged item store after pipeline init",
		"added", added, "kept", incoming.Collections())
	i.ctx.DataAccess = incoming
	return added
}

// Merge sets every seeded collection of seed that incoming lacks. Present
// collections of incoming are never replaced. Returns the names set, in
// SeededCollections order.
func Merge(incoming, seed *dataaccess.DataAccess) []string {
	if incoming == nil || seed == nil {
		return nil
	}
	var added []string
	if incoming.Organization == nil && seed.Organization != nil {
		incoming.Organization = seed.Organization
		added = append(added, "Organization")
	}
	if incoming.Entitlement == nil && seed.Entitlement != nil {
		incoming.Entitlement = seed.Entitlement
		added = append(added, "Entitlement")
	}
	if incoming.Site == nil && seed.Site != nil {
		incoming.Site = seed.Site
		added = append(added, "Site")
	}
	if incoming.SiteTopPage == nil && seed.SiteTopPage != nil {
		incoming.SiteTopPage = seed.SiteTopPage
		added = append(added, "SiteTopPage")
	}
	if incoming.Audit == nil && seed.Audit != nil {
		incoming.Audit = seed.Audit
		added = append(added, "Audit")
	}
	return added
}
