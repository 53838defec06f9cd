package itemstore

import (
	"context"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/auditlocal/internal/dataaccess"
)

// policySchema constrains a handler policy file. enabled defaults to true.
const policySchema = `
handlers: [string]: productCodes: [...string]
enabled: bool | *true
`

// Policy is what Configuration.FindLatest answers with.
type Policy struct {
	Handlers map[string]dataaccess.Handler `json:"handlers"`
	Enabled  bool                          `json:"enabled"`
}

// DefaultHandlers are the audit handlers a local run may exercise.
var DefaultHandlers = []string{
	"broken-internal-links",
	"canonical",
	"hreflang",
	"meta-tags",
	"product-metatags",
	"structured-data",
	"sitemap",
	"redirect-chains",
}

// DefaultPolicy allows every default handler for ASO and enables them all.
func DefaultPolicy() Policy {
	handlers := make(map[string]dataaccess.Handler, len(DefaultHandlers))
	for _, name := range DefaultHandlers {
		handlers[name] = dataaccess.Handler{ProductCodes: []string{dataaccess.ProductCodeASO}}
	}
	return Policy{Handlers: handlers, Enabled: true}
}

// PolicyError reports an invalid policy file.
type PolicyError struct {
	Path    string
	Message string
	Pos     token.Pos
}

func (e *PolicyError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadPolicy reads a CUE policy file, e.g.
//
//	handlers: "meta-tags": productCodes: ["ASO"]
//	enabled: true
func LoadPolicy(path string) (Policy, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	return ParsePolicy(path, src)
}

// ParsePolicy compiles src against the policy schema. filename is used in
// error positions.
func ParsePolicy(filename string, src []byte) (Policy, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(policySchema)
	if err := schema.Err(); err != nil {
		return Policy{}, fmt.Errorf("compile policy schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return Policy{}, policyError(filename, err)
	}

	v = schema.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Policy{}, policyError(filename, err)
	}

	var p Policy
	if err := v.Decode(&p); err != nil {
		return Policy{}, policyError(filename, err)
	}
	if p.Handlers == nil {
		p.Handlers = map[string]dataaccess.Handler{}
	}
	return p, nil
}

func policyError(path string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &PolicyError{Path: path, Message: err.Error()}
	}
	first := errs[0]
	pe := &PolicyError{Path: path, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		pe.Pos = positions[0]
	}
	return pe
}

type configurationCollection struct{ e *Emulator }

func (c *configurationCollection) FindLatest(ctx context.Context) (*dataaccess.Configuration, error) {
	p := c.e.opts.Policy
	c.e.logger.Info("Configuration.findLatest called", "handlers", len(p.Handlers), "enabled", p.Enabled)
	cfg := dataaccess.NewConfiguration(p.Handlers, p.Enabled)
	c.e.recorder.Record(ctx, service, "Configuration.findLatest", nil, cfg, nil)
	return cfg, nil
}
