package itemstore

import (
	"io"
	"log/slog"
	"time"

	"github.com/roach88/auditlocal/internal/dataaccess"
	"github.com/roach88/auditlocal/internal/trace"
)

const service = "dynamodb"

// Sentinel identities.
const (
	ZeroID           = "00000000-0000-0000-0000-000000000000"
	OpportunityID    = "00000000-0000-0000-0000-000000000001"
	EntitlementID    = "00000000-0000-0000-0000-000000000002"
	SiteEnrollmentID = "00000000-0000-0000-0000-000000000003"

	// SuggestionIDPrefix is followed by the 1-based index within a batch.
	SuggestionIDPrefix = "suggestion-"
)

// DefaultSiteURLs maps known local site ids to their base URLs.
var DefaultSiteURLs = map[string]string{
	"1db7b770-db7f-4c52-a9dc-6e05add6c11e": "https://www.asianpaints.com",
	"cccdac43-1a22-4659-9086-b762f59b9928": "https://www.bulk.com",
}

// Options configures an Emulator.
type Options struct {
	// SiteID is the site the run is for. Audit.FindByID uses it to locate
	// the broken-links artifact.
	SiteID string

	// SiteURLs overrides DefaultSiteURLs.
	SiteURLs map[string]string

	// TopPages backs SiteTopPage. When BaseURLFromTopPages is set and the
	// list is non-empty, Site.FindByID derives its base URL from it.
	TopPages            []string
	BaseURLFromTopPages bool

	// BrokenLinksDir holds broken-links-<siteId>.json artifacts.
	BrokenLinksDir string

	// Policy answers Configuration.FindLatest. Zero value uses DefaultPolicy.
	Policy *Policy

	// ProductCode and Tier are what the entitlement records assert.
	ProductCode string
	Tier        string

	// Correlation links opportunities to their suggestions. Nil creates a
	// private cache.
	Correlation *CorrelationCache

	// Now stamps created records. Nil uses time.Now.
	Now func() time.Time

	Logger   *slog.Logger
	Recorder trace.Recorder
}

// Emulator holds the mock collections.
type Emulator struct {
	opts        Options
	correlation *CorrelationCache
	logger      *slog.Logger
	recorder    trace.Recorder
	now         func() time.Time
}

// New creates an emulator.
func New(opts Options) *Emulator {
	if opts.SiteURLs == nil {
		opts.SiteURLs = DefaultSiteURLs
	}
	if opts.Policy == nil {
		p := DefaultPolicy()
		opts.Policy = &p
	}
	if opts.ProductCode == "" {
		opts.ProductCode = dataaccess.ProductCodeASO
	}
	if opts.Tier == "" {
		opts.Tier = dataaccess.TierPaid
	}

	e := &Emulator{
		opts:        opts,
		correlation: opts.Correlation,
		logger:      opts.Logger,
		recorder:    opts.Recorder,
		now:         opts.Now,
	}
	if e.correlation == nil {
		e.correlation = NewCorrelationCache()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e.logger = e.logger.With("service", service)
	if e.recorder == nil {
		e.recorder = trace.Nop{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Correlation returns the cache this emulator writes suggestions to.
func (e *Emulator) Correlation() *CorrelationCache {
	return e.correlation
}

// DataAccess returns every mock collection.
func (e *Emulator) DataAccess() *dataaccess.DataAccess {
	return &dataaccess.DataAccess{
		Site:           &siteCollection{e},
		SiteTopPage:    &topPageCollection{e},
		Audit:          &auditCollection{e},
		Opportunity:    &opportunityCollection{e},
		Suggestion:     &suggestionCollection{e},
		Configuration:  &configurationCollection{e},
		Organization:   &organizationCollection{e},
		Entitlement:    &entitlementCollection{e},
		SiteEnrollment: &enrollmentCollection{e},
	}
}

func (e *Emulator) timestamp() string {
	return e.now().UTC().Format(time.RFC3339)
}
