package dataaccess

import (
	"context"
	"encoding/json"
)

// view is the read-only backing shared by every record variant.
type view struct {
	bag Bag
}

func newView(b Bag) view {
	return view{bag: b.Clone()}
}

// Data returns a copy of the backing data.
func (v view) Data() Bag {
	return v.bag.Clone()
}

// MarshalJSON encodes the backing data.
func (v view) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.bag)
}

// Site is a tenant site.
type Site struct{ view }

// NewSite wraps b in a Site view.
func NewSite(b Bag) *Site { return &Site{newView(b)} }

func (s *Site) ID() string             { return s.bag.String("id") }
func (s *Site) BaseURL() string        { return s.bag.String("baseURL") }
func (s *Site) DeliveryType() string   { return s.bag.String("deliveryType") }
func (s *Site) GitHubURL() string      { return s.bag.String("gitHubURL") }
func (s *Site) OrganizationID() string { return s.bag.String("organizationId") }
func (s *Site) IsLive() bool           { return s.bag.Bool("isLive") }
func (s *Site) Audits() Bag            { return s.bag.Map("audits") }

// Config returns the site's configuration sub-object.
func (s *Site) Config() *SiteConfig { return &SiteConfig{newView(s.bag.Map("config"))} }

// SiteConfig is a site's configuration sub-object.
type SiteConfig struct{ view }

// FetchConfig returns the fetch settings, e.g. overrideBaseURL.
func (c *SiteConfig) FetchConfig() Bag { return c.bag.Map("fetchConfig") }

// SiteTopPage is one ranked top page of a site.
type SiteTopPage struct{ view }

// NewSiteTopPage wraps b in a SiteTopPage view.
func NewSiteTopPage(b Bag) *SiteTopPage { return &SiteTopPage{newView(b)} }

func (p *SiteTopPage) URL() string        { return p.bag.String("url") }
func (p *SiteTopPage) SiteID() string     { return p.bag.String("siteId") }
func (p *SiteTopPage) Source() string     { return p.bag.String("source") }
func (p *SiteTopPage) Geo() string        { return p.bag.String("geo") }
func (p *SiteTopPage) Traffic() int       { return p.bag.IntOr("traffic", 0) }
func (p *SiteTopPage) TopKeyword() string { return p.bag.String("topKeyword") }
func (p *SiteTopPage) ImportedAt() string { return p.bag.String("importedAt") }

// Audit is a stored audit run.
type Audit struct{ view }

// NewAudit wraps b in an Audit view.
func NewAudit(b Bag) *Audit { return &Audit{newView(b)} }

func (a *Audit) ID() string           { return a.bag.String("id") }
func (a *Audit) SiteID() string       { return a.bag.String("siteId") }
func (a *Audit) AuditType() string    { return a.bag.String("auditType") }
func (a *Audit) AuditedAt() string    { return a.bag.String("auditedAt") }
func (a *Audit) Scores() Bag          { return a.bag.Map("scores") }
func (a *Audit) FullAuditRef() string { return a.bag.String("fullAuditRef") }
func (a *Audit) AuditResult() Bag     { return a.bag.Map("auditResult") }

// Opportunity is an aggregate that suggestions are attached to.
type Opportunity interface {
	ID() string
	SiteID() string
	Type() string
	Status() string
	Title() string
	Description() string
	Data() Bag
	Guidance() Bag
	Tags() []string

	// AddSuggestions creates one suggestion per input and returns them.
	AddSuggestions(ctx context.Context, suggestions []Bag) ([]*Suggestion, error)

	// Save persists the opportunity and returns it.
	Save(ctx context.Context) (Opportunity, error)
}

// Suggestion is a child record of an Opportunity.
type Suggestion struct{ view }

// NewSuggestion wraps b in a Suggestion view.
func NewSuggestion(b Bag) *Suggestion { return &Suggestion{newView(b)} }

func (s *Suggestion) ID() string            { return s.bag.String("id") }
func (s *Suggestion) OpportunityID() string { return s.bag.String("opportunityId") }
func (s *Suggestion) Type() string          { return s.bag.String("type") }
func (s *Suggestion) Status() string        { return s.bag.String("status") }
func (s *Suggestion) Rank() int             { return s.bag.IntOr("rank", 0) }

// Payload returns the suggestion's own data sub-object.
func (s *Suggestion) Payload() Bag { return s.bag.Map("data") }

// Organization owns sites and entitlements.
type Organization struct{ view }

// NewOrganization wraps b in an Organization view.
func NewOrganization(b Bag) *Organization { return &Organization{newView(b)} }

func (o *Organization) ID() string       { return o.bag.String("id") }
func (o *Organization) Name() string     { return o.bag.String("name") }
func (o *Organization) ImsOrgID() string { return o.bag.String("imsOrgId") }

// Entitlement asserts an organization's tier for a product.
type Entitlement struct{ view }

// NewEntitlement wraps b in an Entitlement view.
func NewEntitlement(b Bag) *Entitlement { return &Entitlement{newView(b)} }

func (e *Entitlement) ID() string             { return e.bag.String("id") }
func (e *Entitlement) OrganizationID() string { return e.bag.String("organizationId") }
func (e *Entitlement) ProductCode() string    { return e.bag.String("productCode") }
func (e *Entitlement) Tier() string           { return e.bag.String("tier") }
func (e *Entitlement) CreatedAt() string      { return e.bag.String("createdAt") }
func (e *Entitlement) UpdatedAt() string      { return e.bag.String("updatedAt") }

// SiteEnrollment links a site to an entitlement.
type SiteEnrollment struct{ view }

// NewSiteEnrollment wraps b in a SiteEnrollment view.
func NewSiteEnrollment(b Bag) *SiteEnrollment { return &SiteEnrollment{newView(b)} }

func (e *SiteEnrollment) ID() string            { return e.bag.String("id") }
func (e *SiteEnrollment) SiteID() string        { return e.bag.String("siteId") }
func (e *SiteEnrollment) EntitlementID() string { return e.bag.String("entitlementId") }
func (e *SiteEnrollment) ProductCode() string   { return e.bag.String("productCode") }
func (e *SiteEnrollment) Tier() string          { return e.bag.String("tier") }
func (e *SiteEnrollment) Status() string        { return e.bag.String("status") }
func (e *SiteEnrollment) CreatedAt() string     { return e.bag.String("createdAt") }
func (e *SiteEnrollment) UpdatedAt() string     { return e.bag.String("updatedAt") }

// Handler is a per-audit entry of the configuration policy.
type Handler struct {
	ProductCodes []string `json:"productCodes"`
}

// Configuration is the global audit policy.
type Configuration struct {
	handlers map[string]Handler
	enabled  bool
}

// NewConfiguration creates a policy. enabled is the answer
// IsHandlerEnabledForSite gives for every handler and site.
func NewConfiguration(handlers map[string]Handler, enabled bool) *Configuration {
	return &Configuration{handlers: handlers, enabled: enabled}
}

// Handlers maps handler name to its allowed product codes.
func (c *Configuration) Handlers() map[string]Handler {
	out := make(map[string]Handler, len(c.handlers))
	for k, v := range c.handlers {
		out[k] = v
	}
	return out
}

// IsHandlerEnabledForSite reports whether handlerType may run for site.
func (c *Configuration) IsHandlerEnabledForSite(handlerType string, site *Site) bool {
	return c.enabled
}

// MarshalJSON encodes the policy.
func (c *Configuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"handlers": c.handlers, "enabled": c.enabled})
}
