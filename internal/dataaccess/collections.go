package dataaccess

import "context"

// Suggestion statuses.
const (
	SuggestionStatusNew        = "NEW"
	SuggestionStatusApproved   = "APPROVED"
	SuggestionStatusInProgress = "IN_PROGRESS"
	SuggestionStatusSkipped    = "SKIPPED"
	SuggestionStatusFixed      = "FIXED"
	SuggestionStatusError      = "ERROR"
	SuggestionStatusOutdated   = "OUTDATED"
)

// SuggestionStatuses lists every suggestion status.
var SuggestionStatuses = []string{
	SuggestionStatusNew,
	SuggestionStatusApproved,
	SuggestionStatusInProgress,
	SuggestionStatusSkipped,
	SuggestionStatusFixed,
	SuggestionStatusError,
	SuggestionStatusOutdated,
}

// Entitlement product codes and tiers.
const (
	ProductCodeASO = "ASO"

	TierFree = "FREE"
	TierPaid = "PAID"
)

// SiteCollection looks up sites.
type SiteCollection interface {
	FindByID(ctx context.Context, id string) (*Site, error)
}

// SiteTopPageCollection lists a site's top pages.
type SiteTopPageCollection interface {
	AllBySiteIDAndSourceAndGeo(ctx context.Context, siteID, source, geo string) ([]*SiteTopPage, error)
}

// AuditCollection reads and records audits.
// FindLatest returns a nil audit, not an error, when there is none.
type AuditCollection interface {
	FindLatest(ctx context.Context) (*Audit, error)
	FindByID(ctx context.Context, id string) (*Audit, error)
	AllBySiteIDAndAuditType(ctx context.Context, siteID, auditType string) ([]*Audit, error)
	Create(ctx context.Context, data Bag) (*Audit, error)
}

// OpportunityCollection reads and records opportunities.
type OpportunityCollection interface {
	AllBySiteIDAndStatus(ctx context.Context, siteID, status string) ([]Opportunity, error)
	Create(ctx context.Context, data Bag) (Opportunity, error)
	CreateOrUpdate(ctx context.Context, data Bag) (Opportunity, error)
}

// SuggestionCollection reads suggestions attached to an opportunity.
type SuggestionCollection interface {
	AllByOpportunityIDAndStatus(ctx context.Context, opportunityID, status string) ([]*Suggestion, error)
}

// ConfigurationCollection reads the global audit policy.
type ConfigurationCollection interface {
	FindLatest(ctx context.Context) (*Configuration, error)
}

// OrganizationCollection looks up organizations.
type OrganizationCollection interface {
	FindByID(ctx context.Context, id string) (*Organization, error)
}

// EntitlementCollection looks up entitlements.
type EntitlementCollection interface {
	FindByOrganizationIDAndProductCode(ctx context.Context, organizationID, productCode string) (*Entitlement, error)
}

// SiteEnrollmentCollection lists a site's enrollments.
type SiteEnrollmentCollection interface {
	AllBySiteID(ctx context.Context, siteID string) ([]*SiteEnrollment, error)
}

// DataAccess is the item store as seen by the pipeline.
type DataAccess struct {
	Site           SiteCollection
	SiteTopPage    SiteTopPageCollection
	Audit          AuditCollection
	Opportunity    OpportunityCollection
	Suggestion     SuggestionCollection
	Configuration  ConfigurationCollection
	Organization   OrganizationCollection
	Entitlement    EntitlementCollection
	SiteEnrollment SiteEnrollmentCollection
}

// Collections returns the names of the collections that are present.
func (d *DataAccess) Collections() []string {
	if d == nil {
		return nil
	}
	var names []string
	present := []struct {
		name string
		ok   bool
	}{
		{"Site", d.Site != nil},
		{"SiteTopPage", d.SiteTopPage != nil},
		{"Audit", d.Audit != nil},
		{"Opportunity", d.Opportunity != nil},
		{"Suggestion", d.Suggestion != nil},
		{"Configuration", d.Configuration != nil},
		{"Organization", d.Organization != nil},
		{"Entitlement", d.Entitlement != nil},
		{"SiteEnrollment", d.SiteEnrollment != nil},
	}
	for _, p := range present {
		if p.ok {
			names = append(names, p.name)
		}
	}
	return names
}
