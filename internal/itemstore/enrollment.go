package itemstore

import (
	"context"

	"github.com/roach88/auditlocal/internal/dataaccess"
)

// Mock organization identity.
const (
	OrganizationName = "Mock Organization"
	ImsOrgID         = "mock-ims-org-id@AdobeOrg"
)

// EnrollmentStatusActive is the status of the one mock enrollment.
const EnrollmentStatusActive = "ACTIVE"

type organizationCollection struct{ e *Emulator }

// FindByID echoes id so the organization always matches the site.
func (c *organizationCollection) FindByID(ctx context.Context, id string) (*dataaccess.Organization, error) {
	c.e.logger.Info("Organization.findById called", "organization_id", id)
	org := dataaccess.NewOrganization(dataaccess.Bag{
		"id":       id,
		"name":     OrganizationName,
		"imsOrgId": ImsOrgID,
	})
	c.e.recorder.Record(ctx, service, "Organization.findById", map[string]any{"id": id}, org, nil)
	return org, nil
}

type entitlementCollection struct{ e *Emulator }

// FindByOrganizationIDAndProductCode echoes both arguments and asserts the
// configured tier.
func (c *entitlementCollection) FindByOrganizationIDAndProductCode(ctx context.Context, organizationID, productCode string) (*dataaccess.Entitlement, error) {
	e := c.e
	e.logger.Info("Entitlement.findByOrganizationIdAndProductCode called",
		"organization_id", organizationID, "product_code", productCode, "tier", e.opts.Tier)
	now := e.timestamp()
	ent := dataaccess.NewEntitlement(dataaccess.Bag{
		"id":             EntitlementID,
		"organizationId": organizationID,
		"productCode":    productCode,
		"tier":           e.opts.Tier,
		"createdAt":      now,
		"updatedAt":      now,
	})
	e.recorder.Record(ctx, service, "Entitlement.findByOrganizationIdAndProductCode",
		map[string]any{"organizationId": organizationID, "productCode": productCode}, ent, nil)
	return ent, nil
}

type enrollmentCollection struct{ e *Emulator }

// AllBySiteID returns the single enrollment, which references EntitlementID.
func (c *enrollmentCollection) AllBySiteID(ctx context.Context, siteID string) ([]*dataaccess.SiteEnrollment, error) {
	e := c.e
	e.logger.Info("SiteEnrollment.allBySiteId called", "site_id", siteID)
	now := e.timestamp()
	enrollments := []*dataaccess.SiteEnrollment{
		dataaccess.NewSiteEnrollment(dataaccess.Bag{
			"id":            SiteEnrollmentID,
			"siteId":        siteID,
			"entitlementId": EntitlementID,
			"productCode":   e.opts.ProductCode,
			"tier":          e.opts.Tier,
			"status":        EnrollmentStatusActive,
			"createdAt":     now,
			"updatedAt":     now,
		}),
	}
	e.recorder.Record(ctx, service, "SiteEnrollment.allBySiteId",
		map[string]any{"siteId": siteID}, enrollments, nil)
	return enrollments, nil
}
