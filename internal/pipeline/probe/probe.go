package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/roach88/auditlocal/internal/appctx"
	"github.com/roach88/auditlocal/internal/dataaccess"
	"github.com/roach88/auditlocal/internal/fault"
	"github.com/roach88/auditlocal/internal/objectstore"
)

// Paths read from scrape.json artifacts.
const (
	titlePath = "scrapeResult.tags.title"
	finalURL  = "finalUrl"
)

// QueueURL is where guidance messages are sent.
const QueueURL = "local://queue/audit-guidance"

// BrokenLinksAudit is the audit type whose prior result Handle reloads.
const BrokenLinksAudit = "broken-internal-links"

// ErrNoItemStore is returned when the context has no item store.
var ErrNoItemStore = errors.New("probe: no item store attached")

// Pipeline implements harness.Pipeline.
type Pipeline struct {
	logger *slog.Logger
}

// New creates the probe pipeline.
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{logger: logger.With("pipeline", "probe")}
}

// Init installs a fresh item store holding only the collections the probe
// manages itself, the way a real pipeline replaces the store with its own
// backend. The harness merges the remaining collections back in.
func (p *Pipeline) Init(ctx context.Context, actx *appctx.Context) (*dataaccess.DataAccess, error) {
	current := actx.DataAccess
	if current == nil {
		return nil, nil
	}
	return &dataaccess.DataAccess{
		Opportunity:    current.Opportunity,
		Suggestion:     current.Suggestion,
		Configuration:  current.Configuration,
		SiteEnrollment: current.SiteEnrollment,
	}, nil
}

// Handle runs the probe for the site in msg.
func (p *Pipeline) Handle(ctx context.Context, msg appctx.Message, actx *appctx.Context) (any, error) {
	body, err := msg.Body()
	if err != nil {
		return nil, err
	}
	da := actx.DataAccess
	if da == nil || da.Site == nil || da.Audit == nil || da.Opportunity == nil || da.Suggestion == nil {
		return nil, ErrNoItemStore
	}

	log := p.logger.With("audit_type", body.Type, "site_id", body.SiteID)
	summary := &Summary{AuditType: body.Type, SiteID: body.SiteID, MissingTitles: []string{}}

	site, err := da.Site.FindByID(ctx, body.SiteID)
	if err != nil {
		return nil, fmt.Errorf("find site: %w", err)
	}
	summary.BaseURL = site.BaseURL()

	entitled, reason, err := p.checkEntitlement(ctx, da, body.Type, site)
	if err != nil {
		return nil, err
	}
	summary.Entitled = entitled
	if !entitled {
		summary.Skipped = reason
		log.Warn("audit skipped", "reason", reason)
		return summary, nil
	}

	latest, err := da.Audit.FindLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("find latest audit: %w", err)
	}
	summary.PriorAudit = latest != nil

	if da.SiteTopPage != nil {
		pages, err := da.SiteTopPage.AllBySiteIDAndSourceAndGeo(ctx, site.ID(), "", "")
		if err != nil {
			return nil, fmt.Errorf("list top pages: %w", err)
		}
		summary.TopPages = len(pages)
	}

	if body.Type == BrokenLinksAudit && body.AuditContext.AuditID != "" {
		prior, err := da.Audit.FindByID(ctx, body.AuditContext.AuditID)
		switch {
		case fault.IsNotFound(err):
			log.Warn("no prior broken links result", "path", fault.PathOf(err))
		case err != nil:
			return nil, fmt.Errorf("find audit: %w", err)
		default:
			summary.BrokenLinks = len(prior.AuditResult().Slice("brokenInternalLinks"))
		}
	}

	if err := p.checkPages(ctx, actx, body.SiteID, summary); err != nil {
		return nil, err
	}

	audit, err := da.Audit.Create(ctx, dataaccess.Bag{
		"siteId":       site.ID(),
		"auditType":    body.Type,
		"fullAuditRef": site.BaseURL(),
		"scores":       map[string]any{"pagesChecked": summary.PagesChecked},
		"auditResult": map[string]any{
			"missingTitles":   toAny(summary.MissingTitles),
			"unreadablePages": toAny(summary.Unreadable),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create audit: %w", err)
	}
	summary.AuditID = audit.ID()

	if len(summary.MissingTitles) == 0 {
		log.Info("no pages without a title")
		return summary, nil
	}
	if err := p.raiseOpportunity(ctx, actx, audit, summary); err != nil {
		return nil, err
	}

	log.Info("probe finished",
		"pages_checked", summary.PagesChecked,
		"missing_titles", len(summary.MissingTitles),
		"suggestions", summary.Suggestions)
	return summary, nil
}

// checkEntitlement follows Configuration, SiteEnrollment, Organization and
// Entitlement the way a production handler gate does.
func (p *Pipeline) checkEntitlement(ctx context.Context, da *dataaccess.DataAccess, auditType string, site *dataaccess.Site) (bool, string, error) {
	if da.Configuration == nil || da.SiteEnrollment == nil || da.Organization == nil || da.Entitlement == nil {
		return false, "entitlement collections unavailable", nil
	}

	cfg, err := da.Configuration.FindLatest(ctx)
	if err != nil {
		return false, "", fmt.Errorf("find configuration: %w", err)
	}
	if !cfg.IsHandlerEnabledForSite(auditType, site) {
		return false, "handler disabled for site", nil
	}

	productCode := dataaccess.ProductCodeASO
	if h, ok := cfg.Handlers()[auditType]; ok && len(h.ProductCodes) > 0 {
		productCode = h.ProductCodes[0]
	}

	org, err := da.Organization.FindByID(ctx, site.OrganizationID())
	if err != nil {
		return false, "", fmt.Errorf("find organization: %w", err)
	}
	ent, err := da.Entitlement.FindByOrganizationIDAndProductCode(ctx, org.ID(), productCode)
	if err != nil {
		return false, "", fmt.Errorf("find entitlement: %w", err)
	}
	if ent == nil {
		return false, "no entitlement for " + productCode, nil
	}

	enrollments, err := da.SiteEnrollment.AllBySiteID(ctx, site.ID())
	if err != nil {
		return false, "", fmt.Errorf("list enrollments: %w", err)
	}
	for _, e := range enrollments {
		if e.EntitlementID() == ent.ID() {
			return true, "", nil
		}
	}
	return false, "site not enrolled in " + productCode, nil
}

// checkPages reads every scrape result and collects pages without a title.
func (p *Pipeline) checkPages(ctx context.Context, actx *appctx.Context, siteID string, summary *Summary) error {
	if actx.S3 == nil || actx.ScrapeResultPaths == nil {
		p.logger.Info("no local scrape results attached")
		return nil
	}

	prefix := "scrapes/" + siteID + "/"
	for pageURL, rel := range actx.ScrapeResultPaths.All() {
		resp, err := actx.S3.Send(ctx, objectstore.GetRequest{Key: prefix + rel})
		if err != nil {
			if fault.IsNotFound(err) {
				summary.Unreadable = append(summary.Unreadable, pageURL)
				continue
			}
			return fmt.Errorf("read scrape result %s: %w", rel, err)
		}
		get, ok := resp.(*objectstore.GetResponse)
		if !ok {
			return fmt.Errorf("read scrape result %s: unexpected response %T", rel, resp)
		}
		summary.PagesChecked++

		content := get.String()
		if !gjson.Valid(content) {
			summary.Unreadable = append(summary.Unreadable, pageURL)
			continue
		}
		if final := gjson.Get(content, finalURL); final.Exists() && final.String() != "" {
			pageURL = final.String()
		}
		if strings.TrimSpace(gjson.Get(content, titlePath).String()) == "" {
			summary.MissingTitles = append(summary.MissingTitles, pageURL)
		}
	}
	return nil
}

// raiseOpportunity records missing titles as suggestions, reads them back
// and queues guidance for them.
func (p *Pipeline) raiseOpportunity(ctx context.Context, actx *appctx.Context, audit *dataaccess.Audit, summary *Summary) error {
	da := actx.DataAccess

	existing, err := da.Opportunity.AllBySiteIDAndStatus(ctx, summary.SiteID, dataaccess.SuggestionStatusNew)
	if err != nil {
		return fmt.Errorf("list opportunities: %w", err)
	}
	var opp dataaccess.Opportunity
	for _, o := range existing {
		if o.Type() == summary.AuditType {
			opp = o
		}
	}
	if opp == nil {
		opp, err = da.Opportunity.Create(ctx, dataaccess.Bag{
			"siteId":      summary.SiteID,
			"auditId":     audit.ID(),
			"type":        summary.AuditType,
			"origin":      "AUTOMATION",
			"title":       "Pages without a title",
			"description": "Scraped pages whose title tag is missing or empty",
			"tags":        []any{"SEO"},
			"data":        map[string]any{"pages": len(summary.MissingTitles)},
		})
		if err != nil {
			return fmt.Errorf("create opportunity: %w", err)
		}
	}
	summary.OpportunityID = opp.ID()

	batch := make([]dataaccess.Bag, len(summary.MissingTitles))
	for i, u := range summary.MissingTitles {
		batch[i] = dataaccess.Bag{
			"rank": i + 1,
			"data": map[string]any{"url": u, "issue": "Missing Title"},
		}
	}
	if _, err := opp.AddSuggestions(ctx, batch); err != nil {
		return fmt.Errorf("add suggestions: %w", err)
	}
	if _, err := opp.Save(ctx); err != nil {
		return fmt.Errorf("save opportunity: %w", err)
	}

	suggestions, err := da.Suggestion.AllByOpportunityIDAndStatus(ctx, opp.ID(), dataaccess.SuggestionStatusNew)
	if err != nil {
		return fmt.Errorf("read suggestions: %w", err)
	}
	summary.Suggestions = len(suggestions)

	if actx.Genvar != nil {
		if err := p.requestTitles(ctx, actx.Genvar, summary); err != nil {
			return err
		}
	}

	if actx.SQS != nil {
		ids := make([]any, len(suggestions))
		for i, s := range suggestions {
			ids[i] = s.ID()
		}
		id, err := actx.SQS.SendMessage(ctx, QueueURL, map[string]any{
			"type":    "guidance:" + summary.AuditType,
			"siteId":  summary.SiteID,
			"auditId": audit.ID(),
			"data": map[string]any{
				"opportunityId": opp.ID(),
				"suggestions":   ids,
			},
		})
		if err != nil {
			return fmt.Errorf("send guidance: %w", err)
		}
		summary.MessageID = id
	}
	return nil
}

// requestTitles asks Genvar for title suggestions for the flagged pages.
func (p *Pipeline) requestTitles(ctx context.Context, genvar appctx.GenvarClient, summary *Summary) error {
	detected := make(map[string]any, len(summary.MissingTitles))
	for _, u := range summary.MissingTitles {
		detected[u] = map[string]any{"title": map[string]any{"issue": "Missing Title"}}
	}
	raw, err := json.Marshal(map[string]any{"detectedTags": detected, "siteId": summary.SiteID})
	if err != nil {
		return fmt.Errorf("encode genvar request: %w", err)
	}
	res, err := genvar.GenerateSuggestions(ctx, string(raw), "/api/v1/web/aem-genai-variations-appbuilder/metatags")
	if err != nil {
		return fmt.Errorf("generate suggestions: %w", err)
	}
	summary.AISuggestions = len(res)
	return nil
}

func toAny(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
