package itemstore

import (
	"context"

	"github.com/roach88/auditlocal/internal/dataaccess"
	"github.com/roach88/auditlocal/internal/toppages"
)

// trafficBase is the mock traffic of the first top page; each following
// page gets one less.
const trafficBase = 1000

type siteCollection struct{ e *Emulator }

func (c *siteCollection) FindByID(ctx context.Context, id string) (*dataaccess.Site, error) {
	e := c.e
	baseURL := e.siteBaseURL(id)
	e.logger.Info("Site.findById called", "site_id", id, "base_url", baseURL)

	site := dataaccess.NewSite(dataaccess.Bag{
		"id":             id,
		"baseURL":        baseURL,
		"deliveryType":   "aem_edge",
		"gitHubURL":      "",
		"organizationId": ZeroID,
		"isLive":         true,
		"config": dataaccess.Bag{
			"fetchConfig": dataaccess.Bag{"overrideBaseURL": nil},
		},
		"audits": dataaccess.Bag{},
	})
	e.recorder.Record(ctx, service, "Site.findById", map[string]any{"id": id}, site, nil)
	return site, nil
}

func (e *Emulator) siteBaseURL(id string) string {
	if e.opts.BaseURLFromTopPages && len(e.opts.TopPages) > 0 {
		return toppages.BaseURL(e.opts.TopPages)
	}
	if u, ok := e.opts.SiteURLs[id]; ok {
		return u
	}
	return toppages.DefaultBaseURL
}

type topPageCollection struct{ e *Emulator }

func (c *topPageCollection) AllBySiteIDAndSourceAndGeo(ctx context.Context, siteID, source, geo string) ([]*dataaccess.SiteTopPage, error) {
	e := c.e
	e.logger.Info("SiteTopPage.allBySiteIdAndSourceAndGeo called",
		"site_id", siteID, "source", source, "geo", geo, "count", len(e.opts.TopPages))

	if source == "" {
		source = "rum"
	}
	if geo == "" {
		geo = "global"
	}
	importedAt := e.timestamp()

	pages := make([]*dataaccess.SiteTopPage, len(e.opts.TopPages))
	for i, u := range e.opts.TopPages {
		pages[i] = dataaccess.NewSiteTopPage(dataaccess.Bag{
			"url":        u,
			"siteId":     siteID,
			"source":     source,
			"geo":        geo,
			"traffic":    trafficBase - i,
			"topKeyword": "",
			"importedAt": importedAt,
		})
	}

	e.recorder.Record(ctx, service, "SiteTopPage.allBySiteIdAndSourceAndGeo",
		map[string]any{"siteId": siteID, "source": source, "geo": geo},
		map[string]any{"count": len(pages)}, nil)
	return pages, nil
}
