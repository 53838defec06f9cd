package itemstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/roach88/auditlocal/internal/dataaccess"
	"github.com/roach88/auditlocal/internal/fault"
)

// BrokenInternalLinks is the audit type whose results are summarised on
// create and reloaded by FindByID.
const BrokenInternalLinks = "broken-internal-links"

type auditCollection struct{ e *Emulator }

// FindLatest always reports no prior audit, so a repeat local run is never
// skipped by a disable-on-repeat check.
func (c *auditCollection) FindLatest(ctx context.Context) (*dataaccess.Audit, error) {
	c.e.logger.Info("Audit.findLatest called, returning no prior audit")
	c.e.recorder.Record(ctx, service, "Audit.findLatest", nil, nil, nil)
	return nil, nil
}

func (c *auditCollection) AllBySiteIDAndAuditType(ctx context.Context, siteID, auditType string) ([]*dataaccess.Audit, error) {
	c.e.logger.Info("Audit.allBySiteIdAndAuditType called, returning none", "site_id", siteID, "audit_type", auditType)
	c.e.recorder.Record(ctx, service, "Audit.allBySiteIdAndAuditType",
		map[string]any{"siteId": siteID, "auditType": auditType}, []any{}, nil)
	return []*dataaccess.Audit{}, nil
}

// Create echoes a view of data. Nothing is kept after the call.
func (c *auditCollection) Create(ctx context.Context, data dataaccess.Bag) (*dataaccess.Audit, error) {
	e := c.e
	auditType := data.String("auditType")
	e.logger.Info("Audit.create called", "audit_type", auditType, "site_id", data.String("siteId"))
	if raw, err := json.MarshalIndent(data, "", "  "); err == nil {
		e.logger.Debug("audit data", "json", string(raw))
	}

	if auditType == BrokenInternalLinks {
		links := data.Map("auditResult").Slice("brokenInternalLinks")
		e.logger.Info("broken internal links in audit record", "count", len(links))
	}

	audit := dataaccess.NewAudit(dataaccess.Bag{
		"id":           ZeroID,
		"siteId":       data.String("siteId"),
		"auditType":    auditType,
		"auditedAt":    e.timestamp(),
		"scores":       data.Map("scores"),
		"fullAuditRef": data.String("fullAuditRef"),
		"auditResult":  data.Map("auditResult"),
	})
	e.recorder.Record(ctx, service, "Audit.create",
		map[string]any{"auditType": auditType, "siteId": data.String("siteId")},
		map[string]any{"id": audit.ID()}, nil)
	return audit, nil
}

// FindByID loads the audit result from broken-links-<siteId>.json.
// Fails with a NotFound fault when the artifact or its directory is missing.
// A malformed artifact propagates its decode error.
func (c *auditCollection) FindByID(ctx context.Context, id string) (*dataaccess.Audit, error) {
	e := c.e
	e.logger.Info("Audit.findById called", "audit_id", id)
	args := map[string]any{"id": id}

	if e.opts.BrokenLinksDir == "" || e.opts.SiteID == "" {
		err := fault.NotFound("Audit.findById", id, "", "no broken links directory or site id configured")
		e.recorder.Record(ctx, service, "Audit.findById", args, nil, err)
		return nil, err
	}

	path := filepath.Join(e.opts.BrokenLinksDir, fmt.Sprintf("broken-links-%s.json", e.opts.SiteID))
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fault.NotFound("Audit.findById", id, path, "broken links data not found")
		}
		e.logger.Warn("could not load audit data", "path", path, "error", err)
		e.recorder.Record(ctx, service, "Audit.findById", args, nil, err)
		return nil, err
	}

	var result dataaccess.Bag
	if err := json.Unmarshal(raw, &result); err != nil {
		err = fmt.Errorf("decode %s: %w", path, err)
		e.recorder.Record(ctx, service, "Audit.findById", args, nil, err)
		return nil, err
	}

	audit := dataaccess.NewAudit(dataaccess.Bag{
		"id":           id,
		"siteId":       e.opts.SiteID,
		"auditType":    BrokenInternalLinks,
		"auditedAt":    e.timestamp(),
		"scores":       dataaccess.Bag{},
		"fullAuditRef": "",
		"auditResult":  result,
	})
	links := result.Slice("brokenInternalLinks")
	e.logger.Info("loaded broken links data", "path", path, "count", len(links))
	e.recorder.Record(ctx, service, "Audit.findById", args, map[string]any{"brokenInternalLinks": len(links)}, nil)
	return audit, nil
}
