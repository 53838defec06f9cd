package itemstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/auditlocal/internal/dataaccess"
)

// Suggestion defaults applied when the input leaves a field unset.
const (
	DefaultSuggestionType = "CONTENT_UPDATE"
	DefaultSuggestionRank = 100
)

type opportunityCollection struct{ e *Emulator }

func (c *opportunityCollection) AllBySiteIDAndStatus(ctx context.Context, siteID, status string) ([]dataaccess.Opportunity, error) {
	c.e.logger.Info("Opportunity.allBySiteIdAndStatus called, returning none", "site_id", siteID, "status", status)
	c.e.recorder.Record(ctx, service, "Opportunity.allBySiteIdAndStatus",
		map[string]any{"siteId": siteID, "status": status}, []any{}, nil)
	return []dataaccess.Opportunity{}, nil
}

func (c *opportunityCollection) Create(ctx context.Context, data dataaccess.Bag) (dataaccess.Opportunity, error) {
	return c.create(ctx, "Opportunity.create", data)
}

// CreateOrUpdate never finds an existing opportunity, so it creates one.
func (c *opportunityCollection) CreateOrUpdate(ctx context.Context, data dataaccess.Bag) (dataaccess.Opportunity, error) {
	return c.create(ctx, "Opportunity.createOrUpdate", data)
}

func (c *opportunityCollection) create(ctx context.Context, op string, data dataaccess.Bag) (dataaccess.Opportunity, error) {
	e := c.e
	o := &opportunity{e: e, data: data.Clone()}
	e.logger.Info(op+" called", "type", o.Type(), "site_id", o.SiteID())
	e.recorder.Record(ctx, service, op,
		map[string]any{"type": o.Type(), "siteId": o.SiteID()},
		map[string]any{"id": o.ID()}, nil)
	return o, nil
}

// opportunity is the handle returned by Create. Every handle carries the
// same sentinel identity.
type opportunity struct {
	e    *Emulator
	data dataaccess.Bag
}

func (o *opportunity) ID() string     { return OpportunityID }
func (o *opportunity) SiteID() string { return o.data.String("siteId") }
func (o *opportunity) Type() string   { return o.data.String("type") }

func (o *opportunity) Status() string {
	return o.data.StringOr("status", dataaccess.SuggestionStatusNew)
}

func (o *opportunity) Title() string            { return o.data.String("title") }
func (o *opportunity) Description() string      { return o.data.String("description") }
func (o *opportunity) Data() dataaccess.Bag     { return o.data.Map("data").Clone() }
func (o *opportunity) Guidance() dataaccess.Bag { return o.data.Map("guidance").Clone() }
func (o *opportunity) Tags() []string           { return o.data.Strings("tags") }

// MarshalJSON encodes the opportunity with its identity.
func (o *opportunity) MarshalJSON() ([]byte, error) {
	out := o.data.Clone()
	out["id"] = o.ID()
	return json.Marshal(out)
}

// AddSuggestions replaces the correlation entry for this opportunity with
// the created batch.
func (o *opportunity) AddSuggestions(ctx context.Context, suggestions []dataaccess.Bag) ([]*dataaccess.Suggestion, error) {
	e := o.e
	e.logger.Info("Opportunity.addSuggestions called", "opportunity_id", o.ID(), "count", len(suggestions))
	if len(suggestions) > 0 {
		if raw, err := json.MarshalIndent(suggestions, "", "  "); err == nil {
			e.logger.Debug("suggestions being added", "json", string(raw))
		}
	}

	created := make([]*dataaccess.Suggestion, len(suggestions))
	for i, s := range suggestions {
		rank := s.IntOr("rank", 0)
		if rank == 0 {
			rank = DefaultSuggestionRank
		}
		created[i] = dataaccess.NewSuggestion(dataaccess.Bag{
			"id":            fmt.Sprintf("%s%d", SuggestionIDPrefix, i+1),
			"opportunityId": o.ID(),
			"type":          s.StringOr("type", DefaultSuggestionType),
			"status":        s.StringOr("status", dataaccess.SuggestionStatusNew),
			"rank":          rank,
			"data":          s.Map("data"),
		})
	}

	e.correlation.Put(o.ID(), created)
	e.logger.Info("cached suggestions", "opportunity_id", o.ID(), "count", len(created))
	e.recorder.Record(ctx, service, "Opportunity.addSuggestions",
		map[string]any{"opportunityId": o.ID(), "count": len(suggestions)}, created, nil)
	return created, nil
}

func (o *opportunity) Save(ctx context.Context) (dataaccess.Opportunity, error) {
	o.e.logger.Info("Opportunity.save called", "opportunity_id", o.ID())
	o.e.recorder.Record(ctx, service, "Opportunity.save", map[string]any{"id": o.ID()}, nil, nil)
	return o, nil
}

type suggestionCollection struct{ e *Emulator }

// AllByOpportunityIDAndStatus returns the batch last attached to
// opportunityID. status is accepted but not applied.
func (c *suggestionCollection) AllByOpportunityIDAndStatus(ctx context.Context, opportunityID, status string) ([]*dataaccess.Suggestion, error) {
	e := c.e
	cached, ok := e.correlation.Get(opportunityID)
	if !ok {
		cached = []*dataaccess.Suggestion{}
	}
	e.logger.Info("Suggestion.allByOpportunityIdAndStatus called",
		"opportunity_id", opportunityID, "status", status, "cached", ok, "count", len(cached))
	e.recorder.Record(ctx, service, "Suggestion.allByOpportunityIdAndStatus",
		map[string]any{"opportunityId": opportunityID, "status": status},
		map[string]any{"count": len(cached)}, nil)
	return cached, nil
}
