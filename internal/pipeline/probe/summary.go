package probe

import (
	"fmt"
	"strings"
)

// Summary is the probe's result value.
type Summary struct {
	AuditType string `json:"audit_type"`
	SiteID    string `json:"site_id"`
	BaseURL   string `json:"base_url"`
	Entitled  bool   `json:"entitled"`
	Skipped   string `json:"skipped,omitempty"`

	PriorAudit  bool `json:"prior_audit"`
	TopPages    int  `json:"top_pages"`
	BrokenLinks int  `json:"broken_links,omitempty"`

	PagesChecked  int      `json:"pages_checked"`
	Unreadable    []string `json:"unreadable,omitempty"`
	MissingTitles []string `json:"missing_titles"`

	AuditID       string `json:"audit_id,omitempty"`
	OpportunityID string `json:"opportunity_id,omitempty"`
	Suggestions   int    `json:"suggestions"`
	AISuggestions int    `json:"ai_suggestions"`
	MessageID     string `json:"message_id,omitempty"`
}

// String renders the summary for text output.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s audit of %s (%s)\n", s.AuditType, s.SiteID, s.BaseURL)
	if s.Skipped != "" {
		fmt.Fprintf(&b, "  skipped: %s\n", s.Skipped)
		return b.String()
	}
	fmt.Fprintf(&b, "  top pages:      %d\n", s.TopPages)
	fmt.Fprintf(&b, "  pages checked:  %d\n", s.PagesChecked)
	if len(s.Unreadable) > 0 {
		fmt.Fprintf(&b, "  unreadable:     %d\n", len(s.Unreadable))
	}
	fmt.Fprintf(&b, "  missing titles: %d\n", len(s.MissingTitles))
	for _, u := range s.MissingTitles {
		fmt.Fprintf(&b, "    - %s\n", u)
	}
	if s.OpportunityID != "" {
		fmt.Fprintf(&b, "  opportunity %s with %d suggestions\n", s.OpportunityID, s.Suggestions)
	}
	return b.String()
}
