package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/auditlocal/internal/appctx"
)

// Scenario overrides the synthetic message and environment of a run and
// lists assertions over the journal.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description"`

	// Message overrides fields of the synthetic audit message. Unset
	// fields keep the configured defaults.
	Message MessageSpec `yaml:"message,omitempty"`

	// Env is merged over the harness environment handed to the pipeline.
	Env map[string]string `yaml:"env,omitempty"`

	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// MessageSpec is the YAML form of a message body.
type MessageSpec struct {
	Type         string           `yaml:"type,omitempty"`
	SiteID       string           `yaml:"site_id,omitempty"`
	AuditContext AuditContextSpec `yaml:"audit_context,omitempty"`
}

// AuditContextSpec is the YAML form of appctx.AuditContext.
type AuditContextSpec struct {
	Next        string `yaml:"next,omitempty"`
	AuditID     string `yaml:"audit_id,omitempty"`
	ScrapeJobID string `yaml:"scrape_job_id,omitempty"`
}

// Apply overrides the set fields of body.
func (m MessageSpec) Apply(body appctx.MessageBody) appctx.MessageBody {
	if m.Type != "" {
		body.Type = m.Type
	}
	if m.SiteID != "" {
		body.SiteID = m.SiteID
	}
	if m.AuditContext.Next != "" {
		body.AuditContext.Next = m.AuditContext.Next
	}
	if m.AuditContext.AuditID != "" {
		body.AuditContext.AuditID = m.AuditContext.AuditID
	}
	if m.AuditContext.ScrapeJobID != "" {
		body.AuditContext.ScrapeJobID = m.AuditContext.ScrapeJobID
	}
	return body
}

// Assertion validates the journal or the queue counts of a run.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, queue_count.
	Type string `yaml:"type"`

	// Operation is the journalled operation name, e.g. "Audit.create"
	// (trace_contains, trace_count).
	Operation string `yaml:"operation,omitempty"`

	// Args is a subset match against the call's journalled args
	// (trace_contains).
	Args map[string]any `yaml:"args,omitempty"`

	// Operations is the expected order (trace_order).
	Operations []string `yaml:"operations,omitempty"`

	// PayloadType is the queue payload type (queue_count).
	PayloadType string `yaml:"payload_type,omitempty"`

	// Count is the expected number of occurrences (trace_count, queue_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertQueueCount    = "queue_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Operation == "" {
			return fmt.Errorf("assertions[%d]: operation is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Operations) == 0 {
			return fmt.Errorf("assertions[%d]: operations list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Operation == "" {
			return fmt.Errorf("assertions[%d]: operation is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertQueueCount:
		if a.PayloadType == "" {
			return fmt.Errorf("assertions[%d]: payload_type is required for queue_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for queue_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
