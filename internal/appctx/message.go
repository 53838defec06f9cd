package appctx

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Synthetic audit context defaults.
const (
	DefaultNext        = "run-audit-and-generate-suggestions"
	DefaultAuditID     = "00000000-0000-0000-0000-000000000000"
	DefaultScrapeJobID = "00000000-0000-0000-0000-000000000000"
)

// AuditContext tells a multi-step audit which step to run.
type AuditContext struct {
	Next        string `json:"next,omitempty"`
	AuditID     string `json:"auditId,omitempty"`
	ScrapeJobID string `json:"scrapeJobId,omitempty"`
}

// MessageBody is the audit request carried in a queue record.
type MessageBody struct {
	Type         string       `json:"type"`
	SiteID       string       `json:"siteId"`
	AuditContext AuditContext `json:"auditContext"`
}

// Record is one queue record. Body is the JSON-encoded MessageBody.
type Record struct {
	Body string `json:"body"`
}

// Message is the event a pipeline is invoked with.
type Message struct {
	Records []Record `json:"Records"`
}

// NewBody returns a body for auditType and siteID with the default audit
// context.
func NewBody(auditType, siteID string) MessageBody {
	return MessageBody{
		Type:   auditType,
		SiteID: siteID,
		AuditContext: AuditContext{
			Next:        DefaultNext,
			AuditID:     DefaultAuditID,
			ScrapeJobID: DefaultScrapeJobID,
		},
	}
}

// NewMessage wraps body in a single-record message.
func NewMessage(body MessageBody) (Message, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Message{}, fmt.Errorf("encode message body: %w", err)
	}
	return Message{Records: []Record{{Body: string(raw)}}}, nil
}

// Body decodes the first record.
func (m Message) Body() (MessageBody, error) {
	if len(m.Records) == 0 {
		return MessageBody{}, errors.New("message has no records")
	}
	var body MessageBody
	if err := json.Unmarshal([]byte(m.Records[0].Body), &body); err != nil {
		return MessageBody{}, fmt.Errorf("decode message body: %w", err)
	}
	return body, nil
}
