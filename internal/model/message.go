package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// MaxTextLength is the maximum length of a message text
	MaxTextLength = 4096

	// CreatedAtLayout is the server-side ingestion timestamp format:
	// UTC, second precision, Z-suffixed.
	CreatedAtLayout = "2006-01-02T15:04:05Z"
)

// msisdnRe matches E.164-like phone numbers: "+" followed by digits.
var msisdnRe = regexp.MustCompile(`^\+[0-9]+$`)

// FieldError is a validation failure for a single payload field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// WebhookPayload is the JSON body of an inbound webhook call.
type WebhookPayload struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	TS        string `json:"ts"`
	Text      string `json:"text,omitempty"`
}

// Validate checks all payload fields eagerly and returns the first
// failing field as a *FieldError.
func (p *WebhookPayload) Validate() error {
	if strings.TrimSpace(p.MessageID) == "" {
		return &FieldError{Field: "message_id", Reason: "must be non-empty"}
	}
	if !msisdnRe.MatchString(p.From) {
		return &FieldError{Field: "from", Reason: "must be E.164-like (+digits)"}
	}
	if !msisdnRe.MatchString(p.To) {
		return &FieldError{Field: "to", Reason: "must be E.164-like (+digits)"}
	}
	if p.TS == "" || !strings.HasSuffix(p.TS, "Z") {
		return &FieldError{Field: "ts", Reason: "must end with Z"}
	}
	if len(p.Text) > MaxTextLength {
		return &FieldError{Field: "text", Reason: fmt.Sprintf("exceeds %d characters", MaxTextLength)}
	}
	return nil
}

// Message is the persisted message entity. The caller-supplied ts is kept
// verbatim; CreatedAt is assigned once at insert time and never exposed
// over the API.
type Message struct {
	MessageID string `json:"message_id"`
	From      string `json:"from"`
	To        string `json:"to"`
	TS        string `json:"ts"`
	Text      string `json:"text"`
	CreatedAt string `json:"-"`
}

// NewMessage builds a Message from a validated payload and stamps CreatedAt.
func NewMessage(p *WebhookPayload) (*Message, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Message{
		MessageID: strings.TrimSpace(p.MessageID),
		From:      p.From,
		To:        p.To,
		TS:        p.TS,
		Text:      p.Text,
		CreatedAt: time.Now().UTC().Format(CreatedAtLayout),
	}, nil
}

// SenderCount is one row of the per-sender aggregate.
type SenderCount struct {
	From  string `json:"from"`
	Count int64  `json:"count"`
}

// Stats is the aggregate summary over all stored messages. Timestamp
// pointers are nil when the table is empty.
type Stats struct {
	TotalMessages     int64         `json:"total_messages"`
	SendersCount      int64         `json:"senders_count"`
	MessagesPerSender []SenderCount `json:"messages_per_sender"`
	FirstMessageTS    *string       `json:"first_message_ts"`
	LastMessageTS     *string       `json:"last_message_ts"`
}

// Page is a filtered, paginated slice of messages plus the total match
// count before pagination.
type Page struct {
	Data   []Message `json:"data"`
	Total  int64     `json:"total"`
	Limit  int       `json:"limit"`
	Offset int       `json:"offset"`
}
