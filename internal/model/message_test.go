package model

import (
	"strings"
	"testing"
)

func validPayload() WebhookPayload {
	return WebhookPayload{
		MessageID: "m1",
		From:      "+919876543210",
		To:        "+14155550100",
		TS:        "2025-01-15T10:00:00Z",
		Text:      "Hello",
	}
}

func TestWebhookPayload_Validate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*WebhookPayload)
		wantErr string
	}{
		{"valid", func(p *WebhookPayload) {}, ""},
		{"valid without text", func(p *WebhookPayload) { p.Text = "" }, ""},
		{"empty message_id", func(p *WebhookPayload) { p.MessageID = "  " }, "message_id"},
		{"from missing plus", func(p *WebhookPayload) { p.From = "919876543210" }, "from"},
		{"from non-digit", func(p *WebhookPayload) { p.From = "+91abc" }, "from"},
		{"to missing plus", func(p *WebhookPayload) { p.To = "1415" }, "to"},
		{"ts without Z", func(p *WebhookPayload) { p.TS = "2025-01-15T10:00:00" }, "ts"},
		{"empty ts", func(p *WebhookPayload) { p.TS = "" }, "ts"},
		{"text too long", func(p *WebhookPayload) { p.Text = strings.Repeat("a", MaxTextLength+1) }, "text"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			tc.mutate(&p)
			err := p.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fe, ok := err.(*FieldError)
			if !ok {
				t.Fatalf("expected *FieldError, got %T (%v)", err, err)
			}
			if fe.Field != tc.wantErr {
				t.Fatalf("expected field %q, got %q", tc.wantErr, fe.Field)
			}
		})
	}
}

func TestNewMessage_StampsCreatedAt(t *testing.T) {
	p := validPayload()
	m, err := NewMessage(&p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.CreatedAt == "" || !strings.HasSuffix(m.CreatedAt, "Z") {
		t.Fatalf("created_at not stamped: %q", m.CreatedAt)
	}
	if strings.Contains(m.CreatedAt, ".") {
		t.Fatalf("created_at should be second precision: %q", m.CreatedAt)
	}
}

func TestNewMessage_MaxTextBoundary(t *testing.T) {
	p := validPayload()
	p.Text = strings.Repeat("x", MaxTextLength)
	if _, err := NewMessage(&p); err != nil {
		t.Fatalf("text at the bound should pass: %v", err)
	}
}
