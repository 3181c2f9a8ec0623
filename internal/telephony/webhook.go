package telephony

import (
	"encoding/json"
	"errors"

	"voice-dispatch/internal/outcome"
)

// Webhook message kinds delivered by the voice provider.
const (
	WebhookStatusUpdate    = "status-update"
	WebhookEndOfCallReport = "end-of-call-report"
)

// WebhookEnvelope is the provider's webhook wrapper. The payload is consumed
// as an opaque structured event; only the fields below are extracted.
type WebhookEnvelope struct {
	Message WebhookMessage `json:"message"`
}

type WebhookMessage struct {
	Type   string `json:"type"`
	Status string `json:"status,omitempty"`

	EndedReason     string  `json:"endedReason,omitempty"`
	Transcript      string  `json:"transcript,omitempty"`
	Summary         string  `json:"summary,omitempty"`
	RecordingURL    string  `json:"recordingUrl,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`

	Call WebhookCall `json:"call"`

	// Messages is the conversation/tool-invocation log, reused by the
	// outcome classifier.
	Messages []outcome.ConversationMessage `json:"messages,omitempty"`
}

type WebhookCall struct {
	ID            string `json:"id"`
	PhoneNumberID string `json:"phoneNumberId,omitempty"`

	Customer struct {
		Number string `json:"number,omitempty"`
		Name   string `json:"name,omitempty"`
	} `json:"customer"`

	// Metadata carries dispatch correlation data (tenant_id) set when the
	// call was placed.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TenantID extracts the tenant correlation tag, when present.
func (c WebhookCall) TenantID() string {
	if v, ok := c.Metadata["tenant_id"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

var ErrEmptyWebhook = errors.New("telephony: webhook has no message")

// ParseWebhook decodes a provider webhook delivery.
func ParseWebhook(body []byte) (WebhookEnvelope, error) {
	var env WebhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return WebhookEnvelope{}, err
	}
	if env.Message.Type == "" {
		return WebhookEnvelope{}, ErrEmptyWebhook
	}
	return env, nil
}
