package calls

import (
	"strings"
	"time"

	"voice-dispatch/internal/outcome"
)

// Record is a tenant-scoped outbound call, keyed by the provider's call ID.
//
// The classified outcome is assigned exactly once, when the end-of-call
// report arrives, and is immutable thereafter. Status transitions before
// completion only touch Status/UpdatedAt.
type Record struct {
	ProviderCallID string `json:"provider_call_id" db:"provider_call_id"`
	TenantID       string `json:"tenant_id,omitempty" db:"tenant_id"`

	From string `json:"from" db:"from_number"`
	To   string `json:"to" db:"to_number"`

	// NumberID is the pool resource used to place the call, if any.
	NumberID string `json:"number_id,omitempty" db:"number_id"`

	Status  CallStatus      `json:"status" db:"status"`
	Outcome outcome.Outcome `json:"outcome,omitempty" db:"outcome"`

	EndedReason  string `json:"ended_reason,omitempty" db:"ended_reason"`
	Transcript   string `json:"transcript,omitempty" db:"transcript"`
	Summary      string `json:"summary,omitempty" db:"summary"`
	RecordingURL string `json:"recording_url,omitempty" db:"recording_url"`

	DurationSeconds int `json:"duration_seconds" db:"duration_seconds"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CallStatus string

const (
	CallStatusQueued     CallStatus = "queued"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusForwarding CallStatus = "forwarding"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
)

// MapProviderStatus normalizes the provider's status vocabulary.
// Unknown values map to queued; status updates are advisory only.
func MapProviderStatus(s string) CallStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ringing":
		return CallStatusRinging
	case "in-progress", "in_progress":
		return CallStatusInProgress
	case "forwarding":
		return CallStatusForwarding
	case "ended", "completed":
		return CallStatusCompleted
	case "failed":
		return CallStatusFailed
	default:
		return CallStatusQueued
	}
}
