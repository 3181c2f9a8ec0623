package dispatch

import (
	"voice-dispatch/internal/amd"
	"voice-dispatch/internal/routing"
)

// Request is one outbound call intent.
//
// Invariant: Destination must be non-empty. TenantID present means the
// multi-tenant pool; absent means the legacy/global path.
type Request struct {
	TenantID    string `json:"tenant_id,omitempty"`
	Destination string `json:"destination"`

	DisplayName string `json:"display_name,omitempty"`
	Pitch       string `json:"pitch,omitempty"`

	// AssistantID references a pre-existing provider-side assistant.
	AssistantID string `json:"assistant_id,omitempty"`

	// AMDProfile names a preset; empty uses the default. AMDOverrides
	// derives an ad-hoc profile without touching the preset.
	AMDProfile   string         `json:"amd_profile,omitempty"`
	AMDOverrides *amd.Overrides `json:"amd_overrides,omitempty"`

	// CallerID optionally overrides caller presentation on the gateway path.
	CallerID string `json:"caller_id,omitempty"`
}

// Status of one dispatch attempt.
type Status string

const (
	// StatusInitiated: the provider accepted the call.
	StatusInitiated Status = "initiated"
	// StatusSkipped: no pool resource available under quota; the request
	// never reached the provider.
	StatusSkipped Status = "skipped"
	// StatusFailed: the provider rejected the call or the request errored.
	StatusFailed Status = "failed"
)

// Result is the outcome of one dispatch attempt.
type Result struct {
	Destination string        `json:"destination"`
	Status      Status        `json:"status"`
	Route       routing.Route `json:"route,omitempty"`

	// NumberID is the pool resource used, if any.
	NumberID       string `json:"number_id,omitempty"`
	ProviderCallID string `json:"provider_call_id,omitempty"`

	// Reason explains skipped/failed results.
	Reason string `json:"reason,omitempty"`
}

// BatchResult aggregates a sequential batch run.
type BatchResult struct {
	Results []Result `json:"results"`

	Initiated int `json:"initiated"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`

	// RemainingCapacity is today's unused pool capacity after the batch.
	RemainingCapacity int `json:"remaining_capacity"`
}

func (b *BatchResult) add(r Result) {
	b.Results = append(b.Results, r)
	switch r.Status {
	case StatusInitiated:
		b.Initiated++
	case StatusSkipped:
		b.Skipped++
	case StatusFailed:
		b.Failed++
	}
}
