package telephony

import (
	"context"

	"voice-dispatch/internal/amd"
)

// VoiceProvider is the rotation-backed voice-call provider boundary.
//
// Rules:
// - No provider HTTP calls outside telephony adapters.
// - Request/response types stay provider-agnostic; raw payloads go in
//   metadata if needed.
// - Every outbound call carries a bounded timeout; a timed-out call is a
//   failure, never indefinitely pending.
type VoiceProvider interface {
	Name() string
	PlaceCall(ctx context.Context, req ProviderCallRequest) (CallRef, error)
	GetCall(ctx context.Context, providerCallID string) (CallStatusInfo, error)
}

// RegionalGateway is the fixed-extension trunk for destinations in the
// gateway prefix set. It bypasses the number pool entirely.
type RegionalGateway interface {
	Name() string
	CallToNumber(ctx context.Context, req GatewayCallRequest) (CallRef, error)
}

// ProviderCallRequest describes one outbound call through the provider path.
type ProviderCallRequest struct {
	TenantID string `json:"tenant_id,omitempty"`

	// Destination is the callee, E.164.
	Destination string `json:"destination"`

	// NumberID is the pool resource (provider-assigned phone number ID)
	// used as the originating caller ID.
	NumberID string `json:"number_id"`

	// AssistantID references a pre-existing provider-side assistant. When
	// empty, an inline assistant is built from DisplayName/Pitch.
	AssistantID string `json:"assistant_id,omitempty"`

	DisplayName string `json:"display_name,omitempty"`
	Pitch       string `json:"pitch,omitempty"`

	AMD amd.Profile `json:"amd"`

	// Metadata is echoed back in webhook deliveries (tenant correlation).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// GatewayCallRequest describes one outbound call through the regional trunk.
type GatewayCallRequest struct {
	TenantID    string `json:"tenant_id,omitempty"`
	Destination string `json:"destination"`

	// CallerID optionally overrides the trunk's default presentation number.
	CallerID string `json:"caller_id,omitempty"`
}

// CallRef is the provider's handle for an accepted call.
type CallRef struct {
	ProviderCallID string `json:"provider_call_id"`
	Provider       string `json:"provider"`
}

// CallStatusInfo is a point-in-time provider view of a call.
type CallStatusInfo struct {
	ProviderCallID string `json:"provider_call_id"`
	Status         string `json:"status"`
	EndedReason    string `json:"ended_reason,omitempty"`
}
