package routing

import (
	"context"
	"errors"
	"time"
)

// OverrideEngine applies expiry-based forced-route overrides.
//
// An operator can pin a tenant's outbound calls to one path for a bounded
// window (e.g. force the gateway trunk during a compliance incident, or drain
// a misbehaving provider). Overrides are time-bounded and every application
// is recorded through the internal audit hook.
//
// This component returns a Decision only; it never contacts providers.
// It is evaluated ahead of prefix matching.
type OverrideEngine struct {
	Store OverrideStore
	Audit AuditLogger
	Now   func() time.Time
}

// OverrideStore resolves the currently-active override for a tenant.
// If none exists it returns (Override{}, false, nil).
type OverrideStore interface {
	GetActiveOverride(ctx context.Context, tenantID string, now time.Time) (Override, bool, error)
}

// AuditLogger records internal-only audit events.
type AuditLogger interface {
	LogOverrideApplied(ctx context.Context, e OverrideAuditEvent) error
}

type Override struct {
	TenantID string
	// OverrideID correlates audit records.
	OverrideID string

	// ForceRoute is the pinned path.
	ForceRoute Route

	// ExpiresAt marks when the override stops applying.
	ExpiresAt time.Time

	// Metadata is optional JSON for audit correlation.
	Metadata string
}

type OverrideAuditEvent struct {
	TenantID   string
	OverrideID string

	Destination string
	IPAddress   string

	ForceRoute Route
	AppliedAt  time.Time
	ExpiresAt  time.Time

	Metadata string
}

func NewOverrideEngine(store OverrideStore, audit AuditLogger) *OverrideEngine {
	return &OverrideEngine{Store: store, Audit: audit, Now: time.Now}
}

// Decide returns (decision, true, nil) if an active override was applied and
// (Decision{}, false, nil) when none applies.
func (e *OverrideEngine) Decide(ctx context.Context, tenantID, destination string) (Decision, bool, error) {
	if e.Now == nil {
		e.Now = time.Now
	}
	if e.Store == nil || tenantID == "" {
		return Decision{}, false, nil
	}

	now := e.Now()
	o, ok, err := e.Store.GetActiveOverride(ctx, tenantID, now)
	if err != nil {
		return Decision{}, false, err
	}
	if !ok {
		return Decision{}, false, nil
	}
	if !o.ExpiresAt.After(now) {
		// Treat as not found; stores should ideally filter these out.
		return Decision{}, false, nil
	}
	if o.ForceRoute != RouteGateway && o.ForceRoute != RouteProvider {
		return Decision{}, false, errors.New("routing: override force_route invalid")
	}

	d := Decision{TenantID: tenantID, Destination: destination, Route: o.ForceRoute, Reason: "override"}

	if e.Audit != nil {
		_ = e.Audit.LogOverrideApplied(ctx, OverrideAuditEvent{
			TenantID:    tenantID,
			OverrideID:  o.OverrideID,
			Destination: destination,
			IPAddress:   ClientIPFromContext(ctx),
			ForceRoute:  o.ForceRoute,
			AppliedAt:   now,
			ExpiresAt:   o.ExpiresAt,
			Metadata:    o.Metadata,
		})
	}

	return d, true, nil
}
