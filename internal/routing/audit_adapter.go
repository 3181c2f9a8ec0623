package routing

import (
	"context"

	"voice-dispatch/internal/audit"
)

// AuditAdapter bridges the override audit hook to the shared audit.Service.
// It keeps routing internals free of persistence dependencies.
type AuditAdapter struct {
	Audit *audit.Service

	// Actor info is optional; overrides may be applied by internal operators.
	ActorUserID string
	ActorRole   string
}

func (a AuditAdapter) LogOverrideApplied(ctx context.Context, e OverrideAuditEvent) error {
	if a.Audit == nil {
		return nil
	}
	return a.Audit.Append(ctx, audit.Event{
		TenantID:    e.TenantID,
		Type:        audit.EventTypeRouteOverride,
		ActorUserID: a.ActorUserID,
		ActorRole:   a.ActorRole,
		IPAddress:   e.IPAddress,
		OverrideID:  e.OverrideID,
		Message:     "route override applied: " + string(e.ForceRoute),
		Metadata:    e.Metadata,
	})
}
