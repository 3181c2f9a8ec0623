package routing

import (
	"context"
	"testing"
	"time"
)

type captureAudit struct {
	called bool
	event  OverrideAuditEvent
}

func (a *captureAudit) LogOverrideApplied(ctx context.Context, e OverrideAuditEvent) error {
	a.called = true
	a.event = e
	return nil
}

func TestOverrideEngineAppliesActiveOverride(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	store := NewMemoryOverrideStore()
	store.Put(Override{TenantID: "t1", OverrideID: "o1", ForceRoute: RouteGateway, ExpiresAt: now.Add(5 * time.Minute)})

	a := &captureAudit{}
	e := NewOverrideEngine(store, a)
	e.Now = func() time.Time { return now }

	d, applied, err := e.Decide(context.Background(), "t1", "+15551234567")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !applied {
		t.Fatalf("expected applied")
	}
	if d.Route != RouteGateway || d.Reason != "override" {
		t.Fatalf("unexpected decision: %+v", d)
	}
	if !a.called || a.event.OverrideID != "o1" {
		t.Fatalf("expected audit record, got %+v", a.event)
	}
}

func TestOverrideEngineIgnoresExpired(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()

	store := NewMemoryOverrideStore()
	store.Put(Override{TenantID: "t1", ForceRoute: RouteGateway, ExpiresAt: now.Add(-time.Second)})

	e := NewOverrideEngine(store, nil)
	e.Now = func() time.Time { return now }

	if _, applied, err := e.Decide(context.Background(), "t1", "+1555"); err != nil || applied {
		t.Fatalf("expected not applied, applied=%v err=%v", applied, err)
	}
}

func TestOverrideEngineNoStoreNoTenant(t *testing.T) {
	e := NewOverrideEngine(nil, nil)
	if _, applied, err := e.Decide(context.Background(), "t1", "+1555"); err != nil || applied {
		t.Fatalf("nil store must be a no-op")
	}

	e = NewOverrideEngine(NewMemoryOverrideStore(), nil)
	if _, applied, err := e.Decide(context.Background(), "", "+1555"); err != nil || applied {
		t.Fatalf("legacy path (no tenant) must skip overrides")
	}
}

func TestOverrideEngineRejectsInvalidRoute(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	store := NewMemoryOverrideStore()
	store.Put(Override{TenantID: "t1", ForceRoute: Route("nowhere"), ExpiresAt: now.Add(time.Minute)})

	e := NewOverrideEngine(store, nil)
	e.Now = func() time.Time { return now }

	if _, _, err := e.Decide(context.Background(), "t1", "+1555"); err == nil {
		t.Fatalf("expected error for invalid forced route")
	}
}
