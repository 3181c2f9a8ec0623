package routing

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSelectRoutePrefixMatch(t *testing.T) {
	s := &Selector{GatewayPrefixes: []string{"+995"}, GatewayConfigured: true}

	d, err := s.SelectRoute(context.Background(), "t1", "+995551234567")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Route != RouteGateway {
		t.Fatalf("expected gateway route, got %s", d.Route)
	}

	d, err = s.SelectRoute(context.Background(), "t1", "+15551234567")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Route != RouteProvider {
		t.Fatalf("expected provider route, got %s", d.Route)
	}
}

func TestSelectRouteNormalizesDestination(t *testing.T) {
	s := &Selector{GatewayPrefixes: []string{"+995"}, GatewayConfigured: true}
	d, err := s.SelectRoute(context.Background(), "t1", "+995 (555) 123-456")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Route != RouteGateway {
		t.Fatalf("expected gateway route for formatted number, got %s", d.Route)
	}
}

func TestSelectRouteGatewayMissingIsHardError(t *testing.T) {
	s := &Selector{GatewayPrefixes: []string{"+995"}, GatewayConfigured: false}
	_, err := s.SelectRoute(context.Background(), "t1", "+995551234567")
	if !errors.Is(err, ErrGatewayNotConfigured) {
		t.Fatalf("expected ErrGatewayNotConfigured, got %v", err)
	}
}

func TestSelectRouteRequiresDestination(t *testing.T) {
	s := &Selector{}
	if _, err := s.SelectRoute(context.Background(), "t1", ""); err == nil {
		t.Fatalf("expected error for empty destination")
	}
}

func TestSelectRouteOverrideWins(t *testing.T) {
	store := NewMemoryOverrideStore()
	store.Put(Override{TenantID: "t1", OverrideID: "o1", ForceRoute: RouteProvider, ExpiresAt: time.Now().Add(time.Hour)})

	s := &Selector{
		GatewayPrefixes:   []string{"+995"},
		GatewayConfigured: true,
		Overrides:         NewOverrideEngine(store, nil),
	}

	// Destination matches the gateway prefix, but the override pins provider.
	d, err := s.SelectRoute(context.Background(), "t1", "+995551234567")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Route != RouteProvider || d.Reason != "override" {
		t.Fatalf("expected overridden provider route, got %+v", d)
	}

	// Other tenants are unaffected.
	d, err = s.SelectRoute(context.Background(), "t2", "+995551234567")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Route != RouteGateway {
		t.Fatalf("expected gateway for t2, got %+v", d)
	}
}

func TestMatchesGatewayPrefix(t *testing.T) {
	prefixes := []string{"+995", "+374"}
	if !MatchesGatewayPrefix("+995123", prefixes) {
		t.Fatalf("expected match")
	}
	if MatchesGatewayPrefix("+1995123", prefixes) {
		t.Fatalf("prefix must anchor at the start")
	}
	if MatchesGatewayPrefix("", prefixes) {
		t.Fatalf("empty destination must not match")
	}
	if MatchesGatewayPrefix("+995123", nil) {
		t.Fatalf("empty prefix set must not match")
	}
}
