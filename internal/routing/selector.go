package routing

import (
	"context"
	"errors"
	"strings"
)

// ErrGatewayNotConfigured is a hard configuration error: a destination that
// matches the gateway prefix set must go out the regional trunk. Falling back
// to the provider path would violate regional compliance, so the dispatcher
// surfaces this to the caller instead.
var ErrGatewayNotConfigured = errors.New("routing: destination requires gateway but gateway is not configured")

// Selector decides the outbound path for a destination.
//
// Selection is a pure function of the destination string plus static config;
// it holds no quota or call state. Tenant route overrides (expiry-based,
// admin-installed) are evaluated ahead of prefix matching.
type Selector struct {
	// GatewayPrefixes is the country/area prefix set routed to the regional
	// gateway. Prefixes are compared against the normalized destination.
	GatewayPrefixes []string

	// GatewayConfigured reports whether gateway credentials are present.
	GatewayConfigured bool

	Overrides *OverrideEngine
}

// SelectRoute returns the path for one destination.
func (s *Selector) SelectRoute(ctx context.Context, tenantID, destination string) (Decision, error) {
	if destination == "" {
		return Decision{}, errors.New("routing: destination required")
	}

	if s.Overrides != nil {
		d, applied, err := s.Overrides.Decide(ctx, tenantID, destination)
		if err != nil {
			return Decision{}, err
		}
		if applied {
			if d.Route == RouteGateway && !s.GatewayConfigured {
				return Decision{}, ErrGatewayNotConfigured
			}
			return d, nil
		}
	}

	if MatchesGatewayPrefix(destination, s.GatewayPrefixes) {
		if !s.GatewayConfigured {
			return Decision{}, ErrGatewayNotConfigured
		}
		return Decision{TenantID: tenantID, Destination: destination, Route: RouteGateway, Reason: "prefix_match"}, nil
	}

	return Decision{TenantID: tenantID, Destination: destination, Route: RouteProvider, Reason: "default"}, nil
}

// MatchesGatewayPrefix reports whether the destination belongs to the regional
// gateway's prefix set. Matching is on the normalized number.
func MatchesGatewayPrefix(destination string, prefixes []string) bool {
	dest := NormalizeNumber(destination)
	if dest == "" {
		return false
	}
	for _, p := range prefixes {
		p = NormalizeNumber(p)
		if p != "" && strings.HasPrefix(dest, p) {
			return true
		}
	}
	return false
}

// NormalizeNumber strips formatting noise (spaces, dashes, parentheses),
// keeping digits and a single leading +.
func NormalizeNumber(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
