package routing

// Route names an outbound call path.
//
// RouteGateway is the regional telephony gateway: one fixed originating
// extension, no number rotation. RouteProvider is the rotation-backed
// voice-call provider path; it requires a number from the pool.
type Route string

const (
	RouteGateway  Route = "gateway"
	RouteProvider Route = "provider"
)

// Decision is the routing output consumed by the dispatcher.
//
// It carries only what the dispatch boundary needs; no provider-specific
// fields belong here. Reason is for internal logs/metrics.
type Decision struct {
	TenantID    string `json:"tenant_id,omitempty"`
	Destination string `json:"destination"`

	Route  Route  `json:"route"`
	Reason string `json:"reason,omitempty"`
}
