package numberpool

import "time"

// PhoneNumber is a caller-ID resource usable for outbound dispatch.
//
// Invariants:
// - CallsToday never exceeds DailyLimit once quota enforcement runs.
// - LastResetDate is monotonically non-decreasing.
// - A disabled number is never selected.
//
// Multi-tenant invariant: TenantID is required on every persisted row. The
// legacy in-process pool predates tenancy and leaves it empty.
type PhoneNumber struct {
	ID       string `json:"id" db:"id"`
	TenantID string `json:"tenant_id,omitempty" db:"tenant_id"`

	// E164 is the caller-ID number itself, when known. The provider-assigned
	// ID is what dispatch requests reference.
	E164 string `json:"e164,omitempty" db:"e164"`

	DailyLimit int `json:"daily_limit" db:"daily_limit"`
	CallsToday int `json:"calls_today" db:"calls_today"`

	// LastResetDate is the UTC calendar day (YYYY-MM-DD) the daily counter
	// was last zeroed. Reset is lazy: it happens on first touch after the
	// day boundary, not on a timer.
	LastResetDate string `json:"last_reset_date" db:"last_reset_date"`

	Status NumberStatus `json:"status" db:"status"`

	// TotalCalls is the cumulative lifetime counter; it never resets.
	TotalCalls int `json:"total_calls" db:"total_calls"`

	LastCallID string `json:"last_call_id,omitempty" db:"last_call_id"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type NumberStatus string

const (
	NumberStatusActive   NumberStatus = "active"
	NumberStatusDisabled NumberStatus = "disabled"
)

// DateOf renders t as the UTC calendar day used for quota resets.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// resetIfStale zeroes the daily counter when the observed day has moved past
// the stored reset date. Reset only affects the comparison against the limit,
// so a number untouched across several boundaries stays logically correct.
func resetIfStale(n *PhoneNumber, today string) {
	if n.LastResetDate < today {
		n.CallsToday = 0
		n.LastResetDate = today
	}
}

// Usable reports whether the number can take one more call today.
func (n PhoneNumber) Usable() bool {
	return n.Status == NumberStatusActive && n.CallsToday < n.DailyLimit
}

// Remaining is today's unused capacity; never negative.
func (n PhoneNumber) Remaining() int {
	if !n.Usable() {
		return 0
	}
	return n.DailyLimit - n.CallsToday
}
