package reporting

import (
	"time"

	"voice-dispatch/internal/outcome"
)

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// OutcomeSummaryRequest requests aggregated outcome metrics.
// Tenant isolation: TenantID is required.

type OutcomeSummaryRequest struct {
	TenantID string    `json:"tenant_id"`
	Range    TimeRange `json:"range"`
}

type OutcomeSummary struct {
	TenantID string `json:"tenant_id"`

	TotalCalls int `json:"total_calls"`

	// ByOutcome counts completed calls per classified outcome.
	ByOutcome map[outcome.Outcome]int `json:"by_outcome"`

	// Pending counts calls still without a final classification.
	Pending int `json:"pending"`

	// HumanRate is human outcomes over classified calls.
	HumanRate float64 `json:"human_rate"`

	TotalDurationSeconds   int `json:"total_duration_seconds"`
	AverageDurationSeconds int `json:"average_duration_seconds"`

	RecordedCalls int `json:"recorded_calls"`
}

// NumberUsageRequest requests per-number dispatch usage for a tenant's pool.

type NumberUsageRequest struct {
	TenantID string `json:"tenant_id"`
}

type NumberUsage struct {
	NumberID   string `json:"number_id"`
	E164       string `json:"e164,omitempty"`
	CallsToday int    `json:"calls_today"`
	DailyLimit int    `json:"daily_limit"`
	Remaining  int    `json:"remaining"`
	TotalCalls int    `json:"total_calls"`
	Status     string `json:"status"`
}

type NumberUsageReport struct {
	TenantID          string        `json:"tenant_id"`
	Numbers           []NumberUsage `json:"numbers"`
	RemainingCapacity int           `json:"remaining_capacity"`
}
