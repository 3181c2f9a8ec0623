package numberpool

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("numberpool: not found")
	ErrInvalidArgument = errors.New("numberpool: invalid argument")
	ErrAlreadyExists   = errors.New("numberpool: number already exists")

	// ErrQuotaExceeded is returned by Record when the conditional increment
	// matched no row: the number is already at its daily limit.
	ErrQuotaExceeded = errors.New("numberpool: daily quota exceeded")
)

// Store is the persistence contract for the multi-tenant pool.
//
// RecordUsage MUST be an atomic increment-if-under-limit: two concurrent
// dispatches may both pass SelectAvailable, but only as many RecordUsage calls
// as the remaining quota may succeed. A store that cannot provide this
// atomically is an accepted degradation (quota breach by one call's margin),
// not a silent failure; it must still report ok=false when over limit.
type Store interface {
	// ResetStale zeroes the daily counter of every tenant number whose
	// stored reset date is older than today.
	ResetStale(ctx context.Context, tenantID, today string) error

	// SelectAvailable returns the active number with the lowest today-usage
	// that is still under quota; ok=false when none qualify.
	SelectAvailable(ctx context.Context, tenantID string) (PhoneNumber, bool, error)

	// RecordUsage increments the daily and lifetime counters for one call.
	// ok=false means the number was already at its limit.
	RecordUsage(ctx context.Context, tenantID, numberID, callID string) (bool, error)

	// RemainingCapacity sums (limit - used) across the tenant's active numbers.
	RemainingCapacity(ctx context.Context, tenantID string) (int, error)

	// Insert adds a number; ErrAlreadyExists when (tenant, id) is taken.
	Insert(ctx context.Context, n PhoneNumber) error
	ListByTenant(ctx context.Context, tenantID string) ([]PhoneNumber, error)

	// UpdateLimit adjusts a number's daily quota (admin operation).
	UpdateLimit(ctx context.Context, tenantID, numberID string, dailyLimit int) error

	// SetStatus enables or disables a number.
	SetStatus(ctx context.Context, tenantID, numberID string, status NumberStatus) error
}
