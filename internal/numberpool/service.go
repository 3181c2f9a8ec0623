package numberpool

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the multi-tenant pool over a shared Store.
//
// Acquire/Record are intentionally split: Acquire is advisory (pick the least
// used number), Record is the authoritative quota consumption. Dispatch calls
// Record before the provider confirms, so a burst of concurrent requests
// cannot all pass the quota check against an unincremented counter.
type Service struct {
	store Store
	// clock is injectable for deterministic day-boundary tests.
	clock func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, clock: time.Now}
}

// Acquire lazily resets stale counters for the tenant, then returns the
// active number with the lowest today-usage still under quota.
// ok=false means the tenant's pool is exhausted for the day.
func (s *Service) Acquire(ctx context.Context, tenantID string) (PhoneNumber, bool, error) {
	if tenantID == "" {
		return PhoneNumber{}, false, ErrInvalidArgument
	}

	today := DateOf(s.clock())
	if err := s.store.ResetStale(ctx, tenantID, today); err != nil {
		return PhoneNumber{}, false, err
	}
	return s.store.SelectAvailable(ctx, tenantID)
}

// Record consumes one quota slot on the number. Returns ErrQuotaExceeded when
// the conditional increment found the number already at its limit.
func (s *Service) Record(ctx context.Context, tenantID, numberID, callID string) error {
	if tenantID == "" || numberID == "" {
		return ErrInvalidArgument
	}
	ok, err := s.store.RecordUsage(ctx, tenantID, numberID, callID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrQuotaExceeded
	}
	return nil
}

// RemainingCapacity reports today's unused capacity across the tenant's pool,
// after lazily resetting stale counters.
func (s *Service) RemainingCapacity(ctx context.Context, tenantID string) (int, error) {
	if tenantID == "" {
		return 0, ErrInvalidArgument
	}
	if err := s.store.ResetStale(ctx, tenantID, DateOf(s.clock())); err != nil {
		return 0, err
	}
	return s.store.RemainingCapacity(ctx, tenantID)
}

// ProvisionRequest describes a number being added to a tenant's pool.
type ProvisionRequest struct {
	NumberID   string `json:"number_id"`
	E164       string `json:"e164,omitempty"`
	DailyLimit int    `json:"daily_limit"`
}

// Provision adds a number to the tenant's pool with a fresh daily counter.
func (s *Service) Provision(ctx context.Context, tenantID string, req ProvisionRequest) (PhoneNumber, error) {
	if tenantID == "" || req.DailyLimit <= 0 {
		return PhoneNumber{}, ErrInvalidArgument
	}
	now := s.clock().UTC()
	n := PhoneNumber{
		ID:            req.NumberID,
		TenantID:      tenantID,
		E164:          req.E164,
		DailyLimit:    req.DailyLimit,
		LastResetDate: DateOf(now),
		Status:        NumberStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if err := s.store.Insert(ctx, n); err != nil {
		return PhoneNumber{}, err
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, tenantID string) ([]PhoneNumber, error) {
	if tenantID == "" {
		return nil, ErrInvalidArgument
	}
	if err := s.store.ResetStale(ctx, tenantID, DateOf(s.clock())); err != nil {
		return nil, err
	}
	return s.store.ListByTenant(ctx, tenantID)
}

func (s *Service) SetLimit(ctx context.Context, tenantID, numberID string, limit int) error {
	if tenantID == "" || numberID == "" || limit <= 0 {
		return ErrInvalidArgument
	}
	return s.store.UpdateLimit(ctx, tenantID, numberID, limit)
}

func (s *Service) SetStatus(ctx context.Context, tenantID, numberID string, status NumberStatus) error {
	if tenantID == "" || numberID == "" {
		return ErrInvalidArgument
	}
	if status != NumberStatusActive && status != NumberStatusDisabled {
		return ErrInvalidArgument
	}
	return s.store.SetStatus(ctx, tenantID, numberID, status)
}
