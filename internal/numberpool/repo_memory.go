package numberpool

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and local runs.
// It honors the same semantics as PGStore, including the conditional
// increment in RecordUsage (the mutex stands in for the storage atomicity).
type MemoryStore struct {
	mu      sync.Mutex
	numbers map[string][]PhoneNumber // tenant_id -> numbers, insertion order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{numbers: make(map[string][]PhoneNumber)}
}

func (s *MemoryStore) ResetStale(ctx context.Context, tenantID, today string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.numbers[tenantID]
	for i := range list {
		resetIfStale(&list[i], today)
	}
	return nil
}

func (s *MemoryStore) SelectAvailable(ctx context.Context, tenantID string) (PhoneNumber, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var best *PhoneNumber
	list := s.numbers[tenantID]
	for i := range list {
		n := &list[i]
		if !n.Usable() {
			continue
		}
		if best == nil || n.CallsToday < best.CallsToday {
			best = n
		}
	}
	if best == nil {
		return PhoneNumber{}, false, nil
	}
	return *best, true, nil
}

func (s *MemoryStore) RecordUsage(ctx context.Context, tenantID, numberID, callID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.numbers[tenantID]
	for i := range list {
		n := &list[i]
		if n.ID != numberID {
			continue
		}
		if !n.Usable() {
			return false, nil
		}
		n.CallsToday++
		n.TotalCalls++
		n.LastCallID = callID
		return true, nil
	}
	return false, ErrNotFound
}

func (s *MemoryStore) RemainingCapacity(ctx context.Context, tenantID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.numbers[tenantID] {
		total += n.Remaining()
	}
	return total, nil
}

func (s *MemoryStore) Insert(ctx context.Context, n PhoneNumber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.numbers[n.TenantID] {
		if existing.ID == n.ID {
			return ErrAlreadyExists
		}
	}
	s.numbers[n.TenantID] = append(s.numbers[n.TenantID], n)
	return nil
}

func (s *MemoryStore) ListByTenant(ctx context.Context, tenantID string) ([]PhoneNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PhoneNumber, len(s.numbers[tenantID]))
	copy(out, s.numbers[tenantID])
	return out, nil
}

func (s *MemoryStore) UpdateLimit(ctx context.Context, tenantID, numberID string, dailyLimit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.numbers[tenantID]
	for i := range list {
		if list[i].ID == numberID {
			list[i].DailyLimit = dailyLimit
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) SetStatus(ctx context.Context, tenantID, numberID string, status NumberStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.numbers[tenantID]
	for i := range list {
		if list[i].ID == numberID {
			list[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}
