package routing

import (
	"context"
	"sync"
	"time"
)

// MemoryOverrideStore is an in-process OverrideStore. One override per tenant;
// installing a new one replaces the previous.
type MemoryOverrideStore struct {
	mu        sync.Mutex
	overrides map[string]Override
}

func NewMemoryOverrideStore() *MemoryOverrideStore {
	return &MemoryOverrideStore{overrides: make(map[string]Override)}
}

func (s *MemoryOverrideStore) Put(o Override) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[o.TenantID] = o
}

func (s *MemoryOverrideStore) Delete(tenantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, tenantID)
}

func (s *MemoryOverrideStore) GetActiveOverride(ctx context.Context, tenantID string, now time.Time) (Override, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overrides[tenantID]
	if !ok {
		return Override{}, false, nil
	}
	if !o.ExpiresAt.After(now) {
		delete(s.overrides, tenantID)
		return Override{}, false, nil
	}
	return o, true, nil
}
