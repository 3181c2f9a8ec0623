package calls

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) UpsertCompleted(ctx context.Context, r Record) error {
	if r.ProviderCallID == "" {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[r.ProviderCallID]
	if ok {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = existing.CreatedAt
		}
		if r.TenantID == "" {
			r.TenantID = existing.TenantID
		}
		if r.NumberID == "" {
			r.NumberID = existing.NumberID
		}
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}
	s.records[r.ProviderCallID] = r
	return nil
}

func (s *MemoryStore) CreateDispatched(ctx context.Context, r Record) error {
	if r.ProviderCallID == "" {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[r.ProviderCallID]; ok {
		return nil
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = r.CreatedAt
	}
	s.records[r.ProviderCallID] = r
	return nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, providerCallID string, status CallStatus) error {
	if providerCallID == "" {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[providerCallID]
	if !ok {
		r = Record{ProviderCallID: providerCallID, CreatedAt: time.Now().UTC()}
	}
	// Completed records are immutable; late status updates are ignored.
	if r.Outcome != "" {
		return nil
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	s.records[providerCallID] = r
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, providerCallID string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[providerCallID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return r, nil
}
