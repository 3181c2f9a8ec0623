package reporting

import (
	"context"
	"errors"
	"sync"

	"voice-dispatch/internal/calls"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development. It enforces tenant isolation on reads.

type MemoryRepo struct {
	mu sync.Mutex

	Records []calls.Record
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListRecords(ctx context.Context, tenantID string, rng TimeRange) ([]calls.Record, error) {
	if tenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]calls.Record, 0)
	for _, rec := range r.Records {
		if rec.TenantID != tenantID {
			continue
		}
		if !rec.CreatedAt.IsZero() {
			if rec.CreatedAt.Before(rng.From) || !rec.CreatedAt.Before(rng.To) {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
