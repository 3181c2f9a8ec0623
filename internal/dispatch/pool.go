package dispatch

import (
	"context"

	"voice-dispatch/internal/numberpool"
)

// Pool is the resource-pool contract the dispatcher consumes.
// numberpool.Service satisfies it directly; the legacy in-process pool is
// adapted via SingleTenantPool.
type Pool interface {
	Acquire(ctx context.Context, tenantID string) (numberpool.PhoneNumber, bool, error)
	Record(ctx context.Context, tenantID, numberID, callID string) error
	RemainingCapacity(ctx context.Context, tenantID string) (int, error)
}

// SingleTenantPool adapts the legacy global MemoryPool to the Pool contract.
// The tenant argument is ignored; the pool predates tenancy.
type SingleTenantPool struct {
	Pool *numberpool.MemoryPool
}

func (p SingleTenantPool) Acquire(ctx context.Context, tenantID string) (numberpool.PhoneNumber, bool, error) {
	n, ok := p.Pool.Acquire()
	return n, ok, nil
}

func (p SingleTenantPool) Record(ctx context.Context, tenantID, numberID, callID string) error {
	p.Pool.Record(numberID, callID)
	return nil
}

func (p SingleTenantPool) RemainingCapacity(ctx context.Context, tenantID string) (int, error) {
	return p.Pool.RemainingCapacity(), nil
}
