package calls

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("calls: not found")
	ErrInvalidArgument = errors.New("calls: invalid argument")
)

// Store is the persistence collaborator for completed-call records.
//
// UpsertCompleted must be idempotent per provider call ID: webhook deliveries
// can repeat, and re-writing the same completed record is safe.
type Store interface {
	// UpsertCompleted writes the end-of-call record, including the classified
	// outcome, keyed by provider call ID.
	UpsertCompleted(ctx context.Context, r Record) error

	// CreateDispatched records a freshly-placed call. It never overwrites an
	// existing record (webhooks can outrun the dispatcher's write).
	CreateDispatched(ctx context.Context, r Record) error

	// UpdateStatus records an in-flight status transition. Missing records
	// are created so out-of-order deliveries do not drop data.
	UpdateStatus(ctx context.Context, providerCallID string, status CallStatus) error

	Get(ctx context.Context, providerCallID string) (Record, error)
}
