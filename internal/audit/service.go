package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// Audit is internal-only: do not expose these records to tenant users by
// default. Callers should treat audit logging as best-effort.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.TenantID == "" {
		return ErrInvalidEvent
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogAdminAction records a privileged action (quota adjustments, number
// provisioning, override installation).
func (s *Service) LogAdminAction(ctx context.Context, tenantID, actorUserID, actorRole, ip, message, numberID, metadata string) error {
	return s.Append(ctx, Event{
		TenantID:    tenantID,
		Type:        EventTypeAdminAction,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		NumberID:    numberID,
		Message:     message,
		Metadata:    metadata,
	})
}

// LogQuotaAdjust records a daily-limit change on a pool number.
func (s *Service) LogQuotaAdjust(ctx context.Context, tenantID, actorUserID, actorRole, ip, numberID string, newLimit int, metadata string) error {
	return s.Append(ctx, Event{
		TenantID:    tenantID,
		Type:        EventTypeQuotaAdjust,
		ActorUserID: actorUserID,
		ActorRole:   actorRole,
		IPAddress:   ip,
		NumberID:    numberID,
		Message:     "daily limit adjusted",
		Metadata:    metadata,
	})
}
