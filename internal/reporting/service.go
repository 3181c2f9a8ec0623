package reporting

import (
	"context"
	"errors"

	"voice-dispatch/internal/calls"
	"voice-dispatch/internal/numberpool"
	"voice-dispatch/internal/outcome"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts call-record access for reporting.
//
// Implementations must enforce tenant filtering; call records are the
// immutable source once classified.
type Repository interface {
	ListRecords(ctx context.Context, tenantID string, r TimeRange) ([]calls.Record, error)
}

// PoolReader is the slice of the number pool reporting needs.
// numberpool.Service satisfies it.
type PoolReader interface {
	List(ctx context.Context, tenantID string) ([]numberpool.PhoneNumber, error)
	RemainingCapacity(ctx context.Context, tenantID string) (int, error)
}

type Service struct {
	repo Repository
	pool PoolReader
}

func NewService(repo Repository, pool PoolReader) *Service {
	return &Service{repo: repo, pool: pool}
}

func (s *Service) OutcomeSummary(ctx context.Context, req OutcomeSummaryRequest) (OutcomeSummary, error) {
	if req.TenantID == "" {
		return OutcomeSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return OutcomeSummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return OutcomeSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListRecords(ctx, req.TenantID, req.Range)
	if err != nil {
		return OutcomeSummary{}, err
	}

	out := OutcomeSummary{TenantID: req.TenantID, ByOutcome: map[outcome.Outcome]int{}}
	classified := 0
	for _, r := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += r.DurationSeconds
		if r.RecordingURL != "" {
			out.RecordedCalls++
		}
		if r.Outcome == "" {
			out.Pending++
			continue
		}
		classified++
		out.ByOutcome[r.Outcome]++
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	if classified > 0 {
		out.HumanRate = float64(out.ByOutcome[outcome.OutcomeHuman]) / float64(classified)
	}
	return out, nil
}

func (s *Service) NumberUsage(ctx context.Context, req NumberUsageRequest) (NumberUsageReport, error) {
	if req.TenantID == "" {
		return NumberUsageReport{}, ErrInvalidRequest
	}
	if s.pool == nil {
		return NumberUsageReport{}, errors.New("reporting: pool not configured")
	}

	numbers, err := s.pool.List(ctx, req.TenantID)
	if err != nil {
		return NumberUsageReport{}, err
	}
	remaining, err := s.pool.RemainingCapacity(ctx, req.TenantID)
	if err != nil {
		return NumberUsageReport{}, err
	}

	out := NumberUsageReport{TenantID: req.TenantID, RemainingCapacity: remaining}
	for _, n := range numbers {
		out.Numbers = append(out.Numbers, NumberUsage{
			NumberID:   n.ID,
			E164:       n.E164,
			CallsToday: n.CallsToday,
			DailyLimit: n.DailyLimit,
			Remaining:  n.Remaining(),
			TotalCalls: n.TotalCalls,
			Status:     string(n.Status),
		})
	}
	return out, nil
}
