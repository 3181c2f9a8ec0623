package calls

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGStore persists call records in Postgres.
//
// Schema assumption (table call_records): provider_call_id TEXT PRIMARY KEY,
// tenant_id/from_number/to_number/number_id TEXT, status TEXT, outcome TEXT,
// ended_reason/transcript/summary/recording_url TEXT, duration_seconds INT,
// created_at/updated_at TIMESTAMPTZ.
type PGStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db, clock: time.Now}
}

func (s *PGStore) UpsertCompleted(ctx context.Context, r Record) error {
	if r.ProviderCallID == "" {
		return ErrInvalidArgument
	}
	now := s.clock().UTC()
	const q = `
INSERT INTO call_records (
  provider_call_id, tenant_id, from_number, to_number, number_id,
  status, outcome, ended_reason, transcript, summary, recording_url,
  duration_seconds, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$13)
ON CONFLICT (provider_call_id)
DO UPDATE SET status = EXCLUDED.status,
              outcome = EXCLUDED.outcome,
              ended_reason = EXCLUDED.ended_reason,
              transcript = EXCLUDED.transcript,
              summary = EXCLUDED.summary,
              recording_url = EXCLUDED.recording_url,
              duration_seconds = EXCLUDED.duration_seconds,
              tenant_id = COALESCE(NULLIF(EXCLUDED.tenant_id, ''), call_records.tenant_id),
              number_id = COALESCE(NULLIF(EXCLUDED.number_id, ''), call_records.number_id),
              updated_at = EXCLUDED.updated_at
`
	_, err := s.db.ExecContext(ctx, q,
		r.ProviderCallID,
		r.TenantID,
		r.From,
		r.To,
		r.NumberID,
		r.Status,
		r.Outcome,
		r.EndedReason,
		r.Transcript,
		r.Summary,
		r.RecordingURL,
		r.DurationSeconds,
		now,
	)
	return err
}

func (s *PGStore) CreateDispatched(ctx context.Context, r Record) error {
	if r.ProviderCallID == "" {
		return ErrInvalidArgument
	}
	now := s.clock().UTC()
	const q = `
INSERT INTO call_records (
  provider_call_id, tenant_id, from_number, to_number, number_id, status, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$7)
ON CONFLICT (provider_call_id) DO NOTHING
`
	_, err := s.db.ExecContext(ctx, q,
		r.ProviderCallID,
		r.TenantID,
		r.From,
		r.To,
		r.NumberID,
		r.Status,
		now,
	)
	return err
}

func (s *PGStore) UpdateStatus(ctx context.Context, providerCallID string, status CallStatus) error {
	if providerCallID == "" {
		return ErrInvalidArgument
	}
	now := s.clock().UTC()
	// Completed records (outcome assigned) are immutable.
	const q = `
INSERT INTO call_records (provider_call_id, status, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (provider_call_id)
DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
WHERE call_records.outcome IS NULL OR call_records.outcome = ''
`
	_, err := s.db.ExecContext(ctx, q, providerCallID, status, now)
	return err
}

func (s *PGStore) Get(ctx context.Context, providerCallID string) (Record, error) {
	const q = `
SELECT provider_call_id, COALESCE(tenant_id,''), COALESCE(from_number,''), COALESCE(to_number,''),
       COALESCE(number_id,''), status, COALESCE(outcome,''), COALESCE(ended_reason,''),
       COALESCE(transcript,''), COALESCE(summary,''), COALESCE(recording_url,''),
       COALESCE(duration_seconds,0), created_at, updated_at
FROM call_records
WHERE provider_call_id = $1
`
	var r Record
	err := s.db.QueryRowContext(ctx, q, providerCallID).Scan(
		&r.ProviderCallID,
		&r.TenantID,
		&r.From,
		&r.To,
		&r.NumberID,
		&r.Status,
		&r.Outcome,
		&r.EndedReason,
		&r.Transcript,
		&r.Summary,
		&r.RecordingURL,
		&r.DurationSeconds,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return r, nil
}
