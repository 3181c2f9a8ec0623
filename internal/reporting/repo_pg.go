package reporting

import (
	"context"
	"database/sql"
	"errors"

	"voice-dispatch/internal/calls"
)

// PGRepo reads call records for reporting. Same table as calls.PGStore.
type PGRepo struct {
	db *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ListRecords(ctx context.Context, tenantID string, rng TimeRange) ([]calls.Record, error) {
	if tenantID == "" {
		return nil, errors.New("tenant_id required")
	}
	const q = `
SELECT provider_call_id, COALESCE(tenant_id,''), COALESCE(from_number,''), COALESCE(to_number,''),
       COALESCE(number_id,''), status, COALESCE(outcome,''), COALESCE(ended_reason,''),
       COALESCE(transcript,''), COALESCE(summary,''), COALESCE(recording_url,''),
       COALESCE(duration_seconds,0), created_at, updated_at
FROM call_records
WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, tenantID, rng.From, rng.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calls.Record
	for rows.Next() {
		var rec calls.Record
		if err := rows.Scan(
			&rec.ProviderCallID,
			&rec.TenantID,
			&rec.From,
			&rec.To,
			&rec.NumberID,
			&rec.Status,
			&rec.Outcome,
			&rec.EndedReason,
			&rec.Transcript,
			&rec.Summary,
			&rec.RecordingURL,
			&rec.DurationSeconds,
			&rec.CreatedAt,
			&rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
