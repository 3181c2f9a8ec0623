package numberpool

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voice-dispatch/pkg/utils"
)

// PGStore is the Postgres-backed Store.
//
// Schema assumption (table phone_numbers):
//   id TEXT, tenant_id TEXT, e164 TEXT, daily_limit INT, calls_today INT,
//   last_reset_date DATE, status TEXT, total_calls INT, last_call_id TEXT,
//   created_at/updated_at TIMESTAMPTZ, PRIMARY KEY (tenant_id, id)
//
// The quota invariant depends on one statement only: the conditional UPDATE in
// RecordUsage. Everything else tolerates races.
type PGStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db, clock: time.Now}
}

func (s *PGStore) ResetStale(ctx context.Context, tenantID, today string) error {
	const q = `
UPDATE phone_numbers
SET calls_today = 0, last_reset_date = $2, updated_at = $3
WHERE tenant_id = $1 AND last_reset_date < $2
`
	_, err := s.db.ExecContext(ctx, q, tenantID, today, s.clock().UTC())
	return err
}

func (s *PGStore) SelectAvailable(ctx context.Context, tenantID string) (PhoneNumber, bool, error) {
	const q = `
SELECT id, tenant_id, e164, daily_limit, calls_today, to_char(last_reset_date, 'YYYY-MM-DD'),
       status, total_calls, COALESCE(last_call_id, ''), created_at, updated_at
FROM phone_numbers
WHERE tenant_id = $1 AND status = 'active' AND calls_today < daily_limit
ORDER BY calls_today ASC
LIMIT 1
`
	n, err := scanNumber(s.db.QueryRowContext(ctx, q, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PhoneNumber{}, false, nil
		}
		return PhoneNumber{}, false, err
	}
	return n, true, nil
}

func (s *PGStore) RecordUsage(ctx context.Context, tenantID, numberID, callID string) (bool, error) {
	// Single conditional update: increment-if-under-limit. This is the one
	// place correctness depends on something stronger than process memory.
	const q = `
UPDATE phone_numbers
SET calls_today = calls_today + 1,
    total_calls = total_calls + 1,
    last_call_id = $3,
    updated_at = $4
WHERE tenant_id = $1 AND id = $2 AND status = 'active' AND calls_today < daily_limit
`
	res, err := s.db.ExecContext(ctx, q, tenantID, numberID, callID, s.clock().UTC())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (s *PGStore) RemainingCapacity(ctx context.Context, tenantID string) (int, error) {
	const q = `
SELECT COALESCE(SUM(daily_limit - calls_today), 0)
FROM phone_numbers
WHERE tenant_id = $1 AND status = 'active' AND calls_today < daily_limit
`
	var total int
	if err := s.db.QueryRowContext(ctx, q, tenantID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *PGStore) Insert(ctx context.Context, n PhoneNumber) error {
	// Check-then-insert inside one transaction: a duplicate (tenant, id) gets
	// a clean sentinel instead of a driver constraint error.
	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var exists bool
		const check = `
SELECT EXISTS (
  SELECT 1 FROM phone_numbers WHERE tenant_id = $1 AND id = $2 FOR UPDATE
)
`
		if err := tx.QueryRowContext(ctx, check, n.TenantID, n.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrAlreadyExists
		}

		const ins = `
INSERT INTO phone_numbers (
  id, tenant_id, e164, daily_limit, calls_today, last_reset_date,
  status, total_calls, last_call_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
		_, err := tx.ExecContext(ctx, ins,
			n.ID,
			n.TenantID,
			n.E164,
			n.DailyLimit,
			n.CallsToday,
			n.LastResetDate,
			n.Status,
			n.TotalCalls,
			nullable(n.LastCallID),
			n.CreatedAt,
			n.UpdatedAt,
		)
		return err
	})
}

func (s *PGStore) ListByTenant(ctx context.Context, tenantID string) ([]PhoneNumber, error) {
	const q = `
SELECT id, tenant_id, e164, daily_limit, calls_today, to_char(last_reset_date, 'YYYY-MM-DD'),
       status, total_calls, COALESCE(last_call_id, ''), created_at, updated_at
FROM phone_numbers
WHERE tenant_id = $1
ORDER BY id
`
	rows, err := s.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PhoneNumber
	for rows.Next() {
		n, err := scanNumber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PGStore) UpdateLimit(ctx context.Context, tenantID, numberID string, dailyLimit int) error {
	const q = `
UPDATE phone_numbers SET daily_limit = $3, updated_at = $4
WHERE tenant_id = $1 AND id = $2
`
	return execExpectingRow(ctx, s.db, q, tenantID, numberID, dailyLimit, s.clock().UTC())
}

func (s *PGStore) SetStatus(ctx context.Context, tenantID, numberID string, status NumberStatus) error {
	const q = `
UPDATE phone_numbers SET status = $3, updated_at = $4
WHERE tenant_id = $1 AND id = $2
`
	return execExpectingRow(ctx, s.db, q, tenantID, numberID, status, s.clock().UTC())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNumber(r rowScanner) (PhoneNumber, error) {
	var n PhoneNumber
	err := r.Scan(
		&n.ID,
		&n.TenantID,
		&n.E164,
		&n.DailyLimit,
		&n.CallsToday,
		&n.LastResetDate,
		&n.Status,
		&n.TotalCalls,
		&n.LastCallID,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	return n, err
}

func execExpectingRow(ctx context.Context, db *sql.DB, q string, args ...any) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
