package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGStore implements Store using Postgres. The conversion_events table has a
// primary key on event_id, so the duplicate check and the insert are a single
// statement.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed ledger store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

// Append inserts the event; a conflicting event_id is a silent no-op.
func (s *PGStore) Append(ctx context.Context, event ConversionEvent) (bool, error) {
	const query = `
INSERT INTO conversion_events (event_id, cv_id, source_hash, file_name, converted_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (event_id) DO NOTHING`

	res, err := s.DB.ExecContext(ctx, query,
		event.EventID,
		event.CVID,
		event.SourceHash,
		event.FileName,
		event.ConvertedAt,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// All returns every event, oldest first.
func (s *PGStore) All(ctx context.Context) ([]ConversionEvent, error) {
	const query = `
SELECT event_id, cv_id, source_hash, file_name, converted_at
FROM conversion_events
ORDER BY converted_at ASC, event_id ASC`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ConversionEvent
	for rows.Next() {
		var e ConversionEvent
		if err := rows.Scan(&e.EventID, &e.CVID, &e.SourceHash, &e.FileName, &e.ConvertedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastBySourceHash returns the newest ConvertedAt for the hash.
func (s *PGStore) LastBySourceHash(ctx context.Context, hash string) (time.Time, bool, error) {
	const query = `
SELECT converted_at
FROM conversion_events
WHERE source_hash = $1
ORDER BY converted_at DESC
LIMIT 1`

	var at time.Time
	err := s.DB.QueryRowContext(ctx, query, hash).Scan(&at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return at, true, nil
}

var _ Store = (*PGStore)(nil)
