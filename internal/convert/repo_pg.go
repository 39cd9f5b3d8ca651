package convert

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new conversion.
func (r *PGRepo) Create(ctx context.Context, conversion Conversion) error {
	const query = `
INSERT INTO conversions (
	id, file_name, mime_type, size_bytes, storage_key, template, position,
	status, status_message, source_hash, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.DB.ExecContext(ctx, query,
		conversion.ID,
		conversion.FileName,
		conversion.MimeType,
		conversion.SizeBytes,
		conversion.StorageKey,
		conversion.Template,
		conversion.Position,
		conversion.Status,
		conversion.StatusMessage,
		conversion.SourceHash,
		conversion.CreatedAt,
	)
	return err
}

// GetByID returns a conversion by ID.
func (r *PGRepo) GetByID(ctx context.Context, conversionID string) (Conversion, error) {
	const query = `
SELECT id, file_name, mime_type, size_bytes, storage_key, template, position,
       status, status_message, source_hash, error_message, result, created_at, completed_at
FROM conversions
WHERE id = $1
LIMIT 1`

	row := r.DB.QueryRowContext(ctx, query, conversionID)
	conversion, err := scanConversion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversion{}, ErrNotFound
		}
		return Conversion{}, err
	}
	return conversion, nil
}

// List returns conversions in upload order with limit/offset.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, file_name, mime_type, size_bytes, storage_key, template, position,
       status, status_message, source_hash, error_message, result, created_at, completed_at
FROM conversions
ORDER BY created_at ASC, position ASC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Conversion
	for rows.Next() {
		conversion, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, conversion)
	}
	return out, rows.Err()
}

// UpdateStatus updates status, message, result, and timestamps for a conversion.
func (r *PGRepo) UpdateStatus(ctx context.Context, conversionID, status, statusMessage string, result json.RawMessage, sourceHash string, errorMessage *string, completedAt *time.Time) error {
	const query = `
UPDATE conversions
SET status = $1,
    status_message = COALESCE(NULLIF($2::text, ''), status_message),
    result = COALESCE($3::jsonb, result),
    source_hash = COALESCE(NULLIF($4::text, ''), source_hash),
    error_message = COALESCE($5::text, error_message),
    completed_at = CASE
        WHEN $6::timestamptz IS NOT NULL THEN $6::timestamptz
        WHEN ($1 = 'completed' OR $1 = 'failed') AND completed_at IS NULL THEN now()
        ELSE completed_at
    END
WHERE id = $7`

	var payload any
	if result != nil {
		payload = []byte(result)
	}

	res, err := r.DB.ExecContext(ctx, query, status, statusMessage, payload, sourceHash, errorMessage, completedAt, conversionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversion(row rowScanner) (Conversion, error) {
	var c Conversion
	var statusMessage sql.NullString
	var sourceHash sql.NullString
	var errorMessage sql.NullString
	var result sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.FileName,
		&c.MimeType,
		&c.SizeBytes,
		&c.StorageKey,
		&c.Template,
		&c.Position,
		&c.Status,
		&statusMessage,
		&sourceHash,
		&errorMessage,
		&result,
		&c.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return Conversion{}, err
	}
	if statusMessage.Valid {
		c.StatusMessage = statusMessage.String
	}
	if sourceHash.Valid {
		c.SourceHash = sourceHash.String
	}
	if errorMessage.Valid {
		c.ErrorMessage = &errorMessage.String
	}
	if result.Valid {
		c.Result = json.RawMessage(result.String)
	}
	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	return c, nil
}

var _ Repo = (*PGRepo)(nil)
