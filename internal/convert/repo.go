package convert

import (
	"context"
	"encoding/json"
	"time"
)

// Repo defines persistence operations for conversions.
type Repo interface {
	Create(ctx context.Context, conversion Conversion) error
	GetByID(ctx context.Context, conversionID string) (Conversion, error)
	// List returns conversions in upload order (Position ascending).
	List(ctx context.Context, limit, offset int) ([]Conversion, error)
	UpdateStatus(ctx context.Context, conversionID, status, statusMessage string, result json.RawMessage, sourceHash string, errorMessage *string, completedAt *time.Time) error
}
