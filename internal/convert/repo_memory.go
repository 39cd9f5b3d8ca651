package convert

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores conversions in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Conversion
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Conversion)}
}

// Create stores the conversion.
func (r *MemoryRepo) Create(ctx context.Context, conversion Conversion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[conversion.ID] = conversion
	return nil
}

// GetByID returns a conversion by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, conversionID string) (Conversion, error) {
	if err := ctx.Err(); err != nil {
		return Conversion{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	conversion, ok := r.byID[conversionID]
	if !ok {
		return Conversion{}, ErrNotFound
	}
	return conversion, nil
}

// List returns conversions in upload order with limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Conversion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	all := make([]Conversion, 0, len(r.byID))
	for _, c := range r.byID {
		all = append(all, c)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].Position < all[j].Position
	})

	if offset >= len(all) {
		return []Conversion{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

// UpdateStatus updates status, message, result, and timestamps for a conversion.
func (r *MemoryRepo) UpdateStatus(ctx context.Context, conversionID, status, statusMessage string, result json.RawMessage, sourceHash string, errorMessage *string, completedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	conversion, ok := r.byID[conversionID]
	if !ok {
		return ErrNotFound
	}
	conversion.Status = status
	if statusMessage != "" {
		conversion.StatusMessage = statusMessage
	}
	if result != nil {
		conversion.Result = result
	}
	if sourceHash != "" {
		conversion.SourceHash = sourceHash
	}
	if errorMessage != nil {
		conversion.ErrorMessage = errorMessage
	}
	if completedAt != nil {
		conversion.CompletedAt = completedAt
	} else if (status == StatusCompleted || status == StatusFailed) && conversion.CompletedAt == nil {
		now := time.Now().UTC()
		conversion.CompletedAt = &now
	}
	r.byID[conversionID] = conversion
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
