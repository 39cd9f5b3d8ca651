package ledger

import (
	"context"
	"time"
)

// Store persists conversion events. Append must be atomic with its duplicate
// check: two concurrent appends with the same event id result in exactly one
// stored event, and exactly one of the calls reports inserted=true.
type Store interface {
	// Append stores the event unless its EventID is already present.
	// A duplicate is a silent no-op reporting inserted=false.
	Append(ctx context.Context, event ConversionEvent) (inserted bool, err error)

	// All returns every event, oldest first.
	All(ctx context.Context) ([]ConversionEvent, error)

	// LastBySourceHash returns the most recent ConvertedAt among events with
	// the given source hash, or ok=false when none exist.
	LastBySourceHash(ctx context.Context, hash string) (at time.Time, ok bool, err error)
}
