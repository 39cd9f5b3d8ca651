package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the ledger in process memory. Used in tests and when no
// durable backend is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	events []ConversionEvent
	seen   map[string]struct{}
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// Append stores the event unless its id was seen before.
func (s *MemoryStore) Append(ctx context.Context, event ConversionEvent) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[event.EventID]; dup {
		return false, nil
	}
	s.seen[event.EventID] = struct{}{}
	s.events = append(s.events, event)
	return true, nil
}

// All returns a copy of every event, oldest first.
func (s *MemoryStore) All(ctx context.Context) ([]ConversionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ConversionEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// LastBySourceHash returns the newest ConvertedAt for the hash.
func (s *MemoryStore) LastBySourceHash(ctx context.Context, hash string) (time.Time, bool, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest time.Time
	found := false
	for _, e := range s.events {
		if e.SourceHash == hash && e.ConvertedAt.After(latest) {
			latest = e.ConvertedAt
			found = true
		}
	}
	return latest, found, nil
}

var _ Store = (*MemoryStore)(nil)
