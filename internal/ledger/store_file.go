package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileFormatVersion = 1

// fileEnvelope versions the on-disk layout so future readers can migrate
// old ledgers instead of guessing.
type fileEnvelope struct {
	Version int               `json:"version"`
	Events  []ConversionEvent `json:"events"`
}

// FileStore keeps the ledger in a single JSON file. Every append rewrites the
// file under a process-wide mutex; write volume is a handful of events per
// conversion, so the simplicity wins over an append-only log.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore constructs a FileStore at path, creating parent directories.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir ledger dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Append stores the event unless its id was seen before.
func (s *FileStore) Append(ctx context.Context, event ConversionEvent) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	env, err := s.load()
	if err != nil {
		return false, err
	}
	for _, e := range env.Events {
		if e.EventID == event.EventID {
			return false, nil
		}
	}
	env.Events = append(env.Events, event)
	if err := s.save(env); err != nil {
		return false, err
	}
	return true, nil
}

// All returns every event, oldest first.
func (s *FileStore) All(ctx context.Context) ([]ConversionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	env, err := s.load()
	if err != nil {
		return nil, err
	}
	return env.Events, nil
}

// LastBySourceHash returns the newest ConvertedAt for the hash.
func (s *FileStore) LastBySourceHash(ctx context.Context, hash string) (time.Time, bool, error) {
	events, err := s.All(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	var latest time.Time
	found := false
	for _, e := range events {
		if e.SourceHash == hash && e.ConvertedAt.After(latest) {
			latest = e.ConvertedAt
			found = true
		}
	}
	return latest, found, nil
}

func (s *FileStore) load() (fileEnvelope, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileEnvelope{Version: fileFormatVersion}, nil
		}
		return fileEnvelope{}, fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, s.path, err)
	}
	var env fileEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fileEnvelope{}, fmt.Errorf("%w: parse %s: %v", ErrStoreUnavailable, s.path, err)
	}
	if env.Version != fileFormatVersion {
		return fileEnvelope{}, fmt.Errorf("%w: unsupported ledger version %d in %s", ErrStoreUnavailable, env.Version, s.path)
	}
	return env, nil
}

func (s *FileStore) save(env fileEnvelope) error {
	env.Version = fileFormatVersion
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStoreUnavailable, tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("%w: rename %s: %v", ErrStoreUnavailable, s.path, err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
