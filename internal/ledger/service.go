package ledger

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Service exposes the ledger operations on top of a Store. All reads are
// derived from the event list; nothing is cached.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService constructs a Service backed by store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Record appends one billable conversion event. A repeated eventID is a
// silent no-op returning false, which makes retried deliveries and repeated
// export clicks free. An empty eventID gets a random UUID, so an anonymous
// event is always billed.
func (s *Service) Record(ctx context.Context, cvID, sourceHash, fileName, eventID string) (bool, error) {
	if cvID == "" {
		return false, errors.New("cvID is required")
	}
	if eventID == "" {
		eventID = uuid.NewString()
	}
	return s.store.Append(ctx, ConversionEvent{
		EventID:     eventID,
		CVID:        cvID,
		SourceHash:  sourceHash,
		FileName:    fileName,
		ConvertedAt: s.now().UTC(),
	})
}

// TotalCount returns the all-time number of billed conversions.
func (s *Service) TotalCount(ctx context.Context) (int, error) {
	events, err := s.store.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// CurrentMonthCount returns the number of conversions billed in the current
// calendar month (UTC).
func (s *Service) CurrentMonthCount(ctx context.Context) (int, error) {
	events, err := s.store.All(ctx)
	if err != nil {
		return 0, err
	}
	now := s.now().UTC()
	count := 0
	for _, e := range events {
		at := e.ConvertedAt.UTC()
		if at.Year() == now.Year() && at.Month() == now.Month() {
			count++
		}
	}
	return count, nil
}

// MonthlySummary groups events per calendar month, newest month first.
func (s *Service) MonthlySummary(ctx context.Context) ([]PeriodSummary, error) {
	events, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, e := range events {
		counts[e.ConvertedAt.UTC().Format("2006-01")]++
	}

	out := make([]PeriodSummary, 0, len(counts))
	for ym, n := range counts {
		out = append(out, PeriodSummary{YearMonth: ym, Count: n, Status: PeriodStatusOpen})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].YearMonth > out[j].YearMonth
	})
	return out, nil
}

// IsDuplicate reports whether a source with the given hash was converted
// before, and when it last was. The hash only informs the caller; it never
// blocks a new conversion.
func (s *Service) IsDuplicate(ctx context.Context, hash string) (bool, time.Time, error) {
	if hash == "" {
		return false, time.Time{}, errors.New("hash is required")
	}
	at, ok, err := s.store.LastBySourceHash(ctx, hash)
	if err != nil {
		return false, time.Time{}, err
	}
	return ok, at, nil
}
