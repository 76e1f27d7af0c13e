package policy

import (
	"sync"
	"time"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// MaxHistory is how many records a tracker keeps
	MaxHistory = 100
	// CategoryWindow is the rolling window for category limits
	CategoryWindow = 30 * 24 * time.Hour
)

// SpendingTracker is a bounded in-memory log of attempted spends for one agent.
// It is safe for concurrent use. Nothing is persisted.
type SpendingTracker struct {
	mu       sync.RWMutex
	records  []domain.SpendingRecord
	now      func() time.Time
	location *time.Location
}

// TrackerOption customizes a SpendingTracker
type TrackerOption func(*SpendingTracker)

// WithClock overrides the tracker's notion of now
func WithClock(now func() time.Time) TrackerOption {
	return func(t *SpendingTracker) {
		t.now = now
	}
}

// WithLocation sets the time zone used for calendar-day comparisons
func WithLocation(loc *time.Location) TrackerOption {
	return func(t *SpendingTracker) {
		t.location = loc
	}
}

// NewSpendingTracker creates an empty tracker using local time
func NewSpendingTracker(opts ...TrackerOption) *SpendingTracker {
	t := &SpendingTracker{
		records:  make([]domain.SpendingRecord, 0, MaxHistory),
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddRecord appends a record, evicting the oldest once MaxHistory is exceeded
func (t *SpendingTracker) AddRecord(record domain.SpendingRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = append(t.records, record)
	if over := len(t.records) - MaxHistory; over > 0 {
		kept := make([]domain.SpendingRecord, MaxHistory, MaxHistory)
		copy(kept, t.records[over:])
		t.records = kept
	}
}

// History returns a copy of the records, oldest first
func (t *SpendingTracker) History() []domain.SpendingRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.SpendingRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of records held
func (t *SpendingTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}

// LatestSpend returns the newest intent timestamp among records that executed a
// non-zero amount. ok is false when no such record exists.
func (t *SpendingTracker) LatestSpend() (latest time.Time, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, r := range t.records {
		if r.ExecutedAmount.IsZero() {
			continue
		}
		if !ok || r.Intent.Timestamp.After(latest) {
			latest, ok = r.Intent.Timestamp, true
		}
	}
	return latest, ok
}

// TodaySpending sums executed amounts whose intent falls on today's calendar date
// in the tracker's location. This is a date comparison, not a rolling 24h window.
func (t *SpendingTracker) TodaySpending() decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	today := t.now().In(t.location)
	total := decimal.Zero
	for _, r := range t.records {
		if sameCalendarDay(r.Intent.Timestamp.In(t.location), today) {
			total = total.Add(r.ExecutedAmount)
		}
	}
	return total
}

// CategorySpending sums executed amounts for category within the last CategoryWindow
func (t *SpendingTracker) CategorySpending(category domain.SpendingCategory) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	total := decimal.Zero
	for _, r := range t.records {
		if r.Intent.Category != category {
			continue
		}
		if now.Sub(r.Intent.Timestamp) <= CategoryWindow {
			total = total.Add(r.ExecutedAmount)
		}
	}
	return total
}

// Clear drops all records
func (t *SpendingTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make([]domain.SpendingRecord, 0, MaxHistory)
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
