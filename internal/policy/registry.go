package policy

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTrackerTTL is how long an untouched tracker is kept
	DefaultTrackerTTL = 24 * time.Hour
	// RegistryCleanupInterval is how often idle trackers are reaped
	RegistryCleanupInterval = 10 * time.Minute
)

type trackerKey struct {
	ownerID string
	agentID uuid.UUID
}

type trackerEntry struct {
	tracker  *SpendingTracker
	lastSeen time.Time
}

// TrackerRegistry hands out one SpendingTracker per agent of each owner
type TrackerRegistry struct {
	trackers map[trackerKey]*trackerEntry
	mu       sync.Mutex
	ttl      time.Duration
	opts     []TrackerOption
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewTrackerRegistry creates a registry and starts its cleanup loop.
// A ttl <= 0 keeps trackers forever.
func NewTrackerRegistry(ttl time.Duration, opts ...TrackerOption) *TrackerRegistry {
	r := &TrackerRegistry{
		trackers: make(map[trackerKey]*trackerEntry),
		ttl:      ttl,
		opts:     opts,
		stopCh:   make(chan struct{}),
	}
	if ttl > 0 {
		go r.cleanup()
	}
	return r
}

// Get returns the tracker for an agent, creating it on first use
func (r *TrackerRegistry) Get(ownerID string, agentID uuid.UUID) *SpendingTracker {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := trackerKey{ownerID: ownerID, agentID: agentID}
	entry, ok := r.trackers[key]
	if !ok {
		entry = &trackerEntry{tracker: NewSpendingTracker(r.opts...)}
		r.trackers[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.tracker
}

// Len returns the number of live trackers
func (r *TrackerRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

// Evict removes trackers idle for longer than the ttl and returns how many went.
// Trackers holding spend inside CategoryWindow of now are never evicted.
func (r *TrackerRegistry) Evict(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, entry := range r.trackers {
		if now.Sub(entry.lastSeen) <= r.ttl {
			continue
		}
		if latest, ok := entry.tracker.LatestSpend(); ok && now.Sub(latest) <= CategoryWindow {
			continue
		}
		delete(r.trackers, key)
		evicted++
		log.Debug().
			Str("owner_id", key.ownerID).
			Str("agent_id", key.agentID.String()).
			Msg("Evicted idle spending tracker")
	}
	return evicted
}

func (r *TrackerRegistry) cleanup() {
	ticker := time.NewTicker(RegistryCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Evict(time.Now())
		case <-r.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (r *TrackerRegistry) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}
