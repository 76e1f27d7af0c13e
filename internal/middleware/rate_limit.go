package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// CleanupInterval is the interval for cleaning up stale limiters
	CleanupInterval = 5 * time.Minute
	// LimiterTTL is the time-to-live for inactive limiters
	LimiterTTL = 10 * time.Minute
)

// RateLimiter manages rate limiting per agent of each owner
type RateLimiter struct {
	limiters  map[limiterKey]*limiterEntry
	mu        sync.RWMutex
	rateLimit rate.Limit
	burstSize int
	stopCh    chan struct{}
	stopOnce  sync.Once
}

type limiterKey struct {
	ownerID string
	agentID uuid.UUID
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter allowing limit events per second with the given burst
func NewRateLimiter(limit rate.Limit, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[limiterKey]*limiterEntry),
		rateLimit: limit,
		burstSize: burstSize,
		stopCh:    make(chan struct{}),
	}

	go rl.cleanup()

	return rl
}

// Allow checks if a request for the owner's agent is allowed
func (r *RateLimiter) Allow(ownerID string, agentID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := limiterKey{ownerID: ownerID, agentID: agentID}
	entry, exists := r.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(r.rateLimit, r.burstSize)}
		r.limiters[key] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter.Allow()
}

// GetState returns the current state for rate limit headers
func (r *RateLimiter) GetState(ownerID string, agentID uuid.UUID) (remaining int, resetTime time.Time) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.limiters[limiterKey{ownerID: ownerID, agentID: agentID}]
	if !exists {
		return r.burstSize, time.Now()
	}

	tokens := int(entry.limiter.Tokens())
	if tokens < 0 {
		tokens = 0
	}

	// Approximately when the bucket is full again
	resetDuration := time.Duration(float64(r.burstSize-tokens) / float64(r.rateLimit) * float64(time.Second))
	return tokens, time.Now().Add(resetDuration)
}

// evictStale drops limiters idle for longer than LimiterTTL
func (r *RateLimiter) evictStale(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for key, entry := range r.limiters {
		if now.Sub(entry.lastSeen) > LimiterTTL {
			delete(r.limiters, key)
			evicted++
			log.Debug().
				Str("owner_id", key.ownerID).
				Str("agent_id", key.agentID.String()).
				Msg("Cleaned up stale rate limiter")
		}
	}
	return evicted
}

func (r *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			r.evictStale(now)
		case <-r.stopCh:
			return
		}
	}
}

// Stop stops the cleanup goroutine
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// AgentRateLimit returns an Echo middleware that rate limits requests per owner and :agentId.
// It must run after Authenticate so the owner ID is set.
// Requests with a malformed agent ID pass through for the handler to reject.
func AgentRateLimit(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			agentID, err := uuid.Parse(c.Param("agentId"))
			if err != nil {
				return next(c)
			}

			ownerID := GetOwnerID(c)
			limit := strconv.Itoa(rl.burstSize)

			if !rl.Allow(ownerID, agentID) {
				_, resetTime := rl.GetState(ownerID, agentID)
				retryAfter := int(time.Until(resetTime).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}

				c.Response().Header().Set("X-RateLimit-Limit", limit)
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn().
					Str("agent_id", agentID.String()).
					Str("owner_id", ownerID).
					Int("retry_after", retryAfter).
					Msg("Rate limit exceeded")

				return rateLimitError(c, fmt.Sprintf("Too many requests for this agent. Please retry after %d seconds.", retryAfter))
			}

			remaining, resetTime := rl.GetState(ownerID, agentID)
			c.Response().Header().Set("X-RateLimit-Limit", limit)
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			return next(c)
		}
	}
}
