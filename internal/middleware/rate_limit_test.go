package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute), 5)
	defer rl.Stop()

	agentID := uuid.New()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow("owner", agentID) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if rl.Allow("owner", agentID) {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentAgents(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute), 3)
	defer rl.Stop()

	agent1 := uuid.New()
	agent2 := uuid.New()

	for i := 0; i < 3; i++ {
		if !rl.Allow("owner", agent1) {
			t.Errorf("Agent1 request %d should be allowed", i+1)
		}
	}
	if rl.Allow("owner", agent1) {
		t.Error("Agent1 should be rate limited")
	}

	// Agent2 should still have its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow("owner", agent2) {
			t.Errorf("Agent2 request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_SameAgentIDDifferentOwners(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute), 2)
	defer rl.Stop()

	agentID := uuid.New()

	for i := 0; i < 2; i++ {
		if !rl.Allow("auth0|alice", agentID) {
			t.Errorf("Alice request %d should be allowed", i+1)
		}
	}
	if rl.Allow("auth0|alice", agentID) {
		t.Error("Alice should be rate limited")
	}

	if !rl.Allow("auth0|bob", agentID) {
		t.Error("Bob should have a separate bucket for the same agent ID")
	}
	if remaining, _ := rl.GetState("auth0|bob", agentID); remaining != 1 {
		t.Errorf("Expected 1 remaining for bob, got %d", remaining)
	}
}

func TestRateLimiter_EvictStale(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Minute), 1)
	defer rl.Stop()

	rl.Allow("owner", uuid.New())
	rl.Allow("owner", uuid.New())

	if n := rl.evictStale(time.Now()); n != 0 {
		t.Errorf("Expected no fresh limiters evicted, got %d", n)
	}
	if n := rl.evictStale(time.Now().Add(LimiterTTL + time.Second)); n != 2 {
		t.Errorf("Expected 2 stale limiters evicted, got %d", n)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	rl.Stop()
	rl.Stop()
}

func newAgentContext(e *echo.Echo, agentID string) (echo.Context, *httptest.ResponseRecorder) {
	return newOwnerAgentContext(e, "auth0|owner", agentID)
}

func newOwnerAgentContext(e *echo.Echo, ownerID, agentID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agents/"+agentID+"/evaluate", nil)
	req = req.WithContext(context.WithValue(req.Context(), OwnerIDKey, ownerID))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("agentId")
	c.SetParamValues(agentID)
	return c, rec
}

func TestAgentRateLimit_SkipsMalformedAgentID(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(rate.Every(time.Minute), 1)
	defer rl.Stop()

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	for i := 0; i < 3; i++ {
		c, rec := newAgentContext(e, "not-a-uuid")
		if err := AgentRateLimit(rl)(handler)(c); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: expected status 200, got %d", i+1, rec.Code)
		}
	}
}

func TestAgentRateLimit_LimitsPerAgent(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(rate.Every(time.Minute), 2)
	defer rl.Stop()

	agentID := uuid.New().String()
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	for i := 0; i < 2; i++ {
		c, rec := newAgentContext(e, agentID)
		if err := AgentRateLimit(rl)(handler)(c); err != nil {
			t.Fatalf("Request %d: Expected no error, got %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Errorf("Request %d: Expected status 200, got %d", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("Request %d: Expected X-RateLimit-Limit 2, got %q", i+1, rec.Header().Get("X-RateLimit-Limit"))
		}
	}

	c, rec := newAgentContext(e, agentID)
	if err := AgentRateLimit(rl)(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}

	// Another agent is unaffected
	c, rec = newAgentContext(e, uuid.New().String())
	if err := AgentRateLimit(rl)(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 for other agent, got %d", rec.Code)
	}
}

func TestAgentRateLimit_LimitsPerOwner(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiter(rate.Every(time.Minute), 1)
	defer rl.Stop()

	agentID := uuid.New().String()
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	}

	c, rec := newOwnerAgentContext(e, "auth0|alice", agentID)
	if err := AgentRateLimit(rl)(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	c, rec = newOwnerAgentContext(e, "auth0|alice", agentID)
	if err := AgentRateLimit(rl)(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}

	c, rec = newOwnerAgentContext(e, "auth0|bob", agentID)
	if err := AgentRateLimit(rl)(handler)(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 for another owner, got %d", rec.Code)
	}
}
