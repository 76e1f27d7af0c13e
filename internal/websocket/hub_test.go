package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSubscriber captures what the hub sends it
type mockSubscriber struct {
	id      string
	sub     Subscription
	sendErr error

	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

func newMockSubscriber(id, ownerID, agentID string) *mockSubscriber {
	return &mockSubscriber{id: id, sub: Subscription{OwnerID: ownerID, AgentID: agentID}}
}

func (m *mockSubscriber) ID() string                 { return m.id }
func (m *mockSubscriber) Subscription() Subscription { return m.sub }

func (m *mockSubscriber) Send(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	if m.closed {
		return ErrClientClosed
	}
	m.messages = append(m.messages, data)
	return nil
}

func (m *mockSubscriber) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockSubscriber) eventTypes(t *testing.T) []string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()

	types := make([]string, 0, len(m.messages))
	for _, raw := range m.messages {
		var evt Event
		require.NoError(t, json.Unmarshal(raw, &evt))
		types = append(types, evt.Type+"@"+evt.AgentID)
	}
	return types
}

func (m *mockSubscriber) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func TestSubscription_Wants(t *testing.T) {
	tests := []struct {
		name     string
		sub      Subscription
		agentID  string
		expected bool
	}{
		{"owner-wide stream", Subscription{OwnerID: "o"}, "agent-1", true},
		{"matching agent", Subscription{OwnerID: "o", AgentID: "agent-1"}, "agent-1", true},
		{"other agent", Subscription{OwnerID: "o", AgentID: "agent-1"}, "agent-2", false},
		{"event without agent", Subscription{OwnerID: "o", AgentID: "agent-1"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.sub.Wants(tt.agentID))
		})
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()

	a1 := newMockSubscriber("c1", "auth0|alice", "")
	a2 := newMockSubscriber("c2", "auth0|alice", "agent-1")
	b := newMockSubscriber("c3", "auth0|bob", "")

	hub.Register(a1)
	hub.Register(a2)
	hub.Register(b)

	assert.Equal(t, 2, hub.Subscribers("auth0|alice"))
	assert.Equal(t, 1, hub.Subscribers("auth0|bob"))
	assert.Equal(t, 0, hub.Subscribers("auth0|nobody"))
	assert.Equal(t, 3, hub.Len())

	assert.True(t, hub.Unregister(a1))
	assert.False(t, hub.Unregister(a1))
	assert.Equal(t, 1, hub.Subscribers("auth0|alice"))

	hub.Unregister(a2)
	hub.Unregister(b)
	assert.Equal(t, 0, hub.Len())
}

func TestHub_Broadcast_RoutesByOwnerAndAgent(t *testing.T) {
	hub := NewHub()

	aliceAll := newMockSubscriber("alice-all", "auth0|alice", "")
	aliceAgent1 := newMockSubscriber("alice-1", "auth0|alice", "agent-1")
	aliceAgent2 := newMockSubscriber("alice-2", "auth0|alice", "agent-2")
	bob := newMockSubscriber("bob", "auth0|bob", "")
	for _, s := range []*mockSubscriber{aliceAll, aliceAgent1, aliceAgent2, bob} {
		hub.Register(s)
	}

	assert.Equal(t, 2, hub.Broadcast("auth0|alice", SpendingRecorded("agent-1", nil)))
	assert.Equal(t, 2, hub.Broadcast("auth0|alice", SpendingCleared("agent-2")))

	assert.Equal(t, []string{"spending.recorded@agent-1", "spending.cleared@agent-2"}, aliceAll.eventTypes(t))
	assert.Equal(t, []string{"spending.recorded@agent-1"}, aliceAgent1.eventTypes(t))
	assert.Equal(t, []string{"spending.cleared@agent-2"}, aliceAgent2.eventTypes(t))
	assert.Empty(t, bob.eventTypes(t))
}

func TestHub_Broadcast_DropsSlowSubscriber(t *testing.T) {
	hub := NewHub()

	slow := newMockSubscriber("slow", "owner", "")
	slow.sendErr = ErrSlowClient
	ok := newMockSubscriber("ok", "owner", "")
	hub.Register(slow)
	hub.Register(ok)

	assert.Equal(t, 1, hub.Broadcast("owner", SpendingCleared("agent")))
	assert.True(t, slow.isClosed())
	assert.False(t, ok.isClosed())
	assert.Equal(t, 1, hub.Subscribers("owner"))
}

func TestHub_Broadcast_ForgetsClosedSubscriber(t *testing.T) {
	hub := NewHub()

	gone := newMockSubscriber("gone", "owner", "")
	gone.Close()
	hub.Register(gone)

	assert.Equal(t, 0, hub.Broadcast("owner", SpendingCleared("agent")))
	assert.Equal(t, 0, hub.Len())
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	const n = 50

	subs := make([]*mockSubscriber, n)
	for i := range subs {
		subs[i] = newMockSubscriber(fmt.Sprintf("c-%d", i), fmt.Sprintf("owner-%d", i%5), "")
	}

	for _, s := range subs {
		wg.Add(1)
		go func(s *mockSubscriber) {
			defer wg.Done()
			hub.Register(s)
		}(s)
	}
	wg.Wait()
	assert.Equal(t, n, hub.Len())

	for i, s := range subs {
		wg.Add(2)
		go func(owner string) {
			defer wg.Done()
			hub.Broadcast(owner, SpendingCleared("agent"))
		}(fmt.Sprintf("owner-%d", i%5))
		go func(s *mockSubscriber) {
			defer wg.Done()
			hub.Unregister(s)
		}(s)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Len())
}

func TestHub_BroadcastToOwnerWithoutSubscribers(t *testing.T) {
	hub := NewHub()

	require.NotPanics(t, func() {
		assert.Equal(t, 0, hub.Broadcast("nobody", SpendingCleared("agent")))
	})
}
