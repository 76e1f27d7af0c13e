package websocket

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	// ErrClientClosed is returned when sending to a closed subscriber
	ErrClientClosed = errors.New("client is closed")
	// ErrSlowClient is returned when a subscriber's send buffer is full
	ErrSlowClient = errors.New("client send buffer is full")
)

// Subscription scopes an event stream to one owner and, optionally, one agent
type Subscription struct {
	OwnerID string `json:"ownerId"`
	// AgentID is empty for a stream covering every agent of the owner
	AgentID string `json:"agentId,omitempty"`
}

// Wants reports whether an event about agentID belongs on this stream.
// Events without an agent go to every stream of the owner.
func (s Subscription) Wants(agentID string) bool {
	return s.AgentID == "" || agentID == "" || s.AgentID == agentID
}

// Subscriber is a connection the hub delivers events to
type Subscriber interface {
	ID() string
	Subscription() Subscription
	Send(data []byte) error
	Close() error
}

// Hub routes owner events to the matching subscribers. It is safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	owners map[string]map[string]Subscriber
}

// NewHub creates an empty Hub
func NewHub() *Hub {
	return &Hub{owners: make(map[string]map[string]Subscriber)}
}

// Register adds a subscriber under its owner
func (h *Hub) Register(s Subscriber) {
	sub := s.Subscription()

	h.mu.Lock()
	subs, ok := h.owners[sub.OwnerID]
	if !ok {
		subs = make(map[string]Subscriber)
		h.owners[sub.OwnerID] = subs
	}
	subs[s.ID()] = s
	h.mu.Unlock()

	log.Debug().
		Str("owner_id", sub.OwnerID).
		Str("agent_id", sub.AgentID).
		Str("client_id", s.ID()).
		Msg("Event stream subscribed")
}

// Unregister removes a subscriber and reports whether it was registered
func (h *Hub) Unregister(s Subscriber) bool {
	ownerID := s.Subscription().OwnerID

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.owners[ownerID]
	if !ok {
		return false
	}
	if _, ok := subs[s.ID()]; !ok {
		return false
	}
	delete(subs, s.ID())
	if len(subs) == 0 {
		delete(h.owners, ownerID)
	}
	return true
}

// Broadcast delivers event to the owner's subscribers that want it and returns
// how many accepted it. Subscribers that are closed or cannot keep up are dropped.
func (h *Hub) Broadcast(ownerID string, event Event) int {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Str("event_type", event.Type).Msg("Failed to serialize event")
		return 0
	}

	h.mu.RLock()
	targets := make([]Subscriber, 0, len(h.owners[ownerID]))
	for _, s := range h.owners[ownerID] {
		if s.Subscription().Wants(event.AgentID) {
			targets = append(targets, s)
		}
	}
	h.mu.RUnlock()

	delivered := 0
	for _, s := range targets {
		err := s.Send(data)
		if err == nil {
			delivered++
			continue
		}
		if h.Unregister(s) && errors.Is(err, ErrSlowClient) {
			log.Warn().Str("owner_id", ownerID).Str("client_id", s.ID()).Msg("Dropping slow event subscriber")
			s.Close()
		}
	}

	if len(targets) > 0 {
		log.Debug().
			Str("owner_id", ownerID).
			Str("event_type", event.Type).
			Int("delivered", delivered).
			Msg("Broadcast event")
	}
	return delivered
}

// Subscribers returns the number of streams open for an owner
func (h *Hub) Subscribers(ownerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.owners[ownerID])
}

// Len returns the number of open streams across all owners
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, subs := range h.owners {
		n += len(subs)
	}
	return n
}
