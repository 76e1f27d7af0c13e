package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to an entity
type EventType string

const (
	EventTypeEvaluated EventType = "evaluated"
	EventTypeRecorded  EventType = "recorded"
	EventTypeCleared   EventType = "cleared"
	EventTypeUpdated   EventType = "updated"
	EventTypeReset     EventType = "reset"
	EventTypeExported  EventType = "exported"
	EventTypeOpened    EventType = "opened"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeSpending    EntityType = "spending"
	EntityTypeAgentPolicy EntityType = "agent_policy"
	EntityTypeStream      EntityType = "stream"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, agentId, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`              // Combined type e.g. "spending.evaluated"
	Entity    EntityType  `json:"entity"`            // Entity type e.g. "spending"
	AgentID   string      `json:"agentId,omitempty"` // Agent the event concerns
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, agentID string, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		AgentID:   agentID,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// SpendingEvaluated creates a spending.evaluated event
func SpendingEvaluated(agentID string, payload interface{}) Event {
	return NewEvent(EventTypeEvaluated, EntityTypeSpending, agentID, payload)
}

// SpendingRecorded creates a spending.recorded event
func SpendingRecorded(agentID string, payload interface{}) Event {
	return NewEvent(EventTypeRecorded, EntityTypeSpending, agentID, payload)
}

// SpendingCleared creates a spending.cleared event
func SpendingCleared(agentID string) Event {
	return NewEvent(EventTypeCleared, EntityTypeSpending, agentID, nil)
}

// SpendingExported creates a spending.exported event
func SpendingExported(agentID string, payload interface{}) Event {
	return NewEvent(EventTypeExported, EntityTypeSpending, agentID, payload)
}

// AgentPolicyUpdated creates an agent_policy.updated event
func AgentPolicyUpdated(agentID string, payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeAgentPolicy, agentID, payload)
}

// AgentPolicyReset creates an agent_policy.reset event
func AgentPolicyReset(agentID string, payload interface{}) Event {
	return NewEvent(EventTypeReset, EntityTypeAgentPolicy, agentID, payload)
}

// StreamOpened creates the stream.opened event a client receives first
func StreamOpened(sub Subscription) Event {
	return NewEvent(EventTypeOpened, EntityTypeStream, sub.AgentID, sub)
}
