package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_Publish(t *testing.T) {
	hub := NewHub()

	sub := newMockSubscriber("c1", "auth0|alice", "agent-1")
	hub.Register(sub)

	var publisher EventPublisher = hub
	publisher.Publish("auth0|alice", SpendingEvaluated("agent-1", map[string]interface{}{"approved": false}))

	assert.Equal(t, []string{"spending.evaluated@agent-1"}, sub.eventTypes(t))
}

func TestNoOpPublisher_Publish(t *testing.T) {
	publisher := &NoOpPublisher{}

	assert.NotPanics(t, func() {
		publisher.Publish("auth0|alice", SpendingCleared("agent-1"))
	})
}

func TestNoOpPublisher_Implements_EventPublisher(t *testing.T) {
	var _ EventPublisher = (*NoOpPublisher)(nil)
}
