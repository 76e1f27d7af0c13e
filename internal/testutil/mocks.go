package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/dafibh/payfi/payfi-backend/internal/websocket"
	"github.com/google/uuid"
)

type agentKey struct {
	ownerID string
	agentID uuid.UUID
}

// MockAgentPolicyRepository is a mock implementation of domain.AgentPolicyRepository
type MockAgentPolicyRepository struct {
	Policies map[agentKey]*domain.StoredAgentPolicy
	GetFn    func(ownerID string, agentID uuid.UUID) (*domain.StoredAgentPolicy, error)
	UpsertFn func(ownerID string, agentID uuid.UUID, policy *domain.AgentPolicy) (*domain.StoredAgentPolicy, error)
	DeleteFn func(ownerID string, agentID uuid.UUID) error
}

// NewMockAgentPolicyRepository creates a new MockAgentPolicyRepository
func NewMockAgentPolicyRepository() *MockAgentPolicyRepository {
	return &MockAgentPolicyRepository{
		Policies: make(map[agentKey]*domain.StoredAgentPolicy),
	}
}

// Get retrieves a stored policy
func (m *MockAgentPolicyRepository) Get(ownerID string, agentID uuid.UUID) (*domain.StoredAgentPolicy, error) {
	if m.GetFn != nil {
		return m.GetFn(ownerID, agentID)
	}
	if p, ok := m.Policies[agentKey{ownerID, agentID}]; ok {
		return p, nil
	}
	return nil, domain.ErrAgentPolicyNotFound
}

// Upsert creates or replaces a stored policy
func (m *MockAgentPolicyRepository) Upsert(ownerID string, agentID uuid.UUID, policy *domain.AgentPolicy) (*domain.StoredAgentPolicy, error) {
	if m.UpsertFn != nil {
		return m.UpsertFn(ownerID, agentID, policy)
	}
	now := time.Now()
	key := agentKey{ownerID, agentID}
	stored, ok := m.Policies[key]
	if !ok {
		stored = &domain.StoredAgentPolicy{OwnerID: ownerID, AgentID: agentID, CreatedAt: now}
		m.Policies[key] = stored
	}
	stored.Policy = *policy.Clone()
	stored.UpdatedAt = now
	return stored, nil
}

// Delete removes a stored policy
func (m *MockAgentPolicyRepository) Delete(ownerID string, agentID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ownerID, agentID)
	}
	key := agentKey{ownerID, agentID}
	if _, ok := m.Policies[key]; !ok {
		return domain.ErrAgentPolicyNotFound
	}
	delete(m.Policies, key)
	return nil
}

// AddPolicy adds a policy to the mock repository (helper for tests)
func (m *MockAgentPolicyRepository) AddPolicy(ownerID string, agentID uuid.UUID, policy *domain.AgentPolicy) {
	m.Policies[agentKey{ownerID, agentID}] = &domain.StoredAgentPolicy{
		OwnerID: ownerID,
		AgentID: agentID,
		Policy:  *policy.Clone(),
	}
}

// MockExportRepository is a mock implementation of domain.ExportRepository
type MockExportRepository struct {
	Objects     map[string][]byte
	ContentType map[string]string
	UploadErr   error
	PresignErr  error
}

// NewMockExportRepository creates a new MockExportRepository
func NewMockExportRepository() *MockExportRepository {
	return &MockExportRepository{
		Objects:     make(map[string][]byte),
		ContentType: make(map[string]string),
	}
}

// Upload stores the object in memory
func (m *MockExportRepository) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.Objects[objectPath] = b
	m.ContentType[objectPath] = contentType
	return objectPath, nil
}

// GeneratePresignedURL returns a fake URL for a stored object
func (m *MockExportRepository) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if m.PresignErr != nil {
		return "", m.PresignErr
	}
	if _, ok := m.Objects[objectPath]; !ok {
		return "", domain.ErrNotFound
	}
	return fmt.Sprintf("https://exports.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	OwnerID string
	Event   websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

// Publish records the event
func (m *MockEventPublisher) Publish(ownerID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{OwnerID: ownerID, Event: event})
}

// Types returns the type of every published event in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
