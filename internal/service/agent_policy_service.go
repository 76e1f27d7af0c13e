package service

import (
	"errors"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/dafibh/payfi/payfi-backend/internal/policy"
	"github.com/dafibh/payfi/payfi-backend/internal/websocket"
	"github.com/google/uuid"
)

// AgentPolicyService handles agent spending policy configuration
type AgentPolicyService struct {
	policyRepo     domain.AgentPolicyRepository
	defaults       *domain.AgentPolicy
	eventPublisher websocket.EventPublisher
}

// NewAgentPolicyService creates a new AgentPolicyService.
// A nil defaults falls back to the built-in policy.
func NewAgentPolicyService(policyRepo domain.AgentPolicyRepository, defaults *domain.AgentPolicy) *AgentPolicyService {
	if defaults == nil {
		defaults = policy.DefaultAgentPolicy()
	}
	return &AgentPolicyService{
		policyRepo: policyRepo,
		defaults:   defaults,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AgentPolicyService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AgentPolicyService) publishEvent(ownerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// Defaults returns a copy of the policy used for agents without a stored one
func (s *AgentPolicyService) Defaults() *domain.AgentPolicy {
	return s.defaults.Clone()
}

// GetPolicy returns the agent's stored policy, or the defaults if none was saved
func (s *AgentPolicyService) GetPolicy(ownerID string, agentID uuid.UUID) (*domain.AgentPolicy, error) {
	stored, err := s.policyRepo.Get(ownerID, agentID)
	if err != nil {
		if errors.Is(err, domain.ErrAgentPolicyNotFound) {
			return s.Defaults(), nil
		}
		return nil, err
	}
	// Stored policies may predate a category or a clamp rule
	return policy.ApplyPatch(&stored.Policy, nil), nil
}

// UpdatePolicy merges patch over the agent's current policy, validates and saves it
func (s *AgentPolicyService) UpdatePolicy(ownerID string, agentID uuid.UUID, patch *domain.AgentPolicyPatch) (*domain.AgentPolicy, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	current, err := s.GetPolicy(ownerID, agentID)
	if err != nil {
		return nil, err
	}

	updated := policy.ApplyPatch(current, patch)
	if _, err := s.policyRepo.Upsert(ownerID, agentID, updated); err != nil {
		return nil, err
	}

	s.publishEvent(ownerID, websocket.AgentPolicyUpdated(agentID.String(), updated))
	return updated, nil
}

// ResetPolicy deletes the agent's stored policy and returns the defaults
func (s *AgentPolicyService) ResetPolicy(ownerID string, agentID uuid.UUID) (*domain.AgentPolicy, error) {
	if err := s.policyRepo.Delete(ownerID, agentID); err != nil && !errors.Is(err, domain.ErrAgentPolicyNotFound) {
		return nil, err
	}

	defaults := s.Defaults()
	s.publishEvent(ownerID, websocket.AgentPolicyReset(agentID.String(), defaults))
	return defaults, nil
}

// GetOnChainPolicy returns the part of the agent's policy mirrored on-chain
func (s *AgentPolicyService) GetOnChainPolicy(ownerID string, agentID uuid.UUID) (*domain.OnChainPolicy, error) {
	p, err := s.GetPolicy(ownerID, agentID)
	if err != nil {
		return nil, err
	}
	return p.OnChain(), nil
}

// validatePatch rejects unknown categories and penalty modes
func validatePatch(patch *domain.AgentPolicyPatch) error {
	if patch == nil {
		return nil
	}
	for c := range patch.CategoryLimits {
		if !c.IsValid() {
			return domain.ErrInvalidCategory
		}
	}
	if patch.PenaltyMode != nil && !patch.PenaltyMode.IsValid() {
		return domain.ErrInvalidPenaltyMode
	}
	return nil
}
