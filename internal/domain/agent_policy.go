package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PenaltyMode string

const (
	PenaltyModeStrict  PenaltyMode = "strict"
	PenaltyModeRelaxed PenaltyMode = "relaxed"
)

// IsValid reports whether m is a known penalty mode
func (m PenaltyMode) IsValid() bool {
	return m == PenaltyModeStrict || m == PenaltyModeRelaxed
}

// AgentPolicy configures what an agent may spend without a human in the loop.
// Category limits are percentages of the available credit over a rolling 30 days.
type AgentPolicy struct {
	Enabled              bool                                 `json:"enabled"`
	CategoryLimits       map[SpendingCategory]decimal.Decimal `json:"categoryLimits"`
	AutoRepay            bool                                 `json:"autoRepay"`
	PenaltyMode          PenaltyMode                          `json:"penaltyMode"`
	DailySpendLimit      decimal.Decimal                      `json:"dailySpendLimit"`
	RequireApprovalAbove decimal.Decimal                      `json:"requireApprovalAbove"`
}

// CategoryLimit returns the configured percent for c, zero when unset
func (p *AgentPolicy) CategoryLimit(c SpendingCategory) decimal.Decimal {
	if p.CategoryLimits == nil {
		return decimal.Zero
	}
	return p.CategoryLimits[c]
}

// Clone returns a deep copy of the policy
func (p *AgentPolicy) Clone() *AgentPolicy {
	clone := *p
	clone.CategoryLimits = make(map[SpendingCategory]decimal.Decimal, len(p.CategoryLimits))
	for c, v := range p.CategoryLimits {
		clone.CategoryLimits[c] = v
	}
	return &clone
}

// OnChain returns the subset of the policy the AgentPolicy contract stores.
// Category limits are local only.
func (p *AgentPolicy) OnChain() *OnChainPolicy {
	return &OnChainPolicy{
		DailyLimit:   p.DailySpendLimit,
		PerTxLimit:   p.RequireApprovalAbove,
		CanUseCredit: p.Enabled,
	}
}

// AgentPolicyPatch is a partial policy; nil fields keep their current value
type AgentPolicyPatch struct {
	Enabled              *bool                                `json:"enabled,omitempty"`
	CategoryLimits       map[SpendingCategory]decimal.Decimal `json:"categoryLimits,omitempty"`
	AutoRepay            *bool                                `json:"autoRepay,omitempty"`
	PenaltyMode          *PenaltyMode                         `json:"penaltyMode,omitempty"`
	DailySpendLimit      *decimal.Decimal                     `json:"dailySpendLimit,omitempty"`
	RequireApprovalAbove *decimal.Decimal                     `json:"requireApprovalAbove,omitempty"`
}

type OnChainPolicy struct {
	DailyLimit   decimal.Decimal `json:"dailyLimit"`
	PerTxLimit   decimal.Decimal `json:"perTxLimit"`
	CanUseCredit bool            `json:"canUseCredit"`
}

// StoredAgentPolicy is a policy persisted for one agent of one owner
type StoredAgentPolicy struct {
	OwnerID   string      `json:"ownerId"`
	AgentID   uuid.UUID   `json:"agentId"`
	Policy    AgentPolicy `json:"policy"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type AgentPolicyRepository interface {
	Get(ownerID string, agentID uuid.UUID) (*StoredAgentPolicy, error)
	Upsert(ownerID string, agentID uuid.UUID, policy *AgentPolicy) (*StoredAgentPolicy, error)
	Delete(ownerID string, agentID uuid.UUID) error
}
