package policy

import (
	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Testnet-scale absolute limits
var (
	DefaultDailySpendLimit      = decimal.RequireFromString("0.05")
	DefaultRequireApprovalAbove = decimal.RequireFromString("0.02")
)

// DefaultAgentPolicy returns a fresh copy of the built-in policy
func DefaultAgentPolicy() *domain.AgentPolicy {
	return &domain.AgentPolicy{
		Enabled: true,
		CategoryLimits: map[domain.SpendingCategory]decimal.Decimal{
			domain.CategoryUtilities:     decimal.NewFromInt(40),
			domain.CategoryEntertainment: decimal.NewFromInt(15),
			domain.CategorySubscriptions: decimal.NewFromInt(20),
			domain.CategoryFood:          decimal.NewFromInt(30),
			domain.CategoryTransport:     decimal.NewFromInt(25),
			domain.CategoryOther:         decimal.NewFromInt(10),
		},
		AutoRepay:            true,
		PenaltyMode:          domain.PenaltyModeRelaxed,
		DailySpendLimit:      DefaultDailySpendLimit,
		RequireApprovalAbove: DefaultRequireApprovalAbove,
	}
}

// ValidatePolicy fills the fields missing from patch with the built-in defaults
// and clamps every limit into range.
func ValidatePolicy(patch *domain.AgentPolicyPatch) *domain.AgentPolicy {
	return ApplyPatch(DefaultAgentPolicy(), patch)
}

// ApplyPatch overlays patch on a copy of base, then clamps category percents
// into [0,100] and absolute limits to >= 0. Unknown categories are dropped and
// an unknown penalty mode keeps the base value.
func ApplyPatch(base *domain.AgentPolicy, patch *domain.AgentPolicyPatch) *domain.AgentPolicy {
	out := base.Clone()
	if patch != nil {
		if patch.Enabled != nil {
			out.Enabled = *patch.Enabled
		}
		for c, v := range patch.CategoryLimits {
			if c.IsValid() {
				out.CategoryLimits[c] = v
			}
		}
		if patch.AutoRepay != nil {
			out.AutoRepay = *patch.AutoRepay
		}
		if patch.PenaltyMode != nil && patch.PenaltyMode.IsValid() {
			out.PenaltyMode = *patch.PenaltyMode
		}
		if patch.DailySpendLimit != nil {
			out.DailySpendLimit = *patch.DailySpendLimit
		}
		if patch.RequireApprovalAbove != nil {
			out.RequireApprovalAbove = *patch.RequireApprovalAbove
		}
	}

	for _, c := range domain.AllSpendingCategories {
		out.CategoryLimits[c] = clamp(out.CategoryLimits[c], decimal.Zero, hundred)
	}
	if !out.PenaltyMode.IsValid() {
		out.PenaltyMode = domain.PenaltyModeRelaxed
	}
	out.DailySpendLimit = decimal.Max(out.DailySpendLimit, decimal.Zero)
	out.RequireApprovalAbove = decimal.Max(out.RequireApprovalAbove, decimal.Zero)
	return out
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}
