// Package policy decides whether an agent may spend from its credit line.
//
// Evaluation and recording are separate steps: Evaluate only reads the tracker,
// and the caller records the spend once it has actually been executed.
package policy

import (
	"fmt"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	ReasonDisabled = "Agent policy is disabled"
	ReasonApproved = "Approved within all limits"
)

var (
	hundred = decimal.NewFromInt(100)
	// relaxedOverageCap is the exclusive overage percent tolerated in relaxed mode
	relaxedOverageCap = decimal.NewFromInt(10)
)

// SpendingReader is the part of a tracker the evaluator needs
type SpendingReader interface {
	TodaySpending() decimal.Decimal
	CategorySpending(category domain.SpendingCategory) decimal.Decimal
}

// Evaluate checks intent against policy. Rules are applied in a fixed order and
// the first one that decides wins.
func Evaluate(intent domain.SpendingIntent, availableCredit decimal.Decimal, policy *domain.AgentPolicy, tracker SpendingReader) domain.PolicyDecision {
	if !policy.Enabled {
		return domain.PolicyDecision{
			Approved:               false,
			Reason:                 ReasonDisabled,
			RequiresManualApproval: true,
			CategoryUsage:          decimal.Zero,
			DailyUsage:             decimal.Zero,
		}
	}

	today := tracker.TodaySpending()

	if intent.Amount.GreaterThan(policy.RequireApprovalAbove) {
		return domain.PolicyDecision{
			Approved: false,
			Reason: fmt.Sprintf("Amount %s exceeds auto-approval threshold of %s",
				intent.Amount.String(), policy.RequireApprovalAbove.String()),
			RequiresManualApproval: true,
			CategoryUsage:          decimal.Zero,
			DailyUsage:             today,
		}
	}

	// Hard financial constraint, not a judgment call
	if intent.Amount.GreaterThan(availableCredit) {
		return domain.PolicyDecision{
			Approved: false,
			Reason: fmt.Sprintf("Insufficient credit: requested %s, available %s",
				intent.Amount.String(), availableCredit.String()),
			RequiresManualApproval: false,
			CategoryUsage:          decimal.Zero,
			DailyUsage:             today,
		}
	}

	if today.Add(intent.Amount).GreaterThan(policy.DailySpendLimit) {
		return domain.PolicyDecision{
			Approved: false,
			Reason: fmt.Sprintf("Daily limit exceeded: %s spent today, %s requested, limit %s",
				today.String(), intent.Amount.String(), policy.DailySpendLimit.String()),
			RequiresManualApproval: true,
			CategoryUsage:          decimal.Zero,
			DailyUsage:             today,
		}
	}

	categoryLimit := CategoryLimitAmount(policy, intent.Category, availableCredit)
	categorySpending := tracker.CategorySpending(intent.Category)
	categoryUsage := percentOf(categorySpending, categoryLimit)
	projected := categorySpending.Add(intent.Amount)

	if projected.GreaterThan(categoryLimit) {
		// A zero limit has no meaningful overage percent; never relax it.
		if !categoryLimit.IsPositive() {
			return domain.PolicyDecision{
				Approved:               false,
				Reason:                 fmt.Sprintf("No %s spending allowed: category limit is 0", intent.Category),
				RequiresManualApproval: true,
				CategoryUsage:          categoryUsage,
				DailyUsage:             today,
			}
		}

		overage := projected.Sub(categoryLimit).Div(categoryLimit).Mul(hundred)
		if policy.PenaltyMode == domain.PenaltyModeRelaxed && overage.LessThan(relaxedOverageCap) {
			return domain.PolicyDecision{
				Approved: true,
				Reason: fmt.Sprintf("Approved with %s%% %s overage (relaxed mode)",
					overage.StringFixed(1), intent.Category),
				RequiresManualApproval: false,
				CategoryUsage:          categoryUsage,
				DailyUsage:             today.Add(intent.Amount),
			}
		}

		return domain.PolicyDecision{
			Approved: false,
			Reason: fmt.Sprintf("Category limit exceeded for %s: %s of %s used, %s requested",
				intent.Category, categorySpending.String(), categoryLimit.String(), intent.Amount.String()),
			RequiresManualApproval: true,
			CategoryUsage:          categoryUsage,
			DailyUsage:             today,
		}
	}

	return domain.PolicyDecision{
		Approved:               true,
		Reason:                 ReasonApproved,
		RequiresManualApproval: false,
		CategoryUsage:          categoryUsage,
		DailyUsage:             today.Add(intent.Amount),
	}
}

// CategoryLimitAmount converts the policy's percent for category into an absolute amount
func CategoryLimitAmount(policy *domain.AgentPolicy, category domain.SpendingCategory, availableCredit decimal.Decimal) decimal.Decimal {
	return policy.CategoryLimit(category).Div(hundred).Mul(availableCredit)
}

// percentOf returns part/whole*100, or zero when whole is not positive
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
