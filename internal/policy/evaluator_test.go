package policy

import (
	"testing"
	"time"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestTracker() *SpendingTracker {
	return NewSpendingTracker(
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
	)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intent(amount string, category domain.SpendingCategory, at time.Time) domain.SpendingIntent {
	return domain.SpendingIntent{
		Amount:      dec(amount),
		Category:    category,
		Merchant:    "Test Merchant",
		Description: "test",
		Timestamp:   at,
	}
}

func executed(amount string, category domain.SpendingCategory, at time.Time) domain.SpendingRecord {
	return domain.SpendingRecord{
		Intent:         intent(amount, category, at),
		Approved:       true,
		ExecutedAmount: dec(amount),
	}
}

// generousPolicy only constrains spending through category limits
func generousPolicy(mode domain.PenaltyMode) *domain.AgentPolicy {
	p := DefaultAgentPolicy()
	p.PenaltyMode = mode
	p.DailySpendLimit = dec("1000")
	p.RequireApprovalAbove = dec("1000")
	p.CategoryLimits[domain.CategoryFood] = dec("10")
	return p
}

func TestEvaluate_DefaultPolicyEndToEnd(t *testing.T) {
	tracker := newTestTracker()
	in := domain.SpendingIntent{
		Amount:      dec("0.01"),
		Category:    domain.CategoryFood,
		Merchant:    "DoorDash",
		Description: "Lunch",
		Timestamp:   fixedNow,
	}

	decision := Evaluate(in, dec("1.0"), DefaultAgentPolicy(), tracker)

	assert.True(t, decision.Approved)
	assert.Equal(t, ReasonApproved, decision.Reason)
	assert.False(t, decision.RequiresManualApproval)
	assert.True(t, decision.CategoryUsage.IsZero())
	assert.True(t, decision.DailyUsage.Equal(dec("0.01")))
}

func TestEvaluate_DisabledPolicy(t *testing.T) {
	tracker := newTestTracker()
	tracker.AddRecord(executed("0.01", domain.CategoryFood, fixedNow))
	p := DefaultAgentPolicy()
	p.Enabled = false

	amounts := []string{"0", "0.001", "0.01", "5"}
	for _, amount := range amounts {
		decision := Evaluate(intent(amount, domain.CategoryFood, fixedNow), dec("1"), p, tracker)
		assert.False(t, decision.Approved, "amount %s", amount)
		assert.True(t, decision.RequiresManualApproval, "amount %s", amount)
		assert.Equal(t, ReasonDisabled, decision.Reason)
		assert.True(t, decision.DailyUsage.IsZero(), "daily usage is not queried when disabled")
		assert.True(t, decision.CategoryUsage.IsZero())
	}
}

func TestEvaluate_AboveApprovalThreshold(t *testing.T) {
	tracker := newTestTracker()
	tracker.AddRecord(executed("0.01", domain.CategoryTransport, fixedNow))

	decision := Evaluate(intent("0.03", domain.CategoryFood, fixedNow), dec("100"), DefaultAgentPolicy(), tracker)

	assert.False(t, decision.Approved)
	assert.True(t, decision.RequiresManualApproval)
	assert.Contains(t, decision.Reason, "threshold")
	assert.True(t, decision.DailyUsage.Equal(dec("0.01")))
}

func TestEvaluate_ThresholdWinsOverCredit(t *testing.T) {
	// Amount is above both the threshold and the credit; the threshold rule comes first
	decision := Evaluate(intent("0.5", domain.CategoryFood, fixedNow), dec("0.1"), DefaultAgentPolicy(), newTestTracker())

	assert.False(t, decision.Approved)
	assert.True(t, decision.RequiresManualApproval)
}

func TestEvaluate_InsufficientCredit(t *testing.T) {
	tracker := newTestTracker()
	tracker.AddRecord(executed("0.004", domain.CategoryOther, fixedNow))

	decision := Evaluate(intent("0.02", domain.CategoryFood, fixedNow), dec("0.015"), DefaultAgentPolicy(), tracker)

	assert.False(t, decision.Approved)
	assert.False(t, decision.RequiresManualApproval)
	assert.Contains(t, decision.Reason, "Insufficient credit")
	assert.True(t, decision.DailyUsage.Equal(dec("0.004")))
}

func TestEvaluate_DailyLimitBoundary(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		approved bool
	}{
		{"over the limit", "0.02", false},
		{"exactly at the limit", "0.01", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()
			tracker.AddRecord(executed("0.04", domain.CategoryUtilities, fixedNow.Add(-time.Hour)))
			p := DefaultAgentPolicy()
			p.DailySpendLimit = dec("0.05")
			p.RequireApprovalAbove = dec("1")

			decision := Evaluate(intent(tt.amount, domain.CategoryFood, fixedNow), dec("10"), p, tracker)

			assert.Equal(t, tt.approved, decision.Approved)
			if tt.approved {
				assert.True(t, decision.DailyUsage.Equal(dec("0.05")))
			} else {
				assert.True(t, decision.RequiresManualApproval)
				assert.True(t, decision.DailyUsage.Equal(dec("0.04")), "rejected intent is excluded from daily usage")
				assert.Contains(t, decision.Reason, "Daily limit")
			}
		})
	}
}

func TestEvaluate_DailyLimitUsesCalendarDay(t *testing.T) {
	tracker := newTestTracker()
	// Yesterday, but within 24h of now
	tracker.AddRecord(executed("0.04", domain.CategoryUtilities, time.Date(2026, 3, 14, 23, 0, 0, 0, time.UTC)))
	p := DefaultAgentPolicy()
	p.DailySpendLimit = dec("0.05")
	p.RequireApprovalAbove = dec("1")

	decision := Evaluate(intent("0.02", domain.CategoryFood, fixedNow), dec("10"), p, tracker)

	assert.True(t, decision.Approved)
	assert.True(t, decision.DailyUsage.Equal(dec("0.02")))
}

func TestEvaluate_RelaxedOverage(t *testing.T) {
	tests := []struct {
		name     string
		mode     domain.PenaltyMode
		spent    string
		amount   string
		approved bool
	}{
		{"relaxed 1% overage approved", domain.PenaltyModeRelaxed, "9.5", "0.6", true},
		{"strict 1% overage rejected", domain.PenaltyModeStrict, "9.5", "0.6", false},
		{"relaxed exactly 10% rejected", domain.PenaltyModeRelaxed, "10", "1", false},
		{"relaxed just under 10% approved", domain.PenaltyModeRelaxed, "10", "0.99", true},
		{"relaxed 20% rejected", domain.PenaltyModeRelaxed, "9", "3", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()
			// Spent in a previous day so only the category rule applies
			tracker.AddRecord(executed(tt.spent, domain.CategoryFood, fixedNow.Add(-72*time.Hour)))

			// 10% of 100 => category limit of 10
			decision := Evaluate(intent(tt.amount, domain.CategoryFood, fixedNow), dec("100"), generousPolicy(tt.mode), tracker)

			require.Equal(t, tt.approved, decision.Approved, decision.Reason)
			if tt.approved {
				assert.Contains(t, decision.Reason, "relaxed mode")
				assert.False(t, decision.RequiresManualApproval)
				assert.True(t, decision.DailyUsage.Equal(dec(tt.amount)))
			} else {
				assert.True(t, decision.RequiresManualApproval)
				assert.True(t, decision.DailyUsage.IsZero())
			}
		})
	}
}

func TestEvaluate_CategoryUsage(t *testing.T) {
	tracker := newTestTracker()
	tracker.AddRecord(executed("2.5", domain.CategoryFood, fixedNow.Add(-48*time.Hour)))

	decision := Evaluate(intent("1", domain.CategoryFood, fixedNow), dec("100"), generousPolicy(domain.PenaltyModeStrict), tracker)

	assert.True(t, decision.Approved)
	assert.True(t, decision.CategoryUsage.Equal(dec("25")), "got %s", decision.CategoryUsage)
}

func TestEvaluate_ZeroCategoryLimit(t *testing.T) {
	tests := []struct {
		name            string
		limitPercent    string
		availableCredit string
		amount          string
	}{
		{"zero percent", "0", "100", "0.01"},
		{"zero credit", "10", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newTestTracker()
			tracker.AddRecord(executed("0.5", domain.CategoryFood, fixedNow.Add(-48*time.Hour)))
			p := generousPolicy(domain.PenaltyModeRelaxed)
			p.CategoryLimits[domain.CategoryFood] = dec(tt.limitPercent)

			decision := Evaluate(intent(tt.amount, domain.CategoryFood, fixedNow), dec(tt.availableCredit), p, tracker)

			assert.False(t, decision.Approved)
			assert.True(t, decision.RequiresManualApproval)
			assert.True(t, decision.CategoryUsage.IsZero())
		})
	}
}

func TestEvaluate_ZeroLimitZeroAmountWithNoHistory(t *testing.T) {
	p := generousPolicy(domain.PenaltyModeStrict)
	p.CategoryLimits[domain.CategoryFood] = decimal.Zero

	// 0 + 0 is not greater than a 0 limit
	decision := Evaluate(intent("0", domain.CategoryFood, fixedNow), dec("100"), p, newTestTracker())

	assert.True(t, decision.Approved)
	assert.True(t, decision.CategoryUsage.IsZero())
}

func TestEvaluate_Idempotent(t *testing.T) {
	tracker := newTestTracker()
	tracker.AddRecord(executed("0.01", domain.CategoryFood, fixedNow.Add(-time.Hour)))
	in := intent("0.015", domain.CategoryFood, fixedNow)

	first := Evaluate(in, dec("1"), DefaultAgentPolicy(), tracker)
	second := Evaluate(in, dec("1"), DefaultAgentPolicy(), tracker)

	assert.Equal(t, first.Approved, second.Approved)
	assert.Equal(t, first.Reason, second.Reason)
	assert.Equal(t, first.RequiresManualApproval, second.RequiresManualApproval)
	assert.True(t, first.CategoryUsage.Equal(second.CategoryUsage))
	assert.True(t, first.DailyUsage.Equal(second.DailyUsage))
	assert.Equal(t, 1, tracker.Len(), "evaluation must not record")
}
