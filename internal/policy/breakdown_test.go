package policy

import (
	"testing"
	"time"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdown(t *testing.T) {
	tracker := newTestTracker()
	tracker.AddRecord(executed("0.15", domain.CategoryFood, fixedNow.Add(-24*time.Hour)))
	tracker.AddRecord(executed("0.1", domain.CategoryUtilities, fixedNow.Add(-40*24*time.Hour)))
	p := DefaultAgentPolicy()
	p.CategoryLimits[domain.CategoryOther] = dec("0")

	result := Breakdown(dec("1"), p, tracker)

	require.Len(t, result, len(domain.AllSpendingCategories))
	for i, c := range domain.AllSpendingCategories {
		assert.Equal(t, c, result[i].Category)
	}

	food := result[3]
	assert.True(t, food.Used.Equal(dec("0.15")))
	assert.True(t, food.Limit.Equal(dec("0.3")))
	assert.True(t, food.Percentage.Equal(dec("50")), "got %s", food.Percentage)

	utilities := result[0]
	assert.True(t, utilities.Used.IsZero(), "records older than 30 days are excluded")

	other := result[5]
	assert.True(t, other.Limit.IsZero())
	assert.True(t, other.Percentage.IsZero())
}

func TestBreakdown_ZeroCredit(t *testing.T) {
	tracker := newTestTracker()
	tracker.AddRecord(executed("0.15", domain.CategoryFood, fixedNow))

	for _, b := range Breakdown(dec("0"), DefaultAgentPolicy(), tracker) {
		assert.True(t, b.Percentage.IsZero(), "category %s", b.Category)
	}
}

func TestSummarize(t *testing.T) {
	history := []domain.SpendingRecord{
		executed("0.01", domain.CategoryFood, fixedNow),
		executed("0.02", domain.CategoryTransport, fixedNow),
		{Intent: intent("3", domain.CategoryOther, fixedNow), Approved: false, ExecutedAmount: dec("0")},
	}

	summary := Summarize(history)

	assert.Equal(t, 3, summary.TotalRecords)
	assert.Equal(t, 2, summary.ApprovedCount)
	assert.Equal(t, 1, summary.RejectedCount)
	assert.True(t, summary.TotalExecuted.Equal(dec("0.03")))
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.TotalRecords)
	assert.True(t, summary.TotalExecuted.IsZero())
}
