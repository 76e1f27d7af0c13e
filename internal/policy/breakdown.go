package policy

import (
	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// Breakdown reports usage against the limit of every category, for display.
// A category whose limit is zero reports 0%.
func Breakdown(availableCredit decimal.Decimal, policy *domain.AgentPolicy, tracker SpendingReader) []domain.CategoryBreakdown {
	out := make([]domain.CategoryBreakdown, 0, len(domain.AllSpendingCategories))
	for _, c := range domain.AllSpendingCategories {
		used := tracker.CategorySpending(c)
		limit := CategoryLimitAmount(policy, c, availableCredit)
		out = append(out, domain.CategoryBreakdown{
			Category:   c,
			Used:       used,
			Limit:      limit,
			Percentage: percentOf(used, limit),
		})
	}
	return out
}

// Summarize counts approved and rejected records and totals executed amounts
func Summarize(history []domain.SpendingRecord) domain.SpendingSummary {
	summary := domain.SpendingSummary{
		TotalRecords:  len(history),
		TotalExecuted: decimal.Zero,
	}
	for _, r := range history {
		if r.Approved {
			summary.ApprovedCount++
		} else {
			summary.RejectedCount++
		}
		summary.TotalExecuted = summary.TotalExecuted.Add(r.ExecutedAmount)
	}
	return summary
}
