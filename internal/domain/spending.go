package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SpendingCategory string

const (
	CategoryUtilities     SpendingCategory = "utilities"
	CategoryEntertainment SpendingCategory = "entertainment"
	CategorySubscriptions SpendingCategory = "subscriptions"
	CategoryFood          SpendingCategory = "food"
	CategoryTransport     SpendingCategory = "transport"
	CategoryOther         SpendingCategory = "other"
)

// AllSpendingCategories lists every category in display order
var AllSpendingCategories = []SpendingCategory{
	CategoryUtilities,
	CategoryEntertainment,
	CategorySubscriptions,
	CategoryFood,
	CategoryTransport,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories
func (c SpendingCategory) IsValid() bool {
	for _, known := range AllSpendingCategories {
		if c == known {
			return true
		}
	}
	return false
}

// SpendingIntent is a spend an agent proposes to make
type SpendingIntent struct {
	Amount      decimal.Decimal  `json:"amount"`
	Category    SpendingCategory `json:"category"`
	Merchant    string           `json:"merchant"`
	Description string           `json:"description"`
	Timestamp   time.Time        `json:"timestamp"`
}

// SpendingRecord is one entry of an agent's spend history
type SpendingRecord struct {
	Intent         SpendingIntent  `json:"intent"`
	Approved       bool            `json:"approved"`
	ExecutedAmount decimal.Decimal `json:"executedAmount"`
}

type PolicyDecision struct {
	Approved               bool            `json:"approved"`
	Reason                 string          `json:"reason"`
	RequiresManualApproval bool            `json:"requiresManualApproval"`
	CategoryUsage          decimal.Decimal `json:"categoryUsage"`
	DailyUsage             decimal.Decimal `json:"dailyUsage"`
}

type CategoryBreakdown struct {
	Category   SpendingCategory `json:"category"`
	Used       decimal.Decimal  `json:"used"`
	Limit      decimal.Decimal  `json:"limit"`
	Percentage decimal.Decimal  `json:"percentage"`
}

// SpendingSummary aggregates a spend history
type SpendingSummary struct {
	TotalRecords  int             `json:"totalRecords"`
	ApprovedCount int             `json:"approvedCount"`
	RejectedCount int             `json:"rejectedCount"`
	TotalExecuted decimal.Decimal `json:"totalExecuted"`
}
