package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/dafibh/payfi/payfi-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const categoryMessage = "Must be one of: utilities, entertainment, subscriptions, food, transport, other"

// SpendingHandler handles agent spending HTTP requests
type SpendingHandler struct {
	spendingService *service.SpendingService
}

// NewSpendingHandler creates a new SpendingHandler
func NewSpendingHandler(spendingService *service.SpendingService) *SpendingHandler {
	return &SpendingHandler{spendingService: spendingService}
}

// SpendingIntentRequest is a proposed spend. Timestamp is RFC 3339 and defaults to now.
type SpendingIntentRequest struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Merchant    string `json:"merchant"`
	Description string `json:"description,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

// EvaluateRequest represents the evaluate request body
type EvaluateRequest struct {
	Intent          SpendingIntentRequest `json:"intent"`
	AvailableCredit string                `json:"availableCredit"`
}

// RecordSpendingRequest represents the record spending request body
type RecordSpendingRequest struct {
	Intent         SpendingIntentRequest `json:"intent"`
	Approved       bool                  `json:"approved"`
	ExecutedAmount string                `json:"executedAmount"`
}

// PolicyDecisionResponse represents an evaluation result
type PolicyDecisionResponse struct {
	Approved               bool   `json:"approved"`
	Reason                 string `json:"reason"`
	RequiresManualApproval bool   `json:"requiresManualApproval"`
	CategoryUsage          string `json:"categoryUsage"`
	DailyUsage             string `json:"dailyUsage"`
}

// SpendingIntentResponse represents an intent in API responses
type SpendingIntentResponse struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Merchant    string `json:"merchant"`
	Description string `json:"description"`
	Timestamp   string `json:"timestamp"`
}

// SpendingRecordResponse represents a recorded spend
type SpendingRecordResponse struct {
	Intent         SpendingIntentResponse `json:"intent"`
	Approved       bool                   `json:"approved"`
	ExecutedAmount string                 `json:"executedAmount"`
}

// SpendingSummaryResponse summarizes an agent's history
type SpendingSummaryResponse struct {
	TotalRecords  int    `json:"totalRecords"`
	ApprovedCount int    `json:"approvedCount"`
	RejectedCount int    `json:"rejectedCount"`
	TotalExecuted string `json:"totalExecuted"`
}

// SpendingHistoryResponse represents an agent's spend history
type SpendingHistoryResponse struct {
	Records []SpendingRecordResponse `json:"records"`
	Summary SpendingSummaryResponse  `json:"summary"`
}

// CategoryBreakdownResponse represents usage of one category
type CategoryBreakdownResponse struct {
	Category   string `json:"category"`
	Used       string `json:"used"`
	Limit      string `json:"limit"`
	Percentage string `json:"percentage"`
}

// HistoryExportResponse describes a completed export
type HistoryExportResponse struct {
	URL         string `json:"url"`
	ObjectPath  string `json:"objectPath"`
	RecordCount int    `json:"recordCount"`
	ExpiresAt   string `json:"expiresAt"`
}

// Evaluate godoc
// @Summary Evaluate a spending intent
// @Description Decides whether the agent may make the spend. Nothing is recorded; call POST /spending after executing.
// @Tags spending
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Param request body EvaluateRequest true "Intent and available credit"
// @Success 200 {object} PolicyDecisionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /agents/{agentId}/evaluate [post]
func (h *SpendingHandler) Evaluate(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	var req EvaluateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	intent, validationErrors := req.Intent.toDomain("intent.")
	availableCredit, err := decimal.NewFromString(req.AvailableCredit)
	if err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "availableCredit", Message: "Must be a valid decimal number"})
	}
	if len(validationErrors) > 0 {
		return NewValidationError(c, "Validation failed", validationErrors)
	}

	decision, err := h.spendingService.Evaluate(c.Request().Context(), ownerID, agentID, service.EvaluateInput{
		Intent:          intent,
		AvailableCredit: availableCredit,
	})
	if err != nil {
		if resp, handled := spendingValidationError(c, err); handled {
			return resp
		}
		log.Error().Err(err).Str("owner_id", ownerID).Str("agent_id", agentID.String()).Msg("Failed to evaluate spending intent")
		return NewInternalError(c, "Failed to evaluate spending intent")
	}

	return c.JSON(http.StatusOK, PolicyDecisionResponse{
		Approved:               decision.Approved,
		Reason:                 decision.Reason,
		RequiresManualApproval: decision.RequiresManualApproval,
		CategoryUsage:          decision.CategoryUsage.StringFixed(2),
		DailyUsage:             decision.DailyUsage.String(),
	})
}

// RecordSpending godoc
// @Summary Record an attempted spend
// @Description Appends the outcome of a spend to the agent's history. Only the executed amount counts toward limits; it defaults to the intent amount when approved and to zero when rejected.
// @Tags spending
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Param request body RecordSpendingRequest true "Spend outcome"
// @Success 201 {object} SpendingRecordResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /agents/{agentId}/spending [post]
func (h *SpendingHandler) RecordSpending(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	var req RecordSpendingRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	intent, validationErrors := req.Intent.toDomain("intent.")
	// An omitted executed amount means the full intent for an approved spend
	// and nothing for a rejected one.
	executed := decimal.Zero
	if req.ExecutedAmount != "" {
		executed, err = decimal.NewFromString(req.ExecutedAmount)
		if err != nil {
			validationErrors = append(validationErrors, ValidationError{Field: "executedAmount", Message: "Must be a valid decimal number"})
		}
	} else if req.Approved {
		executed = intent.Amount
	}
	if len(validationErrors) > 0 {
		return NewValidationError(c, "Validation failed", validationErrors)
	}

	record, err := h.spendingService.RecordSpending(ownerID, agentID, domain.SpendingRecord{
		Intent:         intent,
		Approved:       req.Approved,
		ExecutedAmount: executed,
	})
	if err != nil {
		if resp, handled := spendingValidationError(c, err); handled {
			return resp
		}
		log.Error().Err(err).Str("owner_id", ownerID).Str("agent_id", agentID.String()).Msg("Failed to record spending")
		return NewInternalError(c, "Failed to record spending")
	}

	return c.JSON(http.StatusCreated, toSpendingRecordResponse(*record))
}

// GetHistory godoc
// @Summary Get an agent's spend history
// @Description Returns up to the last 100 records, oldest first, with a summary
// @Tags spending
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} SpendingHistoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /agents/{agentId}/spending [get]
func (h *SpendingHandler) GetHistory(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	history := h.spendingService.GetHistory(ownerID, agentID)

	records := make([]SpendingRecordResponse, len(history.Records))
	for i, r := range history.Records {
		records[i] = toSpendingRecordResponse(r)
	}

	return c.JSON(http.StatusOK, SpendingHistoryResponse{
		Records: records,
		Summary: SpendingSummaryResponse{
			TotalRecords:  history.Summary.TotalRecords,
			ApprovedCount: history.Summary.ApprovedCount,
			RejectedCount: history.Summary.RejectedCount,
			TotalExecuted: history.Summary.TotalExecuted.String(),
		},
	})
}

// ClearHistory godoc
// @Summary Clear an agent's spend history
// @Tags spending
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 204
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /agents/{agentId}/spending [delete]
func (h *SpendingHandler) ClearHistory(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	h.spendingService.ClearHistory(ownerID, agentID)
	return c.NoContent(http.StatusNoContent)
}

// GetBreakdown godoc
// @Summary Get per-category usage
// @Description Usage of every category over the last 30 days against its limit, for the given available credit
// @Tags spending
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Param availableCredit query string true "Available credit"
// @Success 200 {array} CategoryBreakdownResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /agents/{agentId}/spending/breakdown [get]
func (h *SpendingHandler) GetBreakdown(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	availableCredit, err := decimal.NewFromString(c.QueryParam("availableCredit"))
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "availableCredit", Message: "Must be a valid decimal number"},
		})
	}

	breakdown, err := h.spendingService.GetBreakdown(ownerID, agentID, availableCredit)
	if err != nil {
		if resp, handled := spendingValidationError(c, err); handled {
			return resp
		}
		log.Error().Err(err).Str("owner_id", ownerID).Str("agent_id", agentID.String()).Msg("Failed to get spending breakdown")
		return NewInternalError(c, "Failed to get spending breakdown")
	}

	response := make([]CategoryBreakdownResponse, len(breakdown))
	for i, b := range breakdown {
		response[i] = CategoryBreakdownResponse{
			Category:   string(b.Category),
			Used:       b.Used.String(),
			Limit:      b.Limit.String(),
			Percentage: b.Percentage.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// ExportHistory godoc
// @Summary Export an agent's spend history
// @Description Uploads the history as CSV and returns a short-lived download URL
// @Tags spending
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 201 {object} HistoryExportResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /agents/{agentId}/spending/export [post]
func (h *SpendingHandler) ExportHistory(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	export, err := h.spendingService.ExportHistory(c.Request().Context(), ownerID, agentID)
	if err != nil {
		if errors.Is(err, domain.ErrExportUnavailable) {
			return NewServiceUnavailableError(c, "History export is not configured")
		}
		if errors.Is(err, domain.ErrEmptyHistory) {
			return NewNotFoundError(c, "No spending recorded for this agent")
		}
		log.Error().Err(err).Str("owner_id", ownerID).Str("agent_id", agentID.String()).Msg("Failed to export spending history")
		return NewInternalError(c, "Failed to export spending history")
	}

	return c.JSON(http.StatusCreated, HistoryExportResponse{
		URL:         export.URL,
		ObjectPath:  export.ObjectPath,
		RecordCount: export.RecordCount,
		ExpiresAt:   export.ExpiresAt.Format(time.RFC3339),
	})
}

func (r SpendingIntentRequest) toDomain(prefix string) (domain.SpendingIntent, []ValidationError) {
	var errs []ValidationError
	intent := domain.SpendingIntent{
		Category:    domain.SpendingCategory(r.Category),
		Merchant:    r.Merchant,
		Description: r.Description,
	}

	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		errs = append(errs, ValidationError{Field: prefix + "amount", Message: "Must be a valid decimal number"})
	}
	intent.Amount = amount

	if !intent.Category.IsValid() {
		errs = append(errs, ValidationError{Field: prefix + "category", Message: categoryMessage})
	}

	if r.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339, r.Timestamp)
		if err != nil {
			errs = append(errs, ValidationError{Field: prefix + "timestamp", Message: "Must be an RFC 3339 timestamp"})
		}
		intent.Timestamp = ts
	}

	return intent, errs
}

// spendingValidationError maps service validation errors to 400 responses
func spendingValidationError(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, domain.ErrRejectedSpendExecuted):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "executedAmount", Message: "A rejected spend must have a zero executed amount"},
		}), true
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amounts must be zero or positive"},
		}), true
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "intent.category", Message: categoryMessage},
		}), true
	case errors.Is(err, domain.ErrMerchantTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "intent.merchant", Message: "Merchant must be 255 characters or less"},
		}), true
	}
	return nil, false
}

func toSpendingRecordResponse(r domain.SpendingRecord) SpendingRecordResponse {
	return SpendingRecordResponse{
		Intent: SpendingIntentResponse{
			Amount:      r.Intent.Amount.String(),
			Category:    string(r.Intent.Category),
			Merchant:    r.Intent.Merchant,
			Description: r.Intent.Description,
			Timestamp:   r.Intent.Timestamp.Format(time.RFC3339),
		},
		Approved:       r.Approved,
		ExecutedAmount: r.ExecutedAmount.String(),
	}
}
