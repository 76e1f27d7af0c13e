package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/dafibh/payfi/payfi-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AgentPolicyHandler handles agent spending policy HTTP requests
type AgentPolicyHandler struct {
	policyService *service.AgentPolicyService
}

// NewAgentPolicyHandler creates a new AgentPolicyHandler
func NewAgentPolicyHandler(policyService *service.AgentPolicyService) *AgentPolicyHandler {
	return &AgentPolicyHandler{policyService: policyService}
}

// UpdateAgentPolicyRequest represents the update policy request body.
// Omitted fields keep their current value.
type UpdateAgentPolicyRequest struct {
	Enabled              *bool             `json:"enabled,omitempty"`
	CategoryLimits       map[string]string `json:"categoryLimits,omitempty"`
	AutoRepay            *bool             `json:"autoRepay,omitempty"`
	PenaltyMode          *string           `json:"penaltyMode,omitempty"`
	DailySpendLimit      *string           `json:"dailySpendLimit,omitempty"`
	RequireApprovalAbove *string           `json:"requireApprovalAbove,omitempty"`
}

// AgentPolicyResponse represents an agent policy in API responses
type AgentPolicyResponse struct {
	Enabled              bool              `json:"enabled"`
	CategoryLimits       map[string]string `json:"categoryLimits"`
	AutoRepay            bool              `json:"autoRepay"`
	PenaltyMode          string            `json:"penaltyMode"`
	DailySpendLimit      string            `json:"dailySpendLimit"`
	RequireApprovalAbove string            `json:"requireApprovalAbove"`
}

// OnChainPolicyResponse represents the on-chain subset of a policy
type OnChainPolicyResponse struct {
	DailyLimit   string `json:"dailyLimit"`
	PerTxLimit   string `json:"perTxLimit"`
	CanUseCredit bool   `json:"canUseCredit"`
}

// GetPolicy godoc
// @Summary Get an agent's spending policy
// @Description Returns the stored policy, or the defaults when none was saved
// @Tags agent-policy
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} AgentPolicyResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /agents/{agentId}/policy [get]
func (h *AgentPolicyHandler) GetPolicy(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	p, err := h.policyService.GetPolicy(ownerID, agentID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Str("agent_id", agentID.String()).Msg("Failed to get agent policy")
		return NewInternalError(c, "Failed to get agent policy")
	}

	return c.JSON(http.StatusOK, toAgentPolicyResponse(p))
}

// UpdatePolicy godoc
// @Summary Update an agent's spending policy
// @Description Merges the given fields over the current policy. Percentages are clamped to 0-100 and limits to >= 0.
// @Tags agent-policy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Param request body UpdateAgentPolicyRequest true "Policy fields to change"
// @Success 200 {object} AgentPolicyResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /agents/{agentId}/policy [put]
func (h *AgentPolicyHandler) UpdatePolicy(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	var req UpdateAgentPolicyRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	patch, validationErrors := req.toPatch()
	if len(validationErrors) > 0 {
		return NewValidationError(c, "Validation failed", validationErrors)
	}

	updated, err := h.policyService.UpdatePolicy(ownerID, agentID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCategory) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "categoryLimits", Message: categoryMessage},
			})
		}
		if errors.Is(err, domain.ErrInvalidPenaltyMode) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "penaltyMode", Message: "Must be one of: strict, relaxed"},
			})
		}
		log.Error().Err(err).Str("owner_id", ownerID).Str("agent_id", agentID.String()).Msg("Failed to update agent policy")
		return NewInternalError(c, "Failed to update agent policy")
	}

	log.Info().Str("owner_id", ownerID).Str("agent_id", agentID.String()).Bool("enabled", updated.Enabled).Msg("Agent policy updated")

	return c.JSON(http.StatusOK, toAgentPolicyResponse(updated))
}

// ResetPolicy godoc
// @Summary Reset an agent's spending policy
// @Description Deletes the stored policy; the agent falls back to the defaults
// @Tags agent-policy
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} AgentPolicyResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /agents/{agentId}/policy [delete]
func (h *AgentPolicyHandler) ResetPolicy(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	p, err := h.policyService.ResetPolicy(ownerID, agentID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Str("agent_id", agentID.String()).Msg("Failed to reset agent policy")
		return NewInternalError(c, "Failed to reset agent policy")
	}

	return c.JSON(http.StatusOK, toAgentPolicyResponse(p))
}

// GetOnChainPolicy godoc
// @Summary Get the on-chain part of an agent's policy
// @Description Returns the fields mirrored to the AgentPolicy contract. Category limits are never on-chain.
// @Tags agent-policy
// @Produce json
// @Security BearerAuth
// @Param agentId path string true "Agent ID"
// @Success 200 {object} OnChainPolicyResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /agents/{agentId}/policy/onchain [get]
func (h *AgentPolicyHandler) GetOnChainPolicy(c echo.Context) error {
	ownerID, agentID, ok, err := agentScope(c)
	if !ok {
		return err
	}

	onChain, err := h.policyService.GetOnChainPolicy(ownerID, agentID)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID).Str("agent_id", agentID.String()).Msg("Failed to get on-chain policy")
		return NewInternalError(c, "Failed to get on-chain policy")
	}

	return c.JSON(http.StatusOK, OnChainPolicyResponse{
		DailyLimit:   onChain.DailyLimit.String(),
		PerTxLimit:   onChain.PerTxLimit.String(),
		CanUseCredit: onChain.CanUseCredit,
	})
}

func (r *UpdateAgentPolicyRequest) toPatch() (*domain.AgentPolicyPatch, []ValidationError) {
	var errs []ValidationError
	patch := &domain.AgentPolicyPatch{
		Enabled:   r.Enabled,
		AutoRepay: r.AutoRepay,
	}

	if len(r.CategoryLimits) > 0 {
		patch.CategoryLimits = make(map[domain.SpendingCategory]decimal.Decimal, len(r.CategoryLimits))
		for name, raw := range r.CategoryLimits {
			category := domain.SpendingCategory(name)
			if !category.IsValid() {
				errs = append(errs, ValidationError{Field: "categoryLimits." + name, Message: categoryMessage})
				continue
			}
			v, err := decimal.NewFromString(raw)
			if err != nil {
				errs = append(errs, ValidationError{Field: "categoryLimits." + name, Message: "Must be a valid decimal number"})
				continue
			}
			patch.CategoryLimits[category] = v
		}
	}

	if r.PenaltyMode != nil {
		mode := domain.PenaltyMode(*r.PenaltyMode)
		if !mode.IsValid() {
			errs = append(errs, ValidationError{Field: "penaltyMode", Message: "Must be one of: strict, relaxed"})
		}
		patch.PenaltyMode = &mode
	}

	if r.DailySpendLimit != nil {
		v, err := decimal.NewFromString(*r.DailySpendLimit)
		if err != nil {
			errs = append(errs, ValidationError{Field: "dailySpendLimit", Message: "Must be a valid decimal number"})
		}
		patch.DailySpendLimit = &v
	}

	if r.RequireApprovalAbove != nil {
		v, err := decimal.NewFromString(*r.RequireApprovalAbove)
		if err != nil {
			errs = append(errs, ValidationError{Field: "requireApprovalAbove", Message: "Must be a valid decimal number"})
		}
		patch.RequireApprovalAbove = &v
	}

	return patch, errs
}

func toAgentPolicyResponse(p *domain.AgentPolicy) AgentPolicyResponse {
	limits := make(map[string]string, len(domain.AllSpendingCategories))
	for _, c := range domain.AllSpendingCategories {
		limits[string(c)] = p.CategoryLimit(c).String()
	}
	return AgentPolicyResponse{
		Enabled:              p.Enabled,
		CategoryLimits:       limits,
		AutoRepay:            p.AutoRepay,
		PenaltyMode:          string(p.PenaltyMode),
		DailySpendLimit:      p.DailySpendLimit.String(),
		RequireApprovalAbove: p.RequireApprovalAbove.String(),
	}
}
