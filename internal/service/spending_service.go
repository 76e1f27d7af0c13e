package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/dafibh/payfi/payfi-backend/internal/policy"
	"github.com/dafibh/payfi/payfi-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SpendingService gates agent spending against the agent's policy and keeps
// each agent's in-memory spend history.
//
// Evaluate never records. A caller that goes on to execute a spend must call
// RecordSpending itself; until it does, the spend is invisible to later checks.
type SpendingService struct {
	policyService  *AgentPolicyService
	trackers       *policy.TrackerRegistry
	exportRepo     domain.ExportRepository
	eventPublisher websocket.EventPublisher
	logger         zerolog.Logger
	now            func() time.Time
	exportURLTTL   time.Duration
}

// DefaultExportURLTTL is how long a presigned export URL stays valid
const DefaultExportURLTTL = 15 * time.Minute

// NewSpendingService creates a new SpendingService
func NewSpendingService(
	policyService *AgentPolicyService,
	trackers *policy.TrackerRegistry,
	logger zerolog.Logger,
) *SpendingService {
	return &SpendingService{
		policyService: policyService,
		trackers:      trackers,
		logger:        logger.With().Str("component", "spending_service").Logger(),
		now:           time.Now,
		exportURLTTL:  DefaultExportURLTTL,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SpendingService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetExportRepository enables history exports
func (s *SpendingService) SetExportRepository(repo domain.ExportRepository) {
	s.exportRepo = repo
}

func (s *SpendingService) publishEvent(ownerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(ownerID, event)
	}
}

// EvaluateInput holds the input for evaluating a spending intent
type EvaluateInput struct {
	Intent          domain.SpendingIntent
	AvailableCredit decimal.Decimal
}

// Evaluate decides whether the agent may make the spend. It does not record it.
func (s *SpendingService) Evaluate(ctx context.Context, ownerID string, agentID uuid.UUID, input EvaluateInput) (*domain.PolicyDecision, error) {
	intent, err := s.normalizeIntent(input.Intent)
	if err != nil {
		return nil, err
	}
	if input.AvailableCredit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	agentPolicy, err := s.policyService.GetPolicy(ownerID, agentID)
	if err != nil {
		return nil, err
	}

	tracker := s.trackers.Get(ownerID, agentID)
	decision := policy.Evaluate(intent, input.AvailableCredit, agentPolicy, tracker)

	s.logger.Info().
		Str("owner_id", ownerID).
		Str("agent_id", agentID.String()).
		Str("category", string(intent.Category)).
		Str("amount", intent.Amount.String()).
		Bool("approved", decision.Approved).
		Bool("requires_manual_approval", decision.RequiresManualApproval).
		Str("reason", decision.Reason).
		Msg("Evaluated spending intent")

	s.publishEvent(ownerID, websocket.SpendingEvaluated(agentID.String(), map[string]interface{}{
		"intent":   intent,
		"decision": decision,
	}))

	return &decision, nil
}

// RecordSpending appends an attempted spend to the agent's history
func (s *SpendingService) RecordSpending(ownerID string, agentID uuid.UUID, record domain.SpendingRecord) (*domain.SpendingRecord, error) {
	intent, err := s.normalizeIntent(record.Intent)
	if err != nil {
		return nil, err
	}
	if record.ExecutedAmount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if !record.Approved && !record.ExecutedAmount.IsZero() {
		return nil, domain.ErrRejectedSpendExecuted
	}
	record.Intent = intent

	s.trackers.Get(ownerID, agentID).AddRecord(record)

	s.logger.Debug().
		Str("owner_id", ownerID).
		Str("agent_id", agentID.String()).
		Bool("approved", record.Approved).
		Str("executed_amount", record.ExecutedAmount.String()).
		Msg("Recorded spending")

	s.publishEvent(ownerID, websocket.SpendingRecorded(agentID.String(), record))
	return &record, nil
}

// SpendingHistory is an agent's records with their summary
type SpendingHistory struct {
	Records []domain.SpendingRecord `json:"records"`
	Summary domain.SpendingSummary  `json:"summary"`
}

// GetHistory returns the agent's spend history, oldest first
func (s *SpendingService) GetHistory(ownerID string, agentID uuid.UUID) *SpendingHistory {
	records := s.trackers.Get(ownerID, agentID).History()
	return &SpendingHistory{
		Records: records,
		Summary: policy.Summarize(records),
	}
}

// GetBreakdown reports per-category usage for the agent against availableCredit
func (s *SpendingService) GetBreakdown(ownerID string, agentID uuid.UUID, availableCredit decimal.Decimal) ([]domain.CategoryBreakdown, error) {
	if availableCredit.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	agentPolicy, err := s.policyService.GetPolicy(ownerID, agentID)
	if err != nil {
		return nil, err
	}
	return policy.Breakdown(availableCredit, agentPolicy, s.trackers.Get(ownerID, agentID)), nil
}

// ClearHistory empties the agent's spend history
func (s *SpendingService) ClearHistory(ownerID string, agentID uuid.UUID) {
	s.trackers.Get(ownerID, agentID).Clear()

	s.logger.Info().
		Str("owner_id", ownerID).
		Str("agent_id", agentID.String()).
		Msg("Cleared spending history")

	s.publishEvent(ownerID, websocket.SpendingCleared(agentID.String()))
}

// normalizeIntent validates an intent and stamps it with the current time if unset
func (s *SpendingService) normalizeIntent(intent domain.SpendingIntent) (domain.SpendingIntent, error) {
	if intent.Amount.IsNegative() {
		return intent, domain.ErrInvalidAmount
	}
	if !intent.Category.IsValid() {
		return intent, domain.ErrInvalidCategory
	}
	intent.Merchant = strings.TrimSpace(intent.Merchant)
	if len(intent.Merchant) > domain.MaxMerchantLength {
		return intent, domain.ErrMerchantTooLong
	}
	intent.Description = truncateUTF8(intent.Description, domain.MaxDescriptionLength)
	if intent.Timestamp.IsZero() {
		intent.Timestamp = s.now()
	}
	return intent, nil
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
