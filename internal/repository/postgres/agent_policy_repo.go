package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/payfi/payfi-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// AgentPolicyRepository implements domain.AgentPolicyRepository using PostgreSQL
type AgentPolicyRepository struct {
	pool *pgxpool.Pool
}

var _ domain.AgentPolicyRepository = (*AgentPolicyRepository)(nil)

// NewAgentPolicyRepository creates a new AgentPolicyRepository
func NewAgentPolicyRepository(pool *pgxpool.Pool) *AgentPolicyRepository {
	return &AgentPolicyRepository{pool: pool}
}

const agentPolicyColumns = `owner_id, agent_id, enabled, category_limits, auto_repay, penalty_mode,
	daily_spend_limit, require_approval_above, created_at, updated_at`

const getAgentPolicy = `SELECT ` + agentPolicyColumns + `
FROM agent_policies
WHERE owner_id = $1 AND agent_id = $2`

const upsertAgentPolicy = `INSERT INTO agent_policies (
	owner_id, agent_id, enabled, category_limits, auto_repay, penalty_mode,
	daily_spend_limit, require_approval_above
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (owner_id, agent_id) DO UPDATE SET
	enabled = EXCLUDED.enabled,
	category_limits = EXCLUDED.category_limits,
	auto_repay = EXCLUDED.auto_repay,
	penalty_mode = EXCLUDED.penalty_mode,
	daily_spend_limit = EXCLUDED.daily_spend_limit,
	require_approval_above = EXCLUDED.require_approval_above,
	updated_at = NOW()
RETURNING ` + agentPolicyColumns

const deleteAgentPolicy = `DELETE FROM agent_policies WHERE owner_id = $1 AND agent_id = $2`

// Get retrieves the stored policy for an agent
func (r *AgentPolicyRepository) Get(ownerID string, agentID uuid.UUID) (*domain.StoredAgentPolicy, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, getAgentPolicy, ownerID, agentID)
	stored, err := scanAgentPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAgentPolicyNotFound
		}
		return nil, err
	}
	return stored, nil
}

// Upsert creates or replaces the stored policy for an agent
func (r *AgentPolicyRepository) Upsert(ownerID string, agentID uuid.UUID, policy *domain.AgentPolicy) (*domain.StoredAgentPolicy, error) {
	ctx := context.Background()

	limits, err := json.Marshal(policy.CategoryLimits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode category limits: %w", err)
	}
	dailyLimit, err := decimalToPgNumeric(policy.DailySpendLimit)
	if err != nil {
		return nil, err
	}
	approvalAbove, err := decimalToPgNumeric(policy.RequireApprovalAbove)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, upsertAgentPolicy,
		ownerID,
		agentID,
		policy.Enabled,
		limits,
		policy.AutoRepay,
		string(policy.PenaltyMode),
		dailyLimit,
		approvalAbove,
	)
	return scanAgentPolicy(row)
}

// Delete removes the stored policy for an agent
func (r *AgentPolicyRepository) Delete(ownerID string, agentID uuid.UUID) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, deleteAgentPolicy, ownerID, agentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAgentPolicyNotFound
	}
	return nil
}

func scanAgentPolicy(row pgx.Row) (*domain.StoredAgentPolicy, error) {
	var (
		stored        domain.StoredAgentPolicy
		limits        []byte
		penaltyMode   string
		dailyLimit    pgtype.Numeric
		approvalAbove pgtype.Numeric
		createdAt     pgtype.Timestamptz
		updatedAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&stored.OwnerID,
		&stored.AgentID,
		&stored.Policy.Enabled,
		&limits,
		&stored.Policy.AutoRepay,
		&penaltyMode,
		&dailyLimit,
		&approvalAbove,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	stored.Policy.CategoryLimits, err = decodeCategoryLimits(limits)
	if err != nil {
		return nil, err
	}
	stored.Policy.PenaltyMode = domain.PenaltyMode(penaltyMode)
	stored.Policy.DailySpendLimit = pgNumericToDecimal(dailyLimit)
	stored.Policy.RequireApprovalAbove = pgNumericToDecimal(approvalAbove)
	stored.CreatedAt = pgTimestamptzToTime(createdAt)
	stored.UpdatedAt = pgTimestamptzToTime(updatedAt)
	return &stored, nil
}

// decodeCategoryLimits reads the JSONB limits column, dropping categories this build doesn't know
func decodeCategoryLimits(raw []byte) (map[domain.SpendingCategory]decimal.Decimal, error) {
	decoded := make(map[domain.SpendingCategory]decimal.Decimal)
	if len(raw) == 0 {
		return decoded, nil
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode category limits: %w", err)
	}
	for c := range decoded {
		if !c.IsValid() {
			delete(decoded, c)
		}
	}
	return decoded, nil
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if !ts.Valid {
		return time.Time{}
	}
	return ts.Time
}
