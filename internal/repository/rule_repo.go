package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/pkg/database"
	"go.uber.org/zap"
)

// RuleRepository handles approval rule database operations. The ordered
// approver steps and the optional conditional rule are stored as JSON
// columns on the rule row.
type RuleRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *database.DB, logger *zap.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

const ruleColumns = `id, name, description, threshold_amount, currency, approvers, conditional, is_active, created_at, updated_at`

// Create inserts a new approval rule
func (r *RuleRepository) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	approvers, conditional, err := marshalRuleParts(rule)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO approval_rules (id, name, description, threshold_amount, currency, approvers, conditional, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Querier(ctx).ExecContext(ctx, query,
		rule.ID,
		rule.Name,
		nullString(rule.Description),
		rule.ThresholdAmount,
		rule.Currency,
		approvers,
		conditional,
		rule.IsActive,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create rule", zap.String("name", rule.Name), zap.Error(err))
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

// GetByID retrieves a rule by ID; returns nil when not found
func (r *RuleRepository) GetByID(ctx context.Context, id string) (*entity.ApprovalRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM approval_rules WHERE id = ?`
	rule, err := r.scanRule(r.db.Querier(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rule, err
}

// Update rewrites the rule definition
func (r *RuleRepository) Update(ctx context.Context, rule *entity.ApprovalRule) error {
	approvers, conditional, err := marshalRuleParts(rule)
	if err != nil {
		return err
	}

	query := `
		UPDATE approval_rules
		SET name = ?, description = ?, threshold_amount = ?, currency = ?, approvers = ?, conditional = ?, is_active = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.Querier(ctx).ExecContext(ctx, query,
		rule.Name,
		nullString(rule.Description),
		rule.ThresholdAmount,
		rule.Currency,
		approvers,
		conditional,
		rule.IsActive,
		rule.UpdatedAt,
		rule.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update rule", zap.String("id", rule.ID), zap.Error(err))
		return fmt.Errorf("failed to update rule: %w", err)
	}
	return requireRow(result, "rule", rule.ID)
}

// Delete removes a rule. Chains already snapshotted into expenses are not
// touched.
func (r *RuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Querier(ctx).ExecContext(ctx, `DELETE FROM approval_rules WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete rule", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete rule: %w", err)
	}
	return requireRow(result, "rule", id)
}

// List returns all rules ordered by creation time
func (r *RuleRepository) List(ctx context.Context) ([]*entity.ApprovalRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM approval_rules ORDER BY created_at`)
}

// ListActive returns rules eligible for selection
func (r *RuleRepository) ListActive(ctx context.Context) ([]*entity.ApprovalRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM approval_rules WHERE is_active = 1 ORDER BY created_at`)
}

func (r *RuleRepository) list(ctx context.Context, query string) ([]*entity.ApprovalRule, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list rules", zap.Error(err))
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*entity.ApprovalRule
	for rows.Next() {
		rule, err := r.scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *RuleRepository) scanRule(row rowScanner) (*entity.ApprovalRule, error) {
	var rule entity.ApprovalRule
	var description, conditional sql.NullString
	var threshold sql.NullFloat64
	var approvers string

	err := row.Scan(
		&rule.ID,
		&rule.Name,
		&description,
		&threshold,
		&rule.Currency,
		&approvers,
		&conditional,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		r.logger.Error("Failed to scan rule", zap.Error(err))
		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	rule.Description = description.String
	if threshold.Valid {
		rule.ThresholdAmount = &threshold.Float64
	}
	if err := json.Unmarshal([]byte(approvers), &rule.Approvers); err != nil {
		return nil, fmt.Errorf("failed to decode rule approvers: %w", err)
	}
	if conditional.Valid && conditional.String != "" {
		rule.Conditional = &entity.ConditionalRule{}
		if err := json.Unmarshal([]byte(conditional.String), rule.Conditional); err != nil {
			return nil, fmt.Errorf("failed to decode conditional rule: %w", err)
		}
	}
	return &rule, nil
}

func marshalRuleParts(rule *entity.ApprovalRule) (approvers string, conditional sql.NullString, err error) {
	steps := rule.Approvers
	if steps == nil {
		steps = []entity.ApprovalStep{}
	}
	data, err := json.Marshal(steps)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("failed to encode rule approvers: %w", err)
	}
	approvers = string(data)

	if rule.Conditional != nil {
		data, err := json.Marshal(rule.Conditional)
		if err != nil {
			return "", sql.NullString{}, fmt.Errorf("failed to encode conditional rule: %w", err)
		}
		conditional = sql.NullString{String: string(data), Valid: true}
	}
	return approvers, conditional, nil
}
