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

// ExpenseRepository handles expense database operations. The snapshotted
// approval chain lives as a JSON column on the expense row; the approval
// history is an append-only table joined in on reads.
type ExpenseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *database.DB, logger *zap.Logger) *ExpenseRepository {
	return &ExpenseRepository{db: db, logger: logger}
}

const expenseColumns = `id, employee_id, employee_name, amount, currency, amount_company_ccy,
	category, description, expense_date, receipt_url, status, submitted_at,
	current_approver_id, rule_id, chain, conditional`

// Create inserts a new expense with its snapshotted chain
func (r *ExpenseRepository) Create(ctx context.Context, expense *entity.Expense) error {
	chain, err := marshalChain(expense.Chain)
	if err != nil {
		return err
	}
	conditional, err := marshalConditional(expense.Conditional)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO expenses (id, employee_id, employee_name, amount, currency, amount_company_ccy,
			category, description, expense_date, receipt_url, status, submitted_at,
			current_approver_id, rule_id, chain, conditional)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Querier(ctx).ExecContext(ctx, query,
		expense.ID,
		expense.EmployeeID,
		nullString(expense.EmployeeName),
		expense.Amount,
		expense.Currency,
		expense.AmountInCompanyCcy,
		expense.Category,
		expense.Description,
		expense.Date,
		nullString(expense.ReceiptURL),
		expense.Status,
		expense.SubmittedAt,
		nullString(expense.CurrentApproverID),
		nullString(expense.RuleID),
		chain,
		conditional,
	)
	if err != nil {
		r.logger.Error("Failed to create expense", zap.String("employee_id", expense.EmployeeID), zap.Error(err))
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense with its approval history; nil when missing
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`
	expense, err := r.scanExpense(r.db.Querier(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	history, err := r.historyFor(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.ApprovalHistory = history
	return expense, nil
}

// UpdateState sets the status and current approver pointer
func (r *ExpenseRepository) UpdateState(ctx context.Context, id, status, currentApproverID string) error {
	query := `UPDATE expenses SET status = ?, current_approver_id = ? WHERE id = ?`
	result, err := r.db.Querier(ctx).ExecContext(ctx, query, status, nullString(currentApproverID), id)
	if err != nil {
		r.logger.Error("Failed to update expense state", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update expense state: %w", err)
	}
	return requireRow(result, "expense", id)
}

// AppendAction records one approval action. Rows are never updated or
// deleted.
func (r *ExpenseRepository) AppendAction(ctx context.Context, action *entity.ApprovalAction) error {
	query := `
		INSERT INTO approval_actions (id, expense_id, approver_id, approver_name, action, comments, timestamp, step)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		action.ID,
		action.ExpenseID,
		action.ApproverID,
		nullString(action.ApproverName),
		action.Action,
		nullString(action.Comments),
		action.Timestamp,
		action.Step,
	)
	if err != nil {
		r.logger.Error("Failed to append approval action",
			zap.String("expense_id", action.ExpenseID), zap.Error(err))
		return fmt.Errorf("failed to append approval action: %w", err)
	}
	return nil
}

// ListByEmployee returns the submitter's expenses, newest first
func (r *ExpenseRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE employee_id = ? ORDER BY submitted_at DESC`
	return r.list(ctx, query, employeeID)
}

// ListByApprover returns expenses currently waiting on the given approver
func (r *ExpenseRepository) ListByApprover(ctx context.Context, approverID string) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE current_approver_id = ? ORDER BY submitted_at`
	return r.list(ctx, query, approverID)
}

// List returns all expenses, newest first
func (r *ExpenseRepository) List(ctx context.Context) ([]*entity.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses ORDER BY submitted_at DESC`
	return r.list(ctx, query)
}

func (r *ExpenseRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Expense, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", zap.Error(err))
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*entity.Expense
	for rows.Next() {
		expense, err := r.scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, expense := range expenses {
		history, err := r.historyFor(ctx, expense.ID)
		if err != nil {
			return nil, err
		}
		expense.ApprovalHistory = history
	}
	return expenses, nil
}

func (r *ExpenseRepository) historyFor(ctx context.Context, expenseID string) ([]entity.ApprovalAction, error) {
	query := `
		SELECT id, expense_id, approver_id, approver_name, action, comments, timestamp, step
		FROM approval_actions
		WHERE expense_id = ?
		ORDER BY step
	`
	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, expenseID)
	if err != nil {
		r.logger.Error("Failed to load approval history", zap.String("expense_id", expenseID), zap.Error(err))
		return nil, fmt.Errorf("failed to load approval history: %w", err)
	}
	defer rows.Close()

	history := []entity.ApprovalAction{}
	for rows.Next() {
		var action entity.ApprovalAction
		var approverName, comments sql.NullString
		err := rows.Scan(
			&action.ID,
			&action.ExpenseID,
			&action.ApproverID,
			&approverName,
			&action.Action,
			&comments,
			&action.Timestamp,
			&action.Step,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan approval action: %w", err)
		}
		action.ApproverName = approverName.String
		action.Comments = comments.String
		history = append(history, action)
	}
	return history, rows.Err()
}

func (r *ExpenseRepository) scanExpense(row rowScanner) (*entity.Expense, error) {
	var expense entity.Expense
	var employeeName, receiptURL, currentApprover, ruleID, chain, conditional sql.NullString
	var converted sql.NullFloat64

	err := row.Scan(
		&expense.ID,
		&expense.EmployeeID,
		&employeeName,
		&expense.Amount,
		&expense.Currency,
		&converted,
		&expense.Category,
		&expense.Description,
		&expense.Date,
		&receiptURL,
		&expense.Status,
		&expense.SubmittedAt,
		&currentApprover,
		&ruleID,
		&chain,
		&conditional,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		r.logger.Error("Failed to scan expense", zap.Error(err))
		return nil, fmt.Errorf("failed to scan expense: %w", err)
	}

	expense.EmployeeName = employeeName.String
	expense.ReceiptURL = receiptURL.String
	expense.CurrentApproverID = currentApprover.String
	expense.RuleID = ruleID.String
	if converted.Valid {
		expense.AmountInCompanyCcy = &converted.Float64
	}
	if chain.Valid && chain.String != "" {
		if err := json.Unmarshal([]byte(chain.String), &expense.Chain); err != nil {
			return nil, fmt.Errorf("failed to decode expense chain: %w", err)
		}
	}
	if conditional.Valid && conditional.String != "" {
		expense.Conditional = &entity.ConditionalRule{}
		if err := json.Unmarshal([]byte(conditional.String), expense.Conditional); err != nil {
			return nil, fmt.Errorf("failed to decode expense conditional: %w", err)
		}
	}
	return &expense, nil
}

func marshalChain(chain []entity.ChainStep) (sql.NullString, error) {
	if len(chain) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(chain)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode expense chain: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func marshalConditional(cond *entity.ConditionalRule) (sql.NullString, error) {
	if cond == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(cond)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode expense conditional: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
