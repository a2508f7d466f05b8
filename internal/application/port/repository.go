package port

import (
	"context"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
)

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.User, error)
}

// CompanyRepository defines persistence operations for Company
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	Get(ctx context.Context) (*entity.Company, error)
}

// RuleRepository defines persistence operations for ApprovalRule
type RuleRepository interface {
	Create(ctx context.Context, rule *entity.ApprovalRule) error
	GetByID(ctx context.Context, id string) (*entity.ApprovalRule, error)
	Update(ctx context.Context, rule *entity.ApprovalRule) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.ApprovalRule, error)
	ListActive(ctx context.Context) ([]*entity.ApprovalRule, error)
}

// ExpenseRepository defines persistence operations for Expense. GetByID
// returns the expense with its approval history loaded in action order.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *entity.Expense) error
	GetByID(ctx context.Context, id string) (*entity.Expense, error)
	UpdateState(ctx context.Context, id, status, currentApproverID string) error
	AppendAction(ctx context.Context, action *entity.ApprovalAction) error
	ListByEmployee(ctx context.Context, employeeID string) ([]*entity.Expense, error)
	ListByApprover(ctx context.Context, approverID string) ([]*entity.Expense, error)
	List(ctx context.Context) ([]*entity.Expense, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
	ListUnsent(ctx context.Context, limit int) ([]*entity.Notification, error)
	MarkSent(ctx context.Context, id string) error
}

// TransactionManager handles database transactions. Repository calls made
// with the callback's context join the same transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
