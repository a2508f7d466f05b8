package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/expenseflow/expense-approval/internal/application/dispatcher"
	"github.com/expenseflow/expense-approval/internal/application/port"
	"github.com/expenseflow/expense-approval/internal/domain/approval"
	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/internal/domain/event"
	"github.com/expenseflow/expense-approval/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ExpenseDraft carries the submitter-provided fields of a new expense
type ExpenseDraft struct {
	EmployeeID  string
	Amount      float64
	Currency    string
	Category    string
	Description string
	Date        time.Time
	ReceiptURL  string
}

// ExpenseService runs the expense approval workflow: submission with rule
// selection and chain building, approve/reject actions, and queries.
type ExpenseService interface {
	Submit(ctx context.Context, draft ExpenseDraft) (*entity.Expense, error)
	Approve(ctx context.Context, expenseID, approverID, comment string) (*entity.Expense, error)
	Reject(ctx context.Context, expenseID, approverID, comment string) (*entity.Expense, error)
	Get(ctx context.Context, id string) (*entity.Expense, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]*entity.Expense, error)
	ListPendingFor(ctx context.Context, approverID string) ([]*entity.Expense, error)
	List(ctx context.Context) ([]*entity.Expense, error)
}

type expenseServiceImpl struct {
	expenseRepo port.ExpenseRepository
	userRepo    port.UserRepository
	companyRepo port.CompanyRepository
	ruleRepo    port.RuleRepository
	txManager   port.TransactionManager
	selector    *approval.Selector
	chains      *approval.ChainBuilder
	lifecycle   workflow.Builder
	converter   approval.Converter
	dispatcher  dispatcher.Dispatcher
	logger      Logger

	// locks serializes actions per expense so concurrent approvals on the
	// same expense observe each other's history
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo port.ExpenseRepository,
	userRepo port.UserRepository,
	companyRepo port.CompanyRepository,
	ruleRepo port.RuleRepository,
	txManager port.TransactionManager,
	selector *approval.Selector,
	chains *approval.ChainBuilder,
	converter approval.Converter,
	d dispatcher.Dispatcher,
	logger Logger,
) ExpenseService {
	return &expenseServiceImpl{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		ruleRepo:    ruleRepo,
		txManager:   txManager,
		selector:    selector,
		chains:      chains,
		lifecycle:   workflow.NewExpenseLifecycle(),
		converter:   converter,
		dispatcher:  d,
		logger:      logger,
	}
}

// Submit validates the draft, selects the governing rule, snapshots the
// approval chain onto the expense, and persists it. An expense that ends up
// with no approver is stored as pending and is a valid outcome, not an
// error.
func (s *expenseServiceImpl) Submit(ctx context.Context, draft ExpenseDraft) (*entity.Expense, error) {
	if draft.Amount <= 0 {
		return nil, fmt.Errorf("expense amount must be positive")
	}
	if draft.Currency == "" {
		return nil, fmt.Errorf("expense currency is required")
	}

	submitter, err := s.userRepo.GetByID(ctx, draft.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("lookup submitter: %w", err)
	}
	if submitter == nil {
		return nil, fmt.Errorf("employee %s not found", draft.EmployeeID)
	}

	expense := &entity.Expense{
		ID:           uuid.NewString(),
		EmployeeID:   submitter.ID,
		EmployeeName: submitter.Name,
		Amount:       draft.Amount,
		Currency:     strings.ToUpper(draft.Currency),
		Category:     draft.Category,
		Description:  draft.Description,
		Date:         draft.Date,
		ReceiptURL:   draft.ReceiptURL,
		Status:       entity.StatusPending,
		SubmittedAt:  time.Now(),
	}

	s.convertToCompanyCurrency(ctx, expense)

	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}

	if rule := s.selector.Select(rules, expense.Amount, expense.Currency); rule != nil {
		expense.RuleID = rule.ID
		expense.Chain = s.chains.FromRule(ctx, rule)
		expense.Conditional = rule.Conditional
	} else {
		expense.Chain = s.chains.ManagerFallback(ctx, submitter)
	}

	if len(expense.Chain) > 0 {
		expense.Status = entity.StatusInProgress
		expense.CurrentApproverID = expense.Chain[0].ApproverID
	} else {
		s.logger.Info("Expense submitted without approver",
			"expense_id", expense.ID,
			"employee_id", expense.EmployeeID,
			"reason", approval.ErrNoApproverAssigned.Error())
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.expenseRepo.Create(txCtx, expense)
	})
	if err != nil {
		s.logger.Error("Failed to create expense", "error", err, "employee_id", draft.EmployeeID)
		return nil, err
	}

	if expense.CurrentApproverID != "" {
		// Detached from the request context so handlers survive the
		// response completing first.
		s.dispatcher.DispatchAsync(context.WithoutCancel(ctx), s.pendingEvent(expense, expense.CurrentApproverID))
	}

	s.logger.Info("Expense submitted",
		"expense_id", expense.ID,
		"status", expense.Status,
		"chain_len", len(expense.Chain))
	return expense, nil
}

// Approve records an approval by the current approver and either advances
// the chain or finalizes the expense when the resolver is satisfied.
func (s *expenseServiceImpl) Approve(ctx context.Context, expenseID, approverID, comment string) (*entity.Expense, error) {
	unlock := s.lock(expenseID)
	defer unlock()

	var (
		expense *entity.Expense
		events  []*event.Event
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		expense, err = s.loadForAction(txCtx, expenseID, approverID)
		if err != nil {
			return err
		}

		approver, err := s.userRepo.GetByID(txCtx, approverID)
		if err != nil {
			return fmt.Errorf("lookup approver: %w", err)
		}
		approverName := ""
		if approver != nil {
			approverName = approver.Name
		}

		action := &entity.ApprovalAction{
			ID:           uuid.NewString(),
			ExpenseID:    expense.ID,
			ApproverID:   approverID,
			ApproverName: approverName,
			Action:       entity.ActionApproved,
			Comments:     comment,
			Timestamp:    time.Now(),
			Step:         len(expense.ApprovalHistory) + 1,
		}
		if err := s.expenseRepo.AppendAction(txCtx, action); err != nil {
			return err
		}
		expense.ApprovalHistory = append(expense.ApprovalHistory, *action)

		machine := s.lifecycle.Build(workflow.State(expense.Status))
		if approval.Satisfied(expense.Chain, expense.ApprovalHistory, expense.Conditional) {
			if err := machine.Fire(txCtx, workflow.TriggerComplete); err != nil {
				return fmt.Errorf("complete expense %s: %w", expense.ID, err)
			}
			expense.Status = string(machine.State())
			expense.CurrentApproverID = ""
			events = append(events, s.approvedEvent(expense, approverName))
		} else {
			if err := machine.Fire(txCtx, workflow.TriggerApprove); err != nil {
				return fmt.Errorf("advance expense %s: %w", expense.ID, err)
			}
			expense.Status = string(machine.State())
			expense.CurrentApproverID = expense.Chain[expense.ApprovedCount()].ApproverID
			events = append(events, s.pendingEvent(expense, expense.CurrentApproverID))
		}

		return s.expenseRepo.UpdateState(txCtx, expense.ID, expense.Status, expense.CurrentApproverID)
	})
	if err != nil {
		if errors.Is(err, approval.ErrExpenseAlreadyFinalized) {
			s.forget(expenseID)
		}
		return nil, err
	}
	if expense.IsTerminal() {
		s.forget(expenseID)
	}

	for _, evt := range events {
		s.dispatcher.DispatchAsync(context.WithoutCancel(ctx), evt)
	}

	s.logger.Info("Expense approval recorded",
		"expense_id", expense.ID,
		"approver_id", approverID,
		"status", expense.Status)
	return expense, nil
}

// Reject records a rejection by the current approver and finalizes the
// expense. A comment is mandatory.
func (s *expenseServiceImpl) Reject(ctx context.Context, expenseID, approverID, comment string) (*entity.Expense, error) {
	if strings.TrimSpace(comment) == "" {
		return nil, approval.ErrMissingRejectionComment
	}

	unlock := s.lock(expenseID)
	defer unlock()

	var (
		expense *entity.Expense
		evt     *event.Event
	)
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		expense, err = s.loadForAction(txCtx, expenseID, approverID)
		if err != nil {
			return err
		}

		approver, err := s.userRepo.GetByID(txCtx, approverID)
		if err != nil {
			return fmt.Errorf("lookup approver: %w", err)
		}
		approverName := ""
		if approver != nil {
			approverName = approver.Name
		}

		action := &entity.ApprovalAction{
			ID:           uuid.NewString(),
			ExpenseID:    expense.ID,
			ApproverID:   approverID,
			ApproverName: approverName,
			Action:       entity.ActionRejected,
			Comments:     comment,
			Timestamp:    time.Now(),
			Step:         len(expense.ApprovalHistory) + 1,
		}
		if err := s.expenseRepo.AppendAction(txCtx, action); err != nil {
			return err
		}
		expense.ApprovalHistory = append(expense.ApprovalHistory, *action)

		machine := s.lifecycle.Build(workflow.State(expense.Status))
		if err := machine.Fire(txCtx, workflow.TriggerReject); err != nil {
			return fmt.Errorf("reject expense %s: %w", expense.ID, err)
		}
		expense.Status = string(machine.State())
		expense.CurrentApproverID = ""
		evt = s.rejectedEvent(expense, approverName, comment)

		return s.expenseRepo.UpdateState(txCtx, expense.ID, expense.Status, "")
	})
	if err != nil {
		if errors.Is(err, approval.ErrExpenseAlreadyFinalized) {
			s.forget(expenseID)
		}
		return nil, err
	}
	s.forget(expenseID)

	s.dispatcher.DispatchAsync(context.WithoutCancel(ctx), evt)

	s.logger.Info("Expense rejected",
		"expense_id", expense.ID,
		"approver_id", approverID)
	return expense, nil
}

// Get retrieves an expense with its approval history
func (s *expenseServiceImpl) Get(ctx context.Context, id string) (*entity.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fmt.Errorf("expense %s not found", id)
	}
	return expense, nil
}

// ListByEmployee lists an employee's own expenses
func (s *expenseServiceImpl) ListByEmployee(ctx context.Context, employeeID string) ([]*entity.Expense, error) {
	return s.expenseRepo.ListByEmployee(ctx, employeeID)
}

// ListPendingFor lists expenses currently waiting on the given approver
func (s *expenseServiceImpl) ListPendingFor(ctx context.Context, approverID string) ([]*entity.Expense, error) {
	return s.expenseRepo.ListByApprover(ctx, approverID)
}

// List lists all expenses
func (s *expenseServiceImpl) List(ctx context.Context) ([]*entity.Expense, error) {
	return s.expenseRepo.List(ctx)
}

// loadForAction loads the expense and runs the shared action checks:
// the expense must exist, must not be terminal, and the actor must be the
// current approver.
func (s *expenseServiceImpl) loadForAction(ctx context.Context, expenseID, approverID string) (*entity.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if expense == nil {
		return nil, fmt.Errorf("expense %s not found", expenseID)
	}
	if expense.IsTerminal() {
		return nil, approval.ErrExpenseAlreadyFinalized
	}
	if expense.CurrentApproverID == "" || expense.CurrentApproverID != approverID {
		return nil, approval.ErrNotAuthorizedApprover
	}
	return expense, nil
}

// convertToCompanyCurrency fills AmountInCompanyCcy best-effort; a failed
// conversion is logged and leaves the field unset.
func (s *expenseServiceImpl) convertToCompanyCurrency(ctx context.Context, expense *entity.Expense) {
	company, err := s.companyRepo.Get(ctx)
	if err != nil || company == nil {
		return
	}
	converted, err := s.converter.Convert(expense.Amount, expense.Currency, company.Currency)
	if err != nil {
		s.logger.Error("Failed to convert expense amount",
			"error", err,
			"from", expense.Currency,
			"to", company.Currency)
		return
	}
	expense.AmountInCompanyCcy = &converted
}

func (s *expenseServiceImpl) lock(expenseID string) func() {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	l, ok := s.locks[expenseID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[expenseID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// forget drops the lock entry for a finalized expense so the map stays
// bounded by live expenses. Goroutines already waiting on the old mutex
// keep their reference and then fail the finalized check, so dropping
// the entry cannot let a write through.
func (s *expenseServiceImpl) forget(expenseID string) {
	s.mu.Lock()
	delete(s.locks, expenseID)
	s.mu.Unlock()
}

func (s *expenseServiceImpl) pendingEvent(expense *entity.Expense, approverID string) *event.Event {
	return event.NewEvent(event.TypeApprovalPending, expense.ID, approverID, map[string]interface{}{
		"submitter_name": expense.EmployeeName,
		"amount":         expense.Amount,
		"currency":       expense.Currency,
	})
}

func (s *expenseServiceImpl) approvedEvent(expense *entity.Expense, approverName string) *event.Event {
	return event.NewEvent(event.TypeExpenseApproved, expense.ID, expense.EmployeeID, map[string]interface{}{
		"approver_name": approverName,
		"amount":        expense.Amount,
		"currency":      expense.Currency,
	})
}

func (s *expenseServiceImpl) rejectedEvent(expense *entity.Expense, approverName, comment string) *event.Event {
	return event.NewEvent(event.TypeExpenseRejected, expense.ID, expense.EmployeeID, map[string]interface{}{
		"approver_name": approverName,
		"comment":       comment,
	})
}
