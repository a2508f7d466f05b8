package service

import (
	"context"
	"sync"

	"github.com/expenseflow/expense-approval/internal/application/dispatcher"
	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/internal/domain/event"
)

// Mock repositories

type mockUserRepo struct {
	createFunc     func(ctx context.Context, user *entity.User) error
	getByIDFunc    func(ctx context.Context, id string) (*entity.User, error)
	getByEmailFunc func(ctx context.Context, email string) (*entity.User, error)
	updateFunc     func(ctx context.Context, user *entity.User) error
	deleteFunc     func(ctx context.Context, id string) error
	listFunc       func(ctx context.Context) ([]*entity.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.User{ID: id, Name: "User " + id, Role: entity.RoleEmployee}, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.getByEmailFunc != nil {
		return m.getByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.User{}, nil
}

type mockCompanyRepo struct {
	createFunc func(ctx context.Context, company *entity.Company) error
	getFunc    func(ctx context.Context) (*entity.Company, error)
}

func (m *mockCompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, company)
	}
	return nil
}

func (m *mockCompanyRepo) Get(ctx context.Context) (*entity.Company, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx)
	}
	return &entity.Company{ID: "co-1", Name: "Acme", Currency: "USD"}, nil
}

type mockRuleRepo struct {
	createFunc     func(ctx context.Context, rule *entity.ApprovalRule) error
	getByIDFunc    func(ctx context.Context, id string) (*entity.ApprovalRule, error)
	updateFunc     func(ctx context.Context, rule *entity.ApprovalRule) error
	deleteFunc     func(ctx context.Context, id string) error
	listFunc       func(ctx context.Context) ([]*entity.ApprovalRule, error)
	listActiveFunc func(ctx context.Context) ([]*entity.ApprovalRule, error)
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *entity.ApprovalRule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepo) GetByID(ctx context.Context, id string) (*entity.ApprovalRule, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockRuleRepo) Update(ctx context.Context, rule *entity.ApprovalRule) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockRuleRepo) List(ctx context.Context) ([]*entity.ApprovalRule, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.ApprovalRule{}, nil
}

func (m *mockRuleRepo) ListActive(ctx context.Context) ([]*entity.ApprovalRule, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return []*entity.ApprovalRule{}, nil
}

// mockExpenseRepo keeps created expenses and actions in memory so workflow
// tests can run a full submit/approve sequence against it.
type mockExpenseRepo struct {
	mu       sync.Mutex
	expenses map[string]*entity.Expense

	createFunc      func(ctx context.Context, expense *entity.Expense) error
	getByIDFunc     func(ctx context.Context, id string) (*entity.Expense, error)
	updateStateFunc func(ctx context.Context, id, status, currentApproverID string) error
}

func newMockExpenseRepo() *mockExpenseRepo {
	return &mockExpenseRepo{expenses: make(map[string]*entity.Expense)}
}

func (m *mockExpenseRepo) Create(ctx context.Context, expense *entity.Expense) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, expense)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *expense
	m.expenses[expense.ID] = &cp
	return nil
}

func (m *mockExpenseRepo) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	expense, ok := m.expenses[id]
	if !ok {
		return nil, nil
	}
	cp := *expense
	cp.ApprovalHistory = append([]entity.ApprovalAction(nil), expense.ApprovalHistory...)
	return &cp, nil
}

func (m *mockExpenseRepo) UpdateState(ctx context.Context, id, status, currentApproverID string) error {
	if m.updateStateFunc != nil {
		return m.updateStateFunc(ctx, id, status, currentApproverID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if expense, ok := m.expenses[id]; ok {
		expense.Status = status
		expense.CurrentApproverID = currentApproverID
	}
	return nil
}

func (m *mockExpenseRepo) AppendAction(ctx context.Context, action *entity.ApprovalAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if expense, ok := m.expenses[action.ExpenseID]; ok {
		expense.ApprovalHistory = append(expense.ApprovalHistory, *action)
	}
	return nil
}

func (m *mockExpenseRepo) ListByEmployee(ctx context.Context, employeeID string) ([]*entity.Expense, error) {
	return []*entity.Expense{}, nil
}

func (m *mockExpenseRepo) ListByApprover(ctx context.Context, approverID string) ([]*entity.Expense, error) {
	return []*entity.Expense{}, nil
}

func (m *mockExpenseRepo) List(ctx context.Context) ([]*entity.Expense, error) {
	return []*entity.Expense{}, nil
}

type mockNotificationRepo struct {
	mu      sync.Mutex
	created []*entity.Notification

	createFunc func(ctx context.Context, notification *entity.Notification) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, notification)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id string) error { return nil }

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string) error { return nil }

func (m *mockNotificationRepo) ListUnsent(ctx context.Context, limit int) ([]*entity.Notification, error) {
	return []*entity.Notification{}, nil
}

func (m *mockNotificationRepo) MarkSent(ctx context.Context, id string) error { return nil }

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// mockDispatcher records dispatched events, and the contexts they were
// dispatched with, in order
type mockDispatcher struct {
	mu     sync.Mutex
	events []*event.Event
	ctxs   []context.Context
}

func (m *mockDispatcher) Subscribe(eventType event.Type, name string, handler dispatcher.Handler) {
}

func (m *mockDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	m.ctxs = append(m.ctxs, ctx)
	return nil
}

func (m *mockDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	_ = m.Dispatch(ctx, evt)
}

func (m *mockDispatcher) Close() error { return nil }

func (m *mockDispatcher) lastCtx() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.ctxs) == 0 {
		return nil
	}
	return m.ctxs[len(m.ctxs)-1]
}

func (m *mockDispatcher) byType(t event.Type) []*event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*event.Event
	for _, evt := range m.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

// identityConverter treats every currency as 1:1
type identityConverter struct{}

func (identityConverter) Convert(amount float64, from, to string) (float64, error) {
	return amount, nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
