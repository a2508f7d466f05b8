package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/expenseflow/expense-approval/internal/application/dispatcher"
	"github.com/expenseflow/expense-approval/internal/application/port"
	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/internal/domain/event"
)

// NotificationService turns workflow events into stored notifications and
// serves per-user notification queries.
type NotificationService interface {
	// Register subscribes the service's handlers on the dispatcher
	Register(d dispatcher.Dispatcher)

	ListForUser(ctx context.Context, userID string) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo port.NotificationRepository, logger Logger) NotificationService {
	return &notificationServiceImpl{notificationRepo: notificationRepo, logger: logger}
}

func (s *notificationServiceImpl) Register(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeApprovalPending, "notification.approval_pending", s.handleApprovalPending)
	d.Subscribe(event.TypeExpenseApproved, "notification.expense_approved", s.handleExpenseApproved)
	d.Subscribe(event.TypeExpenseRejected, "notification.expense_rejected", s.handleExpenseRejected)
}

func (s *notificationServiceImpl) handleApprovalPending(ctx context.Context, evt *event.Event) error {
	message := fmt.Sprintf("%s submitted an expense of %.2f %s for your approval",
		evt.PayloadString("submitter_name"),
		evt.PayloadFloat("amount"),
		evt.PayloadString("currency"))
	return s.store(ctx, evt, entity.NotificationApprovalPending, "New Expense Awaiting Approval", message)
}

func (s *notificationServiceImpl) handleExpenseApproved(ctx context.Context, evt *event.Event) error {
	message := fmt.Sprintf("Your expense of %.2f %s has been approved by %s",
		evt.PayloadFloat("amount"),
		evt.PayloadString("currency"),
		evt.PayloadString("approver_name"))
	return s.store(ctx, evt, entity.NotificationExpenseApproved, "Expense Approved", message)
}

func (s *notificationServiceImpl) handleExpenseRejected(ctx context.Context, evt *event.Event) error {
	message := fmt.Sprintf("Your expense was rejected by %s: %s",
		evt.PayloadString("approver_name"),
		evt.PayloadString("comment"))
	return s.store(ctx, evt, entity.NotificationExpenseRejected, "Expense Rejected", message)
}

func (s *notificationServiceImpl) store(ctx context.Context, evt *event.Event, kind, title, message string) error {
	notification := &entity.Notification{
		ID:        uuid.NewString(),
		UserID:    evt.TargetUserID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		ExpenseID: evt.ExpenseID,
		CreatedAt: time.Now(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Error("Failed to store notification",
			"error", err,
			"kind", kind,
			"user_id", evt.TargetUserID)
		return err
	}

	s.logger.Info("Notification stored",
		"kind", kind,
		"user_id", evt.TargetUserID,
		"expense_id", evt.ExpenseID)
	return nil
}

func (s *notificationServiceImpl) ListForUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID)
}

func (s *notificationServiceImpl) MarkRead(ctx context.Context, id string) error {
	return s.notificationRepo.MarkRead(ctx, id)
}

func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID string) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}
