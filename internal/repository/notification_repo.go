package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/pkg/database"
	"go.uber.org/zap"
)

// NotificationRepository handles notification database operations
type NotificationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{db: db, logger: logger}
}

const notificationColumns = `id, user_id, kind, title, message, is_read, expense_id, sent_at, created_at`

// Create inserts a notification row
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, kind, title, message, is_read, expense_id, sent_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		n.ID, n.UserID, n.Kind, n.Title, n.Message, n.IsRead,
		nullString(n.ExpenseID), n.SentAt, n.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.String("user_id", n.UserID), zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListByUser returns a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = ? ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// MarkRead flags one notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.Querier(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireRow(result, "notification", id)
}

// MarkAllRead flags all of a user's notifications as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Querier(ctx).ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ?`, userID)
	if err != nil {
		r.logger.Error("Failed to mark notifications read", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// ListUnsent returns undelivered notifications oldest first, for the outbox
// dispatcher
func (r *NotificationRepository) ListUnsent(ctx context.Context, limit int) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE sent_at IS NULL ORDER BY created_at LIMIT ?`
	return r.list(ctx, query, limit)
}

// MarkSent records delivery time for a notification
func (r *NotificationRepository) MarkSent(ctx context.Context, id string) error {
	result, err := r.db.Querier(ctx).ExecContext(ctx,
		`UPDATE notifications SET sent_at = ? WHERE id = ?`, time.Now(), id)
	if err != nil {
		r.logger.Error("Failed to mark notification sent", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return requireRow(result, "notification", id)
}

func (r *NotificationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.Notification, error) {
	rows, err := r.db.Querier(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		var expenseID sql.NullString
		var sentAt sql.NullTime
		err := rows.Scan(
			&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message,
			&n.IsRead, &expenseID, &sentAt, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.ExpenseID = expenseID.String
		if sentAt.Valid {
			n.SentAt = &sentAt.Time
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
