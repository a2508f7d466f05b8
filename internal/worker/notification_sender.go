package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/expenseflow/expense-approval/internal/application/port"
	"github.com/expenseflow/expense-approval/internal/domain/entity"
)

// Sink delivers a notification to an external channel. A nil error marks
// the notification as sent; delivery retries on the next poll otherwise.
type Sink interface {
	Deliver(ctx context.Context, notification *entity.Notification) error
}

// LogSink is the default delivery channel: it just logs the notification.
// Deployments plug in a real channel (email, chat) behind the same
// interface.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a log-backed delivery sink
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Deliver(ctx context.Context, notification *entity.Notification) error {
	s.logger.Info("Notification delivered",
		zap.String("notification_id", notification.ID),
		zap.String("user_id", notification.UserID),
		zap.String("kind", notification.Kind),
		zap.String("title", notification.Title))
	return nil
}

// NotificationSender drains the notification outbox on an interval and
// hands each unsent row to the sink.
type NotificationSender struct {
	notificationRepo port.NotificationRepository
	sink             Sink
	logger           *zap.Logger

	pollInterval time.Duration
	batchSize    int

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewNotificationSender creates a new notification sender worker
func NewNotificationSender(
	notificationRepo port.NotificationRepository,
	sink Sink,
	pollInterval time.Duration,
	batchSize int,
	logger *zap.Logger,
) *NotificationSender {
	return &NotificationSender{
		notificationRepo: notificationRepo,
		sink:             sink,
		logger:           logger,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
	}
}

// Start starts the outbox polling loop
func (w *NotificationSender) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("notification sender is already running")
	}

	w.ctx, w.cancel = context.WithCancel(ctx)
	w.isRunning = true
	w.done = make(chan struct{})

	w.logger.Info("NotificationSender started",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Int("batch_size", w.batchSize))

	go w.pollLoop()

	return nil
}

// Stop stops the worker and waits for the current drain to finish
func (w *NotificationSender) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.logger.Info("NotificationSender stopped")
}

// Name returns the worker name for identification
func (w *NotificationSender) Name() string {
	return "NotificationSender"
}

func (w *NotificationSender) pollLoop() {
	defer close(w.done)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Drain immediately on start
	w.drain()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.drain()
		}
	}
}

// drain sends one batch of unsent notifications. A failed delivery is left
// unsent and retried on the next interval.
func (w *NotificationSender) drain() {
	ctx, cancel := context.WithTimeout(w.ctx, 10*time.Second)
	defer cancel()

	notifications, err := w.notificationRepo.ListUnsent(ctx, w.batchSize)
	if err != nil {
		w.logger.Error("Failed to list unsent notifications", zap.Error(err))
		return
	}
	if len(notifications) == 0 {
		return
	}

	sent := 0
	for _, notification := range notifications {
		if err := w.sink.Deliver(ctx, notification); err != nil {
			w.logger.Error("Failed to deliver notification",
				zap.String("notification_id", notification.ID),
				zap.Error(err))
			continue
		}
		if err := w.notificationRepo.MarkSent(ctx, notification.ID); err != nil {
			w.logger.Error("Failed to mark notification sent",
				zap.String("notification_id", notification.ID),
				zap.Error(err))
			continue
		}
		sent++
	}

	w.logger.Debug("Notification outbox drained",
		zap.Int("batch", len(notifications)),
		zap.Int("sent", sent))
}
