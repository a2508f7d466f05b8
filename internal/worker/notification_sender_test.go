package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
)

type memoryOutbox struct {
	mu     sync.Mutex
	unsent map[string]*entity.Notification
}

func newMemoryOutbox(notifications ...*entity.Notification) *memoryOutbox {
	m := &memoryOutbox{unsent: make(map[string]*entity.Notification)}
	for _, n := range notifications {
		m.unsent[n.ID] = n
	}
	return m
}

func (m *memoryOutbox) Create(ctx context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsent[n.ID] = n
	return nil
}

func (m *memoryOutbox) ListByUser(ctx context.Context, userID string) ([]*entity.Notification, error) {
	return nil, nil
}

func (m *memoryOutbox) MarkRead(ctx context.Context, id string) error { return nil }

func (m *memoryOutbox) MarkAllRead(ctx context.Context, userID string) error { return nil }

func (m *memoryOutbox) ListUnsent(ctx context.Context, limit int) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Notification
	for _, n := range m.unsent {
		if len(out) >= limit {
			break
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *memoryOutbox) MarkSent(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.unsent, id)
	return nil
}

func (m *memoryOutbox) unsentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.unsent)
}

type channelSink struct {
	delivered chan string

	mu      sync.Mutex
	failIDs map[string]bool
}

func (s *channelSink) Deliver(ctx context.Context, n *entity.Notification) error {
	s.mu.Lock()
	fail := s.failIDs[n.ID]
	s.mu.Unlock()
	if fail {
		return errors.New("delivery failed")
	}
	s.delivered <- n.ID
	return nil
}

func (s *channelSink) setFail(ids map[string]bool) {
	s.mu.Lock()
	s.failIDs = ids
	s.mu.Unlock()
}

func TestNotificationSender_DrainsOutbox(t *testing.T) {
	outbox := newMemoryOutbox(
		&entity.Notification{ID: "n-1", UserID: "u-1", Kind: entity.NotificationApprovalPending},
		&entity.Notification{ID: "n-2", UserID: "u-2", Kind: entity.NotificationExpenseApproved},
	)
	sink := &channelSink{delivered: make(chan string, 10)}

	sender := NewNotificationSender(outbox, sink, 5*time.Millisecond, 10, zap.NewNop())
	if err := sender.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sender.Stop()

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case id := <-sink.delivered:
			got[id] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for deliveries, got %v", got)
		}
	}

	if !got["n-1"] || !got["n-2"] {
		t.Errorf("delivered = %v, want both notifications", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for outbox.unsentCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("outbox still has %d unsent notifications", outbox.unsentCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestNotificationSender_RetriesFailedDelivery(t *testing.T) {
	outbox := newMemoryOutbox(
		&entity.Notification{ID: "n-1", UserID: "u-1", Kind: entity.NotificationExpenseRejected},
	)
	sink := &channelSink{
		delivered: make(chan string, 10),
		failIDs:   map[string]bool{"n-1": true},
	}

	sender := NewNotificationSender(outbox, sink, 5*time.Millisecond, 10, zap.NewNop())
	if err := sender.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Give the worker a few polls while delivery keeps failing.
	time.Sleep(30 * time.Millisecond)
	if outbox.unsentCount() != 1 {
		t.Errorf("failed notification should stay unsent, count = %d", outbox.unsentCount())
	}

	// Delivery recovers; the next poll drains it.
	sink.setFail(nil)
	select {
	case id := <-sink.delivered:
		if id != "n-1" {
			t.Errorf("delivered = %s, want n-1", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retried delivery")
	}

	sender.Stop()
}

func TestNotificationSender_StartTwice(t *testing.T) {
	sender := NewNotificationSender(newMemoryOutbox(), &channelSink{delivered: make(chan string, 1)}, time.Minute, 10, zap.NewNop())
	if err := sender.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer sender.Stop()

	if err := sender.Start(context.Background()); err == nil {
		t.Error("second Start() should fail while running")
	}
}
