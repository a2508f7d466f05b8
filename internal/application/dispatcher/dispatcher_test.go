package dispatcher

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/expenseflow/expense-approval/internal/domain/event"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func TestDispatcher_DispatchInOrder(t *testing.T) {
	d := New(nopLogger{})

	var order []string
	var mu sync.Mutex
	record := func(name string) Handler {
		return func(ctx context.Context, evt *event.Event) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	d.Subscribe(event.TypeExpenseApproved, "first", record("first"))
	d.Subscribe(event.TypeExpenseApproved, "second", record("second"))
	d.Subscribe(event.TypeExpenseRejected, "other", record("other"))

	evt := event.NewEvent(event.TypeExpenseApproved, "exp-1", "u-1", nil)
	if err := d.Dispatch(context.Background(), evt); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("handler order = %v, want [first second]", order)
	}
}

func TestDispatcher_HandlerErrorAborts(t *testing.T) {
	d := New(nopLogger{})

	called := false
	d.Subscribe(event.TypeExpenseApproved, "failing", func(ctx context.Context, evt *event.Event) error {
		return errors.New("boom")
	})
	d.Subscribe(event.TypeExpenseApproved, "later", func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	evt := event.NewEvent(event.TypeExpenseApproved, "exp-1", "u-1", nil)
	if err := d.Dispatch(context.Background(), evt); err == nil {
		t.Fatal("Dispatch() should propagate handler error")
	}
	if called {
		t.Error("handlers after a failure should not run")
	}
}

func TestDispatcher_PanicRecovered(t *testing.T) {
	d := New(nopLogger{})
	d.Subscribe(event.TypeExpenseApproved, "panicky", func(ctx context.Context, evt *event.Event) error {
		panic("bad handler")
	})

	evt := event.NewEvent(event.TypeExpenseApproved, "exp-1", "u-1", nil)
	if err := d.Dispatch(context.Background(), evt); err == nil {
		t.Error("Dispatch() should turn a handler panic into an error")
	}
}

func TestDispatcher_CloseRejectsDispatch(t *testing.T) {
	d := New(nopLogger{})
	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	evt := event.NewEvent(event.TypeExpenseApproved, "exp-1", "u-1", nil)
	if err := d.Dispatch(context.Background(), evt); err == nil {
		t.Error("Dispatch() after Close() should fail")
	}
}

func TestDispatcher_DispatchAsyncWaitsOnClose(t *testing.T) {
	d := New(nopLogger{})

	done := make(chan struct{})
	d.Subscribe(event.TypeApprovalPending, "slow", func(ctx context.Context, evt *event.Event) error {
		close(done)
		return nil
	})

	evt := event.NewEvent(event.TypeApprovalPending, "exp-1", "u-1", nil)
	d.DispatchAsync(context.Background(), evt)

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	select {
	case <-done:
	default:
		t.Error("Close() returned before async handler completed")
	}
}
