package service

import (
	"context"
	"strings"
	"testing"

	"github.com/expenseflow/expense-approval/internal/application/dispatcher"
	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/internal/domain/event"
)

func TestNotificationService_Handlers(t *testing.T) {
	tests := []struct {
		name        string
		evt         *event.Event
		wantKind    string
		wantTitle   string
		wantContain string
	}{
		{
			name: "approval pending",
			evt: event.NewEvent(event.TypeApprovalPending, "exp-1", "mgr-1", map[string]interface{}{
				"submitter_name": "Dana",
				"amount":         120.5,
				"currency":       "USD",
			}),
			wantKind:    entity.NotificationApprovalPending,
			wantTitle:   "New Expense Awaiting Approval",
			wantContain: "Dana submitted an expense of 120.50 USD",
		},
		{
			name: "expense approved",
			evt: event.NewEvent(event.TypeExpenseApproved, "exp-1", "emp-1", map[string]interface{}{
				"approver_name": "Morgan",
				"amount":        120.5,
				"currency":      "USD",
			}),
			wantKind:    entity.NotificationExpenseApproved,
			wantTitle:   "Expense Approved",
			wantContain: "approved by Morgan",
		},
		{
			name: "expense rejected",
			evt: event.NewEvent(event.TypeExpenseRejected, "exp-1", "emp-1", map[string]interface{}{
				"approver_name": "Morgan",
				"comment":       "missing receipt",
			}),
			wantKind:    entity.NotificationExpenseRejected,
			wantTitle:   "Expense Rejected",
			wantContain: "missing receipt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockNotificationRepo{}
			svc := NewNotificationService(repo, &mockLogger{})

			d := dispatcher.New(&mockLogger{})
			defer d.Close()
			svc.Register(d)

			if err := d.Dispatch(context.Background(), tt.evt); err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}

			stored, err := svc.ListForUser(context.Background(), tt.evt.TargetUserID)
			if err != nil {
				t.Fatalf("ListForUser() error = %v", err)
			}
			if len(stored) != 1 {
				t.Fatalf("stored notifications = %d, want 1", len(stored))
			}

			n := stored[0]
			if n.Kind != tt.wantKind {
				t.Errorf("kind = %s, want %s", n.Kind, tt.wantKind)
			}
			if n.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", n.Title, tt.wantTitle)
			}
			if !strings.Contains(n.Message, tt.wantContain) {
				t.Errorf("message = %q, want it to contain %q", n.Message, tt.wantContain)
			}
			if n.ExpenseID != "exp-1" {
				t.Errorf("expense_id = %s, want exp-1", n.ExpenseID)
			}
			if n.IsRead {
				t.Error("new notification must be unread")
			}
		})
	}
}
