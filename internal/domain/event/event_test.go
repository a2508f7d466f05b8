package event

import "testing"

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		eventType Type
		expected  bool
	}{
		{TypeApprovalPending, true},
		{TypeExpenseApproved, true},
		{TypeExpenseRejected, true},
		{Type("expense.unknown"), false},
		{Type(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.expected {
				t.Errorf("IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	evt := NewEvent(TypeApprovalPending, "exp-1", "u-mgr", map[string]interface{}{
		"submitter_name": "Dana",
		"amount":         125.5,
	})

	if evt.ID == "" {
		t.Error("NewEvent() should generate an ID")
	}
	if evt.Timestamp.IsZero() {
		t.Error("NewEvent() should set a timestamp")
	}
	if evt.ExpenseID != "exp-1" || evt.TargetUserID != "u-mgr" {
		t.Errorf("event routing fields = %s/%s", evt.ExpenseID, evt.TargetUserID)
	}
	if got := evt.PayloadString("submitter_name"); got != "Dana" {
		t.Errorf("PayloadString() = %q, want %q", got, "Dana")
	}
	if got := evt.PayloadFloat("amount"); got != 125.5 {
		t.Errorf("PayloadFloat() = %v, want 125.5", got)
	}
	if got := evt.PayloadString("missing"); got != "" {
		t.Errorf("PayloadString(missing) = %q, want empty", got)
	}
}
