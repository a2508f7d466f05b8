package entity

import (
	"encoding/json"
	"testing"
	"time"
)

func TestExpense_JSONRoundTrip(t *testing.T) {
	converted := 1234.56
	submitted := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	original := Expense{
		ID:                 "exp-1",
		EmployeeID:         "u-emp",
		EmployeeName:       "Dana",
		Amount:             1500,
		Currency:           "EUR",
		AmountInCompanyCcy: &converted,
		Category:           CategoryTravel,
		Description:        "client visit",
		Date:               submitted.AddDate(0, 0, -2),
		Status:             StatusInProgress,
		SubmittedAt:        submitted,
		CurrentApproverID:  "u-cfo",
		RuleID:             "rule-1",
		Chain: []ChainStep{
			{Step: 1, ApproverID: "u-mgr", ApproverName: "Mia"},
			{Step: 2, ApproverID: "u-cfo", ApproverName: "Finn"},
		},
		Conditional: &ConditionalRule{
			Type:                ConditionalHybrid,
			PercentageRequired:  60,
			SpecificApproverIDs: []string{"u-cfo"},
			RequireBoth:         true,
		},
		ApprovalHistory: []ApprovalAction{
			{
				ID:         "act-1",
				ExpenseID:  "exp-1",
				ApproverID: "u-mgr",
				Action:     ActionApproved,
				Comments:   "ok",
				Timestamp:  submitted.Add(time.Hour),
				Step:       1,
			},
		},
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var decoded Expense
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(decoded.ApprovalHistory) != len(original.ApprovalHistory) {
		t.Fatalf("history length = %d, want %d", len(decoded.ApprovalHistory), len(original.ApprovalHistory))
	}
	for i, a := range decoded.ApprovalHistory {
		if a != original.ApprovalHistory[i] {
			t.Errorf("history[%d] = %+v, want %+v", i, a, original.ApprovalHistory[i])
		}
	}
	if len(decoded.Chain) != len(original.Chain) {
		t.Fatalf("chain length = %d, want %d", len(decoded.Chain), len(original.Chain))
	}
	for i, s := range decoded.Chain {
		if s != original.Chain[i] {
			t.Errorf("chain[%d] = %+v, want %+v", i, s, original.Chain[i])
		}
	}
	if decoded.Conditional == nil ||
		decoded.Conditional.Type != ConditionalHybrid ||
		!decoded.Conditional.RequireBoth ||
		len(decoded.Conditional.SpecificApproverIDs) != 1 {
		t.Errorf("conditional not preserved: %+v", decoded.Conditional)
	}
	if decoded.AmountInCompanyCcy == nil || *decoded.AmountInCompanyCcy != converted {
		t.Errorf("converted amount not preserved: %v", decoded.AmountInCompanyCcy)
	}
	if decoded.Status != original.Status || decoded.CurrentApproverID != original.CurrentApproverID {
		t.Errorf("status/approver = %s/%s, want %s/%s",
			decoded.Status, decoded.CurrentApproverID, original.Status, original.CurrentApproverID)
	}
	if !decoded.SubmittedAt.Equal(original.SubmittedAt) {
		t.Errorf("submitted_at = %v, want %v", decoded.SubmittedAt, original.SubmittedAt)
	}
}

func TestExpense_IsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{StatusPending, false},
		{StatusInProgress, false},
		{StatusApproved, true},
		{StatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			e := &Expense{Status: tt.status}
			if got := e.IsTerminal(); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestExpense_ApprovedCount(t *testing.T) {
	e := &Expense{
		ApprovalHistory: []ApprovalAction{
			{Action: ActionApproved},
			{Action: ActionApproved},
			{Action: ActionRejected},
		},
	}
	if got := e.ApprovedCount(); got != 2 {
		t.Errorf("ApprovedCount() = %d, want 2", got)
	}
}
