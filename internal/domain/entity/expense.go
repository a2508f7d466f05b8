package entity

import "time"

// ChainStep is one resolved approver in an expense's snapshotted approval
// chain. The chain is built once at submission time and never re-evaluated
// from live rules.
type ChainStep struct {
	Step         int    `json:"step"`
	ApproverID   string `json:"approver_id"`
	ApproverName string `json:"approver_name,omitempty"`
}

// ApprovalAction is an immutable record of one approve/reject decision.
// Step is the 1-based position within the expense's own history at the time
// the action was recorded, used for audit display only.
type ApprovalAction struct {
	ID           string    `json:"id"`
	ExpenseID    string    `json:"expense_id"`
	ApproverID   string    `json:"approver_id"`
	ApproverName string    `json:"approver_name,omitempty"`
	Action       string    `json:"action"`
	Comments     string    `json:"comments,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Step         int       `json:"step"`
}

// Expense is a submitted expense claim together with its approval state.
// Chain and Conditional are snapshotted from the governing rule at
// submission time; later rule edits or deletions never alter them.
// CurrentApproverID is set exactly while status is pending or in_progress
// and an unresolved chain step remains; it is empty once terminal.
type Expense struct {
	ID                 string           `json:"id"`
	EmployeeID         string           `json:"employee_id"`
	EmployeeName       string           `json:"employee_name,omitempty"`
	Amount             float64          `json:"amount"`
	Currency           string           `json:"currency"`
	AmountInCompanyCcy *float64         `json:"amount_in_company_currency,omitempty"`
	Category           string           `json:"category"`
	Description        string           `json:"description"`
	Date               time.Time        `json:"date"`
	ReceiptURL         string           `json:"receipt_url,omitempty"`
	Status             string           `json:"status"`
	SubmittedAt        time.Time        `json:"submitted_at"`
	CurrentApproverID  string           `json:"current_approver_id,omitempty"`
	RuleID             string           `json:"rule_id,omitempty"`
	Chain              []ChainStep      `json:"chain,omitempty"`
	Conditional        *ConditionalRule `json:"conditional,omitempty"`
	ApprovalHistory    []ApprovalAction `json:"approval_history"`
}

// IsTerminal reports whether the expense has reached a final status and
// accepts no further actions.
func (e *Expense) IsTerminal() bool {
	return e.Status == StatusApproved || e.Status == StatusRejected
}

// ApprovedCount returns the number of approve actions recorded so far.
func (e *Expense) ApprovedCount() int {
	n := 0
	for _, a := range e.ApprovalHistory {
		if a.Action == ActionApproved {
			n++
		}
	}
	return n
}
