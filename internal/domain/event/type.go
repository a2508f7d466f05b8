package event

// Type identifies the type of domain event
type Type string

const (
	// TypeApprovalPending fires whenever an approver becomes the current
	// approver: at submission and on every chain advance.
	TypeApprovalPending Type = "approval.pending"

	// TypeExpenseApproved fires when the chain resolves approved.
	TypeExpenseApproved Type = "expense.approved"

	// TypeExpenseRejected fires when any approver rejects.
	TypeExpenseRejected Type = "expense.rejected"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeApprovalPending, TypeExpenseApproved, TypeExpenseRejected:
		return true
	default:
		return false
	}
}
