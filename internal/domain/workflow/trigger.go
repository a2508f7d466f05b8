package workflow

// Trigger represents an event that can cause a state transition
type Trigger string

const (
	// TriggerApprove records an approval that leaves further chain steps
	// unresolved; the expense stays in progress and the approver pointer
	// advances.
	TriggerApprove Trigger = "APPROVE"

	// TriggerComplete records the approval that satisfies the chain, either
	// through a conditional rule or full-chain completion.
	TriggerComplete Trigger = "COMPLETE"

	// TriggerReject terminates the chain immediately regardless of the
	// remaining steps.
	TriggerReject Trigger = "REJECT"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
