package workflow

// NewExpenseLifecycle returns the transition table for the expense approval
// lifecycle:
//
//	in_progress --APPROVE-->  in_progress  (chain advances)
//	in_progress --COMPLETE--> approved
//	in_progress --REJECT-->   rejected
//
// pending has no outgoing transitions: an expense submitted with no chain
// waits indefinitely, and action attempts fail at the authorization check
// before any trigger fires. approved and rejected are terminal.
func NewExpenseLifecycle() Builder {
	b := NewBuilder()

	b.Configure(StateInProgress).
		Permit(TriggerApprove, StateInProgress).
		Permit(TriggerComplete, StateApproved).
		Permit(TriggerReject, StateRejected)

	return b
}
