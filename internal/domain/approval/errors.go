package approval

import "errors"

var (
	// ErrNoApproverAssigned signals that an expense was submitted with no
	// qualifying rule and no manager. It marks a valid pass-through state,
	// not a failure.
	ErrNoApproverAssigned = errors.New("no approver assigned")

	// ErrUnresolvedApprover signals that a rule step references a user that
	// no longer exists. The step is skipped and the chain continues.
	ErrUnresolvedApprover = errors.New("unresolved approver reference")

	// ErrNotAuthorizedApprover is returned when an action is attempted by
	// someone other than the current approver. No state changes.
	ErrNotAuthorizedApprover = errors.New("actor is not the current approver")

	// ErrExpenseAlreadyFinalized is returned for actions on a terminal
	// expense. No state changes.
	ErrExpenseAlreadyFinalized = errors.New("expense already finalized")

	// ErrMissingRejectionComment is returned when a rejection is attempted
	// without a comment. No state changes.
	ErrMissingRejectionComment = errors.New("rejection requires a comment")
)
