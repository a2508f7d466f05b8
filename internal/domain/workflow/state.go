package workflow

// State represents an expense status in the approval lifecycle
type State string

const (
	// StatePending means the expense was submitted but no approver could be
	// assigned (no chain applies). It is a valid pass-through state, not an
	// error.
	StatePending State = "pending"

	// StateInProgress means an approval chain is active and a current
	// approver is assigned.
	StateInProgress State = "in_progress"

	StateApproved State = "approved"
	StateRejected State = "rejected"
)

var validStates = map[State]bool{
	StatePending:    true,
	StateInProgress: true,
	StateApproved:   true,
	StateRejected:   true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// IsTerminal returns true if no further transitions are allowed from s
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if s is a defined lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
