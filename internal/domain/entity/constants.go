package entity

// Role constants for User
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// Status constants for Expense
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
)

// Action constants for ApprovalAction
const (
	ActionApproved = "approved"
	ActionRejected = "rejected"
)

// Conditional rule type constants
const (
	ConditionalPercentage = "percentage"
	ConditionalSpecific   = "specific"
	ConditionalHybrid     = "hybrid"
)

// Category constants for Expense
const (
	CategoryTravel         = "Travel"
	CategoryFood           = "Food"
	CategoryAccommodation  = "Accommodation"
	CategoryTransportation = "Transportation"
	CategoryOfficeSupplies = "Office Supplies"
	CategoryEntertainment  = "Client Entertainment"
	CategoryTraining       = "Training"
	CategoryOther          = "Other"
)

// Notification kind constants
const (
	NotificationApprovalPending = "approval_pending"
	NotificationExpenseApproved = "expense_approved"
	NotificationExpenseRejected = "expense_rejected"
)

// ValidRole reports whether role is one of the defined user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}

// ValidConditionalType reports whether t is a known conditional rule type.
func ValidConditionalType(t string) bool {
	switch t {
	case ConditionalPercentage, ConditionalSpecific, ConditionalHybrid:
		return true
	default:
		return false
	}
}
