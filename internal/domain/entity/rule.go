package entity

import "time"

// ApprovalStep is one ordered entry in a rule's approver sequence. Step
// numbers must be unique within a rule; the same approver may appear at
// more than one step.
type ApprovalStep struct {
	Step         int    `json:"step"`
	ApproverID   string `json:"approver_id"`
	ApproverName string `json:"approver_name,omitempty"`
	ApproverRole string `json:"approver_role,omitempty"`
}

// ConditionalRule is an optional early-completion condition attached to an
// approval rule. Type selects the variant; RequireBoth only applies to the
// hybrid type (false means either condition alone suffices).
type ConditionalRule struct {
	Type                string   `json:"type"`
	PercentageRequired  float64  `json:"percentage_required,omitempty"`
	SpecificApproverIDs []string `json:"specific_approver_ids,omitempty"`
	RequireBoth         bool     `json:"require_both,omitempty"`
}

// ApprovalRule is a named approval policy configured by an admin. A rule
// with no threshold applies unconditionally by amount. Deleting a rule does
// not touch expenses whose chain was already snapshotted at submission.
type ApprovalRule struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	ThresholdAmount *float64         `json:"threshold_amount,omitempty"`
	Currency        string           `json:"currency"`
	Approvers       []ApprovalStep   `json:"approvers"`
	Conditional     *ConditionalRule `json:"conditional,omitempty"`
	IsActive        bool             `json:"is_active"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
