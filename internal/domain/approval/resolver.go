package approval

import "github.com/expenseflow/expense-approval/internal/domain/entity"

// Satisfied reports whether the accumulated approvals complete the chain.
//
// It is consulted after every approval action and never after a rejection:
// a single rejection terminates the expense before the resolver runs.
//
// Full-chain completion (every step holds an approval) is always a
// resolution path, even under a conditional rule that could otherwise never
// be met. Beyond that, the conditional rule may resolve the chain early:
//
//   - percentage: approvals / total steps reaches the required percentage;
//     a required percentage of zero or less never satisfies on its own.
//   - specific: any recorded approval came from one of the named approvers;
//     an empty approver set never satisfies on its own.
//   - hybrid: OR of the two by default, AND when requireBoth is set.
func Satisfied(chain []entity.ChainStep, history []entity.ApprovalAction, cond *entity.ConditionalRule) bool {
	approved := 0
	for _, action := range history {
		if action.Action == entity.ActionApproved {
			approved++
		}
	}

	if len(chain) > 0 && approved >= len(chain) {
		return true
	}

	if cond == nil {
		return false
	}

	switch cond.Type {
	case entity.ConditionalPercentage:
		return percentageMet(approved, len(chain), cond.PercentageRequired)
	case entity.ConditionalSpecific:
		return specificMet(history, cond.SpecificApproverIDs)
	case entity.ConditionalHybrid:
		pct := percentageMet(approved, len(chain), cond.PercentageRequired)
		named := specificMet(history, cond.SpecificApproverIDs)
		if cond.RequireBoth {
			return pct && named
		}
		return pct || named
	default:
		return false
	}
}

func percentageMet(approved, totalSteps int, required float64) bool {
	if required <= 0 || totalSteps == 0 {
		return false
	}
	return float64(approved)/float64(totalSteps)*100 >= required
}

func specificMet(history []entity.ApprovalAction, approverIDs []string) bool {
	if len(approverIDs) == 0 {
		return false
	}
	named := make(map[string]bool, len(approverIDs))
	for _, id := range approverIDs {
		named[id] = true
	}
	for _, action := range history {
		if action.Action == entity.ActionApproved && named[action.ApproverID] {
			return true
		}
	}
	return false
}
