package approval

import (
	"context"
	"sort"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"go.uber.org/zap"
)

// ChainBuilder expands a selected rule, or the implicit manager fallback,
// into an ordered sequence of concrete approver steps.
type ChainBuilder struct {
	directory Directory
	logger    *zap.Logger
}

// NewChainBuilder creates a chain builder over the given directory
func NewChainBuilder(directory Directory, logger *zap.Logger) *ChainBuilder {
	return &ChainBuilder{directory: directory, logger: logger}
}

// FromRule resolves the rule's steps in ascending step order. A step whose
// approver no longer exists in the directory is skipped with a warning and
// the chain continues without it. The builder never reorders beyond the
// step sort and never deduplicates approvers: the same person may
// legitimately hold two steps.
func (b *ChainBuilder) FromRule(ctx context.Context, rule *entity.ApprovalRule) []entity.ChainStep {
	steps := append([]entity.ApprovalStep(nil), rule.Approvers...)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Step < steps[j].Step })

	chain := make([]entity.ChainStep, 0, len(steps))
	for _, step := range steps {
		user, ok := b.directory.UserByID(ctx, step.ApproverID)
		if !ok {
			b.logger.Warn("Skipping chain step with unresolved approver",
				zap.String("rule_id", rule.ID),
				zap.Int("step", step.Step),
				zap.String("approver_id", step.ApproverID),
				zap.Error(ErrUnresolvedApprover))
			continue
		}
		chain = append(chain, entity.ChainStep{
			Step:         step.Step,
			ApproverID:   user.ID,
			ApproverName: user.Name,
		})
	}

	return chain
}

// ManagerFallback returns the implicit single-step chain for a submitter
// whose expense matched no rule: the direct manager when one is set, nil
// otherwise. The manager is assigned whenever managerId is present; the
// isManagerApprover flag on the submitter is not consulted.
func (b *ChainBuilder) ManagerFallback(ctx context.Context, submitter *entity.User) []entity.ChainStep {
	if submitter == nil || submitter.ManagerID == "" {
		return nil
	}

	manager, ok := b.directory.UserByID(ctx, submitter.ManagerID)
	if !ok {
		b.logger.Warn("Submitter manager not found in directory",
			zap.String("submitter_id", submitter.ID),
			zap.String("manager_id", submitter.ManagerID),
			zap.Error(ErrUnresolvedApprover))
		return nil
	}

	return []entity.ChainStep{{Step: 1, ApproverID: manager.ID, ApproverName: manager.Name}}
}
