package approval

import (
	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"go.uber.org/zap"
)

// Selector picks the approval rule that governs a submitted expense.
//
// A rule qualifies when it is active and its threshold, converted to the
// expense currency, does not exceed the expense amount. A rule with no
// threshold applies unconditionally. Among qualifying rules the lowest
// effective threshold wins; ties break on earliest creation time so the
// choice is deterministic across runs.
type Selector struct {
	converter Converter
	logger    *zap.Logger
}

// NewSelector creates a rule selector
func NewSelector(converter Converter, logger *zap.Logger) *Selector {
	return &Selector{converter: converter, logger: logger}
}

// Select returns the governing rule for the given amount and currency, or
// nil when no active rule qualifies and the manager-chain fallback should
// be used instead.
func (s *Selector) Select(rules []*entity.ApprovalRule, amount float64, currency string) *entity.ApprovalRule {
	var (
		best          *entity.ApprovalRule
		bestThreshold float64
	)

	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}

		threshold := 0.0
		if rule.ThresholdAmount != nil {
			converted, err := s.converter.Convert(*rule.ThresholdAmount, rule.Currency, currency)
			if err != nil {
				s.logger.Warn("Skipping rule with unconvertible threshold",
					zap.String("rule_id", rule.ID),
					zap.String("rule_currency", rule.Currency),
					zap.String("expense_currency", currency),
					zap.Error(err))
				continue
			}
			threshold = converted
		}

		if amount < threshold {
			continue
		}

		if best == nil || threshold < bestThreshold ||
			(threshold == bestThreshold && rule.CreatedAt.Before(best.CreatedAt)) {
			best = rule
			bestThreshold = threshold
		}
	}

	return best
}
