package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/expenseflow/expense-approval/internal/application/port"
	"github.com/expenseflow/expense-approval/internal/domain/entity"
)

// RuleInput carries the writable fields of an approval rule
type RuleInput struct {
	Name            string
	Description     string
	ThresholdAmount *float64
	Currency        string
	Approvers       []entity.ApprovalStep
	Conditional     *entity.ConditionalRule
	IsActive        bool
}

// RuleService manages approval rule configuration. Edits and deletions only
// affect future submissions; expenses keep the chain snapshotted when they
// were submitted.
type RuleService interface {
	Create(ctx context.Context, input RuleInput) (*entity.ApprovalRule, error)
	Get(ctx context.Context, id string) (*entity.ApprovalRule, error)
	Update(ctx context.Context, id string, input RuleInput) (*entity.ApprovalRule, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.ApprovalRule, error)
}

type ruleServiceImpl struct {
	ruleRepo port.RuleRepository
	userRepo port.UserRepository
	logger   Logger
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo port.RuleRepository, userRepo port.UserRepository, logger Logger) RuleService {
	return &ruleServiceImpl{ruleRepo: ruleRepo, userRepo: userRepo, logger: logger}
}

// Create adds a new approval rule
func (s *ruleServiceImpl) Create(ctx context.Context, input RuleInput) (*entity.ApprovalRule, error) {
	if err := validateRule(input); err != nil {
		return nil, err
	}

	now := time.Now()
	rule := &entity.ApprovalRule{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Description:     input.Description,
		ThresholdAmount: input.ThresholdAmount,
		Currency:        strings.ToUpper(input.Currency),
		Approvers:       input.Approvers,
		Conditional:     input.Conditional,
		IsActive:        input.IsActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("Approval rule created", "rule_id", rule.ID, "name", rule.Name)
	return rule, nil
}

// Get retrieves a rule by ID
func (s *ruleServiceImpl) Get(ctx context.Context, id string) (*entity.ApprovalRule, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, fmt.Errorf("rule %s not found", id)
	}
	return rule, nil
}

// Update replaces the writable fields of a rule
func (s *ruleServiceImpl) Update(ctx context.Context, id string, input RuleInput) (*entity.ApprovalRule, error) {
	rule, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateRule(input); err != nil {
		return nil, err
	}

	rule.Name = input.Name
	rule.Description = input.Description
	rule.ThresholdAmount = input.ThresholdAmount
	rule.Currency = strings.ToUpper(input.Currency)
	rule.Approvers = input.Approvers
	rule.Conditional = input.Conditional
	rule.IsActive = input.IsActive
	rule.UpdatedAt = time.Now()

	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// Delete removes a rule
func (s *ruleServiceImpl) Delete(ctx context.Context, id string) error {
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Approval rule deleted", "rule_id", id)
	return nil
}

// List lists all rules
func (s *ruleServiceImpl) List(ctx context.Context) ([]*entity.ApprovalRule, error) {
	return s.ruleRepo.List(ctx)
}

func validateRule(input RuleInput) error {
	if input.Name == "" {
		return fmt.Errorf("rule name is required")
	}
	if input.Currency == "" {
		return fmt.Errorf("rule currency is required")
	}
	if input.ThresholdAmount != nil && *input.ThresholdAmount < 0 {
		return fmt.Errorf("rule threshold must not be negative")
	}

	seen := make(map[int]bool, len(input.Approvers))
	for _, step := range input.Approvers {
		if step.Step <= 0 {
			return fmt.Errorf("approver step numbers must be positive")
		}
		if seen[step.Step] {
			return fmt.Errorf("duplicate approver step %d", step.Step)
		}
		seen[step.Step] = true
		if step.ApproverID == "" {
			return fmt.Errorf("approver step %d has no approver", step.Step)
		}
	}

	if cond := input.Conditional; cond != nil {
		if !entity.ValidConditionalType(cond.Type) {
			return fmt.Errorf("invalid conditional type %q", cond.Type)
		}
		switch cond.Type {
		case entity.ConditionalPercentage:
			if cond.PercentageRequired <= 0 || cond.PercentageRequired > 100 {
				return fmt.Errorf("percentage required must be in (0, 100]")
			}
		case entity.ConditionalSpecific:
			if len(cond.SpecificApproverIDs) == 0 {
				return fmt.Errorf("specific conditional needs at least one approver")
			}
		case entity.ConditionalHybrid:
			if cond.PercentageRequired <= 0 || cond.PercentageRequired > 100 {
				return fmt.Errorf("percentage required must be in (0, 100]")
			}
			if len(cond.SpecificApproverIDs) == 0 {
				return fmt.Errorf("hybrid conditional needs at least one approver")
			}
		}
	}
	return nil
}
