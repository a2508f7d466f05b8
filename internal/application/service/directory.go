package service

import (
	"context"

	"github.com/expenseflow/expense-approval/internal/application/port"
	"github.com/expenseflow/expense-approval/internal/domain/approval"
	"github.com/expenseflow/expense-approval/internal/domain/entity"
)

// repoDirectory adapts the user repository to the read-only directory view
// the chain builder resolves approvers against. Lookup errors are treated
// the same as a missing user: the caller skips the reference.
type repoDirectory struct {
	users port.UserRepository
}

// NewDirectory creates a user directory backed by the user repository
func NewDirectory(users port.UserRepository) approval.Directory {
	return repoDirectory{users: users}
}

func (d repoDirectory) UserByID(ctx context.Context, id string) (*entity.User, bool) {
	user, err := d.users.GetByID(ctx, id)
	if err != nil || user == nil {
		return nil, false
	}
	return user, true
}
