package approval

import (
	"context"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
)

// Directory is a read-only view over user records, used to resolve rule
// steps and manager references while a chain is built. Implementations are
// expected to tolerate dangling references by returning false.
type Directory interface {
	UserByID(ctx context.Context, id string) (*entity.User, bool)
}

// Converter converts an amount between currencies. Conversion happens only
// during rule selection and at submission time, never inside a locked
// transition.
type Converter interface {
	Convert(amount float64, from, to string) (float64, error)
}
