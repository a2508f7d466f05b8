package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/pkg/database"
	"go.uber.org/zap"
)

// UserRepository handles user database operations
type UserRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

const userColumns = `id, name, email, role, manager_id, department, is_manager_approver, created_at`

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, email, role, manager_id, department, is_manager_approver, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		nullString(user.ManagerID),
		nullString(user.Department),
		user.IsManagerApprover,
		user.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID; returns nil when not found
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.scanUser(r.db.Querier(ctx).QueryRowContext(ctx, query, id))
}

// GetByEmail retrieves a user by email; returns nil when not found
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return r.scanUser(r.db.Querier(ctx).QueryRowContext(ctx, query, email))
}

// Update rewrites the mutable user fields
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, role = ?, manager_id = ?, department = ?, is_manager_approver = ?
		WHERE id = ?
	`
	result, err := r.db.Querier(ctx).ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.Role,
		nullString(user.ManagerID),
		nullString(user.Department),
		user.IsManagerApprover,
		user.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update user", zap.String("id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRow(result, "user", user.ID)
}

// Delete removes a user. References from expenses and rules are left
// dangling by design; directory lookups simply miss.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.Querier(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRow(result, "user", id)
}

// List returns all users ordered by creation time
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.Querier(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := r.scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserRepository) scanUser(row *sql.Row) (*entity.User, error) {
	user, err := r.scanUserRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *UserRepository) scanUserRow(row rowScanner) (*entity.User, error) {
	var user entity.User
	var managerID, department sql.NullString

	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&managerID,
		&department,
		&user.IsManagerApprover,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		r.logger.Error("Failed to scan user", zap.Error(err))
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.ManagerID = managerID.String
	user.Department = department.String
	return &user, nil
}

// nullString maps "" to NULL so optional references stay clean in the schema
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// requireRow returns an error when an update/delete matched no rows
func requireRow(result sql.Result, kind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s not found: %s", kind, id)
	}
	return nil
}
