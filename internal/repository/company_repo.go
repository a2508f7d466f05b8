package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/pkg/database"
	"go.uber.org/zap"
)

// CompanyRepository handles company database operations. The service is
// single-organization: one row, created at signup.
type CompanyRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *database.DB, logger *zap.Logger) *CompanyRepository {
	return &CompanyRepository{db: db, logger: logger}
}

// Create inserts the company record
func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (id, name, country, currency, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Querier(ctx).ExecContext(ctx, query,
		company.ID, company.Name, company.Country, company.Currency, company.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create company", zap.Error(err))
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

// Get returns the company record, or nil before signup
func (r *CompanyRepository) Get(ctx context.Context) (*entity.Company, error) {
	query := `SELECT id, name, country, currency, created_at FROM companies ORDER BY created_at LIMIT 1`

	var company entity.Company
	err := r.db.Querier(ctx).QueryRowContext(ctx, query).Scan(
		&company.ID, &company.Name, &company.Country, &company.Currency, &company.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get company", zap.Error(err))
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}
