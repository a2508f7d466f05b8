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

// SignupInput bootstraps a company and its admin user in one step
type SignupInput struct {
	CompanyName string
	Country     string
	Currency    string
	AdminName   string
	AdminEmail  string
}

// UserInput carries the writable fields of a user record
type UserInput struct {
	Name              string
	Email             string
	Role              string
	ManagerID         string
	Department        string
	IsManagerApprover bool
}

// UserService manages the company record and its user directory
type UserService interface {
	Signup(ctx context.Context, input SignupInput) (*entity.Company, *entity.User, error)
	GetCompany(ctx context.Context) (*entity.Company, error)
	CreateUser(ctx context.Context, input UserInput) (*entity.User, error)
	GetUser(ctx context.Context, id string) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, input UserInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]*entity.User, error)
}

type userServiceImpl struct {
	userRepo    port.UserRepository
	companyRepo port.CompanyRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo port.UserRepository,
	companyRepo port.CompanyRepository,
	txManager port.TransactionManager,
	logger Logger,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Signup creates the company and its first admin user. It fails when a
// company already exists; this is a single-tenant deployment.
func (s *userServiceImpl) Signup(ctx context.Context, input SignupInput) (*entity.Company, *entity.User, error) {
	if input.CompanyName == "" || input.Currency == "" {
		return nil, nil, fmt.Errorf("company name and currency are required")
	}
	if input.AdminName == "" || input.AdminEmail == "" {
		return nil, nil, fmt.Errorf("admin name and email are required")
	}

	existing, err := s.companyRepo.Get(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("check company: %w", err)
	}
	if existing != nil {
		return nil, nil, fmt.Errorf("company already exists")
	}

	company := &entity.Company{
		ID:        uuid.NewString(),
		Name:      input.CompanyName,
		Country:   input.Country,
		Currency:  strings.ToUpper(input.Currency),
		CreatedAt: time.Now(),
	}
	admin := &entity.User{
		ID:        uuid.NewString(),
		Name:      input.AdminName,
		Email:     strings.ToLower(input.AdminEmail),
		Role:      entity.RoleAdmin,
		CreatedAt: time.Now(),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.companyRepo.Create(txCtx, company); err != nil {
			return fmt.Errorf("create company: %w", err)
		}
		if err := s.userRepo.Create(txCtx, admin); err != nil {
			return fmt.Errorf("create admin user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Signup failed", "error", err, "company", input.CompanyName)
		return nil, nil, err
	}

	s.logger.Info("Company created", "company_id", company.ID, "admin_id", admin.ID)
	return company, admin, nil
}

// GetCompany returns the company record, or an error when signup has not
// run yet.
func (s *userServiceImpl) GetCompany(ctx context.Context) (*entity.Company, error) {
	company, err := s.companyRepo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("company not found")
	}
	return company, nil
}

// CreateUser adds a user to the directory
func (s *userServiceImpl) CreateUser(ctx context.Context, input UserInput) (*entity.User, error) {
	if err := s.validate(ctx, input, ""); err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:                uuid.NewString(),
		Name:              input.Name,
		Email:             strings.ToLower(input.Email),
		Role:              input.Role,
		ManagerID:         input.ManagerID,
		Department:        input.Department,
		IsManagerApprover: input.IsManagerApprover,
		CreatedAt:         time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// GetUser retrieves a user by ID
func (s *userServiceImpl) GetUser(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return user, nil
}

// UpdateUser replaces the writable fields of a user
func (s *userServiceImpl) UpdateUser(ctx context.Context, id string, input UserInput) (*entity.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, input, id); err != nil {
		return nil, err
	}

	user.Name = input.Name
	user.Email = strings.ToLower(input.Email)
	user.Role = input.Role
	user.ManagerID = input.ManagerID
	user.Department = input.Department
	user.IsManagerApprover = input.IsManagerApprover

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a user. Expenses that already snapshotted this user
// into a chain keep their snapshot; future chain builds simply skip the
// dangling reference.
func (s *userServiceImpl) DeleteUser(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", "user_id", id)
	return nil
}

// ListUsers lists all users
func (s *userServiceImpl) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.userRepo.List(ctx)
}

// validate checks user input; selfID excludes the user being updated from
// the email uniqueness check.
func (s *userServiceImpl) validate(ctx context.Context, input UserInput, selfID string) error {
	if input.Name == "" || input.Email == "" {
		return fmt.Errorf("user name and email are required")
	}
	if !entity.ValidRole(input.Role) {
		return fmt.Errorf("invalid role %q", input.Role)
	}

	existing, err := s.userRepo.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		return fmt.Errorf("email %s already in use", input.Email)
	}

	if input.ManagerID != "" {
		manager, err := s.userRepo.GetByID(ctx, input.ManagerID)
		if err != nil {
			return fmt.Errorf("check manager: %w", err)
		}
		if manager == nil {
			return fmt.Errorf("manager %s not found", input.ManagerID)
		}
	}
	return nil
}
