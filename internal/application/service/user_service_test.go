package service

import (
	"context"
	"testing"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
)

func TestUserService_Signup(t *testing.T) {
	var createdCompany *entity.Company
	var createdUser *entity.User

	companyRepo := &mockCompanyRepo{
		getFunc: func(ctx context.Context) (*entity.Company, error) {
			return createdCompany, nil
		},
		createFunc: func(ctx context.Context, company *entity.Company) error {
			createdCompany = company
			return nil
		},
	}
	userRepo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *entity.User) error {
			createdUser = user
			return nil
		},
	}
	svc := NewUserService(userRepo, companyRepo, &mockTxManager{}, &mockLogger{})

	company, admin, err := svc.Signup(context.Background(), SignupInput{
		CompanyName: "Acme",
		Country:     "US",
		Currency:    "usd",
		AdminName:   "Drew",
		AdminEmail:  "Drew@Acme.test",
	})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	if company.Currency != "USD" {
		t.Errorf("currency = %s, want USD", company.Currency)
	}
	if admin.Role != entity.RoleAdmin {
		t.Errorf("admin role = %s, want %s", admin.Role, entity.RoleAdmin)
	}
	if admin.Email != "drew@acme.test" {
		t.Errorf("admin email = %s, want lowercased", admin.Email)
	}
	if createdCompany == nil || createdUser == nil {
		t.Fatal("Signup() should persist both company and admin")
	}

	// Second signup must fail: single-tenant deployment.
	if _, _, err := svc.Signup(context.Background(), SignupInput{
		CompanyName: "Other",
		Currency:    "EUR",
		AdminName:   "B",
		AdminEmail:  "b@other.test",
	}); err == nil {
		t.Error("second Signup() should fail once a company exists")
	}
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	users := map[string]*entity.User{
		"mgr-1": {ID: "mgr-1", Name: "Morgan", Role: entity.RoleManager},
	}
	byEmail := map[string]*entity.User{
		"taken@acme.test": {ID: "u-1", Email: "taken@acme.test"},
	}
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id string) (*entity.User, error) {
			return users[id], nil
		},
		getByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
			return byEmail[email], nil
		},
	}
	svc := NewUserService(userRepo, &mockCompanyRepo{}, &mockTxManager{}, &mockLogger{})

	tests := []struct {
		name    string
		input   UserInput
		wantErr bool
	}{
		{
			name:  "valid employee with manager",
			input: UserInput{Name: "Dana", Email: "dana@acme.test", Role: entity.RoleEmployee, ManagerID: "mgr-1"},
		},
		{
			name:    "invalid role",
			input:   UserInput{Name: "Dana", Email: "dana@acme.test", Role: "owner"},
			wantErr: true,
		},
		{
			name:    "duplicate email",
			input:   UserInput{Name: "Dana", Email: "Taken@Acme.test", Role: entity.RoleEmployee},
			wantErr: true,
		},
		{
			name:    "unknown manager",
			input:   UserInput{Name: "Dana", Email: "dana@acme.test", Role: entity.RoleEmployee, ManagerID: "ghost"},
			wantErr: true,
		},
		{
			name:    "missing name",
			input:   UserInput{Email: "dana@acme.test", Role: entity.RoleEmployee},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.CreateUser(context.Background(), tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateUser() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && user.ID == "" {
				t.Error("CreateUser() should assign an ID")
			}
		})
	}
}
