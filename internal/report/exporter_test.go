package report

import (
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/expenseflow/expense-approval/internal/domain/entity"
)

type stubExpenseRepo struct {
	expenses []*entity.Expense
}

func (s *stubExpenseRepo) Create(ctx context.Context, expense *entity.Expense) error { return nil }

func (s *stubExpenseRepo) GetByID(ctx context.Context, id string) (*entity.Expense, error) {
	return nil, nil
}

func (s *stubExpenseRepo) UpdateState(ctx context.Context, id, status, currentApproverID string) error {
	return nil
}

func (s *stubExpenseRepo) AppendAction(ctx context.Context, action *entity.ApprovalAction) error {
	return nil
}

func (s *stubExpenseRepo) ListByEmployee(ctx context.Context, employeeID string) ([]*entity.Expense, error) {
	return nil, nil
}

func (s *stubExpenseRepo) ListByApprover(ctx context.Context, approverID string) ([]*entity.Expense, error) {
	return nil, nil
}

func (s *stubExpenseRepo) List(ctx context.Context) ([]*entity.Expense, error) {
	return s.expenses, nil
}

func TestExporter_ExportExpenses(t *testing.T) {
	converted := 108.0
	repo := &stubExpenseRepo{
		expenses: []*entity.Expense{
			{
				ID:                 "exp-1",
				EmployeeName:       "Dana",
				Amount:             100,
				Currency:           "EUR",
				AmountInCompanyCcy: &converted,
				Category:           entity.CategoryTravel,
				Description:        "client visit",
				Date:               time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
				Status:             entity.StatusInProgress,
				CurrentApproverID:  "mgr-1",
				SubmittedAt:        time.Now(),
				ApprovalHistory: []entity.ApprovalAction{
					{Action: entity.ActionApproved},
				},
			},
		},
	}

	exporter := NewExporter(repo, t.TempDir(), zap.NewNop())
	path, err := exporter.ExportExpenses(context.Background())
	if err != nil {
		t.Fatalf("ExportExpenses() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open exported workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header plus one expense", len(rows))
	}
	if rows[0][0] != "ID" {
		t.Errorf("header cell = %q, want ID", rows[0][0])
	}
	if rows[1][0] != "exp-1" || rows[1][1] != "Dana" {
		t.Errorf("data row = %v", rows[1])
	}
	if rows[1][8] != entity.StatusInProgress {
		t.Errorf("status cell = %q, want %s", rows[1][8], entity.StatusInProgress)
	}
}
