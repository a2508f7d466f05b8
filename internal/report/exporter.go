package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/expenseflow/expense-approval/internal/application/port"
)

const sheetName = "Expenses"

// Exporter writes expense reports as xlsx workbooks
type Exporter struct {
	expenseRepo port.ExpenseRepository
	outputDir   string
	logger      *zap.Logger
}

// NewExporter creates a new report exporter
func NewExporter(expenseRepo port.ExpenseRepository, outputDir string, logger *zap.Logger) *Exporter {
	return &Exporter{expenseRepo: expenseRepo, outputDir: outputDir, logger: logger}
}

// ExportExpenses writes all expenses into a timestamped workbook under the
// output directory and returns the file path.
func (e *Exporter) ExportExpenses(ctx context.Context) (string, error) {
	expenses, err := e.expenseRepo.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to load expenses: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"ID", "Employee", "Amount", "Currency", "Amount (Company Ccy)",
		"Category", "Description", "Date", "Status", "Current Approver",
		"Submitted At", "Approvals",
	}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, expense := range expenses {
		companyAmount := ""
		if expense.AmountInCompanyCcy != nil {
			companyAmount = fmt.Sprintf("%.2f", *expense.AmountInCompanyCcy)
		}
		values := []interface{}{
			expense.ID,
			expense.EmployeeName,
			expense.Amount,
			expense.Currency,
			companyAmount,
			expense.Category,
			expense.Description,
			expense.Date.Format("2006-01-02"),
			expense.Status,
			expense.CurrentApproverID,
			expense.SubmittedAt.Format(time.RFC3339),
			expense.ApprovedCount(),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return "", fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(e.outputDir, fmt.Sprintf("expenses_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	e.logger.Info("Expense report exported",
		zap.String("path", path),
		zap.Int("expense_count", len(expenses)))
	return path, nil
}
