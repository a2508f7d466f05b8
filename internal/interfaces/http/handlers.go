package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/expenseflow/expense-approval/internal/application/service"
	"github.com/expenseflow/expense-approval/internal/domain/approval"
	"github.com/expenseflow/expense-approval/internal/domain/entity"
	"github.com/expenseflow/expense-approval/internal/report"
	"github.com/expenseflow/expense-approval/pkg/utils"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	expenseService      service.ExpenseService
	userService         service.UserService
	ruleService         service.RuleService
	notificationService service.NotificationService
	exporter            *report.Exporter
	logger              Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	expenseService service.ExpenseService,
	userService service.UserService,
	ruleService service.RuleService,
	notificationService service.NotificationService,
	exporter *report.Exporter,
	logger Logger,
) *Handlers {
	return &Handlers{
		expenseService:      expenseService,
		userService:         userService,
		ruleService:         ruleService,
		notificationService: notificationService,
		exporter:            exporter,
		logger:              logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SignupRequest bootstraps the company and its admin
type SignupRequest struct {
	CompanyName string `json:"company_name" binding:"required"`
	Country     string `json:"country"`
	Currency    string `json:"currency" binding:"required"`
	AdminName   string `json:"admin_name" binding:"required"`
	AdminEmail  string `json:"admin_email" binding:"required"`
}

// UserRequest carries user create/update fields
type UserRequest struct {
	Name              string `json:"name" binding:"required"`
	Email             string `json:"email" binding:"required"`
	Role              string `json:"role" binding:"required"`
	ManagerID         string `json:"manager_id"`
	Department        string `json:"department"`
	IsManagerApprover bool   `json:"is_manager_approver"`
}

// RuleRequest carries rule create/update fields
type RuleRequest struct {
	Name            string                  `json:"name" binding:"required"`
	Description     string                  `json:"description"`
	ThresholdAmount *float64                `json:"threshold_amount"`
	Currency        string                  `json:"currency" binding:"required"`
	Approvers       []entity.ApprovalStep   `json:"approvers"`
	Conditional     *entity.ConditionalRule `json:"conditional"`
	IsActive        bool                    `json:"is_active"`
}

// SubmitExpenseRequest carries expense submission fields
type SubmitExpenseRequest struct {
	EmployeeID  string  `json:"employee_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Currency    string  `json:"currency" binding:"required"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	ReceiptURL  string  `json:"receipt_url"`
}

// ActionRequest carries an approve/reject action
type ActionRequest struct {
	ApproverID string `json:"approver_id" binding:"required"`
	Comment    string `json:"comment"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: gin.H{
			"status":    "healthy",
			"service":   "expense-approval",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// Signup handles POST /api/v1/signup
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateEmail(req.AdminEmail); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateCurrency(req.Currency); err != nil {
		badRequest(c, err)
		return
	}

	company, admin, err := h.userService.Signup(c.Request.Context(), service.SignupInput{
		CompanyName: req.CompanyName,
		Country:     req.Country,
		Currency:    req.Currency,
		AdminName:   req.AdminName,
		AdminEmail:  req.AdminEmail,
	})
	if err != nil {
		h.fail(c, err, "signup failed")
		return
	}

	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    gin.H{"company": company, "admin": admin},
	})
}

// GetCompany handles GET /api/v1/company
func (h *Handlers) GetCompany(c *gin.Context) {
	company, err := h.userService.GetCompany(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to get company")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: company})
}

// CreateUser handles POST /api/v1/users
func (h *Handlers) CreateUser(c *gin.Context) {
	input, ok := h.bindUser(c)
	if !ok {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err, "failed to create user")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: user})
}

// GetUser handles GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to get user")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: user})
}

// UpdateUser handles PUT /api/v1/users/:id
func (h *Handlers) UpdateUser(c *gin.Context) {
	input, ok := h.bindUser(c)
	if !ok {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.fail(c, err, "failed to update user")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: user})
}

// DeleteUser handles DELETE /api/v1/users/:id
func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete user")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ListUsers handles GET /api/v1/users
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list users")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: users})
}

// CreateRule handles POST /api/v1/rules
func (h *Handlers) CreateRule(c *gin.Context) {
	input, ok := h.bindRule(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.Create(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err, "failed to create rule")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: rule})
}

// GetRule handles GET /api/v1/rules/:id
func (h *Handlers) GetRule(c *gin.Context) {
	rule, err := h.ruleService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to get rule")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rule})
}

// UpdateRule handles PUT /api/v1/rules/:id
func (h *Handlers) UpdateRule(c *gin.Context) {
	input, ok := h.bindRule(c)
	if !ok {
		return
	}

	rule, err := h.ruleService.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.fail(c, err, "failed to update rule")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rule})
}

// DeleteRule handles DELETE /api/v1/rules/:id
func (h *Handlers) DeleteRule(c *gin.Context) {
	if err := h.ruleService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete rule")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ListRules handles GET /api/v1/rules
func (h *Handlers) ListRules(c *gin.Context) {
	rules, err := h.ruleService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to list rules")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: rules})
}

// SubmitExpense handles POST /api/v1/expenses
func (h *Handlers) SubmitExpense(c *gin.Context) {
	var req SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateAmount(req.Amount); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateCurrency(req.Currency); err != nil {
		badRequest(c, err)
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			badRequest(c, err)
			return
		}
		date = parsed
	}

	expense, err := h.expenseService.Submit(c.Request.Context(), service.ExpenseDraft{
		EmployeeID:  req.EmployeeID,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Category:    req.Category,
		Description: utils.SanitizeString(req.Description),
		Date:        date,
		ReceiptURL:  req.ReceiptURL,
	})
	if err != nil {
		h.fail(c, err, "failed to submit expense")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: expense})
}

// GetExpense handles GET /api/v1/expenses/:id
func (h *Handlers) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to get expense")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// ListExpenses handles GET /api/v1/expenses. Optional employee_id or
// approver_id query parameters narrow the listing.
func (h *Handlers) ListExpenses(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		expenses []*entity.Expense
		err      error
	)
	switch {
	case c.Query("employee_id") != "":
		expenses, err = h.expenseService.ListByEmployee(ctx, c.Query("employee_id"))
	case c.Query("approver_id") != "":
		expenses, err = h.expenseService.ListPendingFor(ctx, c.Query("approver_id"))
	default:
		expenses, err = h.expenseService.List(ctx)
	}
	if err != nil {
		h.fail(c, err, "failed to list expenses")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expenses})
}

// ApproveExpense handles POST /api/v1/expenses/:id/approve
func (h *Handlers) ApproveExpense(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	expense, err := h.expenseService.Approve(c.Request.Context(), c.Param("id"), req.ApproverID, req.Comment)
	if err != nil {
		h.fail(c, err, "failed to approve expense")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// RejectExpense handles POST /api/v1/expenses/:id/reject
func (h *Handlers) RejectExpense(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	expense, err := h.expenseService.Reject(c.Request.Context(), c.Param("id"), req.ApproverID, req.Comment)
	if err != nil {
		h.fail(c, err, "failed to reject expense")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: expense})
}

// ListNotifications handles GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user_id is required"})
		return
	}

	notifications, err := h.notificationService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "failed to list notifications")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: notifications})
}

// MarkNotificationRead handles POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	if err := h.notificationService.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to mark notification read")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// MarkAllNotificationsRead handles POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "user_id is required"})
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.fail(c, err, "failed to mark notifications read")
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportExpenses handles POST /api/v1/reports/expenses
func (h *Handlers) ExportExpenses(c *gin.Context) {
	path, err := h.exporter.ExportExpenses(c.Request.Context())
	if err != nil {
		h.fail(c, err, "failed to export expenses")
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: gin.H{"path": path}})
}

func (h *Handlers) bindUser(c *gin.Context) (service.UserInput, bool) {
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return service.UserInput{}, false
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		badRequest(c, err)
		return service.UserInput{}, false
	}
	return service.UserInput{
		Name:              req.Name,
		Email:             req.Email,
		Role:              req.Role,
		ManagerID:         req.ManagerID,
		Department:        req.Department,
		IsManagerApprover: req.IsManagerApprover,
	}, true
}

func (h *Handlers) bindRule(c *gin.Context) (service.RuleInput, bool) {
	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return service.RuleInput{}, false
	}
	return service.RuleInput{
		Name:            req.Name,
		Description:     req.Description,
		ThresholdAmount: req.ThresholdAmount,
		Currency:        req.Currency,
		Approvers:       req.Approvers,
		Conditional:     req.Conditional,
		IsActive:        req.IsActive,
	}, true
}

// fail maps a service error to an HTTP status. Workflow rule violations
// carry well-known sentinel errors; anything else falls back on the
// not-found message convention or a 500.
func (h *Handlers) fail(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, approval.ErrNotAuthorizedApprover):
		status = http.StatusForbidden
	case errors.Is(err, approval.ErrExpenseAlreadyFinalized):
		status = http.StatusConflict
	case errors.Is(err, approval.ErrMissingRejectionComment):
		status = http.StatusBadRequest
	case strings.Contains(err.Error(), "not found"):
		status = http.StatusNotFound
	case strings.Contains(err.Error(), "already") ||
		strings.Contains(err.Error(), "required") ||
		strings.Contains(err.Error(), "invalid") ||
		strings.Contains(err.Error(), "must"):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		h.logger.Error(msg, "error", err)
		c.JSON(status, Response{Success: false, Error: msg})
		return
	}
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}
