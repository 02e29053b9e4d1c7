package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"expensely/internal/middleware"
	"expensely/internal/models"
	"expensely/internal/pagination"
	"expensely/internal/services"
	"expensely/internal/validator"
)

// ExpenseHandler exposes the expense lifecycle over HTTP.
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
	auditService   services.AuditServicer
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(expenseService services.ExpenseServicer, auditService services.AuditServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService, auditService: auditService}
}

// ExpenseRequest is the payload for creating or replacing a draft expense.
// Amount accepts a JSON number or a decimal string.
type ExpenseRequest struct {
	CategoryID  string           `json:"category_id" binding:"required"`
	Amount      *decimal.Decimal `json:"amount" binding:"required" swaggertype:"string" example:"42.50"`
	ExpenseDate string           `json:"expense_date" binding:"required,iso_date" example:"2026-01-15"`
	Description string           `json:"description" binding:"max=1000"`
}

func (r ExpenseRequest) toInput() services.ExpenseInput {
	// iso_date has already been validated by binding.
	date, _ := time.Parse(validator.DateLayout, r.ExpenseDate)
	return services.ExpenseInput{
		CategoryID:  r.CategoryID,
		Amount:      *r.Amount,
		ExpenseDate: date,
		Description: r.Description,
	}
}

// ReviewRequest carries optional reviewer notes.
type ReviewRequest struct {
	Notes string `json:"notes" binding:"max=500"`
}

// ListExpensesQuery holds the query parameters of GET /expenses.
type ListExpensesQuery struct {
	pagination.PageRequest
	pagination.SortRequest
	Status string `form:"status" binding:"omitempty,expense_status"`
}

// CreateExpense records a new draft expense
// @Summary     Create an expense
// @Description Create a DRAFT expense owned by the caller
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, middleware.InvalidInput(err))
		return
	}

	expense, err := h.expenseService.CreateExpense(c.Request.Context(), userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, userID, models.AuditCreateExpense, models.AuditResourceExpense, expense.ID,
		map[string]any{"amount": expense.Amount.StringFixed(2), "category_id": expense.CategoryID})

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// ListExpenses returns the caller's expenses
// @Summary     List my expenses
// @Description Paginated list of the caller's own expenses
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       sort_by   query string false "expense_date, amount, created_at or status (default expense_date)"
// @Param       sort_dir  query string false "asc or desc (default desc)"
// @Param       status    query string false "DRAFT, SUBMITTED, APPROVED or REJECTED"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /expenses [get]
func (h *ExpenseHandler) ListExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ListExpensesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, middleware.InvalidInput(err))
		return
	}

	var query services.ExpenseQuery
	if q.Status != "" {
		query.Status = &q.Status
	}

	result, err := h.expenseService.ListUserExpenses(c.Request.Context(), userID, query, q.PageRequest, q.SortRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPendingExpenses returns every submitted expense awaiting review
// @Summary     List pending expenses
// @Description All SUBMITTED expenses across users, oldest submission first. Managers and admins only.
// @Tags        review
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array}  models.Expense "Pending expenses"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller cannot review"
// @Router      /expenses/pending [get]
func (h *ExpenseHandler) ListPendingExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenses, err := h.expenseService.ListPendingExpenses(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenses": expenses})
}

// GetExpense returns one of the caller's expenses
// @Summary     Get an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id  path     string true "Expense ID"
// @Success     200 {object} models.Expense "Expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpense(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense replaces the fields of a draft expense
// @Summary     Update an expense
// @Description Replace category, amount, date and description of a DRAFT expense owned by the caller
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input or not a draft"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense or category not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, middleware.InvalidInput(err))
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Request.Context(), c.Param("id"), userID, req.toInput())
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, userID, models.AuditUpdateExpense, models.AuditResourceExpense, expense.ID,
		map[string]any{"amount": expense.Amount.StringFixed(2), "category_id": expense.CategoryID, "version": expense.Version})

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense removes a draft expense
// @Summary     Delete an expense
// @Tags        expenses
// @Security    BearerAuth
// @Param       id  path string true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     400 {object} ErrorResponse "Not a draft"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID := c.Param("id")
	if err := h.expenseService.DeleteExpense(c.Request.Context(), expenseID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, userID, models.AuditDeleteExpense, models.AuditResourceExpense, expenseID, nil)
	c.Status(http.StatusNoContent)
}

// SubmitExpense sends a draft for review
// @Summary     Submit an expense
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id  path     string true "Expense ID"
// @Success     200 {object} models.Expense "Expense submitted"
// @Failure     400 {object} ErrorResponse "Not a draft"
// @Failure     403 {object} ErrorResponse "Not the owner"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /expenses/{id}/submit [post]
func (h *ExpenseHandler) SubmitExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.SubmitExpense(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, userID, models.AuditSubmitExpense, models.AuditResourceExpense, expense.ID, nil)
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// ApproveExpense approves a submitted expense
// @Summary     Approve an expense
// @Description Managers and admins only. The role is checked before the expense is looked up.
// @Tags        review
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true  "Expense ID"
// @Param       request body ReviewRequest false "Reviewer notes"
// @Success     200 {object} models.Expense "Expense approved"
// @Failure     400 {object} ErrorResponse "Not submitted"
// @Failure     403 {object} ErrorResponse "Caller cannot review"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /expenses/{id}/approve [post]
func (h *ExpenseHandler) ApproveExpense(c *gin.Context) {
	h.review(c, models.ExpenseStatusApproved)
}

// RejectExpense rejects a submitted expense
// @Summary     Reject an expense
// @Description Managers and admins only. The role is checked before the expense is looked up.
// @Tags        review
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true  "Expense ID"
// @Param       request body ReviewRequest false "Reviewer notes"
// @Success     200 {object} models.Expense "Expense rejected"
// @Failure     400 {object} ErrorResponse "Not submitted"
// @Failure     403 {object} ErrorResponse "Caller cannot review"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Failure     409 {object} ErrorResponse "Concurrent modification"
// @Router      /expenses/{id}/reject [post]
func (h *ExpenseHandler) RejectExpense(c *gin.Context) {
	h.review(c, models.ExpenseStatusRejected)
}

func (h *ExpenseHandler) review(c *gin.Context, decision models.ExpenseStatus) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	// Notes are optional; an empty body, chunked or not, means none.
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, middleware.InvalidInput(err))
		return
	}

	var (
		expense *models.Expense
		action  models.AuditAction
	)
	if decision == models.ExpenseStatusApproved {
		expense, err = h.expenseService.ApproveExpense(c.Request.Context(), c.Param("id"), userID, req.Notes)
		action = models.AuditApproveExpense
	} else {
		expense, err = h.expenseService.RejectExpense(c.Request.Context(), c.Param("id"), userID, req.Notes)
		action = models.AuditRejectExpense
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	audit(c, h.auditService, userID, action, models.AuditResourceExpense, expense.ID,
		map[string]any{"owner_id": expense.UserID, "notes": expense.ReviewNotes})
	c.JSON(http.StatusOK, gin.H{"expense": expense})
}
