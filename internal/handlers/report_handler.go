package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"expensely/internal/middleware"
	"expensely/internal/services"
	"expensely/internal/validator"
)

// ReportHandler serves expense reports.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// SummaryQuery holds the optional report filters.
type SummaryQuery struct {
	From       string `form:"from" binding:"omitempty,iso_date"`
	To         string `form:"to" binding:"omitempty,iso_date"`
	CategoryID string `form:"category_id"`
	Status     string `form:"status"`
}

func (q SummaryQuery) toQuery() services.ExpenseQuery {
	var query services.ExpenseQuery
	if q.From != "" {
		from, _ := time.Parse(validator.DateLayout, q.From)
		query.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(validator.DateLayout, q.To)
		query.To = &to
	}
	if q.CategoryID != "" {
		query.CategoryID = &q.CategoryID
	}
	if q.Status != "" {
		query.Status = &q.Status
	}
	return query
}

// GetSummary reports the caller's expenses with an exact total
// @Summary     Expense summary
// @Description The caller's expenses filtered by inclusive date range, category and status, with count and total
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       from        query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param       to          query string false "End date (YYYY-MM-DD, inclusive)"
// @Param       category_id query string false "Category ID"
// @Param       status      query string false "DRAFT, SUBMITTED, APPROVED or REJECTED"
// @Success     200 {object} services.ExpenseSummary "Summary"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /reports/summary [get]
func (h *ReportHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, middleware.InvalidInput(err))
		return
	}

	summary, err := h.reportService.GetSummary(c.Request.Context(), userID, q.toQuery())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
