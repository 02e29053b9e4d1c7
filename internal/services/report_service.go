package services

import (
	"context"

	"github.com/shopspring/decimal"

	apperrors "expensely/internal/errors"
	"expensely/internal/models"
	"expensely/internal/repository"
)

// reportService aggregates a user's expenses.
type reportService struct {
	expenses   repository.ExpenseRepository
	categories repository.CategoryRepository
}

// NewReportService creates a new ReportServicer.
func NewReportService(repos *repository.Set) ReportServicer {
	return &reportService{expenses: repos.Expenses, categories: repos.Categories}
}

// GetSummary lists the owner's expenses matching query with their exact total.
func (s *reportService) GetSummary(ctx context.Context, ownerID string, query ExpenseQuery) (*ExpenseSummary, error) {
	filter, err := buildExpenseFilter(ctx, s.categories, query)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenses.FindAllByOwner(ctx, ownerID, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}

	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	return &ExpenseSummary{
		Expenses:    expenses,
		TotalAmount: total.Round(models.MaxAmountFracDigits),
		Count:       len(expenses),
		Filters:     query,
	}, nil
}
