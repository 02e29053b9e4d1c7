package services

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"expensely/internal/clock"
	apperrors "expensely/internal/errors"
	"expensely/internal/lock"
	"expensely/internal/logger"
	"expensely/internal/models"
	"expensely/internal/pagination"
	"expensely/internal/repository"
)

var maxAmount = decimal.New(1, models.MaxAmountIntDigits)

// expenseService handles the expense lifecycle.
type expenseService struct {
	expenses   repository.ExpenseRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	locker     lock.Locker
	clock      clock.Clock
}

// NewExpenseService creates a new ExpenseServicer. Mutations of one expense
// are serialized through locker and committed with a version check.
func NewExpenseService(repos *repository.Set, locker lock.Locker, clk clock.Clock) ExpenseServicer {
	return &expenseService{
		expenses:   repos.Expenses,
		users:      repos.Users,
		categories: repos.Categories,
		locker:     locker,
		clock:      clk,
	}
}

// CreateExpense records a new DRAFT expense for ownerID.
func (s *expenseService) CreateExpense(ctx context.Context, ownerID string, in ExpenseInput) (*models.Expense, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, mapUserErr(err)
	}

	category, err := s.categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, mapCategoryErr(err)
	}

	now := s.clock.Now()
	expense := &models.Expense{
		UserID:      ownerID,
		CategoryID:  category.ID,
		Amount:      in.Amount,
		ExpenseDate: in.ExpenseDate,
		Description: in.Description,
		Status:      models.ExpenseStatusDraft,
		Version:     1,
	}
	expense.CreatedAt = now
	expense.UpdatedAt = now

	if err := s.expenses.Create(ctx, expense); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	expense.Category = category

	logger.Get().Infow("expense created", "expense_id", expense.ID, "user_id", ownerID, "amount", expense.Amount.String())
	return expense, nil
}

// GetExpense returns an expense to its owner. Reviewers use the pending queue instead.
func (s *expenseService) GetExpense(ctx context.Context, expenseID, requesterID string) (*models.Expense, error) {
	expense, err := s.loadExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !expense.IsOwnedBy(requesterID) {
		return nil, apperrors.ErrForbidden
	}
	return expense, nil
}

// UpdateExpense replaces the editable fields of a DRAFT expense.
func (s *expenseService) UpdateExpense(ctx context.Context, expenseID, requesterID string, in ExpenseInput) (*models.Expense, error) {
	if err := s.validateInput(&in); err != nil {
		return nil, err
	}

	return s.mutate(ctx, expenseID, func(ctx context.Context, expense *models.Expense) error {
		if err := requireOwnedDraft(expense, requesterID, "updated"); err != nil {
			return err
		}

		category, err := s.categories.GetByID(ctx, in.CategoryID)
		if err != nil {
			return mapCategoryErr(err)
		}

		expense.CategoryID = category.ID
		expense.Category = category
		expense.Amount = in.Amount
		expense.ExpenseDate = in.ExpenseDate
		expense.Description = in.Description
		expense.UpdatedAt = s.clock.Now()
		return nil
	}, "expense updated")
}

// DeleteExpense removes a DRAFT expense.
func (s *expenseService) DeleteExpense(ctx context.Context, expenseID, requesterID string) error {
	err := s.locker.WithLock(ctx, lock.ExpenseKey(expenseID), func(ctx context.Context) error {
		expense, err := s.loadExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		if err := requireOwnedDraft(expense, requesterID, "deleted"); err != nil {
			return err
		}
		if err := s.expenses.DeleteIfVersion(ctx, expense.ID, expense.Version); err != nil {
			return mapWriteErr(err)
		}
		return nil
	})
	if err != nil {
		return mapLockErr(err)
	}

	logger.Get().Infow("expense deleted", "expense_id", expenseID, "user_id", requesterID)
	return nil
}

// SubmitExpense sends a DRAFT expense for review.
func (s *expenseService) SubmitExpense(ctx context.Context, expenseID, requesterID string) (*models.Expense, error) {
	return s.mutate(ctx, expenseID, func(ctx context.Context, expense *models.Expense) error {
		if err := requireOwnedDraft(expense, requesterID, "submitted"); err != nil {
			return err
		}
		expense.MarkSubmitted(s.clock.Now())
		return nil
	}, "expense submitted")
}

// ListPendingExpenses returns every SUBMITTED expense across owners.
func (s *expenseService) ListPendingExpenses(ctx context.Context, requesterID string) ([]models.Expense, error) {
	if _, err := s.requireReviewer(ctx, requesterID); err != nil {
		return nil, err
	}

	expenses, err := s.expenses.FindByStatus(ctx, models.ExpenseStatusSubmitted)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return expenses, nil
}

// ApproveExpense accepts a SUBMITTED expense.
func (s *expenseService) ApproveExpense(ctx context.Context, expenseID, reviewerID, notes string) (*models.Expense, error) {
	return s.review(ctx, expenseID, reviewerID, notes, models.ExpenseStatusApproved)
}

// RejectExpense declines a SUBMITTED expense. Rejection is final.
func (s *expenseService) RejectExpense(ctx context.Context, expenseID, reviewerID, notes string) (*models.Expense, error) {
	return s.review(ctx, expenseID, reviewerID, notes, models.ExpenseStatusRejected)
}

// ListUserExpenses pages through the owner's expenses.
func (s *expenseService) ListUserExpenses(ctx context.Context, ownerID string, query ExpenseQuery, page pagination.PageRequest, sort pagination.SortRequest) (*pagination.PageResponse[models.Expense], error) {
	filter, err := buildExpenseFilter(ctx, s.categories, query)
	if err != nil {
		return nil, err
	}

	page.Defaults()
	sort.Defaults("expense_date")

	expenses, total, err := s.expenses.FindByOwner(ctx, ownerID, filter, page, sort)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(expenses, page.Page, page.PageSize, total)
	return &result, nil
}

func (s *expenseService) review(ctx context.Context, expenseID, reviewerID, notes string, decision models.ExpenseStatus) (*models.Expense, error) {
	if utf8.RuneCountInString(notes) > models.MaxReviewNotesLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "review notes must be at most 500 characters")
	}

	if _, err := s.requireReviewer(ctx, reviewerID); err != nil {
		return nil, err
	}

	verb := "approved"
	if decision == models.ExpenseStatusRejected {
		verb = "rejected"
	}

	return s.mutate(ctx, expenseID, func(ctx context.Context, expense *models.Expense) error {
		if expense.Status != models.ExpenseStatusSubmitted {
			return apperrors.WithMessage(apperrors.ErrInvalidExpenseStatus, "Only expenses in SUBMITTED status can be "+verb)
		}
		expense.MarkReviewed(decision, reviewerID, notes, s.clock.Now())
		return nil
	}, "expense "+verb)
}

// mutate loads the expense under its lock, lets apply check and modify it,
// then writes it back only if nobody else wrote in between.
func (s *expenseService) mutate(ctx context.Context, expenseID string, apply func(ctx context.Context, expense *models.Expense) error, event string) (*models.Expense, error) {
	var result *models.Expense

	err := s.locker.WithLock(ctx, lock.ExpenseKey(expenseID), func(ctx context.Context) error {
		expense, err := s.loadExpense(ctx, expenseID)
		if err != nil {
			return err
		}

		readVersion := expense.Version
		if err := apply(ctx, expense); err != nil {
			return err
		}

		if err := s.expenses.UpdateIfVersion(ctx, expense, readVersion); err != nil {
			return mapWriteErr(err)
		}
		result = expense
		return nil
	})
	if err != nil {
		return nil, mapLockErr(err)
	}

	logger.Get().Infow(event,
		"expense_id", result.ID,
		"user_id", result.UserID,
		"status", result.Status,
		"version", result.Version,
	)
	return result, nil
}

func (s *expenseService) loadExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return expense, nil
}

// requireReviewer is the single gate for manager-only operations.
func (s *expenseService) requireReviewer(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserErr(err)
	}
	if !user.CanReview() {
		return nil, apperrors.ErrReviewerRequired
	}
	return user, nil
}

func requireOwnedDraft(expense *models.Expense, requesterID, verb string) error {
	if !expense.IsOwnedBy(requesterID) {
		return apperrors.ErrForbidden
	}
	if !expense.IsDraft() {
		return apperrors.WithMessage(apperrors.ErrInvalidExpenseStatus, "Only expenses in DRAFT status can be "+verb)
	}
	return nil
}

// validateInput checks and normalizes owner input in place.
func (s *expenseService) validateInput(in *ExpenseInput) error {
	if err := ValidateAmount(in.Amount); err != nil {
		return err
	}

	if in.ExpenseDate.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "expense date is required")
	}
	in.ExpenseDate = clock.DateOf(in.ExpenseDate)
	if in.ExpenseDate.After(clock.Today(s.clock)) {
		return apperrors.ErrFutureExpenseDate
	}

	in.CategoryID = strings.TrimSpace(in.CategoryID)
	if in.CategoryID == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}

	in.Description = strings.TrimSpace(in.Description)
	if utf8.RuneCountInString(in.Description) > models.MaxDescriptionLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "description must be at most 1000 characters")
	}
	return nil
}

// ValidateAmount enforces a strictly positive amount with at most 8 integer
// and 2 fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "Amount must be greater than 0")
	}
	if !amount.Equal(amount.Truncate(models.MaxAmountFracDigits)) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "Amount must have at most 2 decimal places")
	}
	if amount.GreaterThanOrEqual(maxAmount) {
		return apperrors.WithMessage(apperrors.ErrInvalidAmount, "Amount must have at most 8 integer digits")
	}
	return nil
}

// buildExpenseFilter validates query and resolves it to a repository filter.
func buildExpenseFilter(ctx context.Context, categories repository.CategoryRepository, query ExpenseQuery) (repository.ExpenseFilter, error) {
	var filter repository.ExpenseFilter

	if query.Status != nil {
		status := models.ExpenseStatus(strings.ToUpper(strings.TrimSpace(*query.Status)))
		if !status.IsValid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be one of DRAFT, SUBMITTED, APPROVED, REJECTED")
		}
		filter.Status = &status
	}

	if query.CategoryID != nil {
		if _, err := categories.GetByID(ctx, *query.CategoryID); err != nil {
			return filter, mapCategoryErr(err)
		}
		filter.CategoryID = query.CategoryID
	}

	if query.From != nil {
		from := clock.DateOf(*query.From)
		filter.From = &from
	}
	if query.To != nil {
		to := clock.DateOf(*query.To)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "from date must not be after to date")
	}
	return filter, nil
}

func mapWriteErr(err error) error {
	if errors.Is(err, repository.ErrStaleVersion) {
		return apperrors.Wrap(apperrors.ErrConflict, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

func mapLockErr(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, lock.ErrNotAcquired) {
		return apperrors.Wrap(apperrors.ErrConflict, err)
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
