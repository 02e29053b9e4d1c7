package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"expensely/internal/models"
	"expensely/internal/pagination"
	"expensely/internal/uuid"
)

// ExpenseFilter narrows owner listings and reports. Zero fields are ignored;
// date bounds are inclusive.
type ExpenseFilter struct {
	Status     *models.ExpenseStatus
	CategoryID *string
	From       *time.Time
	To         *time.Time
}

// ExpenseSortColumns maps public sort keys to columns.
var ExpenseSortColumns = map[string]string{
	"expense_date": "expense_date",
	"amount":       "amount",
	"created_at":   "created_at",
	"status":       "status",
}

// ExpenseRepository encapsulates expense persistence. Writes to an existing
// row are conditional on the version the caller read.
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	UpdateIfVersion(ctx context.Context, expense *models.Expense, expectedVersion int) error
	DeleteIfVersion(ctx context.Context, id string, expectedVersion int) error
	FindByOwner(ctx context.Context, ownerID string, filter ExpenseFilter, page pagination.PageRequest, sort pagination.SortRequest) ([]models.Expense, int64, error)
	FindAllByOwner(ctx context.Context, ownerID string, filter ExpenseFilter) ([]models.Expense, error)
	FindByStatus(ctx context.Context, status models.ExpenseStatus) ([]models.Expense, error)
}

type expenseRepository struct {
	db *gorm.DB
}

// NewExpenseRepository instantiates repository.
func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	if expense.Version == 0 {
		expense.Version = 1
	}
	return r.db.WithContext(ctx).Omit("Category").Create(expense).Error
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	if !uuid.IsValid(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var expense models.Expense
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&expense).Error
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// UpdateIfVersion writes every mutable column of expense and bumps its version,
// but only while the stored version still equals expectedVersion.
func (r *expenseRepository) UpdateIfVersion(ctx context.Context, expense *models.Expense, expectedVersion int) error {
	next := expectedVersion + 1
	result := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ? AND version = ?", expense.ID, expectedVersion).
		Updates(map[string]any{
			"category_id":    expense.CategoryID,
			"amount":         expense.Amount,
			"expense_date":   expense.ExpenseDate,
			"description":    expense.Description,
			"status":         expense.Status,
			"submitted_at":   expense.SubmittedAt,
			"reviewed_at":    expense.ReviewedAt,
			"reviewed_by_id": expense.ReviewedByID,
			"review_notes":   expense.ReviewNotes,
			"updated_at":     expense.UpdatedAt,
			"version":        next,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	expense.Version = next
	return nil
}

func (r *expenseRepository) DeleteIfVersion(ctx context.Context, id string, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND version = ?", id, expectedVersion).
		Delete(&models.Expense{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleVersion
	}
	return nil
}

func (r *expenseRepository) FindByOwner(ctx context.Context, ownerID string, filter ExpenseFilter, page pagination.PageRequest, sort pagination.SortRequest) ([]models.Expense, int64, error) {
	query := applyExpenseFilter(filter)(
		r.db.WithContext(ctx).Model(&models.Expense{}).Where("user_id = ?", ownerID),
	).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var expenses []models.Expense
	err := query.
		Preload("Category").
		Scopes(pagination.Sort(sort, ExpenseSortColumns, "expense_date"), pagination.Paginate(page)).
		Find(&expenses).Error
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

func (r *expenseRepository) FindAllByOwner(ctx context.Context, ownerID string, filter ExpenseFilter) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("user_id = ?", ownerID).
		Scopes(applyExpenseFilter(filter)).
		Order("expense_date DESC").
		Order("id DESC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *expenseRepository) FindByStatus(ctx context.Context, status models.ExpenseStatus) ([]models.Expense, error) {
	var expenses []models.Expense
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("status = ?", status).
		Order("submitted_at ASC").
		Find(&expenses).Error
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func applyExpenseFilter(filter ExpenseFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			db = db.Where("status = ?", *filter.Status)
		}
		if filter.CategoryID != nil {
			db = db.Where("category_id = ?", *filter.CategoryID)
		}
		if filter.From != nil {
			db = db.Where("expense_date >= ?", *filter.From)
		}
		if filter.To != nil {
			db = db.Where("expense_date <= ?", *filter.To)
		}
		return db
	}
}
