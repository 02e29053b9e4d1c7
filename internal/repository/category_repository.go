package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"expensely/internal/models"
	"expensely/internal/uuid"
)

// CategoryRepository encapsulates category persistence.
type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	CreateIfMissing(ctx context.Context, category *models.Category) (bool, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository instantiates repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	if !uuid.IsValid(id) {
		return nil, gorm.ErrRecordNotFound
	}
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateIfMissing inserts category unless one with the same name exists.
// It reports whether a row was written.
func (r *categoryRepository) CreateIfMissing(ctx context.Context, category *models.Category) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(category)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
