package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "expensely/internal/errors"
	"expensely/internal/logger"
	"expensely/internal/models"
	"expensely/internal/repository"
)

// categoryService handles category-related business logic.
type categoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(categories repository.CategoryRepository) CategoryServicer {
	return &categoryService{categories: categories}
}

// ListCategories returns every category ordered by name.
func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID
func (s *categoryService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, mapCategoryErr(err)
	}
	return category, nil
}

// EnsureDefaultCategories inserts any missing default category and reports
// how many were created. Safe to run on every startup.
func (s *categoryService) EnsureDefaultCategories(ctx context.Context) (int, error) {
	created := 0
	for _, def := range models.DefaultCategories {
		category := &models.Category{Name: def.Name, Description: def.Description}
		ok, err := s.categories.CreateIfMissing(ctx, category)
		if err != nil {
			return created, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		logger.Get().Infow("seeded default categories", "created", created)
	}
	return created, nil
}

func mapCategoryErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrCategoryNotFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
