package repository

import (
	"context"

	"gorm.io/gorm"

	"expensely/internal/models"
)

// AuditRepository appends audit entries. Entries are never updated.
type AuditRepository interface {
	Append(ctx context.Context, entry *models.AuditLog) error
}

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository instantiates repository.
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
