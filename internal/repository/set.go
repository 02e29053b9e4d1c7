package repository

import "gorm.io/gorm"

// Set bundles every repository over one database handle.
type Set struct {
	Users      UserRepository
	Categories CategoryRepository
	Expenses   ExpenseRepository
	Audit      AuditRepository
}

// New builds a Set over db.
func New(db *gorm.DB) *Set {
	return &Set{
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Expenses:   NewExpenseRepository(db),
		Audit:      NewAuditRepository(db),
	}
}
