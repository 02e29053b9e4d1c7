package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"expensely/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plaintext password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a USER with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleUser)
}

// CreateTestManager creates a MANAGER.
func CreateTestManager(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithRole(t, db, models.RoleManager)
}

// CreateTestUserWithRole creates a user with the given role and a unique email.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email, role)
}

// CreateTestUserWithEmail creates a user with the given email and role.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		IsActive:  true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, fmt.Sprintf("Category %d", nextID()))
}

// CreateTestCategoryWithName creates a category with the given name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Description: name + " expenses"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// ExpenseOption customizes CreateTestExpense.
type ExpenseOption func(*models.Expense)

// WithStatus sets the status and the timestamps that status implies.
func WithStatus(status models.ExpenseStatus, reviewerID string) ExpenseOption {
	return func(e *models.Expense) {
		now := time.Now().UTC()
		e.Status = status
		if status != models.ExpenseStatusDraft {
			e.SubmittedAt = &now
		}
		if status.IsTerminal() {
			e.ReviewedAt = &now
			e.ReviewedByID = &reviewerID
		}
	}
}

// WithAmount sets the amount from a decimal string.
func WithAmount(amount string) ExpenseOption {
	return func(e *models.Expense) {
		e.Amount = decimal.RequireFromString(amount)
	}
}

// WithDate sets the expense date.
func WithDate(date time.Time) ExpenseOption {
	return func(e *models.Expense) {
		e.ExpenseDate = date
	}
}

// CreateTestExpense creates a DRAFT expense of 42.50 dated 2026-01-15 unless
// options say otherwise.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID string, opts ...ExpenseOption) *models.Expense {
	t.Helper()

	expense := &models.Expense{
		UserID:      userID,
		CategoryID:  categoryID,
		Amount:      decimal.RequireFromString("42.50"),
		ExpenseDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "fixture expense",
		Status:      models.ExpenseStatusDraft,
		Version:     1,
	}
	for _, opt := range opts {
		opt(expense)
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}

// ReloadExpense reads the stored row back, bypassing any service.
func ReloadExpense(t *testing.T, db *gorm.DB, id string) *models.Expense {
	t.Helper()

	var expense models.Expense
	if err := db.Where("id = ?", id).First(&expense).Error; err != nil {
		t.Fatalf("failed to reload expense %s: %v", id, err)
	}
	return &expense
}
