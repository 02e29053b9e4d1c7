package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"expensely/internal/models"
	"expensely/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
	StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error
	GetRefreshTokenHash(ctx context.Context, userID string) (string, error)
	UpdateRole(ctx context.Context, userID string, role models.Role) (*models.User, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*models.Category, error)
	EnsureDefaultCategories(ctx context.Context) (int, error)
}

// ExpenseInput carries the owner-editable fields of an expense.
type ExpenseInput struct {
	CategoryID  string
	Amount      decimal.Decimal
	ExpenseDate time.Time
	Description string
}

// ExpenseQuery holds optional filters for listing and reporting on a user's
// expenses. Status is validated by the service. Date bounds are inclusive.
type ExpenseQuery struct {
	From       *time.Time `json:"from,omitempty"`
	To         *time.Time `json:"to,omitempty"`
	CategoryID *string    `json:"category_id,omitempty"`
	Status     *string    `json:"status,omitempty"`
}

// ExpenseServicer owns the expense lifecycle. Every check fails fast in the
// order existence, ownership or role, then current status.
type ExpenseServicer interface {
	CreateExpense(ctx context.Context, ownerID string, in ExpenseInput) (*models.Expense, error)
	GetExpense(ctx context.Context, expenseID, requesterID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expenseID, requesterID string, in ExpenseInput) (*models.Expense, error)
	DeleteExpense(ctx context.Context, expenseID, requesterID string) error
	SubmitExpense(ctx context.Context, expenseID, requesterID string) (*models.Expense, error)
	ListPendingExpenses(ctx context.Context, requesterID string) ([]models.Expense, error)
	ApproveExpense(ctx context.Context, expenseID, reviewerID, notes string) (*models.Expense, error)
	RejectExpense(ctx context.Context, expenseID, reviewerID, notes string) (*models.Expense, error)
	ListUserExpenses(ctx context.Context, ownerID string, query ExpenseQuery, page pagination.PageRequest, sort pagination.SortRequest) (*pagination.PageResponse[models.Expense], error)
}

// ExpenseSummary is a filtered view of a user's expenses with an exact total.
type ExpenseSummary struct {
	Expenses    []models.Expense `json:"expenses"`
	TotalAmount decimal.Decimal  `json:"total_amount"`
	Count       int              `json:"count"`
	Filters     ExpenseQuery     `json:"filters"`
}

// ReportServicer defines the contract for expense reporting.
type ReportServicer interface {
	GetSummary(ctx context.Context, ownerID string, query ExpenseQuery) (*ExpenseSummary, error)
}

// AuditServicer defines the contract for the audit trail.
type AuditServicer interface {
	Record(ctx context.Context, event AuditEvent)
}
