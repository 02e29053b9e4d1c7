package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the lifecycle state of an expense.
type ExpenseStatus string

const (
	ExpenseStatusDraft     ExpenseStatus = "DRAFT"
	ExpenseStatusSubmitted ExpenseStatus = "SUBMITTED"
	ExpenseStatusApproved  ExpenseStatus = "APPROVED"
	ExpenseStatusRejected  ExpenseStatus = "REJECTED"
)

// IsValid reports whether s is one of the four lifecycle states.
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusDraft, ExpenseStatusSubmitted, ExpenseStatusApproved, ExpenseStatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseStatusApproved || s == ExpenseStatusRejected
}

// Field limits shared by validation and the schema.
const (
	MaxDescriptionLength = 1000
	MaxReviewNotesLength = 500
	MaxAmountIntDigits   = 8
	MaxAmountFracDigits  = 2
)

// Expense is a reimbursable cost owned by a user.
//
// SubmittedAt is set iff Status is past DRAFT; ReviewedAt and ReviewedByID are
// set iff Status is APPROVED or REJECTED. Version increments on every write.
type Expense struct {
	Base
	UserID       string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID   string          `gorm:"type:uuid;not null" json:"category_id"`
	Amount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	ExpenseDate  time.Time       `gorm:"type:date;not null;index" json:"expense_date"`
	Description  string          `gorm:"size:1000" json:"description"`
	Status       ExpenseStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	SubmittedAt  *time.Time      `json:"submitted_at,omitempty"`
	ReviewedAt   *time.Time      `json:"reviewed_at,omitempty"`
	ReviewedByID *string         `gorm:"type:uuid" json:"reviewed_by_id,omitempty"`
	ReviewNotes  string          `gorm:"size:500" json:"review_notes,omitempty"`
	Version      int             `gorm:"not null;default:1" json:"version"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// IsOwnedBy reports whether userID owns the expense.
func (e *Expense) IsOwnedBy(userID string) bool {
	return e.UserID == userID
}

// IsDraft reports whether the owner may still edit, delete or submit the expense.
func (e *Expense) IsDraft() bool {
	return e.Status == ExpenseStatusDraft
}

// MarkSubmitted moves a draft to SUBMITTED. Callers check IsDraft first.
func (e *Expense) MarkSubmitted(now time.Time) {
	e.Status = ExpenseStatusSubmitted
	e.SubmittedAt = &now
	e.UpdatedAt = now
}

// MarkReviewed records a reviewer decision on a submitted expense.
func (e *Expense) MarkReviewed(decision ExpenseStatus, reviewerID, notes string, now time.Time) {
	e.Status = decision
	e.ReviewedAt = &now
	e.ReviewedByID = &reviewerID
	e.ReviewNotes = notes
	e.UpdatedAt = now
}
