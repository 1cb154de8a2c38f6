package model

import (
	"fmt"
	"time"
)

// Expense is a company expense with a derived settlement status.
// PaidAmount and IsPaid are owned by the reconciliation engine; nothing
// else writes them.
type Expense struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Title       string    `json:"title"`
	Notes       string    `json:"notes,omitempty"`
	Amount      int64     `json:"amount"`
	PaidAmount  int64     `json:"paid_amount"`
	IsPaid      bool      `json:"is_paid"`
	ExpenseDate time.Time `json:"expense_date"`
	Active      bool      `json:"active"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExpenseCreateRequest is the input for creating an expense.
type ExpenseCreateRequest struct {
	CompanyID   int64
	Title       string
	Notes       string
	Amount      int64
	ExpenseDate time.Time
	Actor       string
}

func (p ExpenseCreateRequest) Validate() error {
	if p.CompanyID == 0 {
		return fmt.Errorf("%w: company_id is required", ErrValidation)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if p.ExpenseDate.IsZero() {
		return fmt.Errorf("%w: expense_date is required", ErrValidation)
	}
	if p.Actor == "" {
		return fmt.Errorf("%w: actor is required", ErrValidation)
	}
	return nil
}

// ExpenseAmendment carries the caller-mutable fields of an expense. Nil
// means leave unchanged. Derived fields are not amendable.
type ExpenseAmendment struct {
	Title       *string
	Notes       *string
	Amount      *int64
	ExpenseDate *time.Time
	Actor       string
}

func (p ExpenseAmendment) Validate() error {
	if p.Title == nil && p.Notes == nil && p.Amount == nil && p.ExpenseDate == nil {
		return fmt.Errorf("%w: amendment changes nothing", ErrValidation)
	}
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrValidation)
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if p.ExpenseDate != nil && p.ExpenseDate.IsZero() {
		return fmt.Errorf("%w: expense_date must be a valid date", ErrValidation)
	}
	if p.Actor == "" {
		return fmt.Errorf("%w: actor is required", ErrValidation)
	}
	return nil
}

// ExpenseFilter controls List queries.
type ExpenseFilter struct {
	CompanyID       *int64
	IsPaid          *bool
	From            *time.Time
	To              *time.Time
	IncludeInactive bool
	Limit           int
	Offset          int
	Desc            bool
}
