package model

import (
	"fmt"
	"time"
)

// PaymentType is the closed set of accepted payment instruments.
type PaymentType string

const (
	PaymentTypeCash     PaymentType = "cash"
	PaymentTypeTransfer PaymentType = "transfer"
	PaymentTypeCard     PaymentType = "card"
	PaymentTypeCheque   PaymentType = "cheque"
	PaymentTypeOther    PaymentType = "other"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypeCash, PaymentTypeTransfer, PaymentTypeCard, PaymentTypeCheque, PaymentTypeOther:
		return true
	}
	return false
}

// Payment is one ledger event against an expense. Amounts are minor units
// (cents). Retracted payments keep their row with Active=false.
type Payment struct {
	ID          int64       `json:"id"`
	ExpenseID   int64       `json:"expense_id"`
	PaymentDate time.Time   `json:"payment_date"`
	Amount      int64       `json:"amount"`
	Type        PaymentType `json:"payment_type"`
	Notes       string      `json:"notes,omitempty"`
	Active      bool        `json:"active"`
	CreatedBy   string      `json:"created_by"`
	UpdatedBy   string      `json:"updated_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PaymentCreateRequest is the input for recording a payment.
type PaymentCreateRequest struct {
	ExpenseID   int64
	Amount      int64
	PaymentDate time.Time
	Type        PaymentType
	Notes       string
	Actor       string
}

func (p PaymentCreateRequest) Validate() error {
	if p.ExpenseID == 0 {
		return fmt.Errorf("%w: expense_id is required", ErrValidation)
	}
	if p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if p.PaymentDate.IsZero() {
		return fmt.Errorf("%w: payment_date is required", ErrValidation)
	}
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unrecognized payment type %q", ErrValidation, string(p.Type))
	}
	if p.Actor == "" {
		return fmt.Errorf("%w: actor is required", ErrValidation)
	}
	return nil
}

// PaymentAmendment carries the correctable fields of a payment. Nil means
// leave unchanged.
type PaymentAmendment struct {
	Amount      *int64
	PaymentDate *time.Time
	Type        *PaymentType
	Notes       *string
	Actor       string
}

func (p PaymentAmendment) Validate() error {
	if p.Amount == nil && p.PaymentDate == nil && p.Type == nil && p.Notes == nil {
		return fmt.Errorf("%w: amendment changes nothing", ErrValidation)
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if p.PaymentDate != nil && p.PaymentDate.IsZero() {
		return fmt.Errorf("%w: payment_date must be a valid date", ErrValidation)
	}
	if p.Type != nil && !p.Type.Valid() {
		return fmt.Errorf("%w: unrecognized payment type %q", ErrValidation, string(*p.Type))
	}
	if p.Actor == "" {
		return fmt.Errorf("%w: actor is required", ErrValidation)
	}
	return nil
}

// PaymentFilter controls ledger listing.
type PaymentFilter struct {
	ExpenseID       *int64
	Type            *PaymentType
	From            *time.Time
	To              *time.Time
	IncludeInactive bool // audit views only
	Limit           int
	Offset          int
	Desc            bool
}
