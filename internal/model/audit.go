package model

import "time"

// Audit actions emitted to the settlement stream.
const (
	AuditPaymentRecorded    = "payment.recorded"
	AuditPaymentAmended     = "payment.amended"
	AuditPaymentRetracted   = "payment.retracted"
	AuditExpenseCreated     = "expense.created"
	AuditExpenseAmended     = "expense.amended"
	AuditExpenseDeactivated = "expense.deactivated"
)

// AuditEvent describes one committed ledger or expense mutation. Events are
// published after commit and persisted by the auditor; they observe the
// ledger, they never drive it.
type AuditEvent struct {
	EventID    string    `json:"event_id"`
	Entity     string    `json:"entity"`
	EntityID   int64     `json:"entity_id"`
	ExpenseID  int64     `json:"expense_id"`
	Action     string    `json:"action"`
	Actor      string    `json:"actor"`
	PaidAmount int64     `json:"paid_amount"`
	IsPaid     bool      `json:"is_paid"`
	OccurredAt time.Time `json:"occurred_at"`
}
