package model

import "errors"

// Error taxonomy for ledger and records operations. Callers branch with
// errors.Is; operations wrap these with detail via fmt.Errorf("%w: ...").
var (
	// ErrValidation marks malformed input. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrOverpayment marks a write that would push recorded payments past
	// the expense total, or shrink the total below what is already paid.
	ErrOverpayment = errors.New("overpayment rejected")

	// ErrNotFound marks a missing or already-retracted record.
	ErrNotFound = errors.New("record not found")

	// ErrConcurrency marks a failed lock acquisition. Safe to retry the
	// whole operation.
	ErrConcurrency = errors.New("concurrent operation in progress")
)
