package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/prom"
)

// LedgerSummer aggregates active payments for one expense.
type LedgerSummer interface {
	SumActive(ctx context.Context, expenseID int64) (int64, error)
}

// DerivedWriter persists recomputed settlement fields.
type DerivedWriter interface {
	UpdateDerived(ctx context.Context, id int64, paidAmount int64, isPaid bool) error
}

// Reconciler recomputes an expense's paid_amount and is_paid from the
// ledger. It is the only writer of those fields. Recompute must run inside
// the transaction of the mutation that triggered it, with the expense row
// lock already held, so the sum it reads cannot go stale before commit.
type Reconciler struct {
	payments LedgerSummer
	expenses DerivedWriter
}

func NewReconciler(payments LedgerSummer, expenses DerivedWriter) *Reconciler {
	return &Reconciler{
		payments: payments,
		expenses: expenses,
	}
}

// Recompute returns the settled aggregate it persisted. Idempotent: with no
// intervening ledger change a second run writes the same values.
func (r *Reconciler) Recompute(ctx context.Context, expense *model.Expense) (int64, bool, error) {
	start := time.Now()

	sum, err := r.payments.SumActive(ctx, expense.ID)
	if err != nil {
		return 0, false, fmt.Errorf("sum active payments: %w", err)
	}

	isPaid := sum >= expense.Amount
	if err := r.expenses.UpdateDerived(ctx, expense.ID, sum, isPaid); err != nil {
		return 0, false, fmt.Errorf("persist derived fields: %w", err)
	}

	prom.ObserveReconcileDuration(time.Since(start).Seconds())
	return sum, isPaid, nil
}
