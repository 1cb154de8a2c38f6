package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/repository"
	"github.com/rezamoss/expense-ledger/pkg/keylock"
	"github.com/rezamoss/expense-ledger/pkg/logger"
	"github.com/rezamoss/expense-ledger/pkg/prom"
)

type ExpenseStore interface {
	GetByID(ctx context.Context, id int64, includeInactive bool) (*model.Expense, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Expense, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) (*model.Payment, error)
	GetActive(ctx context.Context, id int64) (*model.Payment, error)
	GetByID(ctx context.Context, id int64) (*model.Payment, error)
	List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, int64, error)
	Update(ctx context.Context, p *model.Payment) error
	Deactivate(ctx context.Context, id int64, actor string) error
	SumActive(ctx context.Context, expenseID int64) (int64, error)
}

// AuditPublisher pushes committed mutations onto the settlement stream.
type AuditPublisher interface {
	PublishJSON(ctx context.Context, data interface{}, metadata map[string]string) (string, error)
}

// LedgerService owns the payment ledger. Every mutation follows the same
// shape: take the per-expense lock, open a transaction, row-lock the
// expense, run the overpayment guard against the ledger sum, write, and
// recompute the derived fields before commit. Guard and recompute read the
// ledger under the same lock scope, so two writers can never both pass the
// guard on the same stale sum.
type LedgerService struct {
	expenses   ExpenseStore
	payments   PaymentStore
	reconciler *Reconciler
	locks      *keylock.KeyLock
	audit      AuditPublisher
}

func NewLedgerService(expenses ExpenseStore, payments PaymentStore, reconciler *Reconciler, locks *keylock.KeyLock, audit AuditPublisher) *LedgerService {
	return &LedgerService{
		expenses:   expenses,
		payments:   payments,
		reconciler: reconciler,
		locks:      locks,
		audit:      audit,
	}
}

// RecordPayment appends an active payment to the ledger and settles the
// expense atomically with it.
func (s *LedgerService) RecordPayment(ctx context.Context, req model.PaymentCreateRequest) (*model.Payment, error) {
	if err := req.Validate(); err != nil {
		prom.IncLedgerOperation("record", "invalid")
		return nil, err
	}

	if err := s.lockExpense(ctx, req.ExpenseID); err != nil {
		return nil, err
	}
	defer s.locks.Release(req.ExpenseID)

	var (
		created    *model.Payment
		paidAmount int64
		isPaid     bool
	)
	err := s.expenses.WithinTransaction(ctx, func(ctx context.Context) error {
		exp, err := s.expenses.GetForUpdate(ctx, req.ExpenseID)
		if err != nil {
			if errors.Is(err, repository.ErrExpenseNotFound) {
				return fmt.Errorf("%w: expense %d", model.ErrNotFound, req.ExpenseID)
			}
			return fmt.Errorf("lock expense: %w", err)
		}

		sum, err := s.payments.SumActive(ctx, exp.ID)
		if err != nil {
			return fmt.Errorf("sum active payments: %w", err)
		}
		if sum+req.Amount > exp.Amount {
			prom.IncOverpaymentRejected()
			return fmt.Errorf("%w: %d paid + %d requested exceeds %d owed",
				model.ErrOverpayment, sum, req.Amount, exp.Amount)
		}

		p := &model.Payment{
			ExpenseID:   req.ExpenseID,
			PaymentDate: req.PaymentDate,
			Amount:      req.Amount,
			Type:        req.Type,
			Notes:       req.Notes,
			Active:      true,
			CreatedBy:   req.Actor,
			UpdatedBy:   req.Actor,
		}
		created, err = s.payments.Create(ctx, p)
		if err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		paidAmount, isPaid, err = s.reconciler.Recompute(ctx, exp)
		return err
	})
	if err != nil {
		prom.IncLedgerOperation("record", resultLabel(err))
		return nil, err
	}

	prom.IncLedgerOperation("record", "ok")
	s.publishAudit(ctx, model.AuditEvent{
		Entity:     "payment",
		EntityID:   created.ID,
		ExpenseID:  created.ExpenseID,
		Action:     model.AuditPaymentRecorded,
		Actor:      req.Actor,
		PaidAmount: paidAmount,
		IsPaid:     isPaid,
	})
	return created, nil
}

// AmendPayment corrects amount, date, type or notes of an active payment.
func (s *LedgerService) AmendPayment(ctx context.Context, paymentID int64, req model.PaymentAmendment) (*model.Payment, error) {
	if err := req.Validate(); err != nil {
		prom.IncLedgerOperation("amend", "invalid")
		return nil, err
	}

	// Resolve the owning expense first; the lock key is not known until
	// the payment row is read.
	probe, err := s.payments.GetActive(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, fmt.Errorf("%w: payment %d", model.ErrNotFound, paymentID)
		}
		return nil, err
	}

	if err := s.lockExpense(ctx, probe.ExpenseID); err != nil {
		return nil, err
	}
	defer s.locks.Release(probe.ExpenseID)

	var (
		amended    *model.Payment
		paidAmount int64
		isPaid     bool
	)
	err = s.expenses.WithinTransaction(ctx, func(ctx context.Context) error {
		exp, err := s.expenses.GetForUpdate(ctx, probe.ExpenseID)
		if err != nil {
			if errors.Is(err, repository.ErrExpenseNotFound) {
				return fmt.Errorf("%w: expense %d", model.ErrNotFound, probe.ExpenseID)
			}
			return fmt.Errorf("lock expense: %w", err)
		}

		// Re-read under the lock; the payment may have been retracted
		// between the probe and here.
		p, err := s.payments.GetActive(ctx, paymentID)
		if err != nil {
			if errors.Is(err, repository.ErrPaymentNotFound) {
				return fmt.Errorf("%w: payment %d", model.ErrNotFound, paymentID)
			}
			return err
		}

		newAmount := p.Amount
		if req.Amount != nil {
			newAmount = *req.Amount
		}

		sum, err := s.payments.SumActive(ctx, exp.ID)
		if err != nil {
			return fmt.Errorf("sum active payments: %w", err)
		}
		if sum-p.Amount+newAmount > exp.Amount {
			prom.IncOverpaymentRejected()
			return fmt.Errorf("%w: amending payment %d to %d exceeds %d owed",
				model.ErrOverpayment, paymentID, newAmount, exp.Amount)
		}

		p.Amount = newAmount
		if req.PaymentDate != nil {
			p.PaymentDate = *req.PaymentDate
		}
		if req.Type != nil {
			p.Type = *req.Type
		}
		if req.Notes != nil {
			p.Notes = *req.Notes
		}
		p.UpdatedBy = req.Actor

		if err := s.payments.Update(ctx, p); err != nil {
			if errors.Is(err, repository.ErrPaymentNotFound) {
				return fmt.Errorf("%w: payment %d", model.ErrNotFound, paymentID)
			}
			return fmt.Errorf("update payment: %w", err)
		}
		amended = p

		paidAmount, isPaid, err = s.reconciler.Recompute(ctx, exp)
		return err
	})
	if err != nil {
		prom.IncLedgerOperation("amend", resultLabel(err))
		return nil, err
	}

	prom.IncLedgerOperation("amend", "ok")
	s.publishAudit(ctx, model.AuditEvent{
		Entity:     "payment",
		EntityID:   amended.ID,
		ExpenseID:  amended.ExpenseID,
		Action:     model.AuditPaymentAmended,
		Actor:      req.Actor,
		PaidAmount: paidAmount,
		IsPaid:     isPaid,
	})
	return amended, nil
}

// RetractPayment tombstones a payment. Retracting an already-retracted
// payment fails; the ledger keeps a single retraction per row.
func (s *LedgerService) RetractPayment(ctx context.Context, paymentID int64, actor string) error {
	if actor == "" {
		prom.IncLedgerOperation("retract", "invalid")
		return fmt.Errorf("%w: actor is required", model.ErrValidation)
	}

	probe, err := s.payments.GetActive(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return fmt.Errorf("%w: payment %d", model.ErrNotFound, paymentID)
		}
		return err
	}

	if err := s.lockExpense(ctx, probe.ExpenseID); err != nil {
		return err
	}
	defer s.locks.Release(probe.ExpenseID)

	var (
		paidAmount int64
		isPaid     bool
	)
	err = s.expenses.WithinTransaction(ctx, func(ctx context.Context) error {
		exp, err := s.expenses.GetForUpdate(ctx, probe.ExpenseID)
		if err != nil {
			if errors.Is(err, repository.ErrExpenseNotFound) {
				return fmt.Errorf("%w: expense %d", model.ErrNotFound, probe.ExpenseID)
			}
			return fmt.Errorf("lock expense: %w", err)
		}

		if err := s.payments.Deactivate(ctx, paymentID, actor); err != nil {
			if errors.Is(err, repository.ErrPaymentNotFound) {
				return fmt.Errorf("%w: payment %d", model.ErrNotFound, paymentID)
			}
			return fmt.Errorf("retract payment: %w", err)
		}

		paidAmount, isPaid, err = s.reconciler.Recompute(ctx, exp)
		return err
	})
	if err != nil {
		prom.IncLedgerOperation("retract", resultLabel(err))
		return err
	}

	prom.IncLedgerOperation("retract", "ok")
	s.publishAudit(ctx, model.AuditEvent{
		Entity:     "payment",
		EntityID:   paymentID,
		ExpenseID:  probe.ExpenseID,
		Action:     model.AuditPaymentRetracted,
		Actor:      actor,
		PaidAmount: paidAmount,
		IsPaid:     isPaid,
	})
	return nil
}

// SumActive reports the aggregate of active payments; zero for an expense
// with no ledger entries.
func (s *LedgerService) SumActive(ctx context.Context, expenseID int64) (int64, error) {
	return s.payments.SumActive(ctx, expenseID)
}

func (s *LedgerService) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, fmt.Errorf("%w: payment %d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *LedgerService) ListPayments(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, int64, error) {
	return s.payments.List(ctx, f)
}

func (s *LedgerService) lockExpense(ctx context.Context, expenseID int64) error {
	if err := s.locks.Acquire(ctx, expenseID); err != nil {
		prom.IncLockTimeout()
		return fmt.Errorf("%w: expense %d", model.ErrConcurrency, expenseID)
	}
	return nil
}

func (s *LedgerService) publishAudit(ctx context.Context, ev model.AuditEvent) {
	if s.audit == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.OccurredAt = time.Now().UTC()
	if _, err := s.audit.PublishJSON(ctx, ev, nil); err != nil {
		// The committed ledger state is authoritative; a lost audit event
		// is logged, never propagated.
		logger.Warn("failed to publish audit event",
			"action", ev.Action, "expense_id", ev.ExpenseID, "error", err)
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, model.ErrOverpayment):
		return "overpayment"
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrValidation):
		return "invalid"
	case errors.Is(err, model.ErrConcurrency):
		return "contended"
	default:
		return "error"
	}
}
