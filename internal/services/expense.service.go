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
)

type ExpenseRepository interface {
	Create(ctx context.Context, exp *model.Expense) (*model.Expense, error)
	GetByID(ctx context.Context, id int64, includeInactive bool) (*model.Expense, error)
	GetForUpdate(ctx context.Context, id int64) (*model.Expense, error)
	List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error)
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error
	Deactivate(ctx context.Context, id int64, actor string) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type CompanyGetter interface {
	GetByID(ctx context.Context, id int64) (*model.Company, error)
}

// ExpenseService owns expense records. Amendments that change the owed
// amount run under the same per-expense lock scope as ledger writes, so the
// shrink guard never compares against a stale paid_amount.
type ExpenseService struct {
	expenses   ExpenseRepository
	companies  CompanyGetter
	reconciler *Reconciler
	locks      *keylock.KeyLock
	audit      AuditPublisher
}

func NewExpenseService(expenses ExpenseRepository, companies CompanyGetter, reconciler *Reconciler, locks *keylock.KeyLock, audit AuditPublisher) *ExpenseService {
	return &ExpenseService{
		expenses:   expenses,
		companies:  companies,
		reconciler: reconciler,
		locks:      locks,
		audit:      audit,
	}
}

func (s *ExpenseService) Create(ctx context.Context, req model.ExpenseCreateRequest) (*model.Expense, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.companies.GetByID(ctx, req.CompanyID); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, fmt.Errorf("%w: company %d", model.ErrNotFound, req.CompanyID)
		}
		return nil, err
	}

	exp := &model.Expense{
		CompanyID:   req.CompanyID,
		Title:       req.Title,
		Notes:       req.Notes,
		Amount:      req.Amount,
		PaidAmount:  0,
		IsPaid:      false,
		ExpenseDate: req.ExpenseDate,
		Active:      true,
		CreatedBy:   req.Actor,
		UpdatedBy:   req.Actor,
	}

	created, err := s.expenses.Create(ctx, exp)
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	s.publishAudit(ctx, model.AuditEvent{
		Entity:    "expense",
		EntityID:  created.ID,
		ExpenseID: created.ID,
		Action:    model.AuditExpenseCreated,
		Actor:     req.Actor,
	})
	return created, nil
}

// Amend applies caller-mutable fields. Reducing Amount below the recorded
// paid_amount is refused; a reduction to exactly paid_amount is allowed and
// flips is_paid through the recompute.
func (s *ExpenseService) Amend(ctx context.Context, id int64, req model.ExpenseAmendment) (*model.Expense, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.locks.Acquire(ctx, id); err != nil {
		return nil, fmt.Errorf("%w: expense %d", model.ErrConcurrency, id)
	}
	defer s.locks.Release(id)

	var amended *model.Expense
	err := s.expenses.WithinTransaction(ctx, func(ctx context.Context) error {
		exp, err := s.expenses.GetForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrExpenseNotFound) {
				return fmt.Errorf("%w: expense %d", model.ErrNotFound, id)
			}
			return fmt.Errorf("lock expense: %w", err)
		}

		if req.Amount != nil && *req.Amount < exp.PaidAmount {
			return fmt.Errorf("%w: amount %d below %d already paid",
				model.ErrOverpayment, *req.Amount, exp.PaidAmount)
		}

		fields := map[string]interface{}{"updated_by": req.Actor}
		if req.Title != nil {
			fields["title"] = *req.Title
			exp.Title = *req.Title
		}
		if req.Notes != nil {
			fields["notes"] = *req.Notes
			exp.Notes = *req.Notes
		}
		if req.ExpenseDate != nil {
			fields["expense_date"] = *req.ExpenseDate
			exp.ExpenseDate = *req.ExpenseDate
		}
		amountChanged := false
		if req.Amount != nil && *req.Amount != exp.Amount {
			fields["amount"] = *req.Amount
			exp.Amount = *req.Amount
			amountChanged = true
		}

		if err := s.expenses.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrStaleExpense) {
				return fmt.Errorf("%w: expense %d", model.ErrNotFound, id)
			}
			return fmt.Errorf("update expense: %w", err)
		}

		if amountChanged {
			exp.PaidAmount, exp.IsPaid, err = s.reconciler.Recompute(ctx, exp)
			if err != nil {
				return err
			}
		}

		exp.UpdatedBy = req.Actor
		amended = exp
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishAudit(ctx, model.AuditEvent{
		Entity:     "expense",
		EntityID:   amended.ID,
		ExpenseID:  amended.ID,
		Action:     model.AuditExpenseAmended,
		Actor:      req.Actor,
		PaidAmount: amended.PaidAmount,
		IsPaid:     amended.IsPaid,
	})
	return amended, nil
}

// Deactivate tombstones an expense. Its payments stay untouched; they are
// orphaned but retained for audit.
func (s *ExpenseService) Deactivate(ctx context.Context, id int64, actor string) error {
	if actor == "" {
		return fmt.Errorf("%w: actor is required", model.ErrValidation)
	}

	if err := s.locks.Acquire(ctx, id); err != nil {
		return fmt.Errorf("%w: expense %d", model.ErrConcurrency, id)
	}
	defer s.locks.Release(id)

	err := s.expenses.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.expenses.Deactivate(ctx, id, actor); err != nil {
			if errors.Is(err, repository.ErrExpenseNotFound) {
				return fmt.Errorf("%w: expense %d", model.ErrNotFound, id)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publishAudit(ctx, model.AuditEvent{
		Entity:    "expense",
		EntityID:  id,
		ExpenseID: id,
		Action:    model.AuditExpenseDeactivated,
		Actor:     actor,
	})
	return nil
}

func (s *ExpenseService) Get(ctx context.Context, id int64) (*model.Expense, error) {
	exp, err := s.expenses.GetByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, fmt.Errorf("%w: expense %d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return exp, nil
}

func (s *ExpenseService) List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error) {
	return s.expenses.List(ctx, f)
}

func (s *ExpenseService) publishAudit(ctx context.Context, ev model.AuditEvent) {
	if s.audit == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.OccurredAt = time.Now().UTC()
	if _, err := s.audit.PublishJSON(ctx, ev, nil); err != nil {
		logger.Warn("failed to publish audit event",
			"action", ev.Action, "expense_id", ev.ExpenseID, "error", err)
	}
}
