package repository

import (
	"context"
	"errors"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrExpenseNotFound is returned when an expense does not exist or is
	// inactive.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrStaleExpense is returned when an update matched no row, meaning a
	// concurrent writer deactivated or removed it.
	ErrStaleExpense = errors.New("expense changed concurrently")
)

type ExpenseRepository struct {
	*pg.DB
}

func NewExpenseRepository(db *pg.DB) *ExpenseRepository {
	return &ExpenseRepository{
		db,
	}
}

func (r *ExpenseRepository) Create(ctx context.Context, exp *model.Expense) (*model.Expense, error) {
	entity := toExpenseEntity(exp)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toExpenseModel(entity), nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64, includeInactive bool) (*model.Expense, error) {
	q := r.Read(ctx).WithContext(ctx).Where("id = ?", id)
	if !includeInactive {
		q = q.Where("active = ?", true)
	}

	var entity ExpenseEntity
	if err := q.First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	return toExpenseModel(&entity), nil
}

// GetForUpdate loads an active expense under a pessimistic row lock. Must
// run inside WithinTransaction; this is the serialization point for all
// recomputations targeting the expense.
func (r *ExpenseRepository) GetForUpdate(ctx context.Context, id int64) (*model.Expense, error) {
	var entity ExpenseEntity

	err := r.Write(ctx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND active = ?", id, true).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	return toExpenseModel(&entity), nil
}

func (r *ExpenseRepository) List(ctx context.Context, f model.ExpenseFilter) ([]*model.Expense, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&ExpenseEntity{})

	if !f.IncludeInactive {
		q = q.Where("active = ?", true)
	}
	if f.CompanyID != nil {
		q = q.Where("company_id = ?", *f.CompanyID)
	}
	if f.IsPaid != nil {
		q = q.Where("is_paid = ?", *f.IsPaid)
	}
	if f.From != nil {
		q = q.Where("expense_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("expense_date < ?", *f.To)
	}

	// Count before pagination
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "expense_date"
	if f.Desc {
		order += " DESC"
	} else {
		order += " ASC"
	}

	limit := f.Limit
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entities []*ExpenseEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toExpenseModels(entities), total, nil
}

// UpdateFields applies caller-mutable columns. Derived columns are refused
// here; UpdateDerived is the only path that may touch them.
func (r *ExpenseRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	for col := range fields {
		if col == "paid_amount" || col == "is_paid" {
			return errors.New("derived column " + col + " is not updatable here")
		}
	}

	result := r.Write(ctx).WithContext(ctx).
		Model(&ExpenseEntity{}).
		Where("id = ? AND active = ?", id, true).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleExpense
	}
	return nil
}

// UpdateDerived persists the recomputed aggregate. Reserved for the
// reconciliation engine.
func (r *ExpenseRepository) UpdateDerived(ctx context.Context, id int64, paidAmount int64, isPaid bool) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&ExpenseEntity{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"paid_amount": paidAmount,
			"is_paid":     isPaid,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// Deactivate tombstones an expense. Payments are left in place for audit.
func (r *ExpenseRepository) Deactivate(ctx context.Context, id int64, actor string) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&ExpenseEntity{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_by": actor,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
