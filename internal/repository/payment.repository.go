package repository

import (
	"context"
	"errors"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	// ErrPaymentNotFound is returned when a payment does not exist or is
	// already retracted.
	ErrPaymentNotFound = errors.New("payment not found")
)

type PaymentRepository struct {
	*pg.DB
}

func NewPaymentRepository(db *pg.DB) *PaymentRepository {
	return &PaymentRepository{
		db,
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *model.Payment) (*model.Payment, error) {
	entity := toPaymentEntity(p)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPaymentModel(entity), nil
}

// GetActive loads a payment that has not been retracted. Retracted rows are
// reported as not found so repeat retractions and amendments of tombstones
// fail loudly.
func (r *PaymentRepository) GetActive(ctx context.Context, id int64) (*model.Payment, error) {
	var entity PaymentEntity

	err := r.Write(ctx).WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return toPaymentModel(&entity), nil
}

// GetByID includes retracted payments; audit views only.
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	var entity PaymentEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("id = ?", id).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return toPaymentModel(&entity), nil
}

func (r *PaymentRepository) List(ctx context.Context, f model.PaymentFilter) ([]*model.Payment, int64, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&PaymentEntity{})

	if !f.IncludeInactive {
		q = q.Where("active = ?", true)
	}
	if f.ExpenseID != nil {
		q = q.Where("expense_id = ?", *f.ExpenseID)
	}
	if f.Type != nil {
		q = q.Where("payment_type = ?", string(*f.Type))
	}
	if f.From != nil {
		q = q.Where("payment_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("payment_date < ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "payment_date"
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

	var entities []*PaymentEntity
	if err := q.Order(order).Limit(limit).Offset(offset).Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return toPaymentModels(entities), total, nil
}

// Update rewrites the correctable columns of an active payment.
func (r *PaymentRepository) Update(ctx context.Context, p *model.Payment) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&PaymentEntity{}).
		Where("id = ? AND active = ?", p.ID, true).
		Updates(map[string]interface{}{
			"amount":       p.Amount,
			"payment_date": p.PaymentDate,
			"payment_type": string(p.Type),
			"notes":        p.Notes,
			"updated_by":   p.UpdatedBy,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// Deactivate tombstones a payment; the row stays for audit. Repeat calls
// fail because the WHERE clause no longer matches.
func (r *PaymentRepository) Deactivate(ctx context.Context, id int64, actor string) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&PaymentEntity{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_by": actor,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// SumActive aggregates the active payments of an expense. It reads through
// the write handle so a surrounding transaction observes its own
// uncommitted ledger rows.
func (r *PaymentRepository) SumActive(ctx context.Context, expenseID int64) (int64, error) {
	var sum int64

	err := r.Write(ctx).WithContext(ctx).
		Model(&PaymentEntity{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("expense_id = ? AND active = ?", expenseID, true).
		Scan(&sum).
		Error

	if err != nil {
		return 0, err
	}
	return sum, nil
}
