package repository

import (
	"context"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
)

type AuditEventRepository struct {
	*pg.DB
}

func NewAuditEventRepository(db *pg.DB) *AuditEventRepository {
	return &AuditEventRepository{
		db,
	}
}

func (r *AuditEventRepository) Create(ctx context.Context, ev *model.AuditEvent) (*model.AuditEvent, error) {
	entity := toAuditEventEntity(ev)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toAuditEventModel(entity), nil
}

// ListByExpense returns the trail for one expense, oldest first.
func (r *AuditEventRepository) ListByExpense(ctx context.Context, expenseID int64) ([]*model.AuditEvent, error) {
	var entities []*AuditEventEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("expense_id = ?", expenseID).
		Order("occurred_at ASC, id ASC").
		Find(&entities).
		Error

	if err != nil {
		return nil, err
	}

	return toAuditEventModels(entities), nil
}
