package repository

import (
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
)

type PaymentEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	ExpenseID   int64     `db:"expense_id"   gorm:"column:expense_id;not null;index"`
	PaymentDate time.Time `db:"payment_date" gorm:"column:payment_date;not null"`
	Amount      int64     `db:"amount"       gorm:"column:amount;not null"`
	Type        string    `db:"payment_type" gorm:"column:payment_type;not null"`
	Notes       string    `db:"notes"        gorm:"column:notes"`
	Active      bool      `db:"active"       gorm:"column:active;not null;default:true;index"`
	pg.AuditFields
}

func (PaymentEntity) TableName() string {
	return "payments"
}

func toPaymentEntity(m *model.Payment) *PaymentEntity {
	if m == nil {
		return nil
	}
	return &PaymentEntity{
		ID:          m.ID,
		ExpenseID:   m.ExpenseID,
		PaymentDate: m.PaymentDate,
		Amount:      m.Amount,
		Type:        string(m.Type),
		Notes:       m.Notes,
		Active:      m.Active,
		AuditFields: pg.AuditFields{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func toPaymentModel(e *PaymentEntity) *model.Payment {
	if e == nil {
		return nil
	}
	return &model.Payment{
		ID:          e.ID,
		ExpenseID:   e.ExpenseID,
		PaymentDate: e.PaymentDate,
		Amount:      e.Amount,
		Type:        model.PaymentType(e.Type),
		Notes:       e.Notes,
		Active:      e.Active,
		CreatedBy:   e.CreatedBy,
		UpdatedBy:   e.UpdatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toPaymentModels(entities []*PaymentEntity) []*model.Payment {
	if entities == nil {
		return nil
	}
	models := make([]*model.Payment, len(entities))
	for i, e := range entities {
		models[i] = toPaymentModel(e)
	}
	return models
}
