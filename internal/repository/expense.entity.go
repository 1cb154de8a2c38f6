package repository

import (
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
)

type ExpenseEntity struct {
	ID          int64     `db:"id"           gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID   int64     `db:"company_id"   gorm:"column:company_id;not null;index"`
	Title       string    `db:"title"        gorm:"column:title;not null"`
	Notes       string    `db:"notes"        gorm:"column:notes"`
	Amount      int64     `db:"amount"       gorm:"column:amount;not null"`
	PaidAmount  int64     `db:"paid_amount"  gorm:"column:paid_amount;not null;default:0"`
	IsPaid      bool      `db:"is_paid"      gorm:"column:is_paid;not null;default:false"`
	ExpenseDate time.Time `db:"expense_date" gorm:"column:expense_date;not null"`
	Active      bool      `db:"active"       gorm:"column:active;not null;default:true;index"`
	pg.AuditFields
	Payments []*PaymentEntity `gorm:"foreignKey:ExpenseID"`
}

func (ExpenseEntity) TableName() string {
	return "expenses"
}

func toExpenseEntity(m *model.Expense) *ExpenseEntity {
	if m == nil {
		return nil
	}
	return &ExpenseEntity{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Title:       m.Title,
		Notes:       m.Notes,
		Amount:      m.Amount,
		PaidAmount:  m.PaidAmount,
		IsPaid:      m.IsPaid,
		ExpenseDate: m.ExpenseDate,
		Active:      m.Active,
		AuditFields: pg.AuditFields{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func toExpenseModel(e *ExpenseEntity) *model.Expense {
	if e == nil {
		return nil
	}
	return &model.Expense{
		ID:          e.ID,
		CompanyID:   e.CompanyID,
		Title:       e.Title,
		Notes:       e.Notes,
		Amount:      e.Amount,
		PaidAmount:  e.PaidAmount,
		IsPaid:      e.IsPaid,
		ExpenseDate: e.ExpenseDate,
		Active:      e.Active,
		CreatedBy:   e.CreatedBy,
		UpdatedBy:   e.UpdatedBy,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toExpenseModels(entities []*ExpenseEntity) []*model.Expense {
	if entities == nil {
		return nil
	}
	models := make([]*model.Expense, len(entities))
	for i, e := range entities {
		models[i] = toExpenseModel(e)
	}
	return models
}
