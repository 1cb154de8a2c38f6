package repository

import (
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
)

type AuditEventEntity struct {
	ID         int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	EventID    string    `db:"event_id"    gorm:"column:event_id;not null;unique"`
	Entity     string    `db:"entity"      gorm:"column:entity;not null"`
	EntityID   int64     `db:"entity_id"   gorm:"column:entity_id;not null"`
	ExpenseID  int64     `db:"expense_id"  gorm:"column:expense_id;not null;index"`
	Action     string    `db:"action"      gorm:"column:action;not null"`
	Actor      string    `db:"actor"       gorm:"column:actor;not null"`
	PaidAmount int64     `db:"paid_amount" gorm:"column:paid_amount;not null"`
	IsPaid     bool      `db:"is_paid"     gorm:"column:is_paid;not null"`
	OccurredAt time.Time `db:"occurred_at" gorm:"column:occurred_at;not null"`
	RecordedAt time.Time `db:"recorded_at" gorm:"column:recorded_at;autoCreateTime"`
}

func (AuditEventEntity) TableName() string {
	return "audit_events"
}

func toAuditEventEntity(m *model.AuditEvent) *AuditEventEntity {
	if m == nil {
		return nil
	}
	return &AuditEventEntity{
		EventID:    m.EventID,
		Entity:     m.Entity,
		EntityID:   m.EntityID,
		ExpenseID:  m.ExpenseID,
		Action:     m.Action,
		Actor:      m.Actor,
		PaidAmount: m.PaidAmount,
		IsPaid:     m.IsPaid,
		OccurredAt: m.OccurredAt,
	}
}

func toAuditEventModel(e *AuditEventEntity) *model.AuditEvent {
	if e == nil {
		return nil
	}
	return &model.AuditEvent{
		EventID:    e.EventID,
		Entity:     e.Entity,
		EntityID:   e.EntityID,
		ExpenseID:  e.ExpenseID,
		Action:     e.Action,
		Actor:      e.Actor,
		PaidAmount: e.PaidAmount,
		IsPaid:     e.IsPaid,
		OccurredAt: e.OccurredAt,
	}
}

func toAuditEventModels(entities []*AuditEventEntity) []*model.AuditEvent {
	if entities == nil {
		return nil
	}
	models := make([]*model.AuditEvent, len(entities))
	for i, e := range entities {
		models[i] = toAuditEventModel(e)
	}
	return models
}
