package repository

import (
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
)

type EmployeeEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	FullName  string    `db:"full_name"  gorm:"column:full_name;not null"`
	Email     string    `db:"email"      gorm:"column:email;not null;unique"`
	RoleID    int64     `db:"role_id"    gorm:"column:role_id;not null;index"`
	Active    bool      `db:"active"     gorm:"column:active;not null;default:true;index"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	Role      *RoleEntity `gorm:"foreignKey:RoleID"`
}

func (EmployeeEntity) TableName() string {
	return "employees"
}

func toEmployeeEntity(m *model.Employee) *EmployeeEntity {
	if m == nil {
		return nil
	}
	return &EmployeeEntity{
		ID:        m.ID,
		FullName:  m.FullName,
		Email:     m.Email,
		RoleID:    m.RoleID,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toEmployeeModel(e *EmployeeEntity) *model.Employee {
	if e == nil {
		return nil
	}
	return &model.Employee{
		ID:        e.ID,
		FullName:  e.FullName,
		Email:     e.Email,
		RoleID:    e.RoleID,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toEmployeeModels(entities []*EmployeeEntity) []*model.Employee {
	if entities == nil {
		return nil
	}
	models := make([]*model.Employee, len(entities))
	for i, e := range entities {
		models[i] = toEmployeeModel(e)
	}
	return models
}
