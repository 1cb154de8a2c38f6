package repository

import (
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
)

type RoleEntity struct {
	ID          int64     `db:"id"          gorm:"primaryKey;autoIncrement;column:id"`
	Name        string    `db:"name"        gorm:"column:name;not null;unique"`
	Description string    `db:"description" gorm:"column:description"`
	Active      bool      `db:"active"      gorm:"column:active;not null;default:true;index"`
	CreatedAt   time.Time `db:"created_at"  gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `db:"updated_at"  gorm:"column:updated_at;autoUpdateTime"`
	Pages       []*PageEntity `gorm:"many2many:role_pages;"`
}

func (RoleEntity) TableName() string {
	return "roles"
}

func toRoleEntity(m *model.Role) *RoleEntity {
	if m == nil {
		return nil
	}
	return &RoleEntity{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toRoleModel(e *RoleEntity) *model.Role {
	if e == nil {
		return nil
	}
	return &model.Role{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Active:      e.Active,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toRoleModels(entities []*RoleEntity) []*model.Role {
	if entities == nil {
		return nil
	}
	models := make([]*model.Role, len(entities))
	for i, e := range entities {
		models[i] = toRoleModel(e)
	}
	return models
}
