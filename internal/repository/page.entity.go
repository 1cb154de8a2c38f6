package repository

import (
	"time"

	"github.com/rezamoss/expense-ledger/internal/model"
)

type PageEntity struct {
	ID        int64     `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	Title     string    `db:"title"      gorm:"column:title;not null"`
	Path      string    `db:"path"       gorm:"column:path;not null;unique"`
	Icon      string    `db:"icon"       gorm:"column:icon"`
	SortOrder int       `db:"sort_order" gorm:"column:sort_order;not null;default:0"`
	ParentID  *int64    `db:"parent_id"  gorm:"column:parent_id;index"`
	Active    bool      `db:"active"     gorm:"column:active;not null;default:true;index"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

func (PageEntity) TableName() string {
	return "pages"
}

func toPageEntity(m *model.Page) *PageEntity {
	if m == nil {
		return nil
	}
	return &PageEntity{
		ID:        m.ID,
		Title:     m.Title,
		Path:      m.Path,
		Icon:      m.Icon,
		SortOrder: m.SortOrder,
		ParentID:  m.ParentID,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toPageModel(e *PageEntity) *model.Page {
	if e == nil {
		return nil
	}
	return &model.Page{
		ID:        e.ID,
		Title:     e.Title,
		Path:      e.Path,
		Icon:      e.Icon,
		SortOrder: e.SortOrder,
		ParentID:  e.ParentID,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toPageModels(entities []*PageEntity) []*model.Page {
	if entities == nil {
		return nil
	}
	models := make([]*model.Page, len(entities))
	for i, e := range entities {
		models[i] = toPageModel(e)
	}
	return models
}
