package pg

import (
	"time"
)

// AuditFields is embedded by entities whose rows carry actor attribution.
// CreatedBy/UpdatedBy hold the stable employee identifier supplied by the
// upstream identity layer; it is stored as-is.
type AuditFields struct {
	CreatedBy string    `db:"created_by" gorm:"column:created_by"`
	UpdatedBy string    `db:"updated_by" gorm:"column:updated_by"`
	CreatedAt time.Time `db:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `db:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// Touch stamps the acting employee on a new or amended row.
func (a *AuditFields) Touch(actor string, isNew bool) {
	if isNew {
		a.CreatedBy = actor
	}
	a.UpdatedBy = actor
}
