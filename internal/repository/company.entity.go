package repository

import (
	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
)

type CompanyEntity struct {
	ID      int64  `db:"id"       gorm:"primaryKey;autoIncrement;column:id"`
	Name    string `db:"name"     gorm:"column:name;not null;unique"`
	TaxCode string `db:"tax_code" gorm:"column:tax_code"`
	Active  bool   `db:"active"   gorm:"column:active;not null;default:true;index"`
	pg.AuditFields
	Branches []*BranchEntity `gorm:"foreignKey:CompanyID"`
}

func (CompanyEntity) TableName() string {
	return "companies"
}

type BranchEntity struct {
	ID        int64  `db:"id"         gorm:"primaryKey;autoIncrement;column:id"`
	CompanyID int64  `db:"company_id" gorm:"column:company_id;not null;index"`
	Name      string `db:"name"       gorm:"column:name;not null"`
	Address   string `db:"address"    gorm:"column:address"`
	Active    bool   `db:"active"     gorm:"column:active;not null;default:true;index"`
	pg.AuditFields
}

func (BranchEntity) TableName() string {
	return "branches"
}

func toCompanyEntity(m *model.Company) *CompanyEntity {
	if m == nil {
		return nil
	}
	return &CompanyEntity{
		ID:      m.ID,
		Name:    m.Name,
		TaxCode: m.TaxCode,
		Active:  m.Active,
		AuditFields: pg.AuditFields{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func toCompanyModel(e *CompanyEntity) *model.Company {
	if e == nil {
		return nil
	}
	return &model.Company{
		ID:        e.ID,
		Name:      e.Name,
		TaxCode:   e.TaxCode,
		Active:    e.Active,
		CreatedBy: e.CreatedBy,
		UpdatedBy: e.UpdatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toCompanyModels(entities []*CompanyEntity) []*model.Company {
	if entities == nil {
		return nil
	}
	models := make([]*model.Company, len(entities))
	for i, e := range entities {
		models[i] = toCompanyModel(e)
	}
	return models
}

func toBranchEntity(m *model.Branch) *BranchEntity {
	if m == nil {
		return nil
	}
	return &BranchEntity{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Address:   m.Address,
		Active:    m.Active,
		AuditFields: pg.AuditFields{
			CreatedBy: m.CreatedBy,
			UpdatedBy: m.UpdatedBy,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
	}
}

func toBranchModel(e *BranchEntity) *model.Branch {
	if e == nil {
		return nil
	}
	return &model.Branch{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		Name:      e.Name,
		Address:   e.Address,
		Active:    e.Active,
		CreatedBy: e.CreatedBy,
		UpdatedBy: e.UpdatedBy,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func toBranchModels(entities []*BranchEntity) []*model.Branch {
	if entities == nil {
		return nil
	}
	models := make([]*model.Branch, len(entities))
	for i, e := range entities {
		models[i] = toBranchModel(e)
	}
	return models
}
