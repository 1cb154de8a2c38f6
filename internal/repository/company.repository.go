package repository

import (
	"context"
	"errors"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrCompanyNotFound = errors.New("company not found")
	ErrBranchNotFound  = errors.New("branch not found")
)

type CompanyRepository struct {
	*pg.DB
}

func NewCompanyRepository(db *pg.DB) *CompanyRepository {
	return &CompanyRepository{
		db,
	}
}

func (r *CompanyRepository) Create(ctx context.Context, c *model.Company) (*model.Company, error) {
	entity := toCompanyEntity(c)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toCompanyModel(entity), nil
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*model.Company, error) {
	var entity CompanyEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	return toCompanyModel(&entity), nil
}

func (r *CompanyRepository) GetByName(ctx context.Context, name string) (*model.Company, error) {
	var entity CompanyEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("name = ?", name).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}

	return toCompanyModel(&entity), nil
}

func (r *CompanyRepository) List(ctx context.Context, includeInactive bool) ([]*model.Company, error) {
	q := r.Read(ctx).WithContext(ctx).Model(&CompanyEntity{})
	if !includeInactive {
		q = q.Where("active = ?", true)
	}

	var entities []*CompanyEntity
	if err := q.Order("name ASC").Find(&entities).Error; err != nil {
		return nil, err
	}

	return toCompanyModels(entities), nil
}

func (r *CompanyRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CompanyEntity{}).
		Where("id = ? AND active = ?", id, true).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) Deactivate(ctx context.Context, id int64, actor string) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&CompanyEntity{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_by": actor,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

func (r *CompanyRepository) CreateBranch(ctx context.Context, b *model.Branch) (*model.Branch, error) {
	entity := toBranchEntity(b)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toBranchModel(entity), nil
}

func (r *CompanyRepository) ListBranches(ctx context.Context, companyID int64) ([]*model.Branch, error) {
	var entities []*BranchEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("company_id = ? AND active = ?", companyID, true).
		Order("name ASC").
		Find(&entities).
		Error

	if err != nil {
		return nil, err
	}

	return toBranchModels(entities), nil
}

func (r *CompanyRepository) DeactivateBranch(ctx context.Context, id int64, actor string) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&BranchEntity{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":     false,
			"updated_by": actor,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBranchNotFound
	}
	return nil
}
