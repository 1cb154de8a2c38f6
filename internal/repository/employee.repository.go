package repository

import (
	"context"
	"errors"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
)

type EmployeeRepository struct {
	*pg.DB
}

func NewEmployeeRepository(db *pg.DB) *EmployeeRepository {
	return &EmployeeRepository{
		db,
	}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	entity := toEmployeeEntity(e)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toEmployeeModel(entity), nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id int64) (*model.Employee, error) {
	var entity EmployeeEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	return toEmployeeModel(&entity), nil
}

func (r *EmployeeRepository) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	var entity EmployeeEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("email = ?", email).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	return toEmployeeModel(&entity), nil
}

func (r *EmployeeRepository) List(ctx context.Context, roleID *int64) ([]*model.Employee, error) {
	q := r.Read(ctx).WithContext(ctx).Where("active = ?", true)
	if roleID != nil {
		q = q.Where("role_id = ?", *roleID)
	}

	var entities []*EmployeeEntity
	if err := q.Order("full_name ASC").Find(&entities).Error; err != nil {
		return nil, err
	}

	return toEmployeeModels(entities), nil
}

func (r *EmployeeRepository) Deactivate(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&EmployeeEntity{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
