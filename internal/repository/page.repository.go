package repository

import (
	"context"
	"errors"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound = errors.New("page not found")
)

type PageRepository struct {
	*pg.DB
}

func NewPageRepository(db *pg.DB) *PageRepository {
	return &PageRepository{
		db,
	}
}

func (r *PageRepository) Create(ctx context.Context, p *model.Page) (*model.Page, error) {
	entity := toPageEntity(p)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toPageModel(entity), nil
}

func (r *PageRepository) GetByID(ctx context.Context, id int64) (*model.Page, error) {
	var entity PageEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	return toPageModel(&entity), nil
}

func (r *PageRepository) GetByPath(ctx context.Context, path string) (*model.Page, error) {
	var entity PageEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("path = ?", path).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}

	return toPageModel(&entity), nil
}

// List returns active pages ordered for navigation rendering.
func (r *PageRepository) List(ctx context.Context) ([]*model.Page, error) {
	var entities []*PageEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("active = ?", true).
		Order("sort_order ASC, id ASC").
		Find(&entities).
		Error

	if err != nil {
		return nil, err
	}

	return toPageModels(entities), nil
}

func (r *PageRepository) Update(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&PageEntity{}).
		Where("id = ? AND active = ?", id, true).
		Updates(fields)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}

func (r *PageRepository) Deactivate(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&PageEntity{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPageNotFound
	}
	return nil
}
