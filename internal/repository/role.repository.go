package repository

import (
	"context"
	"errors"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/pkg/pg"
	"gorm.io/gorm"
)

var (
	ErrRoleNotFound = errors.New("role not found")
)

type RoleRepository struct {
	*pg.DB
}

func NewRoleRepository(db *pg.DB) *RoleRepository {
	return &RoleRepository{
		db,
	}
}

func (r *RoleRepository) Create(ctx context.Context, role *model.Role) (*model.Role, error) {
	entity := toRoleEntity(role)

	if err := r.Write(ctx).WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toRoleModel(entity), nil
}

func (r *RoleRepository) GetByID(ctx context.Context, id int64) (*model.Role, error) {
	var entity RoleEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return toRoleModel(&entity), nil
}

func (r *RoleRepository) GetByName(ctx context.Context, name string) (*model.Role, error) {
	var entity RoleEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("name = ?", name).
		First(&entity).
		Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	return toRoleModel(&entity), nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*model.Role, error) {
	var entities []*RoleEntity

	err := r.Read(ctx).WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&entities).
		Error

	if err != nil {
		return nil, err
	}

	return toRoleModels(entities), nil
}

func (r *RoleRepository) Deactivate(ctx context.Context, id int64) error {
	result := r.Write(ctx).WithContext(ctx).
		Model(&RoleEntity{}).
		Where("id = ? AND active = ?", id, true).
		Update("active", false)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRoleNotFound
	}
	return nil
}

// GrantPages replaces the navigation pages visible to a role.
func (r *RoleRepository) GrantPages(ctx context.Context, roleID int64, pageIDs []int64) error {
	var role RoleEntity
	err := r.Write(ctx).WithContext(ctx).
		Where("id = ? AND active = ?", roleID, true).
		First(&role).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return err
	}

	pages := make([]*PageEntity, len(pageIDs))
	for i, id := range pageIDs {
		pages[i] = &PageEntity{ID: id}
	}

	return r.Write(ctx).WithContext(ctx).
		Model(&role).
		Association("Pages").
		Replace(pages)
}

// ListPages returns the active navigation pages granted to a role, in
// display order.
func (r *RoleRepository) ListPages(ctx context.Context, roleID int64) ([]*model.Page, error) {
	var entities []*PageEntity

	err := r.Read(ctx).WithContext(ctx).
		Joins("JOIN role_pages ON role_pages.page_entity_id = pages.id").
		Where("role_pages.role_entity_id = ? AND pages.active = ?", roleID, true).
		Order("pages.sort_order ASC").
		Find(&entities).
		Error

	if err != nil {
		return nil, err
	}

	return toPageModels(entities), nil
}
