package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/repository"
)

type RoleRepository interface {
	Create(ctx context.Context, role *model.Role) (*model.Role, error)
	GetByID(ctx context.Context, id int64) (*model.Role, error)
	GetByName(ctx context.Context, name string) (*model.Role, error)
	List(ctx context.Context) ([]*model.Role, error)
	Deactivate(ctx context.Context, id int64) error
	GrantPages(ctx context.Context, roleID int64, pageIDs []int64) error
	ListPages(ctx context.Context, roleID int64) ([]*model.Page, error)
}

type PageChecker interface {
	GetByID(ctx context.Context, id int64) (*model.Page, error)
}

type RoleService struct {
	roles RoleRepository
	pages PageChecker
}

func NewRoleService(roles RoleRepository, pages PageChecker) *RoleService {
	return &RoleService{roles: roles, pages: pages}
}

func (s *RoleService) Create(ctx context.Context, req model.RoleCreateRequest) (*model.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.roles.GetByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("%w: role %q already exists", model.ErrValidation, req.Name)
	} else if !errors.Is(err, repository.ErrRoleNotFound) {
		return nil, err
	}

	return s.roles.Create(ctx, &model.Role{
		Name:        req.Name,
		Description: req.Description,
		Active:      true,
	})
}

func (s *RoleService) Get(ctx context.Context, id int64) (*model.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: role %d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return role, nil
}

func (s *RoleService) List(ctx context.Context) ([]*model.Role, error) {
	return s.roles.List(ctx)
}

func (s *RoleService) Deactivate(ctx context.Context, id int64) error {
	if err := s.roles.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return fmt.Errorf("%w: role %d", model.ErrNotFound, id)
		}
		return err
	}
	return nil
}

// GrantPages replaces the page set visible to a role. Every referenced page
// must exist and be active.
func (s *RoleService) GrantPages(ctx context.Context, roleID int64, pageIDs []int64) error {
	for _, pageID := range pageIDs {
		if _, err := s.pages.GetByID(ctx, pageID); err != nil {
			if errors.Is(err, repository.ErrPageNotFound) {
				return fmt.Errorf("%w: page %d", model.ErrNotFound, pageID)
			}
			return err
		}
	}

	if err := s.roles.GrantPages(ctx, roleID, pageIDs); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return fmt.Errorf("%w: role %d", model.ErrNotFound, roleID)
		}
		return err
	}
	return nil
}

func (s *RoleService) ListPages(ctx context.Context, roleID int64) ([]*model.Page, error) {
	if _, err := s.Get(ctx, roleID); err != nil {
		return nil, err
	}
	return s.roles.ListPages(ctx, roleID)
}
