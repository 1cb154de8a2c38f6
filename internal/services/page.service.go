package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/repository"
)

type PageRepository interface {
	Create(ctx context.Context, p *model.Page) (*model.Page, error)
	GetByID(ctx context.Context, id int64) (*model.Page, error)
	GetByPath(ctx context.Context, path string) (*model.Page, error)
	List(ctx context.Context) ([]*model.Page, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Deactivate(ctx context.Context, id int64) error
}

type PageService struct {
	pages PageRepository
}

func NewPageService(pages PageRepository) *PageService {
	return &PageService{pages: pages}
}

func (s *PageService) Create(ctx context.Context, req model.PageCreateRequest) (*model.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.pages.GetByPath(ctx, req.Path); err == nil {
		return nil, fmt.Errorf("%w: page path %q already exists", model.ErrValidation, req.Path)
	} else if !errors.Is(err, repository.ErrPageNotFound) {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.Get(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}

	return s.pages.Create(ctx, &model.Page{
		Title:     req.Title,
		Path:      req.Path,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
		ParentID:  req.ParentID,
		Active:    true,
	})
}

func (s *PageService) Get(ctx context.Context, id int64) (*model.Page, error) {
	p, err := s.pages.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPageNotFound) {
			return nil, fmt.Errorf("%w: page %d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return p, nil
}

func (s *PageService) List(ctx context.Context) ([]*model.Page, error) {
	return s.pages.List(ctx)
}

func (s *PageService) Update(ctx context.Context, id int64, fields map[string]interface{}) (*model.Page, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: nothing to update", model.ErrValidation)
	}

	if err := s.pages.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrPageNotFound) {
			return nil, fmt.Errorf("%w: page %d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *PageService) Deactivate(ctx context.Context, id int64) error {
	if err := s.pages.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrPageNotFound) {
			return fmt.Errorf("%w: page %d", model.ErrNotFound, id)
		}
		return err
	}
	return nil
}
