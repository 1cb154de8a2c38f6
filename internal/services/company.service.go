package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/repository"
)

type CompanyRepository interface {
	Create(ctx context.Context, c *model.Company) (*model.Company, error)
	GetByID(ctx context.Context, id int64) (*model.Company, error)
	GetByName(ctx context.Context, name string) (*model.Company, error)
	List(ctx context.Context, includeInactive bool) ([]*model.Company, error)
	Update(ctx context.Context, id int64, fields map[string]interface{}) error
	Deactivate(ctx context.Context, id int64, actor string) error
	CreateBranch(ctx context.Context, b *model.Branch) (*model.Branch, error)
	ListBranches(ctx context.Context, companyID int64) ([]*model.Branch, error)
	DeactivateBranch(ctx context.Context, id int64, actor string) error
}

type CompanyService struct {
	companies CompanyRepository
}

func NewCompanyService(companies CompanyRepository) *CompanyService {
	return &CompanyService{companies: companies}
}

func (s *CompanyService) Create(ctx context.Context, req model.CompanyCreateRequest) (*model.Company, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.companies.GetByName(ctx, req.Name); err == nil {
		return nil, fmt.Errorf("%w: company %q already exists", model.ErrValidation, req.Name)
	} else if !errors.Is(err, repository.ErrCompanyNotFound) {
		return nil, err
	}

	return s.companies.Create(ctx, &model.Company{
		Name:      req.Name,
		TaxCode:   req.TaxCode,
		Active:    true,
		CreatedBy: req.Actor,
		UpdatedBy: req.Actor,
	})
}

func (s *CompanyService) Get(ctx context.Context, id int64) (*model.Company, error) {
	c, err := s.companies.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, fmt.Errorf("%w: company %d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return c, nil
}

func (s *CompanyService) List(ctx context.Context, includeInactive bool) ([]*model.Company, error) {
	return s.companies.List(ctx, includeInactive)
}

func (s *CompanyService) Update(ctx context.Context, id int64, name, taxCode, actor string) (*model.Company, error) {
	if actor == "" {
		return nil, fmt.Errorf("%w: actor is required", model.ErrValidation)
	}

	fields := map[string]interface{}{"updated_by": actor}
	if name != "" {
		fields["name"] = name
	}
	if taxCode != "" {
		fields["tax_code"] = taxCode
	}

	if err := s.companies.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, fmt.Errorf("%w: company %d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *CompanyService) Deactivate(ctx context.Context, id int64, actor string) error {
	if actor == "" {
		return fmt.Errorf("%w: actor is required", model.ErrValidation)
	}

	if err := s.companies.Deactivate(ctx, id, actor); err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return fmt.Errorf("%w: company %d", model.ErrNotFound, id)
		}
		return err
	}
	return nil
}

func (s *CompanyService) CreateBranch(ctx context.Context, req model.BranchCreateRequest) (*model.Branch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.Get(ctx, req.CompanyID); err != nil {
		return nil, err
	}

	return s.companies.CreateBranch(ctx, &model.Branch{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Address:   req.Address,
		Active:    true,
		CreatedBy: req.Actor,
		UpdatedBy: req.Actor,
	})
}

func (s *CompanyService) ListBranches(ctx context.Context, companyID int64) ([]*model.Branch, error) {
	if _, err := s.Get(ctx, companyID); err != nil {
		return nil, err
	}
	return s.companies.ListBranches(ctx, companyID)
}

func (s *CompanyService) DeactivateBranch(ctx context.Context, id int64, actor string) error {
	if actor == "" {
		return fmt.Errorf("%w: actor is required", model.ErrValidation)
	}

	if err := s.companies.DeactivateBranch(ctx, id, actor); err != nil {
		if errors.Is(err, repository.ErrBranchNotFound) {
			return fmt.Errorf("%w: branch %d", model.ErrNotFound, id)
		}
		return err
	}
	return nil
}
