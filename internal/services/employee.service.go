package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rezamoss/expense-ledger/internal/model"
	"github.com/rezamoss/expense-ledger/internal/repository"
)

type EmployeeRepository interface {
	Create(ctx context.Context, e *model.Employee) (*model.Employee, error)
	GetByID(ctx context.Context, id int64) (*model.Employee, error)
	GetByEmail(ctx context.Context, email string) (*model.Employee, error)
	List(ctx context.Context, roleID *int64) ([]*model.Employee, error)
	Deactivate(ctx context.Context, id int64) error
}

type RoleChecker interface {
	GetByID(ctx context.Context, id int64) (*model.Role, error)
}

type EmployeeService struct {
	employees EmployeeRepository
	roles     RoleChecker
}

func NewEmployeeService(employees EmployeeRepository, roles RoleChecker) *EmployeeService {
	return &EmployeeService{employees: employees, roles: roles}
}

func (s *EmployeeService) Create(ctx context.Context, req model.EmployeeCreateRequest) (*model.Employee, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.roles.GetByID(ctx, req.RoleID); err != nil {
		if errors.Is(err, repository.ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: role %d", model.ErrNotFound, req.RoleID)
		}
		return nil, err
	}

	if _, err := s.employees.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: employee %q already exists", model.ErrValidation, req.Email)
	} else if !errors.Is(err, repository.ErrEmployeeNotFound) {
		return nil, err
	}

	return s.employees.Create(ctx, &model.Employee{
		FullName: req.FullName,
		Email:    req.Email,
		RoleID:   req.RoleID,
		Active:   true,
	})
}

func (s *EmployeeService) Get(ctx context.Context, id int64) (*model.Employee, error) {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, fmt.Errorf("%w: employee %d", model.ErrNotFound, id)
		}
		return nil, err
	}
	return e, nil
}

func (s *EmployeeService) List(ctx context.Context, roleID *int64) ([]*model.Employee, error) {
	return s.employees.List(ctx, roleID)
}

func (s *EmployeeService) Deactivate(ctx context.Context, id int64) error {
	if err := s.employees.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return fmt.Errorf("%w: employee %d", model.ErrNotFound, id)
		}
		return err
	}
	return nil
}
