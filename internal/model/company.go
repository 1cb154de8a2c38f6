package model

import (
	"fmt"
	"time"
)

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TaxCode   string    `json:"tax_code,omitempty"`
	Active    bool      `json:"active"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Branch struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Active    bool      `json:"active"`
	CreatedBy string    `json:"created_by"`
	UpdatedBy string    `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CompanyCreateRequest struct {
	Name    string
	TaxCode string
	Actor   string
}

func (p CompanyCreateRequest) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Actor == "" {
		return fmt.Errorf("%w: actor is required", ErrValidation)
	}
	return nil
}

type BranchCreateRequest struct {
	CompanyID int64
	Name      string
	Address   string
	Actor     string
}

func (p BranchCreateRequest) Validate() error {
	if p.CompanyID == 0 {
		return fmt.Errorf("%w: company_id is required", ErrValidation)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if p.Actor == "" {
		return fmt.Errorf("%w: actor is required", ErrValidation)
	}
	return nil
}
