package model

import (
	"fmt"
	"time"
)

// Employee is an actor known to the records backend. Identity itself is
// resolved by an external lookup; rows here exist for listing and for
// attaching a role.
type Employee struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	RoleID    int64     `json:"role_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type EmployeeCreateRequest struct {
	FullName string
	Email    string
	RoleID   int64
}

func (p EmployeeCreateRequest) Validate() error {
	if p.FullName == "" {
		return fmt.Errorf("%w: full_name is required", ErrValidation)
	}
	if p.Email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if p.RoleID == 0 {
		return fmt.Errorf("%w: role_id is required", ErrValidation)
	}
	return nil
}
