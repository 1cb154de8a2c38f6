package model

import (
	"fmt"
	"time"
)

// Role groups employees for navigation-page visibility.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RoleCreateRequest struct {
	Name        string
	Description string
}

func (p RoleCreateRequest) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	return nil
}
