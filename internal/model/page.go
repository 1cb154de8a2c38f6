package model

import (
	"fmt"
	"time"
)

// Page is a navigation entry. Pages form a shallow tree through ParentID.
type Page struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Path      string    `json:"path"`
	Icon      string    `json:"icon,omitempty"`
	SortOrder int       `json:"sort_order"`
	ParentID  *int64    `json:"parent_id,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PageCreateRequest struct {
	Title     string
	Path      string
	Icon      string
	SortOrder int
	ParentID  *int64
}

func (p PageCreateRequest) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.Path == "" {
		return fmt.Errorf("%w: path is required", ErrValidation)
	}
	return nil
}
