package models

import "time"

// IssueCategory maps an issue type name to the user responsible for it by
// default. An issue's free-text type is matched against Name at creation
// time to pick the default owner.
type IssueCategory struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	UserID    int64     `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined field (populated when needed)
	User *User `json:"user,omitempty"`
}

// CategoryCreateRequest carries a new category definition.
type CategoryCreateRequest struct {
	Name   string `json:"name" binding:"required,max=255"`
	UserID int64  `json:"user_id" binding:"required"`
}

// CategoryUpdateRequest rewrites a category's name and owning user.
type CategoryUpdateRequest struct {
	Name   string `json:"name" binding:"required,max=255"`
	UserID int64  `json:"user_id" binding:"required"`
}
