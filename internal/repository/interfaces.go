package repository

import (
	"context"

	"github.com/talhabaigg/tsd3pl/internal/models"
)

// IssueStore defines the issue data operations consumed by services.
type IssueStore interface {
	Create(ctx context.Context, issue *models.Issue) error
	GetByID(ctx context.Context, id int64) (*models.Issue, error)
	Update(ctx context.Context, issue *models.Issue) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, createdBy *int64) ([]*models.Issue, error)
}

// CategoryStore defines the category data operations consumed by services.
type CategoryStore interface {
	GetByName(ctx context.Context, name string) (*models.IssueCategory, error)
	GetByID(ctx context.Context, id int64) (*models.IssueCategory, error)
	List(ctx context.Context) ([]*models.IssueCategory, error)
	Create(ctx context.Context, category *models.IssueCategory) error
	Update(ctx context.Context, category *models.IssueCategory) error
	Delete(ctx context.Context, id int64) error
}

// UserStore defines the user data operations consumed by services.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

var (
	_ IssueStore    = (*IssueRepository)(nil)
	_ CategoryStore = (*CategoryRepository)(nil)
	_ UserStore     = (*UserRepository)(nil)
)
