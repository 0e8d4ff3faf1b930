package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talhabaigg/tsd3pl/internal/models"
)

// CategoryRepository handles database operations for issue categories.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByName retrieves a category by its exact display name.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.IssueCategory, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, user_id, created_at, updated_at
		FROM issue_categories
		WHERE name = ?`, name)

	var c models.IssueCategory
	err := row.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category %q: %w", name, err)
	}
	return &c, nil
}

// GetByID retrieves a category by identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.IssueCategory, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, user_id, created_at, updated_at
		FROM issue_categories
		WHERE id = ?`, id)

	var c models.IssueCategory
	err := row.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return &c, nil
}

// List returns all categories with their owning user resolved.
func (r *CategoryRepository) List(ctx context.Context) ([]*models.IssueCategory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.user_id, c.created_at, c.updated_at,
		       u.id, u.name, u.email, u.role
		FROM issue_categories c
		LEFT JOIN users u ON u.id = c.user_id
		ORDER BY c.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.IssueCategory
	for rows.Next() {
		var c models.IssueCategory
		var uid sql.NullInt64
		var uname, uemail, urole sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
			&uid, &uname, &uemail, &urole); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		if uid.Valid {
			c.User = &models.User{
				ID:    uid.Int64,
				Name:  uname.String,
				Email: uemail.String,
				Role:  models.UserRole(urole.String),
			}
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// Create inserts a category and fills in its generated ID.
func (r *CategoryRepository) Create(ctx context.Context, category *models.IssueCategory) error {
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO issue_categories (name, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		category.Name, category.UserID, category.CreatedAt, category.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read category id: %w", err)
	}
	category.ID = id
	return nil
}

// Update rewrites a category's name and owning user.
func (r *CategoryRepository) Update(ctx context.Context, category *models.IssueCategory) error {
	category.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE issue_categories
		SET name = ?, user_id = ?, updated_at = ?
		WHERE id = ?`,
		category.Name, category.UserID, category.UpdatedAt, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category %d: %w", category.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a category. Issues keep their type string; there is no
// cascade.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issue_categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
