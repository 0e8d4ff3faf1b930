package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/talhabaigg/tsd3pl/internal/models"
)

const issueColumns = `id, type, title, description, priority, status, due_date, file,
	       downtime_start_time, downtime_end_time,
	       created_by, owner_id, assigned_to, updated_by, created_at, updated_at`

// IssueRepository handles database operations for issues.
type IssueRepository struct {
	db *sql.DB
}

// NewIssueRepository creates a new issue repository.
func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// Create inserts the issue and fills in its generated ID and timestamps.
func (r *IssueRepository) Create(ctx context.Context, issue *models.Issue) error {
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO issues (type, title, description, priority, status, due_date, file,
		                    downtime_start_time, downtime_end_time,
		                    created_by, owner_id, assigned_to, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		issue.Type, issue.Title, issue.Description, issue.Priority, issue.Status,
		issue.DueDate, issue.File, issue.DowntimeStartTime, issue.DowntimeEndTime,
		issue.CreatedBy, issue.OwnerID, issue.AssignedTo, issue.UpdatedBy,
		issue.CreatedAt, issue.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert issue: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read issue id: %w", err)
	}
	issue.ID = id
	return nil
}

// GetByID retrieves an issue by its identifier.
func (r *IssueRepository) GetByID(ctx context.Context, id int64) (*models.Issue, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+issueColumns+`
		FROM issues
		WHERE id = ?`, id)

	issue, err := scanIssue(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get issue %d: %w", id, err)
	}
	return issue, nil
}

// Update persists all mutable columns of the issue. Concurrent writers are
// resolved last-write-wins; there is no version column.
func (r *IssueRepository) Update(ctx context.Context, issue *models.Issue) error {
	issue.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE issues
		SET type = ?, title = ?, description = ?, priority = ?, status = ?,
		    due_date = ?, file = ?, downtime_start_time = ?, downtime_end_time = ?,
		    owner_id = ?, assigned_to = ?, updated_by = ?, updated_at = ?
		WHERE id = ?`,
		issue.Type, issue.Title, issue.Description, issue.Priority, issue.Status,
		issue.DueDate, issue.File, issue.DowntimeStartTime, issue.DowntimeEndTime,
		issue.OwnerID, issue.AssignedTo, issue.UpdatedBy, issue.UpdatedAt,
		issue.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update issue %d: %w", issue.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an issue.
func (r *IssueRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM issues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns issues ordered by status ascending then newest first. When
// createdBy is non-nil the listing is restricted to that creator.
func (r *IssueRepository) List(ctx context.Context, createdBy *int64) ([]*models.Issue, error) {
	query := `
		SELECT ` + issueColumns + `
		FROM issues`
	args := []interface{}{}
	if createdBy != nil {
		query += ` WHERE created_by = ?`
		args = append(args, *createdBy)
	}
	query += ` ORDER BY status ASC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate issues: %w", err)
	}
	return issues, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIssue(row rowScanner) (*models.Issue, error) {
	var issue models.Issue
	err := row.Scan(
		&issue.ID,
		&issue.Type,
		&issue.Title,
		&issue.Description,
		&issue.Priority,
		&issue.Status,
		&issue.DueDate,
		&issue.File,
		&issue.DowntimeStartTime,
		&issue.DowntimeEndTime,
		&issue.CreatedBy,
		&issue.OwnerID,
		&issue.AssignedTo,
		&issue.UpdatedBy,
		&issue.CreatedAt,
		&issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &issue, nil
}
