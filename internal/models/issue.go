package models

import (
	"errors"
	"fmt"
	"time"
)

// IssueStatus is the lifecycle state of an issue.
type IssueStatus string

const (
	StatusPending  IssueStatus = "pending"
	StatusActive   IssueStatus = "active"
	StatusResolved IssueStatus = "resolved"
)

// Valid reports whether the status is one of the known values.
func (s IssueStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusResolved:
		return true
	}
	return false
}

// IssuePriority is the urgency classification of an issue.
type IssuePriority string

const (
	PriorityCritical IssuePriority = "critical"
	PriorityNormal   IssuePriority = "normal"
)

// Valid reports whether the priority is one of the known values.
func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityNormal:
		return true
	}
	return false
}

// Issue represents one tracked problem report.
type Issue struct {
	ID                int64         `json:"id" db:"id"`
	Type              string        `json:"type" db:"type"`
	Title             string        `json:"title" db:"title"`
	Description       string        `json:"description" db:"description"`
	Priority          IssuePriority `json:"priority" db:"priority"`
	Status            IssueStatus   `json:"status" db:"status"`
	DueDate           *time.Time    `json:"due_date,omitempty" db:"due_date"`
	File              *string       `json:"file,omitempty" db:"file"`
	DowntimeStartTime *time.Time    `json:"downtime_start_time,omitempty" db:"downtime_start_time"`
	DowntimeEndTime   *time.Time    `json:"downtime_end_time,omitempty" db:"downtime_end_time"`
	CreatedBy         int64         `json:"created_by" db:"created_by"`
	OwnerID           int64         `json:"owner_id" db:"owner_id"`
	AssignedTo        int64         `json:"assigned_to" db:"assigned_to"`
	UpdatedBy         int64         `json:"updated_by" db:"updated_by"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`

	// Joined fields (populated when needed)
	Creator  *User `json:"creator,omitempty"`
	Owner    *User `json:"owner,omitempty"`
	Assignee *User `json:"assignee,omitempty"`
	Updater  *User `json:"updater,omitempty"`
}

// DowntimePhase is the explicit state of an issue's downtime interval,
// derived from the nullable timestamp pair so the transitions below can
// never produce an end time without a start time.
type DowntimePhase int

const (
	DowntimeNotStarted DowntimePhase = iota
	DowntimeRunning
	DowntimeEnded
)

func (p DowntimePhase) String() string {
	switch p {
	case DowntimeNotStarted:
		return "not_started"
	case DowntimeRunning:
		return "running"
	case DowntimeEnded:
		return "ended"
	}
	return "unknown"
}

// ErrDowntimeEnded is returned when the downtime action is invoked on a
// closed interval. The interval is immutable once both timestamps are set.
var ErrDowntimeEnded = errors.New("downtime already ended")

// DowntimePhase returns the current downtime state of the issue.
func (i *Issue) DowntimePhase() DowntimePhase {
	switch {
	case i.DowntimeStartTime == nil:
		return DowntimeNotStarted
	case i.DowntimeEndTime == nil:
		return DowntimeRunning
	default:
		return DowntimeEnded
	}
}

// ToggleDowntime advances the downtime interval: it opens the interval at
// now when nothing is recorded, closes it at now while it is running, and
// rejects the action with ErrDowntimeEnded once the interval is closed.
// It returns the user-facing message for the transition taken.
func (i *Issue) ToggleDowntime(now time.Time) (string, error) {
	switch i.DowntimePhase() {
	case DowntimeNotStarted:
		i.DowntimeStartTime = &now
		return "Downtime started.", nil
	case DowntimeRunning:
		i.DowntimeEndTime = &now
		return "Downtime stopped.", nil
	default:
		return "", ErrDowntimeEnded
	}
}

// FormatDowntime renders the elapsed interval as HH:MM:SS with zero padding
// and no upper bound on the hours component.
func FormatDowntime(start, end time.Time) string {
	elapsed := end.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	total := int64(elapsed / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// IssueCreateRequest carries a new issue submission. FullName and Email are
// only consulted on the guest path.
type IssueCreateRequest struct {
	Type        string        `json:"type" binding:"required"`
	Name        string        `json:"name" binding:"required"`
	Priority    IssuePriority `json:"priority" binding:"required"`
	Description string        `json:"description" binding:"required"`
	FullName    string        `json:"fullName,omitempty"`
	Email       string        `json:"email,omitempty" binding:"omitempty,email"`
}

// IssueUpdateRequest is a partial update over the triage fields. Every field
// is optional; absent fields leave the record untouched.
type IssueUpdateRequest struct {
	Status     *IssueStatus   `json:"status,omitempty"`
	AssignedTo *int64         `json:"assigned_to,omitempty"`
	Priority   *IssuePriority `json:"priority,omitempty"`
	Title      *string        `json:"title,omitempty"`
	DueDate    *string        `json:"due_date,omitempty"`
}

// IssueEditRequest rewrites the descriptive fields of an existing issue.
type IssueEditRequest struct {
	Type        string        `json:"type" binding:"required"`
	Name        string        `json:"name" binding:"required"`
	Priority    IssuePriority `json:"priority" binding:"required"`
	Description string        `json:"description" binding:"required"`
}

// DueDateLayout is the wire format for due dates.
const DueDateLayout = "2006-01-02"

// ParseDueDate parses a due date, accepting the plain date layout first and
// RFC 3339 as a fallback for clients that send full timestamps.
func ParseDueDate(value string) (time.Time, error) {
	if t, err := time.Parse(DueDateLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q", value)
	}
	return t, nil
}
