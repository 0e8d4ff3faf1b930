package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/talhabaigg/tsd3pl/internal/models"
	"github.com/talhabaigg/tsd3pl/internal/repository"
)

// ErrValidation marks a malformed request rejected before persistence.
var ErrValidation = errors.New("validation failed")

// Notifier delivers assignment notifications. Delivery is best-effort; the
// service never fails an update because a notification could not be sent.
type Notifier interface {
	NotifyAssignment(ctx context.Context, user *models.User, issue *models.Issue) error
}

// IssueService implements the issue flows: creation with default-owner
// resolution, partial status/assignment updates, and the downtime toggle.
type IssueService struct {
	issues         repository.IssueStore
	categories     repository.CategoryStore
	users          repository.UserStore
	notifier       Notifier
	defaultOwnerID int64
	now            func() time.Time
	logger         *log.Logger
}

// Option applies configuration to the issue service.
type Option func(*IssueService)

// WithClock injects the time source used for downtime timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *IssueService) { s.now = now }
}

// WithLogger injects a custom logger implementation.
func WithLogger(l *log.Logger) Option {
	return func(s *IssueService) { s.logger = l }
}

// NewIssueService creates a new issue service. defaultOwnerID receives
// ownership of issues whose type matches no category.
func NewIssueService(
	issues repository.IssueStore,
	categories repository.CategoryStore,
	users repository.UserStore,
	notifier Notifier,
	defaultOwnerID int64,
	opts ...Option,
) *IssueService {
	s := &IssueService{
		issues:         issues,
		categories:     categories,
		users:          users,
		notifier:       notifier,
		defaultOwnerID: defaultOwnerID,
		now:            time.Now,
		logger:         log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIssue files a new issue. When actor is nil the submission is treated
// as a guest: a user account is found or created by email. The default owner
// and assignee come from the category matching the submitted type, falling
// back to the configured default owner.
func (s *IssueService) CreateIssue(ctx context.Context, req *models.IssueCreateRequest, actor *models.User) (*models.Issue, error) {
	if !req.Priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, req.Priority)
	}

	if actor == nil {
		var err error
		actor, err = s.findOrCreateGuest(ctx, req.Email, req.FullName)
		if err != nil {
			return nil, err
		}
	}

	ownerID, err := s.resolveOwner(ctx, req.Type)
	if err != nil {
		return nil, err
	}

	issue := &models.Issue{
		Type:        req.Type,
		Title:       req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      models.StatusPending,
		CreatedBy:   actor.ID,
		OwnerID:     ownerID,
		AssignedTo:  ownerID,
		UpdatedBy:   actor.ID,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// UpdateIssue applies a partial update over the triage fields. Absent fields
// are left unchanged. When the update carries a new non-empty assignee, the
// target user receives an assignment notification; notification failure is
// logged and never rolls back the persisted update.
func (s *IssueService) UpdateIssue(ctx context.Context, id int64, req *models.IssueUpdateRequest, actor *models.User) error {
	var dueDate *time.Time
	if req.Status != nil && !req.Status.Valid() {
		return fmt.Errorf("%w: invalid status %q", ErrValidation, *req.Status)
	}
	if req.Priority != nil && !req.Priority.Valid() {
		return fmt.Errorf("%w: invalid priority %q", ErrValidation, *req.Priority)
	}
	if req.DueDate != nil {
		t, err := models.ParseDueDate(*req.DueDate)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		dueDate = &t
	}

	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return err
	}
	previousAssignee := issue.AssignedTo

	if req.Status != nil {
		issue.Status = *req.Status
	}
	if req.AssignedTo != nil {
		issue.AssignedTo = *req.AssignedTo
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}
	if req.Title != nil {
		issue.Title = *req.Title
	}
	if dueDate != nil {
		issue.DueDate = dueDate
	}
	if actor != nil {
		issue.UpdatedBy = actor.ID
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return err
	}

	if req.AssignedTo != nil && *req.AssignedTo != 0 && *req.AssignedTo != previousAssignee {
		s.dispatchAssignmentNotification(*req.AssignedTo, issue)
	}
	return nil
}

// EditIssue rewrites the descriptive fields of an existing issue.
func (s *IssueService) EditIssue(ctx context.Context, id int64, req *models.IssueEditRequest, actor *models.User) (*models.Issue, error) {
	if !req.Priority.Valid() {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, req.Priority)
	}

	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	issue.Type = req.Type
	issue.Title = req.Name
	issue.Priority = req.Priority
	issue.Description = req.Description
	if actor != nil {
		issue.UpdatedBy = actor.ID
	}
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// ToggleDowntime advances the issue's downtime interval and persists the
// result. A closed interval is rejected with models.ErrDowntimeEnded and no
// state change.
func (s *IssueService) ToggleDowntime(ctx context.Context, id int64) (*models.Issue, string, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	message, err := issue.ToggleDowntime(s.now())
	if err != nil {
		return issue, "", err
	}
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, "", err
	}
	return issue, message, nil
}

// GetIssue returns one issue with its related users resolved.
func (s *IssueService) GetIssue(ctx context.Context, id int64) (*models.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.attachUsers(ctx, issue)
	return issue, nil
}

// ListIssues returns issues visible to the actor: everything for admins,
// only their own submissions for everyone else.
func (s *IssueService) ListIssues(ctx context.Context, actor *models.User) ([]*models.Issue, error) {
	var createdBy *int64
	if actor != nil && !actor.IsAdmin() {
		createdBy = &actor.ID
	}
	issues, err := s.issues.List(ctx, createdBy)
	if err != nil {
		return nil, err
	}
	s.attachUsers(ctx, issues...)
	return issues, nil
}

// DeleteIssue removes an issue. Authorization is enforced at the route
// layer; admins only.
func (s *IssueService) DeleteIssue(ctx context.Context, id int64) error {
	return s.issues.Delete(ctx, id)
}

func (s *IssueService) resolveOwner(ctx context.Context, issueType string) (int64, error) {
	category, err := s.categories.GetByName(ctx, issueType)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.defaultOwnerID, nil
		}
		return 0, err
	}
	return category.UserID, nil
}

func (s *IssueService) findOrCreateGuest(ctx context.Context, email, fullName string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: guest submissions require an email address", ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	name := fullName
	if name == "" {
		name = email
	}
	guest := &models.User{Name: name, Email: email, Role: models.RoleUser}
	// Guests get a random throwaway credential; they can reset it through
	// the normal flow if they ever need to log in.
	if err := guest.SetPassword(randomPassword()); err != nil {
		return nil, fmt.Errorf("failed to provision guest account: %w", err)
	}
	if err := s.users.Create(ctx, guest); err != nil {
		return nil, err
	}
	return guest, nil
}

func (s *IssueService) dispatchAssignmentNotification(userID int64, issue *models.Issue) {
	if s.notifier == nil {
		return
	}
	// Detached from the request context: the update response never waits on
	// notification delivery.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			s.logger.Printf("assignment notification for issue %d: cannot resolve user %d: %v", issue.ID, userID, err)
			return
		}
		if err := s.notifier.NotifyAssignment(ctx, user, issue); err != nil {
			s.logger.Printf("assignment notification for issue %d to user %d failed: %v", issue.ID, userID, err)
		}
	}()
}

func (s *IssueService) attachUsers(ctx context.Context, issues ...*models.Issue) {
	cache := make(map[int64]*models.User)
	lookup := func(id int64) *models.User {
		if id == 0 {
			return nil
		}
		if u, ok := cache[id]; ok {
			return u
		}
		u, err := s.users.GetByID(ctx, id)
		if err != nil {
			cache[id] = nil
			return nil
		}
		cache[id] = u
		return u
	}
	for _, issue := range issues {
		issue.Creator = lookup(issue.CreatedBy)
		issue.Owner = lookup(issue.OwnerID)
		issue.Assignee = lookup(issue.AssignedTo)
		issue.Updater = lookup(issue.UpdatedBy)
	}
}

func randomPassword() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failure means the process has bigger problems; fall
		// back to a time-derived value rather than a shared constant.
		return hex.EncodeToString([]byte(time.Now().String()))
	}
	return hex.EncodeToString(buf)
}
