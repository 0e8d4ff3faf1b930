package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/talhabaigg/tsd3pl/internal/models"
)

// MemoryIssueRepository is an in-memory IssueStore for tests and local
// development.
type MemoryIssueRepository struct {
	mu     sync.RWMutex
	nextID int64
	issues map[int64]*models.Issue
}

// NewMemoryIssueRepository creates an empty in-memory issue store.
func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{nextID: 1, issues: make(map[int64]*models.Issue)}
}

func (r *MemoryIssueRepository) Create(_ context.Context, issue *models.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	issue.ID = r.nextID
	r.nextID++
	now := time.Now()
	issue.CreatedAt = now
	issue.UpdatedAt = now
	cp := *issue
	r.issues[issue.ID] = &cp
	return nil
}

func (r *MemoryIssueRepository) GetByID(_ context.Context, id int64) (*models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *issue
	return &cp, nil
}

func (r *MemoryIssueRepository) Update(_ context.Context, issue *models.Issue) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[issue.ID]; !ok {
		return ErrNotFound
	}
	issue.UpdatedAt = time.Now()
	cp := *issue
	r.issues[issue.ID] = &cp
	return nil
}

func (r *MemoryIssueRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[id]; !ok {
		return ErrNotFound
	}
	delete(r.issues, id)
	return nil
}

func (r *MemoryIssueRepository) List(_ context.Context, createdBy *int64) ([]*models.Issue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var issues []*models.Issue
	for _, issue := range r.issues {
		if createdBy != nil && issue.CreatedBy != *createdBy {
			continue
		}
		cp := *issue
		issues = append(issues, &cp)
	}
	sort.Slice(issues, func(a, b int) bool {
		if issues[a].Status != issues[b].Status {
			return issues[a].Status < issues[b].Status
		}
		return issues[a].CreatedAt.After(issues[b].CreatedAt)
	})
	return issues, nil
}

// MemoryCategoryRepository is an in-memory CategoryStore.
type MemoryCategoryRepository struct {
	mu         sync.RWMutex
	nextID     int64
	categories map[int64]*models.IssueCategory
}

// NewMemoryCategoryRepository creates an empty in-memory category store.
func NewMemoryCategoryRepository() *MemoryCategoryRepository {
	return &MemoryCategoryRepository{nextID: 1, categories: make(map[int64]*models.IssueCategory)}
}

func (r *MemoryCategoryRepository) GetByName(_ context.Context, name string) (*models.IssueCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryCategoryRepository) GetByID(_ context.Context, id int64) (*models.IssueCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryCategoryRepository) List(_ context.Context) ([]*models.IssueCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var categories []*models.IssueCategory
	for _, c := range r.categories {
		cp := *c
		categories = append(categories, &cp)
	}
	sort.Slice(categories, func(a, b int) bool { return categories[a].Name < categories[b].Name })
	return categories, nil
}

func (r *MemoryCategoryRepository) Create(_ context.Context, category *models.IssueCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	category.ID = r.nextID
	r.nextID++
	now := time.Now()
	category.CreatedAt = now
	category.UpdatedAt = now
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r *MemoryCategoryRepository) Update(_ context.Context, category *models.IssueCategory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[category.ID]; !ok {
		return ErrNotFound
	}
	category.UpdatedAt = time.Now()
	cp := *category
	r.categories[category.ID] = &cp
	return nil
}

func (r *MemoryCategoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

// MemoryUserRepository is an in-memory UserStore.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*models.User
}

// NewMemoryUserRepository creates an empty in-memory user store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{nextID: 1, users: make(map[int64]*models.User)}
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var users []*models.User
	for _, u := range r.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(a, b int) bool { return users[a].Name < users[b].Name })
	return users, nil
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

var (
	_ IssueStore    = (*MemoryIssueRepository)(nil)
	_ CategoryStore = (*MemoryCategoryRepository)(nil)
	_ UserStore     = (*MemoryUserRepository)(nil)
)
