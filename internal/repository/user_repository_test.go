package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/talhabaigg/tsd3pl/internal/models"
)

func TestUserRepositoryGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)
	now := time.Now()

	cols := []string{"id", "name", "email", "password", "role", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password, role")).
		WithArgs("dana@example.com").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(4, "Dana", "dana@example.com", "hash", "admin", now, now))

	user, err := repo.GetByEmail(context.Background(), "dana@example.com")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !user.IsAdmin() {
		t.Fatalf("expected admin role, got %s", user.Role)
	}
}

func TestUserRepositoryGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email, password, role")).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = repo.GetByID(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUserRepositoryCreateDefaultsRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := NewUserRepository(db)
	user := &models.User{Name: "Guest", Email: "guest@example.com", Password: "hash"}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("Guest", "guest@example.com", "hash", models.RoleUser,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if user.ID != 9 || user.Role != models.RoleUser {
		t.Fatalf("unexpected user after create: %+v", user)
	}
}
