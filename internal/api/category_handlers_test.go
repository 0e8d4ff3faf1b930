package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talhabaigg/tsd3pl/internal/models"
	"github.com/talhabaigg/tsd3pl/internal/repository"
)

func TestCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/categories",
		gin.H{"name": "safety", "user_id": env.admin.ID}, env.admin)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Category *models.IssueCategory `json:"category"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotNil(t, created.Category)

	path := fmt.Sprintf("/api/categories/%d", created.Category.ID)
	w = env.request(t, http.MethodPut, path,
		gin.H{"name": "site_safety", "user_id": env.reporter.ID}, env.admin)
	require.Equal(t, http.StatusOK, w.Code)

	stored, err := env.categories.GetByName(context.Background(), "site_safety")
	require.NoError(t, err)
	assert.Equal(t, env.reporter.ID, stored.UserID)

	w = env.request(t, http.MethodDelete, path, nil, env.admin)
	require.Equal(t, http.StatusNoContent, w.Code)

	_, err = env.categories.GetByID(context.Background(), created.Category.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCategoryAdminGate(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/categories",
		gin.H{"name": "safety", "user_id": env.admin.ID}, env.reporter)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodPost, "/api/categories",
		gin.H{"name": "safety", "user_id": env.admin.ID}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCategoryLookup(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.categories.Create(context.Background(),
		&models.IssueCategory{Name: "safety", UserID: env.admin.ID}))

	w := env.request(t, http.MethodGet, "/api/categories/lookup", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var categories []*models.IssueCategory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "safety", categories[0].Name)
}
