package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talhabaigg/tsd3pl/internal/models"
	"github.com/talhabaigg/tsd3pl/internal/repository"
)

type failingUserStore struct {
	err error
}

func (s *failingUserStore) GetByID(context.Context, int64) (*models.User, error) {
	return nil, s.err
}

func (s *failingUserStore) GetByEmail(context.Context, string) (*models.User, error) {
	return nil, s.err
}

func (s *failingUserStore) List(context.Context) ([]*models.User, error) {
	return nil, s.err
}

func (s *failingUserStore) Create(context.Context, *models.User) error {
	return s.err
}

func newIdentityRouter(users repository.UserStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Identity(users))
	r.GET("/whoami", func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusOK, gin.H{"guest": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID})
	})
	return r
}

func TestIdentityResolvesUser(t *testing.T) {
	users := repository.NewMemoryUserRepository()
	user := &models.User{Name: "Reporter", Email: "rep@example.com", Role: models.RoleUser}
	require.NoError(t, users.Create(context.Background(), user))

	router := newIdentityRouter(users)
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Auth-User-ID", "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":1`)
}

func TestIdentityUnknownUser(t *testing.T) {
	router := newIdentityRouter(repository.NewMemoryUserRepository())
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Auth-User-ID", "99")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityStoreFailure(t *testing.T) {
	router := newIdentityRouter(&failingUserStore{err: errors.New("connection refused")})
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Auth-User-ID", "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIdentityMalformedHeader(t *testing.T) {
	router := newIdentityRouter(repository.NewMemoryUserRepository())
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Auth-User-ID", "not-a-number")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
