package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/talhabaigg/tsd3pl/internal/models"
	"github.com/talhabaigg/tsd3pl/internal/repository"
)

// CategoryHandler exposes issue category administration and lookup.
type CategoryHandler struct {
	categories repository.CategoryStore
	users      repository.UserStore
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories repository.CategoryStore, users repository.UserStore) *CategoryHandler {
	return &CategoryHandler{categories: categories, users: users}
}

// Index returns all categories with the user list the admin page needs for
// its owner dropdown.
func (h *CategoryHandler) Index(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "users": users})
}

// Lookup returns the bare category list for the issue submission form.
func (h *CategoryHandler) Lookup(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Create adds a category.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req models.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := &models.IssueCategory{Name: req.Name, UserID: req.UserID}
	if err := h.categories.Create(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// Update rewrites a category's name and owning user.
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}
	var req models.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category, err := h.categories.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	category.Name = req.Name
	category.UserID = req.UserID
	if err := h.categories.Update(c.Request.Context(), category); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// Delete removes a category. Existing issues keep their type string.
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
		return
	}
	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
