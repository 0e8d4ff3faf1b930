package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/talhabaigg/tsd3pl/internal/middleware"
	"github.com/talhabaigg/tsd3pl/internal/models"
	"github.com/talhabaigg/tsd3pl/internal/repository"
	"github.com/talhabaigg/tsd3pl/internal/service"
)

// IssueHandler exposes the issue flows over HTTP.
type IssueHandler struct {
	issues     *service.IssueService
	categories repository.CategoryStore
}

// NewIssueHandler creates a new issue handler.
func NewIssueHandler(issues *service.IssueService, categories repository.CategoryStore) *IssueHandler {
	return &IssueHandler{issues: issues, categories: categories}
}

// List returns the issues visible to the caller together with the category
// list the filter UI needs.
func (h *IssueHandler) List(c *gin.Context) {
	actor := middleware.CurrentUser(c)
	issues, err := h.issues.ListIssues(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	issueTypes, err := h.categories.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"issue_types": issueTypes,
	})
}

// Create files a new issue. Guest submissions are accepted when the caller
// is unauthenticated and supplies an email.
func (h *IssueHandler) Create(c *gin.Context) {
	var req models.IssueCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	actor := middleware.CurrentUser(c)
	issue, err := h.issues.CreateIssue(c.Request.Context(), &req, actor)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Issue created successfully"
	if actor == nil {
		message = "Issue submitted successfully as a guest."
	}
	c.JSON(http.StatusCreated, gin.H{"message": message, "issue": issue})
}

// Show returns one issue with its related users resolved.
func (h *IssueHandler) Show(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	issue, err := h.issues.GetIssue(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"issue": issue})
}

// Edit rewrites the descriptive fields of an existing issue.
func (h *IssueHandler) Edit(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	var req models.IssueEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issue, err := h.issues.EditIssue(c.Request.Context(), id, &req, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue updated successfully", "issue": issue})
}

// UpdateStatus applies a partial triage update. The presentation layer
// re-fetches on its own, so a bare 204 acknowledges success.
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	var req models.IssueUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.issues.UpdateIssue(c.Request.Context(), id, &req, middleware.CurrentUser(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleDowntime flips the downtime interval on the issue and returns the
// updated record in the action envelope the grid expects.
func (h *IssueHandler) ToggleDowntime(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	issue, message, err := h.issues.ToggleDowntime(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrDowntimeEnded) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Downtime already ended.",
			})
			return
		}
		respondError(c, err)
		return
	}
	if issue.DowntimePhase() == models.DowntimeEnded {
		log.Printf("Downtime stopped for issue ID: %d", issue.ID)
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
		"data":    issue,
	})
}

// Delete removes an issue. The admin gate sits on the route.
func (h *IssueHandler) Delete(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}
	if err := h.issues.DeleteIssue(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

func issueID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid issue id"})
		return 0, false
	}
	return id, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
