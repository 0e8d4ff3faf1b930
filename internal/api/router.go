package api

import (
	"github.com/gin-gonic/gin"

	"github.com/talhabaigg/tsd3pl/internal/middleware"
	"github.com/talhabaigg/tsd3pl/internal/repository"
	"github.com/talhabaigg/tsd3pl/internal/service"
)

// NewRouter builds the gin engine with all issue and category routes.
func NewRouter(
	issues *service.IssueService,
	categories repository.CategoryStore,
	users repository.UserStore,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Identity(users))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	issueHandler := NewIssueHandler(issues, categories)
	categoryHandler := NewCategoryHandler(categories, users)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/issues", issueHandler.List)
		apiGroup.POST("/issues", issueHandler.Create)
		apiGroup.GET("/issues/:id", issueHandler.Show)
		apiGroup.PUT("/issues/:id", middleware.RequireUser(), issueHandler.Edit)
		apiGroup.PATCH("/issues/:id/status", middleware.RequireUser(), issueHandler.UpdateStatus)
		apiGroup.POST("/issues/:id/downtime", issueHandler.ToggleDowntime)
		apiGroup.DELETE("/issues/:id", middleware.RequireAdmin(), issueHandler.Delete)

		apiGroup.GET("/categories", categoryHandler.Index)
		apiGroup.GET("/categories/lookup", categoryHandler.Lookup)
		apiGroup.POST("/categories", middleware.RequireAdmin(), categoryHandler.Create)
		apiGroup.PUT("/categories/:id", middleware.RequireAdmin(), categoryHandler.Update)
		apiGroup.DELETE("/categories/:id", middleware.RequireAdmin(), categoryHandler.Delete)
	}

	return r
}
