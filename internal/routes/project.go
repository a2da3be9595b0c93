package routes

import (
	"github.com/gin-gonic/gin"

	"backend/internal/handlers"
)

type ProjectRoutes struct {
	handler *handlers.ProjectHandler
	write   []gin.HandlerFunc
}

// NewProjectRoutes takes the middleware chain guarding writes.
func NewProjectRoutes(handler *handlers.ProjectHandler, write ...gin.HandlerFunc) *ProjectRoutes {
	return &ProjectRoutes{handler: handler, write: write}
}

func (r *ProjectRoutes) guarded(h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, r.write...), h)
}

func (r *ProjectRoutes) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	{
		projects.GET("", r.handler.ListProjects)
		projects.GET("/featured", r.handler.FeaturedProjects)
		projects.GET("/:slug", r.handler.GetProject)
		for _, collection := range []string{
			"floor-plans", "lots", "renderings", "documents",
			"contacts", "feature-finishes", "amenities", "site-plan",
		} {
			projects.GET("/:slug/"+collection, r.handler.ProjectChildren(collection))
		}

		projects.POST("", r.guarded(r.handler.CreateProject)...)
		projects.PUT("/:slug", r.guarded(r.handler.UpdateProject)...)
		projects.PATCH("/:slug", r.guarded(r.handler.UpdateProject)...)
		projects.DELETE("/:slug", r.guarded(r.handler.DeleteProject)...)
	}
}
