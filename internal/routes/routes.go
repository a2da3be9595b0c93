package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/handlers"
	"backend/internal/middlewares"
	"backend/internal/models"
)

// Handlers is everything the API mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Project      *handlers.ProjectHandler
	Site         *handlers.SiteHandler
	States       CatalogEndpoints
	Cities       CatalogEndpoints
	Developers   CatalogEndpoints
	Amenities    CatalogEndpoints
	Testimonials CatalogEndpoints
	Inquiries    CatalogEndpoints
}

// RegisterRoutes mounts the API under /api/v1. auth is the Bearer token
// middleware.
func RegisterRoutes(router *gin.Engine, h Handlers, auth gin.HandlerFunc) {
	api := router.Group("/api/v1")

	projectWriters := middlewares.RequireUserType(models.UserTypeAdmin, models.UserTypeBuilder)
	admins := middlewares.RequireUserType(models.UserTypeAdmin)

	NewAuthRoutes(h.Auth, h.User, auth).RegisterRoutes(api)
	NewUserRoutes(h.User, auth, admins).RegisterRoutes(api)
	NewProjectRoutes(h.Project, auth, projectWriters).RegisterRoutes(api)

	NewCatalogRoutes("/states", ":slug", h.States, auth, admins).RegisterRoutes(api)
	NewCatalogRoutes("/cities", ":slug", h.Cities, auth, admins).RegisterRoutes(api)
	api.GET("/cities/:slug/projects", h.Project.CityProjects)
	NewCatalogRoutes("/developers", ":slug", h.Developers, auth, admins).RegisterRoutes(api)
	NewCatalogRoutes("/amenities", ":id", h.Amenities, auth, admins).RegisterRoutes(api)
	NewCatalogRoutes("/testimonials", ":id", h.Testimonials, auth, admins).RegisterRoutes(api)
	NewInquiryRoutes(h.Inquiries, auth).RegisterRoutes(api)

	api.GET("/site", h.Site.GetSite)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
