package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
	"backend/internal/reconcile"
	"backend/internal/responses"
	"backend/internal/services"
	"backend/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	maxUpload      int64
}

func NewProjectHandler(projectService *services.ProjectService, maxUpload int64) *ProjectHandler {
	return &ProjectHandler{projectService: projectService, maxUpload: maxUpload}
}

// projectWriteResponse is the body of create and update responses.
type projectWriteResponse struct {
	*models.ProjectAggregate
	Warnings []reconcile.ReferenceWarning `json:"warnings,omitempty"`
}

func writeResponse(res *reconcile.Result) projectWriteResponse {
	return projectWriteResponse{ProjectAggregate: res.Project, Warnings: res.Warnings}
}

// ListProjects handles GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	filter, err := projectFilterFromQuery(c)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query parameters")
		return
	}

	page, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err, "Failed to list projects")
		return
	}
	responses.Success(c, http.StatusOK, page, "Projects retrieved successfully")
}

// FeaturedProjects handles GET /api/v1/projects/featured
func (h *ProjectHandler) FeaturedProjects(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "6"))
	if err != nil || limit <= 0 {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid limit")
		return
	}

	projects, err := h.projectService.Featured(c.Request.Context(), limit)
	if err != nil {
		fail(c, err, "Failed to list featured projects")
		return
	}
	responses.Success(c, http.StatusOK, projects, "Featured projects retrieved successfully")
}

// GetProject handles GET /api/v1/projects/:slug
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err, "Failed to retrieve project")
		return
	}
	responses.Success(c, http.StatusOK, project, "Project retrieved successfully")
}

// CreateProject handles POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	req, err := bindProjectRequest(c, h.maxUpload)
	if err != nil {
		fail(c, err, "Invalid request body")
		return
	}

	res, err := h.projectService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to create project")
		return
	}
	responses.Success(c, http.StatusCreated, writeResponse(res), "Project created successfully")
}

// UpdateProject handles PUT and PATCH /api/v1/projects/:slug. Omitted
// collections are left untouched in both cases.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	req, err := bindProjectRequest(c, h.maxUpload)
	if err != nil {
		fail(c, err, "Invalid request body")
		return
	}

	res, err := h.projectService.Update(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		fail(c, err, "Failed to update project")
		return
	}
	responses.Success(c, http.StatusOK, writeResponse(res), "Project updated successfully")
}

// DeleteProject handles DELETE /api/v1/projects/:slug
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	if err := h.projectService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		fail(c, err, "Failed to delete project")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Project deleted successfully")
}

// ProjectChildren lists one collection of the project, e.g.
// GET /api/v1/projects/:slug/floor-plans.
func (h *ProjectHandler) ProjectChildren(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, err := h.projectService.Get(c.Request.Context(), c.Param("slug"))
		if err != nil {
			fail(c, err, "Failed to retrieve project")
			return
		}

		var data any
		switch collection {
		case "floor-plans":
			data = project.FloorPlans
		case "lots":
			data = project.Lots
		case "renderings":
			data = project.Renderings
		case "documents":
			data = project.Documents
		case "contacts":
			data = project.Contacts
		case "feature-finishes":
			data = project.FeatureFinishes
		case "amenities":
			data = project.Amenities
		case "site-plan":
			data = project.SitePlan
		default:
			responses.Fail(c, http.StatusNotFound, nil, "Unknown collection")
			return
		}
		responses.Success(c, http.StatusOK, data, "Project "+strings.ReplaceAll(collection, "-", " ")+" retrieved successfully")
	}
}

// projectFilterFromQuery reads the public listing filters. Only active
// projects are listed.
func projectFilterFromQuery(c *gin.Context) (models.ProjectFilter, error) {
	f := models.ProjectFilter{
		ProjectType: c.Query("project_type"),
		Status:      c.Query("status"),
		Search:      c.Query("search"),
		Ordering:    c.Query("ordering"),
		ActiveOnly:  true,
	}

	if city := c.Query("city"); city != "" {
		if id, ok := utils.ParseID(city); ok {
			f.CityID = &id
		} else {
			f.CitySlug = city
		}
	}
	if v := c.Query("is_featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.IsFeatured = &b
	}
	for key, dst := range map[string]**float64{"price_min": &f.PriceMin, "price_max": &f.PriceMax} {
		if v := c.Query(key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return f, err
			}
			*dst = &n
		}
	}
	for key, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		if v := c.Query(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return f, strconv.ErrSyntax
			}
			*dst = n
		}
	}
	return f, nil
}

// CityProjects handles GET /api/v1/cities/:slug/projects
func (h *ProjectHandler) CityProjects(c *gin.Context) {
	filter, err := projectFilterFromQuery(c)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid query parameters")
		return
	}
	filter.CityID = nil
	filter.CitySlug = c.Param("slug")

	page, err := h.projectService.List(c.Request.Context(), filter)
	if err != nil {
		fail(c, err, "Failed to list projects")
		return
	}
	responses.Success(c, http.StatusOK, page, "Projects retrieved successfully")
}
