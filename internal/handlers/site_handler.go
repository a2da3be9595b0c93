package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/responses"
)

type SiteHandler struct {
	site config.SiteConfig
}

func NewSiteHandler(site config.SiteConfig) *SiteHandler {
	return &SiteHandler{site: site}
}

// GetSite handles GET /api/v1/site
func (h *SiteHandler) GetSite(c *gin.Context) {
	responses.Success(c, http.StatusOK, h.site, "Site configuration")
}
