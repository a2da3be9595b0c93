package routes

import (
	"github.com/gin-gonic/gin"
)

// InquiryRoutes accepts inquiries from anyone; reading them needs a login.
type InquiryRoutes struct {
	handler CatalogEndpoints
	auth    gin.HandlerFunc
}

func NewInquiryRoutes(handler CatalogEndpoints, auth gin.HandlerFunc) *InquiryRoutes {
	return &InquiryRoutes{handler: handler, auth: auth}
}

func (r *InquiryRoutes) RegisterRoutes(router *gin.RouterGroup) {
	inquiries := router.Group("/inquiries")
	{
		inquiries.POST("", r.handler.Create)
		inquiries.GET("", r.auth, r.handler.List)
		inquiries.GET("/:id", r.auth, r.handler.Get)
	}
}
