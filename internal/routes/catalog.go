package routes

import (
	"github.com/gin-gonic/gin"
)

// CatalogEndpoints is the handler set of one catalog resource.
type CatalogEndpoints interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

type CatalogRoutes struct {
	path    string
	param   string
	handler CatalogEndpoints
	write   []gin.HandlerFunc
}

// NewCatalogRoutes mounts handler at path; param is ":slug" or ":id".
func NewCatalogRoutes(path, param string, handler CatalogEndpoints, write ...gin.HandlerFunc) *CatalogRoutes {
	return &CatalogRoutes{path: path, param: param, handler: handler, write: write}
}

func (r *CatalogRoutes) guarded(h gin.HandlerFunc) []gin.HandlerFunc {
	return append(append([]gin.HandlerFunc{}, r.write...), h)
}

func (r *CatalogRoutes) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group(r.path)
	item := "/" + r.param
	{
		group.GET("", r.handler.List)
		group.GET(item, r.handler.Get)
		group.POST("", r.guarded(r.handler.Create)...)
		group.PUT(item, r.guarded(r.handler.Update)...)
		group.PATCH(item, r.guarded(r.handler.Update)...)
		group.DELETE(item, r.guarded(r.handler.Delete)...)
	}
}
