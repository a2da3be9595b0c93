package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"backend/internal/repositories"
	"backend/internal/responses"
	"backend/internal/services"
	"backend/internal/utils"
)

// CatalogHandler serves CRUD for one catalog entity. Rows are addressed by
// slug when the entity has one, by numeric id otherwise.
type CatalogHandler[T any] struct {
	service   *services.CatalogService[T]
	name      string
	bySlug    bool
	hasActive bool
	filters   map[string]string
	id        func(*T) *int64
}

type CatalogOption[T any] func(*CatalogHandler[T])

// WithSlugKey addresses rows by the :slug path parameter.
func WithSlugKey[T any]() CatalogOption[T] {
	return func(h *CatalogHandler[T]) { h.bySlug = true }
}

// WithActiveFlag hides inactive rows from listings unless ?active=false.
func WithActiveFlag[T any]() CatalogOption[T] {
	return func(h *CatalogHandler[T]) { h.hasActive = true }
}

// WithFilter maps a query parameter onto an equality filter on column.
func WithFilter[T any](param, column string) CatalogOption[T] {
	return func(h *CatalogHandler[T]) { h.filters[param] = column }
}

func NewCatalogHandler[T any](service *services.CatalogService[T], name string, id func(*T) *int64, opts ...CatalogOption[T]) *CatalogHandler[T] {
	h := &CatalogHandler[T]{service: service, name: name, id: id, filters: map[string]string{}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *CatalogHandler[T]) load(c *gin.Context) (*T, error) {
	if h.bySlug {
		return h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	}
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		return nil, fmt.Errorf("%w: invalid id %q", services.ErrInvalidRequest, c.Param("id"))
	}
	return h.service.Get(c.Request.Context(), id)
}

func (h *CatalogHandler[T]) List(c *gin.Context) {
	var scopes []repositories.Scope
	if h.hasActive {
		active := true
		if v := c.Query("active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				responses.Fail(c, http.StatusBadRequest, err, "Invalid active flag")
				return
			}
			active = b
		}
		if active {
			scopes = append(scopes, repositories.ActiveOnly())
		}
	}
	for param, column := range h.filters {
		if v := c.Query(param); v != "" {
			scopes = append(scopes, repositories.Where(column, v))
		}
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid limit")
			return
		}
		scopes = append(scopes, repositories.Limit(n))
	}

	rows, err := h.service.List(c.Request.Context(), scopes...)
	if err != nil {
		fail(c, err, "Failed to list "+h.name+"s")
		return
	}
	responses.Success(c, http.StatusOK, rows, "List of "+h.name+"s")
}

func (h *CatalogHandler[T]) Get(c *gin.Context) {
	row, err := h.load(c)
	if err != nil {
		fail(c, err, "Failed to retrieve "+h.name)
		return
	}
	responses.Success(c, http.StatusOK, row, "Retrieved "+h.name)
}

func (h *CatalogHandler[T]) Create(c *gin.Context) {
	var row T
	if err := c.ShouldBindJSON(&row); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	*h.id(&row) = 0

	if err := h.service.Create(c.Request.Context(), &row); err != nil {
		fail(c, err, "Failed to create "+h.name)
		return
	}
	responses.Success(c, http.StatusCreated, row, "Created "+h.name)
}

// Update applies the submitted fields on top of the stored row; fields not
// in the body keep their values.
func (h *CatalogHandler[T]) Update(c *gin.Context) {
	row, err := h.load(c)
	if err != nil {
		fail(c, err, "Failed to retrieve "+h.name)
		return
	}
	id := *h.id(row)

	if err := json.NewDecoder(c.Request.Body).Decode(row); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	*h.id(row) = id

	if err := h.service.Update(c.Request.Context(), row); err != nil {
		fail(c, err, "Failed to update "+h.name)
		return
	}
	responses.Success(c, http.StatusOK, row, "Updated "+h.name)
}

func (h *CatalogHandler[T]) Delete(c *gin.Context) {
	row, err := h.load(c)
	if err != nil {
		fail(c, err, "Failed to retrieve "+h.name)
		return
	}
	if err := h.service.Delete(c.Request.Context(), *h.id(row)); err != nil {
		fail(c, err, "Failed to delete "+h.name)
		return
	}
	responses.Success(c, http.StatusOK, nil, "Deleted "+h.name)
}
