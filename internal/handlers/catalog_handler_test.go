package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"backend/internal/models"
	"backend/internal/repositories"
	"backend/internal/services"
)

func setupCatalogRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.State{}, &models.Amenity{}))

	states := NewCatalogHandler(
		services.NewCatalogService[models.State](repositories.NewCatalogRepository[models.State](db, "name"), services.ValidateState),
		"state", func(s *models.State) *int64 { return &s.ID },
		WithSlugKey[models.State](), WithActiveFlag[models.State](),
	)
	amenities := NewCatalogHandler(
		services.NewCatalogService[models.Amenity](repositories.NewCatalogRepository[models.Amenity](db, "sort_order, name"), services.ValidateAmenity),
		"amenity", func(a *models.Amenity) *int64 { return &a.ID },
		WithActiveFlag[models.Amenity](), WithFilter[models.Amenity]("category", "category"),
	)

	r := gin.New()
	r.GET("/states", states.List)
	r.POST("/states", states.Create)
	r.GET("/states/:slug", states.Get)
	r.PATCH("/states/:slug", states.Update)
	r.DELETE("/states/:slug", states.Delete)
	r.GET("/amenities", amenities.List)
	r.POST("/amenities", amenities.Create)
	r.GET("/amenities/:id", amenities.Get)
	return r
}

func TestCatalogHandlerBySlug(t *testing.T) {
	r := setupCatalogRouter(t)

	w, env := doJSON(t, r, http.MethodPost, "/states", map[string]any{"id": 42, "name": "Texas", "abbreviation": "tx", "is_active": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var state models.State
	decode(t, env, &state)
	assert.Equal(t, "texas", state.Slug)
	assert.Equal(t, "TX", state.Abbreviation)
	assert.NotEqualValues(t, 42, state.ID, "client ids are ignored")

	w, env = doJSON(t, r, http.MethodPatch, "/states/texas", map[string]any{"description": "Lone Star"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, env, &state)
	assert.Equal(t, "Texas", state.Name)
	assert.Equal(t, "Lone Star", state.Description)

	w, _ = doJSON(t, r, http.MethodPost, "/states", map[string]any{"name": "Ohio", "abbreviation": "OHIO"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, r, http.MethodGet, "/states", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.State
	decode(t, env, &list)
	assert.Len(t, list, 1)

	w, _ = doJSON(t, r, http.MethodDelete, "/states/texas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/states/texas", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatalogHandlerByIDWithFilters(t *testing.T) {
	r := setupCatalogRouter(t)

	for _, a := range []map[string]any{
		{"name": "Spa", "category": models.AmenityCategoryLifestyle, "order": 2},
		{"name": "Gym", "category": models.AmenityCategoryFitness, "order": 1},
	} {
		w, _ := doJSON(t, r, http.MethodPost, "/amenities", a)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, _ := doJSON(t, r, http.MethodPost, "/amenities", map[string]any{"name": "Spa"})
	assert.Equal(t, http.StatusConflict, w.Code, "names are unique")

	w, _ = doJSON(t, r, http.MethodPost, "/amenities", map[string]any{"name": "Moat", "category": "Defense"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env := doJSON(t, r, http.MethodGet, "/amenities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Amenity
	decode(t, env, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Gym", list[0].Name)

	w, env = doJSON(t, r, http.MethodGet, "/amenities?category="+models.AmenityCategoryLifestyle, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Spa", list[0].Name)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/amenities/%d", list[0].ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/amenities/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/amenities/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
