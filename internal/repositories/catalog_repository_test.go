package repositories

import (
	"context"
	"fmt"
	"testing"

	"backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupCatalogDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.State{}, &models.City{}, &models.Developer{},
		&models.Amenity{}, &models.Testimonial{}, &models.ProjectInquiry{},
	))
	return db
}

func TestCatalogRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogDB(t)
	states := NewCatalogRepository[models.State](db, "name")
	cities := NewCatalogRepository[models.City](db, "name", "State")

	tx := &models.State{Name: "Texas", Abbreviation: "TX", Slug: "texas", IsActive: true}
	require.NoError(t, states.Create(ctx, tx))
	require.NotZero(t, tx.ID)

	austin := &models.City{Name: "Austin", Slug: "austin", StateID: tx.ID, IsActive: true}
	require.NoError(t, cities.Create(ctx, austin))

	got, err := cities.GetBySlug(ctx, "austin")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.State, "State is preloaded")
	assert.Equal(t, "Texas", got.State.Name)

	got.Description = "Capital"
	require.NoError(t, cities.Update(ctx, got))
	reloaded, err := cities.Get(ctx, austin.ID)
	require.NoError(t, err)
	assert.Equal(t, "Capital", reloaded.Description)

	require.NoError(t, cities.Delete(ctx, austin.ID))
	missing, err := cities.Get(ctx, austin.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCatalogRepositoryScopesAndOrder(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogDB(t)
	amenities := NewCatalogRepository[models.Amenity](db, "sort_order, name")

	for _, a := range []models.Amenity{
		{Name: "Pool", Category: models.AmenityCategoryRecreation, Order: 2, IsActive: true},
		{Name: "Gym", Category: models.AmenityCategoryFitness, Order: 1, IsActive: true},
		{Name: "Dock", Category: models.AmenityCategoryRecreation, Order: 2, IsActive: true},
	} {
		a := a
		require.NoError(t, amenities.Create(ctx, &a))
	}
	// gorm skips zero values on create when the column has a default, so
	// deactivate explicitly.
	require.NoError(t, db.Model(&models.Amenity{}).Where("name = ?", "Dock").Update("is_active", false).Error)

	all, err := amenities.List(ctx)
	require.NoError(t, err)
	names := make([]string, len(all))
	for i, a := range all {
		names[i] = a.Name
	}
	assert.Equal(t, []string{"Gym", "Dock", "Pool"}, names)

	active, err := amenities.List(ctx, ActiveOnly(), Where("category", models.AmenityCategoryRecreation))
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Pool", active[0].Name)

	limited, err := amenities.List(ctx, Limit(1))
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCatalogRepositorySlugTakenAndConflict(t *testing.T) {
	ctx := context.Background()
	db := setupCatalogDB(t)
	developers := NewCatalogRepository[models.Developer](db, "name")

	acme := &models.Developer{Name: "Acme Homes", Slug: "acme-homes", IsActive: true}
	require.NoError(t, developers.Create(ctx, acme))

	taken, err := developers.SlugTaken(ctx, "acme-homes", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = developers.SlugTaken(ctx, "acme-homes", acme.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own row does not count")

	dup := &models.Developer{Name: "Acme Homes", Slug: "acme-homes"}
	err = developers.Create(ctx, dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}
