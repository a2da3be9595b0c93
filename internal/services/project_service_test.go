package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
	"backend/internal/reconcile"
	"backend/internal/repositories/memstore"
	"backend/internal/storage"
)

func newProjectService(t *testing.T) (*ProjectService, models.City) {
	t.Helper()
	store := memstore.New()
	city := store.AddCity(models.City{Name: "Austin", Slug: "austin"})
	disk, err := storage.NewDisk(t.TempDir(), "/media")
	require.NoError(t, err)
	return NewProjectService(reconcile.New(store, disk), store, disk), city
}

func TestProjectServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, city := newProjectService(t)

	res, err := svc.Create(ctx, &reconcile.Request{
		Fields: map[string]any{"name": "Oak Ridge", "city_id": float64(city.ID), "is_featured": true, "is_active": true},
		RenderingsAdd: []reconcile.ChildPayload{
			{Fields: map[string]any{"title": "Front"}, File: &reconcile.Upload{Filename: "front.jpg", Data: []byte("img")}},
		},
	})
	require.NoError(t, err)
	slug := res.Project.Slug

	page, err := svc.List(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	cover := page.Results[0].CoverImageURL
	assert.True(t, strings.HasPrefix(cover, "/media/projects/"), cover)
	assert.Contains(t, cover, "/renderings/")

	featured, err := svc.Featured(ctx, 6)
	require.NoError(t, err)
	assert.Len(t, featured, 1)

	upd, err := svc.Update(ctx, slug, &reconcile.Request{Fields: map[string]any{"status": models.ProjectStatusSales}})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusSales, upd.Project.Status)

	require.NoError(t, svc.Delete(ctx, slug))
	_, err = svc.Get(ctx, slug)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, slug), ErrNotFound)
}

func TestProjectServiceClampsPageSize(t *testing.T) {
	var seen models.ProjectFilter
	svc := NewProjectService(nil, listerFunc(func(_ context.Context, f models.ProjectFilter) ([]models.ProjectSummary, int, error) {
		seen = f
		return nil, 0, nil
	}), nil)

	page, err := svc.List(context.Background(), models.ProjectFilter{Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, seen.Limit)
	assert.Equal(t, 0, seen.Offset)
	assert.NotNil(t, page.Results)

	_, err = svc.List(context.Background(), models.ProjectFilter{})
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, seen.Limit)
}

type listerFunc func(ctx context.Context, f models.ProjectFilter) ([]models.ProjectSummary, int, error)

func (f listerFunc) List(ctx context.Context, filter models.ProjectFilter) ([]models.ProjectSummary, int, error) {
	return f(ctx, filter)
}
