package services

import (
	"context"
	"errors"
	"fmt"

	"backend/internal/models"
	"backend/internal/reconcile"
)

// ProjectLister serves the read-only project listings.
type ProjectLister interface {
	List(ctx context.Context, f models.ProjectFilter) ([]models.ProjectSummary, int, error)
}

type ProjectService struct {
	reconciler *reconcile.Reconciler
	lister     ProjectLister
	files      reconcile.FileStore
}

func NewProjectService(reconciler *reconcile.Reconciler, lister ProjectLister, files reconcile.FileStore) *ProjectService {
	return &ProjectService{reconciler: reconciler, lister: lister, files: files}
}

type ProjectPage struct {
	Count   int                     `json:"count"`
	Results []models.ProjectSummary `json:"results"`
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

func (s *ProjectService) List(ctx context.Context, f models.ProjectFilter) (*ProjectPage, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	summaries, total, err := s.lister.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	if summaries == nil {
		summaries = []models.ProjectSummary{}
	}
	for i := range summaries {
		if summaries[i].CoverImageURL != "" {
			summaries[i].CoverImageURL = s.files.URL(summaries[i].CoverImageURL)
		}
	}
	return &ProjectPage{Count: total, Results: summaries}, nil
}

// Featured returns active featured projects, newest first.
func (s *ProjectService) Featured(ctx context.Context, limit int) ([]models.ProjectSummary, error) {
	featured := true
	page, err := s.List(ctx, models.ProjectFilter{IsFeatured: &featured, ActiveOnly: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (s *ProjectService) Get(ctx context.Context, slug string) (*models.ProjectAggregate, error) {
	agg, err := s.reconciler.LoadAggregateBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err)
	}
	return agg, nil
}

func (s *ProjectService) Create(ctx context.Context, req *reconcile.Request) (*reconcile.Result, error) {
	return s.reconciler.CreateAggregate(ctx, req)
}

func (s *ProjectService) Update(ctx context.Context, slug string, req *reconcile.Request) (*reconcile.Result, error) {
	current, err := s.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	res, err := s.reconciler.UpdateAggregate(ctx, current.ID, req)
	if err != nil {
		return nil, notFound(err)
	}
	return res, nil
}

func (s *ProjectService) Delete(ctx context.Context, slug string) error {
	current, err := s.Get(ctx, slug)
	if err != nil {
		return err
	}
	return notFound(s.reconciler.DeleteAggregate(ctx, current.ID))
}

func notFound(err error) error {
	if errors.Is(err, reconcile.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
