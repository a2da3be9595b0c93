package services

import (
	"context"
	"fmt"
	"strings"

	"backend/internal/models"
	"backend/internal/repositories"
	"backend/internal/slug"
	"backend/internal/utils"
)

// CatalogStore is implemented by repositories.CatalogRepository.
type CatalogStore[T any] interface {
	List(ctx context.Context, scopes ...repositories.Scope) ([]T, error)
	Get(ctx context.Context, id int64) (*T, error)
	GetBySlug(ctx context.Context, slug string) (*T, error)
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	Delete(ctx context.Context, id int64) error
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// CatalogService validates and stores one catalog entity type. Entities
// implementing slug.Sluggable get a unique slug on first save.
type CatalogService[T any] struct {
	repo     CatalogStore[T]
	validate func(ctx context.Context, row *T) error
}

func NewCatalogService[T any](repo CatalogStore[T], validate func(ctx context.Context, row *T) error) *CatalogService[T] {
	if validate == nil {
		validate = func(context.Context, *T) error { return nil }
	}
	return &CatalogService[T]{repo: repo, validate: validate}
}

func (s *CatalogService[T]) List(ctx context.Context, scopes ...repositories.Scope) ([]T, error) {
	return s.repo.List(ctx, scopes...)
}

func (s *CatalogService[T]) Get(ctx context.Context, id int64) (*T, error) {
	return found[T](s.repo.Get(ctx, id))
}

func (s *CatalogService[T]) GetBySlug(ctx context.Context, key string) (*T, error) {
	return found[T](s.repo.GetBySlug(ctx, key))
}

func (s *CatalogService[T]) Create(ctx context.Context, row *T) error {
	if err := s.validate(ctx, row); err != nil {
		return err
	}
	if err := s.ensureSlug(ctx, row); err != nil {
		return err
	}
	return s.repo.Create(ctx, row)
}

func (s *CatalogService[T]) Update(ctx context.Context, row *T) error {
	if err := s.validate(ctx, row); err != nil {
		return err
	}
	if err := s.ensureSlug(ctx, row); err != nil {
		return err
	}
	return s.repo.Update(ctx, row)
}

func (s *CatalogService[T]) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *CatalogService[T]) ensureSlug(ctx context.Context, row *T) error {
	if sl, ok := any(row).(slug.Sluggable); ok {
		return slug.Ensure(ctx, s.repo, sl)
	}
	return nil
}

func found[T any](row *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}

func requireName(name *string, max int) error {
	*name = strings.TrimSpace(*name)
	if *name == "" {
		return invalid("name is required")
	}
	if len(*name) > max {
		return invalid("name must be at most %d characters", max)
	}
	return nil
}

func ValidateState(_ context.Context, s *models.State) error {
	if err := requireName(&s.Name, 100); err != nil {
		return err
	}
	s.Abbreviation = strings.ToUpper(strings.TrimSpace(s.Abbreviation))
	if len(s.Abbreviation) != 2 {
		return invalid("abbreviation must be two letters")
	}
	return nil
}

// CityValidator checks that the city's state exists.
func CityValidator(states CatalogStore[models.State]) func(context.Context, *models.City) error {
	return func(ctx context.Context, c *models.City) error {
		if err := requireName(&c.Name, 100); err != nil {
			return err
		}
		if c.StateID == 0 {
			return invalid("state_id is required")
		}
		state, err := states.Get(ctx, c.StateID)
		if err != nil {
			return err
		}
		if state == nil {
			return invalid("state %d does not exist", c.StateID)
		}
		c.State = nil
		return nil
	}
}

func ValidateDeveloper(_ context.Context, d *models.Developer) error {
	if err := requireName(&d.Name, 200); err != nil {
		return err
	}
	d.Email = strings.TrimSpace(d.Email)
	if err := validate.Struct(d); err != nil {
		return invalid("invalid email address")
	}
	return nil
}

func ValidateAmenity(_ context.Context, a *models.Amenity) error {
	if err := requireName(&a.Name, 100); err != nil {
		return err
	}
	if a.Category == "" {
		a.Category = models.AmenityCategoryOther
	}
	if !utils.Contains(models.AmenityCategories, a.Category) {
		return invalid("invalid category %q", a.Category)
	}
	return nil
}

func ValidateTestimonial(_ context.Context, t *models.Testimonial) error {
	if err := requireName(&t.Name, 100); err != nil {
		return err
	}
	if strings.TrimSpace(t.Testimonial) == "" {
		return invalid("testimonial is required")
	}
	if t.Source == "" {
		t.Source = models.TestimonialSourceGoogle
	}
	if !utils.Contains(models.TestimonialSources, t.Source) {
		return invalid("invalid source %q", t.Source)
	}
	return nil
}

func ValidateInquiry(_ context.Context, q *models.ProjectInquiry) error {
	if err := requireName(&q.Name, 100); err != nil {
		return err
	}
	q.Email = strings.TrimSpace(q.Email)
	if err := validate.Struct(q); err != nil {
		return invalid("invalid email address")
	}
	return nil
}
