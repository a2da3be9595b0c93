package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Scope narrows a catalog query.
type Scope func(*gorm.DB) *gorm.DB

func ActiveOnly() Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where("is_active = ?", true) }
}

func Where(column string, value any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(column+" = ?", value) }
}

func Limit(n int) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if n <= 0 {
			return db
		}
		return db.Limit(n)
	}
}

// CatalogRepository stores the reference tables edited from the admin side
// (states, cities, developers, amenities, testimonials, inquiries).
type CatalogRepository[T any] struct {
	db      *gorm.DB
	order   string
	preload []string
}

func NewCatalogRepository[T any](db *gorm.DB, order string, preload ...string) *CatalogRepository[T] {
	return &CatalogRepository[T]{db: db, order: order, preload: preload}
}

func (r *CatalogRepository[T]) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	for _, assoc := range r.preload {
		q = q.Preload(assoc)
	}
	return q
}

func (r *CatalogRepository[T]) List(ctx context.Context, scopes ...Scope) ([]T, error) {
	q := r.query(ctx)
	for _, s := range scopes {
		q = s(q)
	}
	if r.order != "" {
		q = q.Order(r.order)
	}

	rows := []T{}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *CatalogRepository[T]) first(ctx context.Context, scopes ...Scope) (*T, error) {
	q := r.query(ctx)
	for _, s := range scopes {
		q = s(q)
	}

	var row T
	if err := q.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *CatalogRepository[T]) Get(ctx context.Context, id int64) (*T, error) {
	return r.first(ctx, Where("id", id))
}

func (r *CatalogRepository[T]) GetBySlug(ctx context.Context, slug string) (*T, error) {
	return r.first(ctx, Where("slug", slug))
}

func (r *CatalogRepository[T]) Create(ctx context.Context, row *T) error {
	return catalogWriteErr(r.db.WithContext(ctx).Create(row).Error)
}

func (r *CatalogRepository[T]) Update(ctx context.Context, row *T) error {
	return catalogWriteErr(r.db.WithContext(ctx).Save(row).Error)
}

func (r *CatalogRepository[T]) Delete(ctx context.Context, id int64) error {
	var row T
	return r.db.WithContext(ctx).Delete(&row, id).Error
}

func (r *CatalogRepository[T]) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var row T
	var count int64
	err := r.db.WithContext(ctx).Model(&row).
		Where("slug = ? AND id <> ?", slug, excludeID).
		Count(&count).Error
	return count > 0, err
}

func catalogWriteErr(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return wrapWriteErr(err)
}
