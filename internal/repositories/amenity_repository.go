package repositories

import (
	"context"

	"backend/internal/models"
)

// AmenityLinkRepository maintains the project_amenities join table.
type AmenityLinkRepository struct {
	db DBTX
}

func NewAmenityLinkRepository(db DBTX) *AmenityLinkRepository {
	return &AmenityLinkRepository{db: db}
}

func (r *AmenityLinkRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id FROM amenities WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var found []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

func (r *AmenityLinkRepository) ListForProject(ctx context.Context, projectID int64) ([]models.Amenity, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.name, a.category, a.icon, a.description, a.is_active, a.sort_order,
			a.created_at, a.updated_at
		FROM amenities a
		JOIN project_amenities pa ON pa.amenity_id = a.id
		WHERE pa.project_id = $1
		ORDER BY a.sort_order, a.name
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	amenities := []models.Amenity{}
	for rows.Next() {
		var a models.Amenity
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &a.Icon, &a.Description, &a.IsActive, &a.Order,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		amenities = append(amenities, a)
	}
	return amenities, rows.Err()
}

func (r *AmenityLinkRepository) SetProjectAmenities(ctx context.Context, projectID int64, ids []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM project_amenities WHERE project_id = $1`, projectID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO project_amenities (project_id, amenity_id)
		SELECT $1, a.id FROM amenities a WHERE a.id = ANY($2)
		ON CONFLICT DO NOTHING
	`, projectID, ids)
	return err
}

// ReferenceRepository looks up the catalog rows a project points at.
type ReferenceRepository struct {
	db DBTX
}

func NewReferenceRepository(db DBTX) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) City(ctx context.Context, id int64) (*models.City, error) {
	var c models.City
	err := r.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(slug, ''), state_id, description, is_active, created_at, updated_at
		FROM cities WHERE id = $1
	`, id).Scan(&c.ID, &c.Name, &c.Slug, &c.StateID, &c.Description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *ReferenceRepository) Developer(ctx context.Context, id int64) (*models.Developer, error) {
	var d models.Developer
	err := r.db.QueryRow(ctx, `
		SELECT id, name, COALESCE(slug, ''), email, phone, website, details, is_active, created_at, updated_at
		FROM developers WHERE id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Slug, &d.Email, &d.Phone, &d.Website, &d.Details, &d.IsActive,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}
