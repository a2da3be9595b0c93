package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"backend/internal/metrics"
	"backend/internal/models"
)

type ProjectRepository struct {
	db DBTX
}

func NewProjectRepository(db DBTX) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `p.id, p.name, COALESCE(p.slug, ''), p.project_type, p.status, p.project_address,
	p.price_starting_from, p.price_ending_at, p.project_description, p.project_video_url,
	p.area_square_footage, p.lot_size, p.garage_spaces, p.bedrooms, p.bathrooms,
	p.is_featured, p.is_active, p.city_id, p.developer_id, p.created_at, p.updated_at`

func projectDest(p *models.Project) []any {
	return []any{
		&p.ID, &p.Name, &p.Slug, &p.ProjectType, &p.Status, &p.ProjectAddress,
		&p.PriceStartingFrom, &p.PriceEndingAt, &p.Description, &p.VideoURL,
		&p.AreaSquareFootage, &p.LotSize, &p.GarageSpaces, &p.Bedrooms, &p.Bathrooms,
		&p.IsFeatured, &p.IsActive, &p.CityID, &p.DeveloperID, &p.CreatedAt, &p.UpdatedAt,
	}
}

func (r *ProjectRepository) getWhere(ctx context.Context, where string, arg any) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE ` + where

	var p models.Project
	if err := r.db.QueryRow(ctx, query, arg).Scan(projectDest(&p)...); err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id int64) (*models.Project, error) {
	return r.getWhere(ctx, "p.id = $1", id)
}

func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return r.getWhere(ctx, "p.slug = $1", slug)
}

func (r *ProjectRepository) Create(ctx context.Context, p *models.Project) error {
	p.Prepare()

	query := `
		INSERT INTO projects (name, slug, project_type, status, project_address,
			price_starting_from, price_ending_at, project_description, project_video_url,
			area_square_footage, lot_size, garage_spaces, bedrooms, bathrooms,
			is_featured, is_active, city_id, developer_id, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		p.Name, p.Slug, p.ProjectType, p.Status, p.ProjectAddress,
		p.PriceStartingFrom, p.PriceEndingAt, p.Description, p.VideoURL,
		p.AreaSquareFootage, p.LotSize, p.GarageSpaces, p.Bedrooms, p.Bathrooms,
		p.IsFeatured, p.IsActive, p.CityID, p.DeveloperID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	return wrapWriteErr(err)
}

func (r *ProjectRepository) Update(ctx context.Context, p *models.Project) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE projects SET name = $2, slug = NULLIF($3, ''), project_type = $4, status = $5,
			project_address = $6, price_starting_from = $7, price_ending_at = $8,
			project_description = $9, project_video_url = $10, area_square_footage = $11,
			lot_size = $12, garage_spaces = $13, bedrooms = $14, bathrooms = $15,
			is_featured = $16, is_active = $17, city_id = $18, developer_id = $19, updated_at = $20
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Slug, p.ProjectType, p.Status,
		p.ProjectAddress, p.PriceStartingFrom, p.PriceEndingAt,
		p.Description, p.VideoURL, p.AreaSquareFootage,
		p.LotSize, p.GarageSpaces, p.Bedrooms, p.Bathrooms,
		p.IsFeatured, p.IsActive, p.CityID, p.DeveloperID, p.UpdatedAt,
	)
	return wrapWriteErr(err)
}

// Delete relies on the ON DELETE CASCADE foreign keys of the child tables.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func (r *ProjectRepository) SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error) {
	var taken bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1 AND id <> $2)`,
		slug, excludeID,
	).Scan(&taken)
	return taken, err
}

var projectOrderings = map[string]string{
	"name":                 "p.name ASC, p.id ASC",
	"-name":                "p.name DESC, p.id DESC",
	"price_starting_from":  "p.price_starting_from ASC NULLS FIRST, p.id ASC",
	"-price_starting_from": "p.price_starting_from DESC NULLS LAST, p.id DESC",
	"created_at":           "p.created_at ASC, p.id ASC",
	"-created_at":          "p.created_at DESC, p.id DESC",
}

// List returns one page of project summaries matching f and the total
// number of matches.
func (r *ProjectRepository) List(ctx context.Context, f models.ProjectFilter) ([]models.ProjectSummary, int, error) {
	defer metrics.TrackDBOperation("project_list")(time.Now())

	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.ActiveOnly {
		where = append(where, "p.is_active")
	}
	if f.ProjectType != "" {
		add("p.project_type = $%d", f.ProjectType)
	}
	if f.Status != "" {
		add("p.status = $%d", f.Status)
	}
	if f.CityID != nil {
		add("p.city_id = $%d", *f.CityID)
	}
	if f.CitySlug != "" {
		add("c.slug = $%d", f.CitySlug)
	}
	if f.IsFeatured != nil {
		add("p.is_featured = $%d", *f.IsFeatured)
	}
	if f.PriceMin != nil {
		add("p.price_ending_at >= $%d", *f.PriceMin)
	}
	if f.PriceMax != nil {
		add("p.price_starting_from <= $%d", *f.PriceMax)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("(p.name || ' ' || p.project_address || ' ' || c.name) ILIKE '%%' || $%d || '%%'", s)
	}

	order, ok := projectOrderings[f.Ordering]
	if !ok {
		order = projectOrderings["-created_at"]
	}

	query := `
		SELECT ` + projectColumns + `, c.name, COALESCE(c.slug, ''),
			COALESCE((SELECT r.image FROM renderings r WHERE r.project_id = p.id
				ORDER BY r.sort_order, r.id LIMIT 1), ''),
			(SELECT COUNT(*) FROM floor_plans fp WHERE fp.project_id = p.id),
			(SELECT COUNT(*) FROM lots l WHERE l.project_id = p.id),
			COUNT(*) OVER()
		FROM projects p
		JOIN cities c ON c.id = p.city_id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tORDER BY " + order
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := []models.ProjectSummary{}
	total := 0
	for rows.Next() {
		var s models.ProjectSummary
		dest := append(projectDest(&s.Project),
			&s.CityName, &s.CitySlug, &s.CoverImageURL, &s.FloorPlanCount, &s.LotCount, &total)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// An offset past the last row returns no rows, and so no window count.
	if len(summaries) == 0 && f.Offset > 0 {
		countQuery := `SELECT COUNT(*) FROM projects p JOIN cities c ON c.id = p.city_id`
		countArgs := args
		if f.Limit > 0 {
			countArgs = countArgs[:len(countArgs)-1]
		}
		countArgs = countArgs[:len(countArgs)-1]
		if len(where) > 0 {
			countQuery += " WHERE " + strings.Join(where, " AND ")
		}
		if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, err
		}
	}
	return summaries, total, nil
}
