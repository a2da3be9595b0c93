package repositories

import (
	"context"

	"backend/internal/models"
)

type ContactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) ListByProject(ctx context.Context, projectID int64) ([]models.Contact, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, name, email, phone, sort_order
		FROM contacts WHERE project_id = $1
		ORDER BY sort_order, id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name, &c.Email, &c.Phone, &c.Order); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) Create(ctx context.Context, c *models.Contact) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO contacts (project_id, name, email, phone, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.ProjectID, c.Name, c.Email, c.Phone, c.Order).Scan(&c.ID)
	return wrapWriteErr(err)
}

func (r *ContactRepository) Update(ctx context.Context, c *models.Contact) error {
	_, err := r.db.Exec(ctx, `
		UPDATE contacts SET name = $2, email = $3, phone = $4, sort_order = $5 WHERE id = $1
	`, c.ID, c.Name, c.Email, c.Phone, c.Order)
	return wrapWriteErr(err)
}

func (r *ContactRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	return err
}

type SitePlanRepository struct {
	db DBTX
}

func NewSitePlanRepository(db DBTX) *SitePlanRepository {
	return &SitePlanRepository{db: db}
}

func (r *SitePlanRepository) GetByProject(ctx context.Context, projectID int64) (*models.SitePlan, error) {
	var sp models.SitePlan
	err := r.db.QueryRow(ctx, `
		SELECT id, project_id, title, file, updated_at FROM site_plans WHERE project_id = $1
	`, projectID).Scan(&sp.ID, &sp.ProjectID, &sp.Title, &sp.File, &sp.UpdatedAt)
	if err != nil {
		if noRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &sp, nil
}

// Save inserts the site plan, or replaces the existing one of its project.
func (r *SitePlanRepository) Save(ctx context.Context, sp *models.SitePlan) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO site_plans (project_id, title, file, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (project_id) DO UPDATE
			SET title = EXCLUDED.title, file = EXCLUDED.file, updated_at = EXCLUDED.updated_at
		RETURNING id, updated_at
	`, sp.ProjectID, sp.Title, sp.File).Scan(&sp.ID, &sp.UpdatedAt)
	return wrapWriteErr(err)
}

func (r *SitePlanRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM site_plans WHERE id = $1`, id)
	return err
}
