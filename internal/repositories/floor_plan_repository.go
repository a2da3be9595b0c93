package repositories

import (
	"context"
	"time"

	"backend/internal/models"
)

type FloorPlanRepository struct {
	db DBTX
}

func NewFloorPlanRepository(db DBTX) *FloorPlanRepository {
	return &FloorPlanRepository{db: db}
}

func (r *FloorPlanRepository) ListByProject(ctx context.Context, projectID int64) ([]models.FloorPlan, error) {
	query := `
		SELECT id, project_id, name, house_type, availability_status, square_footage,
			bedrooms, bathrooms, garage_spaces, price, plan_file, created_at, updated_at
		FROM floor_plans WHERE project_id = $1
		ORDER BY id
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []models.FloorPlan{}
	for rows.Next() {
		var fp models.FloorPlan
		if err := rows.Scan(
			&fp.ID, &fp.ProjectID, &fp.Name, &fp.HouseType, &fp.AvailabilityStatus, &fp.SquareFootage,
			&fp.Bedrooms, &fp.Bathrooms, &fp.GarageSpaces, &fp.Price, &fp.PlanFile, &fp.CreatedAt, &fp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		plans = append(plans, fp)
	}
	return plans, rows.Err()
}

func (r *FloorPlanRepository) Create(ctx context.Context, fp *models.FloorPlan) error {
	fp.Prepare()

	query := `
		INSERT INTO floor_plans (project_id, name, house_type, availability_status, square_footage,
			bedrooms, bathrooms, garage_spaces, price, plan_file, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		fp.ProjectID, fp.Name, fp.HouseType, fp.AvailabilityStatus, fp.SquareFootage,
		fp.Bedrooms, fp.Bathrooms, fp.GarageSpaces, fp.Price, fp.PlanFile, fp.CreatedAt, fp.UpdatedAt,
	).Scan(&fp.ID)
	return wrapWriteErr(err)
}

func (r *FloorPlanRepository) Update(ctx context.Context, fp *models.FloorPlan) error {
	fp.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE floor_plans SET name = $2, house_type = $3, availability_status = $4,
			square_footage = $5, bedrooms = $6, bathrooms = $7, garage_spaces = $8,
			price = $9, plan_file = $10, updated_at = $11
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query,
		fp.ID, fp.Name, fp.HouseType, fp.AvailabilityStatus,
		fp.SquareFootage, fp.Bedrooms, fp.Bathrooms, fp.GarageSpaces,
		fp.Price, fp.PlanFile, fp.UpdatedAt,
	)
	return wrapWriteErr(err)
}

func (r *FloorPlanRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM floor_plans WHERE id = $1`, id)
	return err
}
