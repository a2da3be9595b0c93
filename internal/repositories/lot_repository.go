package repositories

import (
	"context"
	"time"

	"backend/internal/models"
)

type LotRepository struct {
	db DBTX
}

func NewLotRepository(db DBTX) *LotRepository {
	return &LotRepository{db: db}
}

// ListByProject returns lots in display order with their floor plan links.
func (r *LotRepository) ListByProject(ctx context.Context, projectID int64) ([]models.Lot, error) {
	query := `
		SELECT id, project_id, lot_number, lot_numbers, availability_status, lot_size,
			price, lot_rendering, sort_order, created_at, updated_at
		FROM lots WHERE project_id = $1
		ORDER BY sort_order, id
	`
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lots := []models.Lot{}
	index := map[int64]int{}
	for rows.Next() {
		var l models.Lot
		if err := rows.Scan(
			&l.ID, &l.ProjectID, &l.LotNumber, &l.LotNumbers, &l.AvailabilityStatus, &l.LotSize,
			&l.Price, &l.LotRendering, &l.Order, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		l.FloorPlanIDs = []int64{}
		index[l.ID] = len(lots)
		lots = append(lots, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lots) == 0 {
		return lots, nil
	}

	links, err := r.db.Query(ctx, `
		SELECT lfp.lot_id, lfp.floor_plan_id
		FROM lot_floor_plans lfp
		JOIN lots l ON l.id = lfp.lot_id
		WHERE l.project_id = $1
		ORDER BY lfp.lot_id, lfp.floor_plan_id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer links.Close()

	for links.Next() {
		var lotID, floorPlanID int64
		if err := links.Scan(&lotID, &floorPlanID); err != nil {
			return nil, err
		}
		if i, ok := index[lotID]; ok {
			lots[i].FloorPlanIDs = append(lots[i].FloorPlanIDs, floorPlanID)
		}
	}
	return lots, links.Err()
}

func (r *LotRepository) Create(ctx context.Context, l *models.Lot) error {
	l.Prepare()

	query := `
		INSERT INTO lots (project_id, lot_number, lot_numbers, availability_status, lot_size,
			price, lot_rendering, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		l.ProjectID, l.LotNumber, l.LotNumbers, l.AvailabilityStatus, l.LotSize,
		l.Price, l.LotRendering, l.Order, l.CreatedAt, l.UpdatedAt,
	).Scan(&l.ID)
	return wrapWriteErr(err)
}

func (r *LotRepository) Update(ctx context.Context, l *models.Lot) error {
	l.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE lots SET lot_number = $2, lot_numbers = $3, availability_status = $4,
			lot_size = $5, price = $6, lot_rendering = $7, sort_order = $8, updated_at = $9
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query,
		l.ID, l.LotNumber, l.LotNumbers, l.AvailabilityStatus,
		l.LotSize, l.Price, l.LotRendering, l.Order, l.UpdatedAt,
	)
	return wrapWriteErr(err)
}

func (r *LotRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM lots WHERE id = $1`, id)
	return err
}

// SetFloorPlans replaces the lot's links. Floor plans of other projects are
// skipped.
func (r *LotRepository) SetFloorPlans(ctx context.Context, lotID int64, floorPlanIDs []int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM lot_floor_plans WHERE lot_id = $1`, lotID); err != nil {
		return err
	}
	if len(floorPlanIDs) == 0 {
		return nil
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO lot_floor_plans (lot_id, floor_plan_id)
		SELECT l.id, fp.id
		FROM lots l
		JOIN floor_plans fp ON fp.project_id = l.project_id
		WHERE l.id = $1 AND fp.id = ANY($2)
		ON CONFLICT DO NOTHING
	`, lotID, floorPlanIDs)
	return err
}
