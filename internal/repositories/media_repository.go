package repositories

import (
	"context"

	"backend/internal/models"
)

// imageRepository backs the two image galleries, renderings and
// features_finishes, which share one row shape.
type imageRepository struct {
	db    DBTX
	table string
}

func (r *imageRepository) list(ctx context.Context, projectID int64) ([]models.Rendering, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, title, image, sort_order, created_at
		FROM `+r.table+` WHERE project_id = $1
		ORDER BY sort_order, id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []models.Rendering{}
	for rows.Next() {
		var img models.Rendering
		if err := rows.Scan(&img.ID, &img.ProjectID, &img.Title, &img.Image, &img.Order, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (r *imageRepository) create(ctx context.Context, img *models.Rendering) error {
	img.Prepare()
	err := r.db.QueryRow(ctx, `
		INSERT INTO `+r.table+` (project_id, title, image, sort_order, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, img.ProjectID, img.Title, img.Image, img.Order, img.CreatedAt).Scan(&img.ID)
	return wrapWriteErr(err)
}

func (r *imageRepository) update(ctx context.Context, img *models.Rendering) error {
	_, err := r.db.Exec(ctx, `
		UPDATE `+r.table+` SET title = $2, image = $3, sort_order = $4 WHERE id = $1
	`, img.ID, img.Title, img.Image, img.Order)
	return wrapWriteErr(err)
}

func (r *imageRepository) delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM `+r.table+` WHERE id = $1`, id)
	return err
}

type RenderingRepository struct {
	images imageRepository
}

func NewRenderingRepository(db DBTX) *RenderingRepository {
	return &RenderingRepository{images: imageRepository{db: db, table: "renderings"}}
}

func (r *RenderingRepository) ListByProject(ctx context.Context, projectID int64) ([]models.Rendering, error) {
	return r.images.list(ctx, projectID)
}

func (r *RenderingRepository) Create(ctx context.Context, row *models.Rendering) error {
	return r.images.create(ctx, row)
}

func (r *RenderingRepository) Update(ctx context.Context, row *models.Rendering) error {
	return r.images.update(ctx, row)
}

func (r *RenderingRepository) Delete(ctx context.Context, id int64) error {
	return r.images.delete(ctx, id)
}

type FeatureFinishRepository struct {
	images imageRepository
}

func NewFeatureFinishRepository(db DBTX) *FeatureFinishRepository {
	return &FeatureFinishRepository{images: imageRepository{db: db, table: "feature_finishes"}}
}

func (r *FeatureFinishRepository) ListByProject(ctx context.Context, projectID int64) ([]models.FeatureFinish, error) {
	images, err := r.images.list(ctx, projectID)
	if err != nil {
		return nil, err
	}
	out := make([]models.FeatureFinish, len(images))
	for i, img := range images {
		out[i] = models.FeatureFinish(img)
	}
	return out, nil
}

func (r *FeatureFinishRepository) Create(ctx context.Context, row *models.FeatureFinish) error {
	img := models.Rendering(*row)
	if err := r.images.create(ctx, &img); err != nil {
		return err
	}
	*row = models.FeatureFinish(img)
	return nil
}

func (r *FeatureFinishRepository) Update(ctx context.Context, row *models.FeatureFinish) error {
	img := models.Rendering(*row)
	return r.images.update(ctx, &img)
}

func (r *FeatureFinishRepository) Delete(ctx context.Context, id int64) error {
	return r.images.delete(ctx, id)
}

type DocumentRepository struct {
	db DBTX
}

func NewDocumentRepository(db DBTX) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) ListByProject(ctx context.Context, projectID int64) ([]models.Document, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, project_id, title, document_type, document, created_at, updated_at
		FROM documents WHERE project_id = $1
		ORDER BY id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Title, &d.DocumentType, &d.File, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) Create(ctx context.Context, d *models.Document) error {
	d.Prepare()
	err := r.db.QueryRow(ctx, `
		INSERT INTO documents (project_id, title, document_type, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, d.ProjectID, d.Title, d.DocumentType, d.File, d.CreatedAt, d.UpdatedAt).Scan(&d.ID)
	return wrapWriteErr(err)
}

func (r *DocumentRepository) Update(ctx context.Context, d *models.Document) error {
	d.Prepare()
	_, err := r.db.Exec(ctx, `
		UPDATE documents SET title = $2, document_type = $3, document = $4, updated_at = $5
		WHERE id = $1
	`, d.ID, d.Title, d.DocumentType, d.File, d.UpdatedAt)
	return wrapWriteErr(err)
}

func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return err
}
