package reconcile

import (
	"context"

	"backend/internal/models"
)

// Store runs fn inside one atomic transaction. If fn returns an error
// nothing it wrote is kept.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the repositories bound to a transaction.
type Tx interface {
	Projects() ProjectRepo
	FloorPlans() ChildRepo[models.FloorPlan]
	Lots() LotRepo
	Renderings() ChildRepo[models.Rendering]
	Documents() ChildRepo[models.Document]
	FeatureFinishes() ChildRepo[models.FeatureFinish]
	Contacts() ChildRepo[models.Contact]
	SitePlans() SitePlanRepo
	Amenities() AmenityLinker
	References() References
}

type ProjectRepo interface {
	Get(ctx context.Context, id int64) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	Create(ctx context.Context, p *models.Project) error
	Update(ctx context.Context, p *models.Project) error
	// Delete removes the project with every row it owns and its amenity links.
	Delete(ctx context.Context, id int64) error
	SlugTaken(ctx context.Context, slug string, excludeID int64) (bool, error)
}

// ChildRepo persists one owned collection. ListByProject returns rows in
// display order.
type ChildRepo[T any] interface {
	ListByProject(ctx context.Context, projectID int64) ([]T, error)
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	Delete(ctx context.Context, id int64) error
}

// LotRepo fills Lot.FloorPlanIDs on ListByProject.
type LotRepo interface {
	ChildRepo[models.Lot]
	SetFloorPlans(ctx context.Context, lotID int64, floorPlanIDs []int64) error
}

type SitePlanRepo interface {
	GetByProject(ctx context.Context, projectID int64) (*models.SitePlan, error)
	Save(ctx context.Context, sp *models.SitePlan) error
	Delete(ctx context.Context, id int64) error
}

type AmenityLinker interface {
	// ExistingIDs returns the subset of ids that name amenity rows.
	ExistingIDs(ctx context.Context, ids []int64) ([]int64, error)
	ListForProject(ctx context.Context, projectID int64) ([]models.Amenity, error)
	SetProjectAmenities(ctx context.Context, projectID int64, ids []int64) error
}

// References resolves the catalog rows a project points at. Missing rows
// are returned as nil without error.
type References interface {
	City(ctx context.Context, id int64) (*models.City, error)
	Developer(ctx context.Context, id int64) (*models.Developer, error)
}

// FileStore keeps uploaded files. Save returns the stored name recorded on
// the row.
type FileStore interface {
	Save(ctx context.Context, dir string, upload *Upload) (string, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}
