package repositories

import (
	"context"
	"time"

	"backend/internal/metrics"
	"backend/internal/models"
	"backend/internal/reconcile"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AggregateStore is the PostgreSQL reconcile.Store. Every WithinTx call runs
// in a single pgx transaction, rolled back when fn fails.
type AggregateStore struct {
	pool     *pgxpool.Pool
	projects *ProjectRepository
}

func NewAggregateStore(pool *pgxpool.Pool) *AggregateStore {
	return &AggregateStore{pool: pool, projects: NewProjectRepository(pool)}
}

func (s *AggregateStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx reconcile.Tx) error) error {
	defer metrics.TrackDBOperation("aggregate_tx")(time.Now())

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(ctx, pgTx{db: tx})
	})
}

// List serves the public listing outside any transaction.
func (s *AggregateStore) List(ctx context.Context, f models.ProjectFilter) ([]models.ProjectSummary, int, error) {
	return s.projects.List(ctx, f)
}

type pgTx struct {
	db DBTX
}

func (t pgTx) Projects() reconcile.ProjectRepo { return NewProjectRepository(t.db) }

func (t pgTx) FloorPlans() reconcile.ChildRepo[models.FloorPlan] {
	return NewFloorPlanRepository(t.db)
}

func (t pgTx) Lots() reconcile.LotRepo { return NewLotRepository(t.db) }

func (t pgTx) Renderings() reconcile.ChildRepo[models.Rendering] {
	return NewRenderingRepository(t.db)
}

func (t pgTx) Documents() reconcile.ChildRepo[models.Document] {
	return NewDocumentRepository(t.db)
}

func (t pgTx) FeatureFinishes() reconcile.ChildRepo[models.FeatureFinish] {
	return NewFeatureFinishRepository(t.db)
}

func (t pgTx) Contacts() reconcile.ChildRepo[models.Contact] { return NewContactRepository(t.db) }

func (t pgTx) SitePlans() reconcile.SitePlanRepo { return NewSitePlanRepository(t.db) }

func (t pgTx) Amenities() reconcile.AmenityLinker { return NewAmenityLinkRepository(t.db) }

func (t pgTx) References() reconcile.References { return NewReferenceRepository(t.db) }

var _ reconcile.Store = (*AggregateStore)(nil)
