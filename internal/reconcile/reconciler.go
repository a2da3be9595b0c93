package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/models"
	"backend/internal/slug"
)

// DeleteHook runs after a successful commit with every stored file that the
// write deleted or replaced.
type DeleteHook func(ctx context.Context, files []string)

type Option func(*Reconciler)

// WithDeleteHook registers h after the default hook, which releases the
// files through the FileStore.
func WithDeleteHook(h DeleteHook) Option {
	return func(r *Reconciler) {
		r.hooks = append(r.hooks, h)
	}
}

// Reconciler applies aggregate writes for a project and its children.
type Reconciler struct {
	store Store
	files FileStore
	hooks []DeleteHook
}

func New(store Store, files FileStore, opts ...Option) *Reconciler {
	r := &Reconciler{store: store, files: files}
	r.hooks = []DeleteHook{r.releaseFiles}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Result is the reloaded aggregate plus the association ids that were
// dropped on the way.
type Result struct {
	Project  *models.ProjectAggregate
	Warnings []ReferenceWarning
}

type prepared struct {
	parent          Patch[models.Project]
	floorPlans      collection[models.FloorPlan]
	lots            collection[models.Lot]
	renderings      collection[models.Rendering]
	documents       collection[models.Document]
	featureFinishes collection[models.FeatureFinish]
	contacts        collection[models.Contact]
	sitePlan        *childInput[models.SitePlan]
}

// prepare coerces every payload of req before anything is written.
func prepare(req *Request, creating bool) (*prepared, error) {
	if req == nil {
		req = &Request{}
	}
	p := &prepared{}

	var err error
	if p.parent, err = projectFields.Coerce("", ParentIndex, req.Fields); err != nil {
		return nil, err
	}
	if creating {
		if err := p.parent.CheckRequired("", ParentIndex); err != nil {
			return nil, err
		}
	}

	if p.floorPlans, err = floorPlanSpec.collect(req.FloorPlans); err != nil {
		return nil, err
	}
	if p.lots, err = lotSpec.collect(req.Lots); err != nil {
		return nil, err
	}
	if p.contacts, err = contactSpec.collect(req.Contacts); err != nil {
		return nil, err
	}
	if p.renderings, err = renderingSpec.collect(&req.RenderingsAdd); err != nil {
		return nil, err
	}
	if p.documents, err = documentSpec.collect(&req.DocumentsAdd); err != nil {
		return nil, err
	}
	if p.featureFinishes, err = featureFinishSpec.collect(&req.FeatureFinishesAdd); err != nil {
		return nil, err
	}
	if req.SitePlan != nil {
		items, err := sitePlanSpec.prepare([]ChildPayload{*req.SitePlan})
		if err != nil {
			return nil, err
		}
		p.sitePlan = &items[0]
	}
	return p, nil
}

// CreateAggregate inserts a project with all submitted children in one
// transaction and returns the reloaded aggregate.
func (r *Reconciler) CreateAggregate(ctx context.Context, req *Request) (*Result, error) {
	p, err := prepare(req, true)
	if err != nil {
		r.fail(ctx, "create", err)
		return nil, err
	}

	return r.run(ctx, "create", func(ctx context.Context, u *unit) (int64, error) {
		project := &models.Project{IsActive: true}
		p.parent.Apply(project)
		project.Prepare()

		if err := u.checkReferences(ctx, project, p.parent, true); err != nil {
			return 0, err
		}
		if err := validateProject(project); err != nil {
			return 0, err
		}

		s, err := slug.Assign(ctx, u.tx.Projects(), project.Name, 0)
		if err != nil {
			return 0, err
		}
		project.Slug = s

		if err := u.tx.Projects().Create(ctx, project); err != nil {
			return 0, asConstraint("project", fmt.Errorf("failed to create project: %w", err))
		}
		return project.ID, u.applyChildren(ctx, project.ID, p, req)
	})
}

// UpdateAggregate applies req to an existing project. Collections omitted
// from req are left untouched.
func (r *Reconciler) UpdateAggregate(ctx context.Context, projectID int64, req *Request) (*Result, error) {
	p, err := prepare(req, false)
	if err != nil {
		r.fail(ctx, "update", err)
		return nil, err
	}

	return r.run(ctx, "update", func(ctx context.Context, u *unit) (int64, error) {
		project, err := u.tx.Projects().Get(ctx, projectID)
		if err != nil {
			return 0, fmt.Errorf("failed to get project: %w", err)
		}
		if project == nil {
			return 0, ErrNotFound
		}

		p.parent.Apply(project)
		project.Prepare()

		if err := u.checkReferences(ctx, project, p.parent, false); err != nil {
			return 0, err
		}
		if err := validateProject(project); err != nil {
			return 0, err
		}

		if project.Slug == "" {
			s, err := slug.Assign(ctx, u.tx.Projects(), project.Name, project.ID)
			if err != nil {
				return 0, err
			}
			project.Slug = s
		}

		if err := u.tx.Projects().Update(ctx, project); err != nil {
			return 0, asConstraint("project", fmt.Errorf("failed to update project: %w", err))
		}
		return project.ID, u.applyChildren(ctx, project.ID, p, req)
	})
}

// DeleteAggregate removes the project and everything it owns, then
// releases the files those rows referenced.
func (r *Reconciler) DeleteAggregate(ctx context.Context, projectID int64) error {
	var released []string
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		agg, err := loadAggregate(ctx, tx, projectID)
		if err != nil {
			return err
		}
		released = aggregateFiles(agg)
		if err := tx.Projects().Delete(ctx, projectID); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return nil
	})
	if err != nil {
		r.fail(ctx, "delete", err)
		return err
	}

	metrics.RecordReconcile("delete", "success")
	logger.FromContext(ctx).Info("project deleted",
		zap.Int64("project_id", projectID),
		zap.Int("released_files", len(released)))
	r.runHooks(ctx, released)
	return nil
}

func (r *Reconciler) LoadAggregate(ctx context.Context, projectID int64) (*models.ProjectAggregate, error) {
	var agg *models.ProjectAggregate
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		agg, err = loadAggregate(ctx, tx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.decorate(agg)
	return agg, nil
}

func (r *Reconciler) LoadAggregateBySlug(ctx context.Context, s string) (*models.ProjectAggregate, error) {
	var agg *models.ProjectAggregate
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		project, err := tx.Projects().GetBySlug(ctx, s)
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}
		if project == nil {
			return ErrNotFound
		}
		agg, err = loadAggregate(ctx, tx, project.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	r.decorate(agg)
	return agg, nil
}

// run executes write and reloads the aggregate in one transaction. Files
// stored by an aborted write are removed again; files released by a
// committed one are handed to the delete hooks.
func (r *Reconciler) run(ctx context.Context, op string, write func(ctx context.Context, u *unit) (int64, error)) (*Result, error) {
	start := time.Now()
	var (
		u   *unit
		agg *models.ProjectAggregate
	)
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		u = newUnit(r, tx)
		id, err := write(ctx, u)
		if err != nil {
			return err
		}
		agg, err = loadAggregate(ctx, tx, id)
		return err
	})
	if err != nil {
		if u != nil {
			r.discard(ctx, u.stored)
		}
		r.fail(ctx, op, err)
		return nil, err
	}

	u.flushMetrics()
	metrics.RecordReconcile(op, "success")
	r.runHooks(ctx, u.released)
	r.decorate(agg)

	log := logger.FromContext(ctx)
	for _, w := range u.warnings {
		metrics.RecordReferenceWarning(w.Relation)
		log.Warn("dropped unknown association id",
			zap.String("relation", w.Relation),
			zap.Int64("owner_id", w.OwnerID),
			zap.Int64("id", w.ID))
	}
	log.Info("project aggregate saved",
		zap.String("operation", op),
		zap.Int64("project_id", agg.ID),
		zap.String("slug", agg.Slug),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{Project: agg, Warnings: u.warnings}, nil
}

func (r *Reconciler) fail(ctx context.Context, op string, err error) {
	outcome := Outcome(err)
	metrics.RecordReconcile(op, outcome)

	log := logger.FromContext(ctx)
	if outcome == "error" {
		log.Error("project aggregate write failed", zap.String("operation", op), zap.Error(err))
		return
	}
	log.Info("project aggregate write rejected", zap.String("operation", op), zap.String("outcome", outcome), zap.Error(err))
}

// Outcome classifies err for metrics and logs.
func Outcome(err error) string {
	var ve *ValidationError
	var ce *ConstraintError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &ce), errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	}
	return "error"
}

func (r *Reconciler) runHooks(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}
	for _, h := range r.hooks {
		h(ctx, files)
	}
}

func (r *Reconciler) releaseFiles(ctx context.Context, files []string) {
	if r.files == nil {
		return
	}
	log := logger.FromContext(ctx)
	for _, name := range files {
		if err := r.files.Delete(ctx, name); err != nil {
			log.Warn("failed to release file", zap.String("file", name), zap.Error(err))
		}
	}
}

func (r *Reconciler) discard(ctx context.Context, stored []string) {
	if r.files == nil {
		return
	}
	log := logger.FromContext(ctx)
	for _, name := range stored {
		if err := r.files.Delete(ctx, name); err != nil {
			log.Warn("failed to remove file of aborted write", zap.String("file", name), zap.Error(err))
		}
	}
}

// decorate fills the URL fields from the stored file names.
func (r *Reconciler) decorate(agg *models.ProjectAggregate) {
	if agg == nil || r.files == nil {
		return
	}
	url := func(name string) string {
		if name == "" {
			return ""
		}
		return r.files.URL(name)
	}
	for i := range agg.FloorPlans {
		agg.FloorPlans[i].PlanFileURL = url(agg.FloorPlans[i].PlanFile)
	}
	for i := range agg.Lots {
		agg.Lots[i].LotRenderingURL = url(agg.Lots[i].LotRendering)
	}
	for i := range agg.Renderings {
		agg.Renderings[i].ImageURL = url(agg.Renderings[i].Image)
	}
	for i := range agg.Documents {
		agg.Documents[i].FileURL = url(agg.Documents[i].File)
	}
	for i := range agg.FeatureFinishes {
		agg.FeatureFinishes[i].ImageURL = url(agg.FeatureFinishes[i].Image)
	}
	if agg.SitePlan != nil {
		agg.SitePlan.FileURL = url(agg.SitePlan.File)
	}
}

func validateProject(p *models.Project) error {
	if p.PriceStartingFrom != nil && *p.PriceStartingFrom < 0 {
		return coercionError("", ParentIndex, "price_starting_from", "must not be negative")
	}
	if p.PriceEndingAt != nil && *p.PriceEndingAt < 0 {
		return coercionError("", ParentIndex, "price_ending_at", "must not be negative")
	}
	if p.PriceStartingFrom != nil && p.PriceEndingAt != nil && *p.PriceStartingFrom > *p.PriceEndingAt {
		return shapeError("", ParentIndex, "price_ending_at", "must be greater than or equal to price_starting_from")
	}
	return nil
}

func loadAggregate(ctx context.Context, tx Tx, projectID int64) (*models.ProjectAggregate, error) {
	project, err := tx.Projects().Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}

	agg := &models.ProjectAggregate{Project: *project}
	if agg.City, err = tx.References().City(ctx, project.CityID); err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if project.DeveloperID != nil {
		if agg.Developer, err = tx.References().Developer(ctx, *project.DeveloperID); err != nil {
			return nil, fmt.Errorf("failed to get developer: %w", err)
		}
	}
	if agg.FloorPlans, err = tx.FloorPlans().ListByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to list floor plans: %w", err)
	}
	if agg.Lots, err = tx.Lots().ListByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	if agg.Renderings, err = tx.Renderings().ListByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to list renderings: %w", err)
	}
	if agg.Documents, err = tx.Documents().ListByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if agg.FeatureFinishes, err = tx.FeatureFinishes().ListByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to list features and finishes: %w", err)
	}
	if agg.Contacts, err = tx.Contacts().ListByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	if agg.Amenities, err = tx.Amenities().ListForProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to list amenities: %w", err)
	}
	if agg.SitePlan, err = tx.SitePlans().GetByProject(ctx, projectID); err != nil {
		return nil, fmt.Errorf("failed to get site plan: %w", err)
	}

	agg.AmenityIDs = make([]int64, 0, len(agg.Amenities))
	for _, a := range agg.Amenities {
		agg.AmenityIDs = append(agg.AmenityIDs, a.ID)
	}
	for i := range agg.Lots {
		if agg.Lots[i].FloorPlanIDs == nil {
			agg.Lots[i].FloorPlanIDs = []int64{}
		}
	}
	agg.FloorPlans = orEmpty(agg.FloorPlans)
	agg.Lots = orEmpty(agg.Lots)
	agg.Renderings = orEmpty(agg.Renderings)
	agg.Documents = orEmpty(agg.Documents)
	agg.FeatureFinishes = orEmpty(agg.FeatureFinishes)
	agg.Contacts = orEmpty(agg.Contacts)
	agg.Amenities = orEmpty(agg.Amenities)
	return agg, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// aggregateFiles lists every stored file an aggregate references.
func aggregateFiles(agg *models.ProjectAggregate) []string {
	var files []string
	add := func(name string) {
		if name != "" {
			files = append(files, name)
		}
	}
	for _, f := range agg.FloorPlans {
		add(f.PlanFile)
	}
	for _, l := range agg.Lots {
		add(l.LotRendering)
	}
	for _, r := range agg.Renderings {
		add(r.Image)
	}
	for _, d := range agg.Documents {
		add(d.File)
	}
	for _, f := range agg.FeatureFinishes {
		add(f.Image)
	}
	if agg.SitePlan != nil {
		add(agg.SitePlan.File)
	}
	return files
}
