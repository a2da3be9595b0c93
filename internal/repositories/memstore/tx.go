package memstore

import (
	"context"
	"fmt"
	"sort"

	"backend/internal/models"
	"backend/internal/reconcile"
)

type tx struct {
	st     *state
	faults map[string]error
}

func (t *tx) fault(op string) error {
	return t.faults[op]
}

func (t *tx) Projects() reconcile.ProjectRepo { return projects{t} }
func (t *tx) FloorPlans() reconcile.ChildRepo[models.FloorPlan] {
	return &children[models.FloorPlan]{
		tx: t, name: "floor_plans", rows: t.st.floorPlans,
		id: func(f *models.FloorPlan) *int64 { return &f.ID }, project: func(f *models.FloorPlan) int64 { return f.ProjectID },
		less: func(a, b *models.FloorPlan) bool { return a.ID < b.ID },
		onDelete: func(id int64) {
			for lotID, ids := range t.st.lotFloorPlans {
				t.st.lotFloorPlans[lotID] = without(ids, id)
			}
		},
	}
}
func (t *tx) Lots() reconcile.LotRepo { return lots{t} }
func (t *tx) Renderings() reconcile.ChildRepo[models.Rendering] {
	return &children[models.Rendering]{
		tx: t, name: "renderings", rows: t.st.renderings,
		id: func(r *models.Rendering) *int64 { return &r.ID }, project: func(r *models.Rendering) int64 { return r.ProjectID },
		less: func(a, b *models.Rendering) bool { return a.Order < b.Order || (a.Order == b.Order && a.ID < b.ID) },
	}
}
func (t *tx) Documents() reconcile.ChildRepo[models.Document] {
	return &children[models.Document]{
		tx: t, name: "documents", rows: t.st.documents,
		id: func(d *models.Document) *int64 { return &d.ID }, project: func(d *models.Document) int64 { return d.ProjectID },
		less: func(a, b *models.Document) bool { return a.ID < b.ID },
	}
}
func (t *tx) FeatureFinishes() reconcile.ChildRepo[models.FeatureFinish] {
	return &children[models.FeatureFinish]{
		tx: t, name: "features_finishes", rows: t.st.featureFinishes,
		id: func(f *models.FeatureFinish) *int64 { return &f.ID }, project: func(f *models.FeatureFinish) int64 { return f.ProjectID },
		less: func(a, b *models.FeatureFinish) bool { return a.Order < b.Order || (a.Order == b.Order && a.ID < b.ID) },
	}
}
func (t *tx) Contacts() reconcile.ChildRepo[models.Contact] {
	return &children[models.Contact]{
		tx: t, name: "contacts", rows: t.st.contacts,
		id: func(c *models.Contact) *int64 { return &c.ID }, project: func(c *models.Contact) int64 { return c.ProjectID },
		less: func(a, b *models.Contact) bool { return a.Order < b.Order || (a.Order == b.Order && a.ID < b.ID) },
	}
}
func (t *tx) SitePlans() reconcile.SitePlanRepo  { return sitePlans{t} }
func (t *tx) Amenities() reconcile.AmenityLinker { return amenities{t} }
func (t *tx) References() reconcile.References   { return references{t} }

// children is the generic table of one owned collection.
type children[T any] struct {
	tx       *tx
	name     string
	rows     map[int64]T
	id       func(*T) *int64
	project  func(*T) int64
	less     func(a, b *T) bool
	onDelete func(id int64)
}

func (c *children[T]) ListByProject(_ context.Context, projectID int64) ([]T, error) {
	var out []T
	for _, row := range c.rows {
		if c.project(&row) == projectID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return c.less(&out[i], &out[j]) })
	return out, nil
}

func (c *children[T]) Create(_ context.Context, row *T) error {
	if err := c.tx.fault(c.name + ".create"); err != nil {
		return err
	}
	if _, ok := c.tx.st.projects[c.project(row)]; !ok {
		return fmt.Errorf("%s: project %d does not exist", c.name, c.project(row))
	}
	*c.id(row) = c.tx.st.nextID()
	c.rows[*c.id(row)] = *row
	return nil
}

func (c *children[T]) Update(_ context.Context, row *T) error {
	if err := c.tx.fault(c.name + ".update"); err != nil {
		return err
	}
	id := *c.id(row)
	current, ok := c.rows[id]
	if !ok {
		return fmt.Errorf("%s: row %d does not exist", c.name, id)
	}
	if c.project(&current) != c.project(row) {
		return fmt.Errorf("%s: row %d cannot move to another project", c.name, id)
	}
	c.rows[id] = *row
	return nil
}

func (c *children[T]) Delete(_ context.Context, id int64) error {
	if err := c.tx.fault(c.name + ".delete"); err != nil {
		return err
	}
	delete(c.rows, id)
	if c.onDelete != nil {
		c.onDelete(id)
	}
	return nil
}

type lots struct{ t *tx }

func (l lots) table() *children[models.Lot] {
	return &children[models.Lot]{
		tx: l.t, name: "lots", rows: l.t.st.lots,
		id: func(x *models.Lot) *int64 { return &x.ID }, project: func(x *models.Lot) int64 { return x.ProjectID },
		less:     func(a, b *models.Lot) bool { return a.Order < b.Order || (a.Order == b.Order && a.ID < b.ID) },
		onDelete: func(id int64) { delete(l.t.st.lotFloorPlans, id) },
	}
}

func (l lots) ListByProject(ctx context.Context, projectID int64) ([]models.Lot, error) {
	out, err := l.table().ListByProject(ctx, projectID)
	for i := range out {
		out[i].FloorPlanIDs = append([]int64{}, l.t.st.lotFloorPlans[out[i].ID]...)
	}
	return out, err
}

func (l lots) Create(ctx context.Context, row *models.Lot) error {
	ids := row.FloorPlanIDs
	row.FloorPlanIDs = nil
	err := l.table().Create(ctx, row)
	row.FloorPlanIDs = ids
	return err
}

func (l lots) Update(ctx context.Context, row *models.Lot) error {
	ids := row.FloorPlanIDs
	row.FloorPlanIDs = nil
	err := l.table().Update(ctx, row)
	row.FloorPlanIDs = ids
	return err
}

func (l lots) Delete(ctx context.Context, id int64) error { return l.table().Delete(ctx, id) }

func (l lots) SetFloorPlans(_ context.Context, lotID int64, floorPlanIDs []int64) error {
	if err := l.t.fault("lots.set_floor_plans"); err != nil {
		return err
	}
	lot, ok := l.t.st.lots[lotID]
	if !ok {
		return fmt.Errorf("lot %d does not exist", lotID)
	}
	for _, id := range floorPlanIDs {
		fp, ok := l.t.st.floorPlans[id]
		if !ok || fp.ProjectID != lot.ProjectID {
			return fmt.Errorf("floor plan %d does not belong to project %d", id, lot.ProjectID)
		}
	}
	l.t.st.lotFloorPlans[lotID] = append([]int64{}, floorPlanIDs...)
	return nil
}

type projects struct{ t *tx }

func (p projects) Get(_ context.Context, id int64) (*models.Project, error) {
	row, ok := p.t.st.projects[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

func (p projects) GetBySlug(_ context.Context, slug string) (*models.Project, error) {
	for _, row := range p.t.st.projects {
		if row.Slug == slug {
			r := row
			return &r, nil
		}
	}
	return nil, nil
}

func (p projects) checkSlug(row *models.Project) error {
	if row.Slug == "" {
		return nil
	}
	for id, other := range p.t.st.projects {
		if id != row.ID && other.Slug == row.Slug {
			return fmt.Errorf("projects_slug_key %q: %w", row.Slug, reconcile.ErrConflict)
		}
	}
	return nil
}

func (p projects) Create(_ context.Context, row *models.Project) error {
	if err := p.t.fault("projects.create"); err != nil {
		return err
	}
	if err := p.checkSlug(row); err != nil {
		return err
	}
	row.ID = p.t.st.nextID()
	stamp(&row.CreatedAt)
	p.t.st.projects[row.ID] = *row
	return nil
}

func (p projects) Update(_ context.Context, row *models.Project) error {
	if err := p.t.fault("projects.update"); err != nil {
		return err
	}
	if _, ok := p.t.st.projects[row.ID]; !ok {
		return fmt.Errorf("project %d does not exist", row.ID)
	}
	if err := p.checkSlug(row); err != nil {
		return err
	}
	p.t.st.projects[row.ID] = *row
	return nil
}

func (p projects) Delete(_ context.Context, id int64) error {
	if err := p.t.fault("projects.delete"); err != nil {
		return err
	}
	st := p.t.st
	delete(st.projects, id)
	for k, v := range st.floorPlans {
		if v.ProjectID == id {
			delete(st.floorPlans, k)
		}
	}
	for k, v := range st.lots {
		if v.ProjectID == id {
			delete(st.lots, k)
			delete(st.lotFloorPlans, k)
		}
	}
	for k, v := range st.renderings {
		if v.ProjectID == id {
			delete(st.renderings, k)
		}
	}
	for k, v := range st.documents {
		if v.ProjectID == id {
			delete(st.documents, k)
		}
	}
	for k, v := range st.featureFinishes {
		if v.ProjectID == id {
			delete(st.featureFinishes, k)
		}
	}
	for k, v := range st.contacts {
		if v.ProjectID == id {
			delete(st.contacts, k)
		}
	}
	for k, v := range st.sitePlans {
		if v.ProjectID == id {
			delete(st.sitePlans, k)
		}
	}
	delete(st.projectAmenities, id)
	return nil
}

func (p projects) SlugTaken(_ context.Context, slug string, excludeID int64) (bool, error) {
	for id, row := range p.t.st.projects {
		if row.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type sitePlans struct{ t *tx }

func (s sitePlans) GetByProject(_ context.Context, projectID int64) (*models.SitePlan, error) {
	for _, sp := range s.t.st.sitePlans {
		if sp.ProjectID == projectID {
			row := sp
			return &row, nil
		}
	}
	return nil, nil
}

func (s sitePlans) Save(_ context.Context, sp *models.SitePlan) error {
	if err := s.t.fault("site_plans.save"); err != nil {
		return err
	}
	if sp.ID == 0 {
		for _, other := range s.t.st.sitePlans {
			if other.ProjectID == sp.ProjectID {
				return fmt.Errorf("site_plans_project_id_key %d: %w", sp.ProjectID, reconcile.ErrConflict)
			}
		}
		sp.ID = s.t.st.nextID()
	}
	s.t.st.sitePlans[sp.ID] = *sp
	return nil
}

func (s sitePlans) Delete(_ context.Context, id int64) error {
	delete(s.t.st.sitePlans, id)
	return nil
}

type amenities struct{ t *tx }

func (a amenities) ExistingIDs(_ context.Context, ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if _, ok := a.t.st.amenities[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (a amenities) ListForProject(_ context.Context, projectID int64) ([]models.Amenity, error) {
	var out []models.Amenity
	for _, id := range a.t.st.projectAmenities[projectID] {
		if am, ok := a.t.st.amenities[id]; ok {
			out = append(out, am)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (a amenities) SetProjectAmenities(_ context.Context, projectID int64, ids []int64) error {
	if err := a.t.fault("project_amenities.set"); err != nil {
		return err
	}
	a.t.st.projectAmenities[projectID] = append([]int64{}, ids...)
	return nil
}

type references struct{ t *tx }

func (r references) City(_ context.Context, id int64) (*models.City, error) {
	c, ok := r.t.st.cities[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r references) Developer(_ context.Context, id int64) (*models.Developer, error) {
	d, ok := r.t.st.developers[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func without(ids []int64, drop int64) []int64 {
	out := ids[:0:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
