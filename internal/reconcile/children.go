package reconcile

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"backend/internal/models"
)

type deletePolicy int

const (
	// replaceAll deletes persisted rows missing from the submitted list,
	// but only when the list was submitted.
	replaceAll deletePolicy = iota
	// pruneToKeep deletes persisted rows missing from the keep list, but
	// only when a keep list was submitted.
	pruneToKeep
)

type childInput[T any] struct {
	index  int
	id     int64
	patch  Patch[T]
	upload *Upload
	remove bool
}

type collection[T any] struct {
	present bool
	items   []childInput[T]
}

type fileField[T any] struct {
	key       string
	dir       string
	removeKey string
	required  bool
	get       func(*T) string
	set       func(*T, string)
}

type rowContext[T any] struct {
	created   bool
	index     int
	persisted int
	patch     Patch[T]
	upload    *Upload
}

// childSpec binds the generic reconcile routine to one child type.
type childSpec[T any] struct {
	name     string
	table    *FieldTable[T]
	repo     func(Tx) ChildRepo[T]
	id       func(*T) int64
	attach   func(row *T, projectID int64)
	label    func(*T) string
	file     *fileField[T]
	policy   deletePolicy
	scope    func(*T) string
	defaults func(row *T, rc rowContext[T])
}

// keepSet is the submitted keep list of a pruneToKeep collection. byScope
// lists apply only to the rows whose scope matches the key.
type keepSet struct {
	all     *[]int64
	byScope map[string][]int64
}

func keepAll(ids *[]int64) keepSet { return keepSet{all: ids} }

func (k keepSet) drops(scope string, id int64) bool {
	if k.all != nil && !slices.Contains(*k.all, id) {
		return true
	}
	if list, ok := k.byScope[scope]; ok && !slices.Contains(list, id) {
		return true
	}
	return false
}

func (s childSpec[T]) prepare(payloads []ChildPayload) ([]childInput[T], error) {
	out := make([]childInput[T], len(payloads))
	for i, payload := range payloads {
		patch, err := s.table.Coerce(s.name, i, payload.Fields)
		if err != nil {
			return nil, err
		}
		in := childInput[T]{index: i, id: patch.Int64("id"), patch: patch, upload: payload.File}
		if s.file != nil {
			if s.file.removeKey != "" {
				in.remove = patch.Bool(s.file.removeKey)
			}
			if s.file.required && in.upload == nil && in.id == 0 {
				return nil, shapeError(s.name, i, s.file.key, "file is required")
			}
		}
		out[i] = in
	}
	return out, nil
}

func (s childSpec[T]) collect(payloads *[]ChildPayload) (collection[T], error) {
	if payloads == nil {
		return collection[T]{}, nil
	}
	items, err := s.prepare(*payloads)
	if err != nil {
		return collection[T]{}, err
	}
	return collection[T]{present: true, items: items}, nil
}

type childResult[T any] struct {
	rows    []*T
	deletes []*T
}

func (r childResult[T]) deletedIDs(id func(*T) int64) map[int64]bool {
	out := make(map[int64]bool, len(r.deletes))
	for _, row := range r.deletes {
		out[id(row)] = true
	}
	return out
}

// syncChildren writes the creates and updates of one collection and queues
// its deletions on u. rows[i] is the row written for submitted payload i.
func syncChildren[T any](ctx context.Context, u *unit, spec childSpec[T], projectID int64, in collection[T], keep keepSet, explicit []int64) (childResult[T], error) {
	var res childResult[T]
	repo := spec.repo(u.tx)

	persisted, err := repo.ListByProject(ctx, projectID)
	if err != nil {
		return res, fmt.Errorf("failed to list %s: %w", spec.name, err)
	}

	byID := make(map[int64]*T, len(persisted))
	refs := make([]Persisted, len(persisted))
	for i := range persisted {
		row := &persisted[i]
		byID[spec.id(row)] = row
		refs[i] = Persisted{ID: spec.id(row)}
		if spec.label != nil {
			refs[i].Name = spec.label(row)
		}
	}

	submitted := make([]Submitted, len(in.items))
	for i, item := range in.items {
		submitted[i] = Submitted{ID: item.id}
		if spec.label != nil {
			submitted[i].Name = item.patch.Text("name")
		}
	}
	plan := Diff(submitted, refs, DiffOptions{DedupeByName: spec.label != nil})

	res.rows = make([]*T, len(in.items))
	for _, op := range plan.Ops {
		item := in.items[op.Index]

		var row *T
		switch op.Kind {
		case OpCreate:
			if err := item.patch.CheckRequired(spec.name, item.index); err != nil {
				return res, err
			}
			if spec.file != nil && spec.file.required && item.upload == nil {
				return res, shapeError(spec.name, item.index, spec.file.key, "file is required")
			}
			row = new(T)
			spec.attach(row, projectID)
		case OpUpdate:
			row = byID[op.ID]
		case OpAlias:
			row = res.rows[op.Alias]
		}

		item.patch.Apply(row)
		if spec.defaults != nil {
			spec.defaults(row, rowContext[T]{
				created:   op.Kind == OpCreate,
				index:     item.index,
				persisted: len(persisted),
				patch:     item.patch,
				upload:    item.upload,
			})
		}
		if err := resolveFile(ctx, u, spec, projectID, row, item); err != nil {
			return res, err
		}

		action := "update"
		if op.Kind == OpCreate {
			action = "create"
			err = repo.Create(ctx, row)
		} else {
			err = repo.Update(ctx, row)
		}
		if err != nil {
			return res, asConstraint(spec.name, fmt.Errorf("failed to save %s[%d]: %w", spec.name, item.index, err))
		}
		u.count(spec.name, action, 1)
		res.rows[op.Index] = row
	}

	var candidates []int64
	switch spec.policy {
	case replaceAll:
		if in.present {
			candidates = plan.Delete
		}
	case pruneToKeep:
		for _, id := range plan.Delete {
			scope := ""
			if spec.scope != nil {
				scope = spec.scope(byID[id])
			}
			if keep.drops(scope, id) {
				candidates = append(candidates, id)
			}
		}
	}
	candidates = append(candidates, explicit...)

	queued := make(map[int64]bool, len(candidates))
	for _, id := range candidates {
		row, ok := byID[id]
		if !ok || queued[id] {
			continue
		}
		queued[id] = true
		res.deletes = append(res.deletes, row)
	}

	if len(res.deletes) > 0 {
		deletes := res.deletes
		u.later(func(ctx context.Context) error {
			return deleteChildren(ctx, u, spec, deletes)
		})
	}
	return res, nil
}

func deleteChildren[T any](ctx context.Context, u *unit, spec childSpec[T], rows []*T) error {
	repo := spec.repo(u.tx)
	for _, row := range rows {
		if err := repo.Delete(ctx, spec.id(row)); err != nil {
			return fmt.Errorf("failed to delete %s %d: %w", spec.name, spec.id(row), err)
		}
		if spec.file != nil {
			u.release(spec.file.get(row))
		}
		u.count(spec.name, "delete", 1)
	}
	return nil
}

func resolveFile[T any](ctx context.Context, u *unit, spec childSpec[T], projectID int64, row *T, item childInput[T]) error {
	if spec.file == nil {
		return nil
	}
	d := ResolveFile(spec.file.get(row), item.upload, item.remove)
	switch d.Action {
	case FileReplace:
		name, err := u.save(ctx, fmt.Sprintf("projects/%d/%s", projectID, spec.file.dir), item.upload)
		if err != nil {
			return err
		}
		spec.file.set(row, name)
	case FileClear:
		if spec.file.required {
			return shapeError(spec.name, item.index, spec.file.key, "file cannot be removed")
		}
		spec.file.set(row, "")
	}
	u.release(d.Release)
	return nil
}

func titleFromUpload(up *Upload) string {
	if up == nil {
		return ""
	}
	base := path.Base(strings.ReplaceAll(up.Filename, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

var floorPlanSpec = childSpec[models.FloorPlan]{
	name:   ChildFloorPlans,
	table:  floorPlanFields,
	repo:   func(tx Tx) ChildRepo[models.FloorPlan] { return tx.FloorPlans() },
	id:     func(f *models.FloorPlan) int64 { return f.ID },
	attach: func(f *models.FloorPlan, projectID int64) { f.ProjectID = projectID },
	label:  func(f *models.FloorPlan) string { return f.Name },
	file: &fileField[models.FloorPlan]{
		key:       "plan_file",
		dir:       "floor_plans",
		removeKey: "plan_file_remove",
		get:       func(f *models.FloorPlan) string { return f.PlanFile },
		set:       func(f *models.FloorPlan, name string) { f.PlanFile = name },
	},
	policy:   replaceAll,
	defaults: func(f *models.FloorPlan, _ rowContext[models.FloorPlan]) { f.Prepare() },
}

var lotSpec = childSpec[models.Lot]{
	name:   ChildLots,
	table:  lotFields,
	repo:   func(tx Tx) ChildRepo[models.Lot] { return tx.Lots() },
	id:     func(l *models.Lot) int64 { return l.ID },
	attach: func(l *models.Lot, projectID int64) { l.ProjectID = projectID },
	file: &fileField[models.Lot]{
		key:       "lot_rendering",
		dir:       "lot_renderings",
		removeKey: "lot_rendering_remove",
		get:       func(l *models.Lot) string { return l.LotRendering },
		set:       func(l *models.Lot, name string) { l.LotRendering = name },
	},
	policy:   replaceAll,
	defaults: func(l *models.Lot, _ rowContext[models.Lot]) { l.Prepare() },
}

var renderingSpec = childSpec[models.Rendering]{
	name:   ChildRenderings,
	table:  renderingFields,
	repo:   func(tx Tx) ChildRepo[models.Rendering] { return tx.Renderings() },
	id:     func(r *models.Rendering) int64 { return r.ID },
	attach: func(r *models.Rendering, projectID int64) { r.ProjectID = projectID },
	file: &fileField[models.Rendering]{
		key:      "image",
		dir:      "renderings",
		required: true,
		get:      func(r *models.Rendering) string { return r.Image },
		set:      func(r *models.Rendering, name string) { r.Image = name },
	},
	policy: pruneToKeep,
	defaults: func(r *models.Rendering, rc rowContext[models.Rendering]) {
		if rc.created && !rc.patch.Has("order") {
			r.Order = rc.persisted + rc.index
		}
		if r.Title == "" {
			r.Title = titleFromUpload(rc.upload)
		}
		r.Prepare()
	},
}

var documentSpec = childSpec[models.Document]{
	name:   ChildDocuments,
	table:  documentFields,
	repo:   func(tx Tx) ChildRepo[models.Document] { return tx.Documents() },
	id:     func(d *models.Document) int64 { return d.ID },
	attach: func(d *models.Document, projectID int64) { d.ProjectID = projectID },
	file: &fileField[models.Document]{
		key:      "document",
		dir:      "documents",
		required: true,
		get:      func(d *models.Document) string { return d.File },
		set:      func(d *models.Document, name string) { d.File = name },
	},
	policy: pruneToKeep,
	scope:  func(d *models.Document) string { return d.DocumentType },
	defaults: func(d *models.Document, rc rowContext[models.Document]) {
		if d.Title == "" {
			d.Title = titleFromUpload(rc.upload)
		}
		d.Prepare()
	},
}

var featureFinishSpec = childSpec[models.FeatureFinish]{
	name:   ChildFeatureFinishes,
	table:  featureFinishFields,
	repo:   func(tx Tx) ChildRepo[models.FeatureFinish] { return tx.FeatureFinishes() },
	id:     func(f *models.FeatureFinish) int64 { return f.ID },
	attach: func(f *models.FeatureFinish, projectID int64) { f.ProjectID = projectID },
	file: &fileField[models.FeatureFinish]{
		key:      "image",
		dir:      "features_finishes",
		required: true,
		get:      func(f *models.FeatureFinish) string { return f.Image },
		set:      func(f *models.FeatureFinish, name string) { f.Image = name },
	},
	policy: pruneToKeep,
	defaults: func(f *models.FeatureFinish, rc rowContext[models.FeatureFinish]) {
		if rc.created && !rc.patch.Has("order") {
			f.Order = rc.persisted + rc.index
		}
		if f.Title == "" {
			f.Title = titleFromUpload(rc.upload)
		}
		f.Prepare()
	},
}

var contactSpec = childSpec[models.Contact]{
	name:   ChildContacts,
	table:  contactFields,
	repo:   func(tx Tx) ChildRepo[models.Contact] { return tx.Contacts() },
	id:     func(c *models.Contact) int64 { return c.ID },
	attach: func(c *models.Contact, projectID int64) { c.ProjectID = projectID },
	policy: replaceAll,
	defaults: func(c *models.Contact, rc rowContext[models.Contact]) {
		if rc.created && !rc.patch.Has("order") {
			c.Order = rc.index
		}
	},
}

var sitePlanSpec = childSpec[models.SitePlan]{
	name:  ChildSitePlan,
	table: sitePlanFields,
	file: &fileField[models.SitePlan]{
		key:       "file",
		dir:       "site_plans",
		removeKey: "file_remove",
		get:       func(s *models.SitePlan) string { return s.File },
		set:       func(s *models.SitePlan, name string) { s.File = name },
	},
}
