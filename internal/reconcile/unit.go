package reconcile

import (
	"context"
	"fmt"
	"time"

	"backend/internal/metrics"
	"backend/internal/models"
)

type countKey struct {
	child  string
	action string
}

// unit is the bookkeeping of one aggregate write transaction.
type unit struct {
	r        *Reconciler
	tx       Tx
	stored   []string
	released []string
	warnings []ReferenceWarning
	deferred []func(ctx context.Context) error
	counts   map[countKey]int
}

func newUnit(r *Reconciler, tx Tx) *unit {
	return &unit{r: r, tx: tx, counts: make(map[countKey]int)}
}

func (u *unit) save(ctx context.Context, dir string, up *Upload) (string, error) {
	if u.r.files == nil {
		return "", fmt.Errorf("no file store configured for %s", up.Filename)
	}
	name, err := u.r.files.Save(ctx, dir, up)
	if err != nil {
		return "", fmt.Errorf("failed to store %s: %w", up.Filename, err)
	}
	u.stored = append(u.stored, name)
	return name, nil
}

func (u *unit) release(name string) {
	if name != "" {
		u.released = append(u.released, name)
	}
}

func (u *unit) later(fn func(ctx context.Context) error) {
	u.deferred = append(u.deferred, fn)
}

func (u *unit) warn(ws ...ReferenceWarning) {
	u.warnings = append(u.warnings, ws...)
}

func (u *unit) count(child, action string, n int) {
	u.counts[countKey{child, action}] += n
}

func (u *unit) flushMetrics() {
	for k, n := range u.counts {
		metrics.RecordChildren(k.child, k.action, n)
	}
}

// applyChildren runs steps 3 to 5 of an aggregate write: child upserts in
// dependency order, associations, then the queued deletions.
func (u *unit) applyChildren(ctx context.Context, projectID int64, p *prepared, req *Request) error {
	floorPlans, err := syncChildren(ctx, u, floorPlanSpec, projectID, p.floorPlans, keepSet{}, req.DeletedFloorPlanIDs)
	if err != nil {
		return err
	}
	lots, err := syncChildren(ctx, u, lotSpec, projectID, p.lots, keepSet{}, req.DeletedLotIDs)
	if err != nil {
		return err
	}
	if _, err := syncChildren(ctx, u, renderingSpec, projectID, p.renderings, keepAll(req.KeepRenderings), nil); err != nil {
		return err
	}
	if _, err := syncChildren(ctx, u, documentSpec, projectID, p.documents, keepSet{all: req.KeepDocuments, byScope: req.KeepDocumentsByType}, nil); err != nil {
		return err
	}
	if _, err := syncChildren(ctx, u, featureFinishSpec, projectID, p.featureFinishes, keepAll(req.KeepFeatureFinishes), nil); err != nil {
		return err
	}
	if _, err := syncChildren(ctx, u, contactSpec, projectID, p.contacts, keepSet{}, nil); err != nil {
		return err
	}
	if err := u.syncSitePlan(ctx, projectID, p.sitePlan); err != nil {
		return err
	}

	if err := u.linkLotFloorPlans(ctx, projectID, p.lots, lots, floorPlans.deletedIDs(floorPlanSpec.id)); err != nil {
		return err
	}
	if err := u.linkAmenities(ctx, projectID, req.AmenityIDs); err != nil {
		return err
	}

	for _, fn := range u.deferred {
		if err := fn(ctx); err != nil {
			return err
		}
	}
	return nil
}

// checkReferences requires the city to exist and drops a developer id that
// does not resolve.
func (u *unit) checkReferences(ctx context.Context, p *models.Project, patch Patch[models.Project], creating bool) error {
	refs := u.tx.References()

	if creating || patch.Has("city_id") {
		city, err := refs.City(ctx, p.CityID)
		if err != nil {
			return fmt.Errorf("failed to get city: %w", err)
		}
		if city == nil {
			return shapeError("", ParentIndex, "city_id", "city %d does not exist", p.CityID)
		}
	}

	if (creating || patch.Has("developer_id")) && p.DeveloperID != nil {
		dev, err := refs.Developer(ctx, *p.DeveloperID)
		if err != nil {
			return fmt.Errorf("failed to get developer: %w", err)
		}
		if dev == nil {
			u.warn(ReferenceWarning{Relation: "project_developer", OwnerID: p.ID, Index: ParentIndex, ID: *p.DeveloperID})
			p.DeveloperID = nil
		}
	}
	return nil
}

// linkLotFloorPlans replaces the floor plan set of every submitted lot that
// carried floor_plan_ids. Valid targets are the project's floor plans that
// survive this write.
func (u *unit) linkLotFloorPlans(ctx context.Context, projectID int64, in collection[models.Lot], lots childResult[models.Lot], removed map[int64]bool) error {
	if !in.present {
		return nil
	}

	var valid map[int64]bool
	for _, item := range in.items {
		v, ok := item.patch.Get("floor_plan_ids")
		if !ok || v == nil {
			continue
		}
		row := lots.rows[item.index]
		if row == nil {
			continue
		}

		if valid == nil {
			plans, err := u.tx.FloorPlans().ListByProject(ctx, projectID)
			if err != nil {
				return fmt.Errorf("failed to list floor plans: %w", err)
			}
			valid = make(map[int64]bool, len(plans))
			for _, fp := range plans {
				if !removed[fp.ID] {
					valid[fp.ID] = true
				}
			}
		}

		set := AssociationSet{
			Relation:   "lot_floor_plans",
			OwnerID:    row.ID,
			OwnerIndex: item.index,
			Current:    row.FloorPlanIDs,
			Submitted:  v.([]int64),
			Valid:      valid,
		}
		next, changed, warnings := set.Resolve()
		u.warn(warnings...)
		if !changed {
			continue
		}
		if err := u.tx.Lots().SetFloorPlans(ctx, row.ID, next); err != nil {
			return fmt.Errorf("failed to set floor plans of lot %d: %w", row.ID, err)
		}
		row.FloorPlanIDs = next
		u.count("lot_floor_plans", "replace", 1)
	}
	return nil
}

func (u *unit) linkAmenities(ctx context.Context, projectID int64, ids *[]int64) error {
	if ids == nil {
		return nil
	}
	linker := u.tx.Amenities()

	existing, err := linker.ExistingIDs(ctx, *ids)
	if err != nil {
		return fmt.Errorf("failed to check amenities: %w", err)
	}
	current, err := linker.ListForProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list amenities: %w", err)
	}
	currentIDs := make([]int64, len(current))
	for i, a := range current {
		currentIDs[i] = a.ID
	}

	set := AssociationSet{
		Relation:   "project_amenities",
		OwnerID:    projectID,
		OwnerIndex: ParentIndex,
		Current:    currentIDs,
		Submitted:  *ids,
		Valid:      idSet(existing),
	}
	next, changed, warnings := set.Resolve()
	u.warn(warnings...)
	if !changed {
		return nil
	}
	if err := linker.SetProjectAmenities(ctx, projectID, next); err != nil {
		return fmt.Errorf("failed to set amenities: %w", err)
	}
	u.count("project_amenities", "replace", 1)
	return nil
}

// syncSitePlan upserts the single site plan of a project.
func (u *unit) syncSitePlan(ctx context.Context, projectID int64, in *childInput[models.SitePlan]) error {
	if in == nil {
		return nil
	}
	repo := u.tx.SitePlans()

	sp, err := repo.GetByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to get site plan: %w", err)
	}
	created := sp == nil
	if created {
		if in.upload == nil && in.patch.Text("title") == "" {
			return nil
		}
		sp = &models.SitePlan{ProjectID: projectID}
	}

	in.patch.Apply(sp)
	if err := resolveFile(ctx, u, sitePlanSpec, projectID, sp, *in); err != nil {
		return err
	}
	sp.UpdatedAt = time.Now().UTC()

	if err := repo.Save(ctx, sp); err != nil {
		return fmt.Errorf("failed to save site plan: %w", err)
	}
	if created {
		u.count(ChildSitePlan, "create", 1)
	} else {
		u.count(ChildSitePlan, "update", 1)
	}
	return nil
}
