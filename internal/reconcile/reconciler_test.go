package reconcile_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
	"backend/internal/reconcile"
	"backend/internal/repositories/memstore"
	"backend/internal/storage"
)

type harness struct {
	store    *memstore.Store
	disk     *storage.Disk
	rec      *reconcile.Reconciler
	city     models.City
	released [][]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	disk, err := storage.NewDisk(t.TempDir(), "/media")
	require.NoError(t, err)

	h := &harness{store: memstore.New(), disk: disk}
	h.city = h.store.AddCity(models.City{Name: "Austin", Slug: "austin"})
	h.rec = reconcile.New(h.store, disk, reconcile.WithDeleteHook(func(_ context.Context, files []string) {
		h.released = append(h.released, files)
	}))
	return h
}

func (h *harness) fields(extra map[string]any) map[string]any {
	f := map[string]any{"name": "Oak Ridge", "city_id": float64(h.city.ID)}
	for k, v := range extra {
		f[k] = v
	}
	return f
}

func (h *harness) create(t *testing.T, req *reconcile.Request) *models.ProjectAggregate {
	t.Helper()
	if req.Fields == nil {
		req.Fields = h.fields(nil)
	}
	res, err := h.rec.CreateAggregate(context.Background(), req)
	require.NoError(t, err)
	return res.Project
}

func upload(name string) *reconcile.Upload {
	return &reconcile.Upload{Filename: name, ContentType: "application/octet-stream", Data: []byte(name)}
}

func payloads(items ...map[string]any) *[]reconcile.ChildPayload {
	out := make([]reconcile.ChildPayload, len(items))
	for i, f := range items {
		out[i] = reconcile.ChildPayload{Fields: f}
	}
	return &out
}

func ids(list ...int64) *[]int64 { return &list }

func asValidation(t *testing.T, err error) *reconcile.ValidationError {
	t.Helper()
	var ve *reconcile.ValidationError
	require.True(t, errors.As(err, &ve), "expected a validation error, got %v", err)
	return ve
}

// resubmit turns a loaded aggregate back into the document a client would
// send when saving it unchanged.
func resubmit(t *testing.T, agg *models.ProjectAggregate) *reconcile.Request {
	t.Helper()
	raw, err := json.Marshal(agg)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	req, err := reconcile.ParseDocument(doc)
	require.NoError(t, err)
	return req
}

func TestCreateAggregateWritesEveryCollection(t *testing.T) {
	h := newHarness(t)
	pool := h.store.AddAmenity(models.Amenity{Name: "Pool"})
	gym := h.store.AddAmenity(models.Amenity{Name: "Gym"})

	fp := []reconcile.ChildPayload{
		{Fields: map[string]any{"name": "Plan A", "bedrooms": "3", "house_type": "townhouse"}, File: upload("a.pdf")},
		{Fields: map[string]any{"name": "Plan B", "price": 450000.0}},
	}
	agg := h.create(t, &reconcile.Request{
		Fields:     h.fields(map[string]any{"price_starting_from": "300000", "price_ending_at": "500000"}),
		FloorPlans: &fp,
		Lots: payloads(
			map[string]any{"lot_number": "1", "lot_numbers_list": []any{"1A", "1B"}},
			map[string]any{"lot_number": "2", "availability_status": "sold"},
		),
		Contacts: payloads(
			map[string]any{"name": "Ann", "email": "ann@example.com"},
			map[string]any{"name": "Bob", "phone": ""},
		),
		RenderingsAdd: []reconcile.ChildPayload{
			{Fields: map[string]any{"title": "Front"}, File: upload("front.jpg")},
			{File: upload("rear-view.jpg")},
		},
		DocumentsAdd: []reconcile.ChildPayload{
			{Fields: map[string]any{"document_type": "brochure"}, File: upload("brochure.pdf")},
		},
		AmenityIDs: ids(pool.ID, gym.ID),
		SitePlan:   &reconcile.ChildPayload{Fields: map[string]any{"title": "Phase 1"}, File: upload("site.pdf")},
	})

	assert.Equal(t, "oak-ridge", agg.Slug)
	assert.Equal(t, models.ProjectTypeSingleFamily, agg.ProjectType)
	assert.Equal(t, models.ProjectStatusPlanning, agg.Status)
	assert.True(t, agg.IsActive)
	require.NotNil(t, agg.City)
	assert.Equal(t, "Austin", agg.City.Name)

	require.Len(t, agg.FloorPlans, 2)
	assert.Equal(t, models.ProjectTypeTownhouse, agg.FloorPlans[0].HouseType)
	assert.Equal(t, 3, *agg.FloorPlans[0].Bedrooms)
	assert.NotEmpty(t, agg.FloorPlans[0].PlanFile)
	assert.Equal(t, "/media/"+agg.FloorPlans[0].PlanFile, agg.FloorPlans[0].PlanFileURL)
	assert.True(t, h.disk.Exists(agg.FloorPlans[0].PlanFile))
	assert.Empty(t, agg.FloorPlans[1].PlanFileURL)

	require.Len(t, agg.Lots, 2)
	assert.Equal(t, []string{"1A", "1B"}, agg.Lots[0].LotNumbersList())
	assert.Equal(t, models.AvailabilitySold, agg.Lots[1].AvailabilityStatus)
	assert.Equal(t, []int64{}, agg.Lots[0].FloorPlanIDs)

	require.Len(t, agg.Contacts, 2)
	assert.Equal(t, "Ann", agg.Contacts[0].Name)
	assert.Equal(t, 1, agg.Contacts[1].Order)
	assert.Nil(t, agg.Contacts[1].Phone)

	require.Len(t, agg.Renderings, 2)
	assert.Equal(t, "Front", agg.Renderings[0].Title)
	assert.Equal(t, "rear-view", agg.Renderings[1].Title, "title defaults to the file name")
	assert.Equal(t, 1, agg.Renderings[1].Order)

	require.Len(t, agg.Documents, 1)
	assert.Equal(t, models.DocumentTypeBrochure, agg.Documents[0].DocumentType)
	assert.Equal(t, "brochure", agg.Documents[0].Title)

	assert.ElementsMatch(t, []int64{pool.ID, gym.ID}, agg.AmenityIDs)
	require.NotNil(t, agg.SitePlan)
	assert.Equal(t, "Phase 1", agg.SitePlan.Title)
	assert.True(t, h.disk.Exists(agg.SitePlan.File))
}

func TestResaveUnchangedAggregateIsIdempotent(t *testing.T) {
	h := newHarness(t)
	gym := h.store.AddAmenity(models.Amenity{Name: "Gym"})
	fp := []reconcile.ChildPayload{{Fields: map[string]any{"name": "Plan A"}, File: upload("a.pdf")}}
	agg := h.create(t, &reconcile.Request{
		FloorPlans:    &fp,
		Lots:          payloads(map[string]any{"lot_number": "7", "lot_numbers": "7A,7B", "price": "99000"}),
		Contacts:      payloads(map[string]any{"name": "Ann"}),
		RenderingsAdd: []reconcile.ChildPayload{{File: upload("front.jpg")}},
		AmenityIDs:    ids(gym.ID),
		SitePlan:      &reconcile.ChildPayload{File: upload("site.pdf")},
	})

	res, err := h.rec.UpdateAggregate(context.Background(), agg.ID, resubmit(t, agg))
	require.NoError(t, err)
	again, err := h.rec.UpdateAggregate(context.Background(), agg.ID, resubmit(t, res.Project))
	require.NoError(t, err)

	for _, got := range []*models.ProjectAggregate{res.Project, again.Project} {
		assert.Equal(t, agg.Slug, got.Slug)
		assert.Equal(t, agg.FloorPlans[0].ID, got.FloorPlans[0].ID)
		assert.Equal(t, agg.FloorPlans[0].PlanFile, got.FloorPlans[0].PlanFile)
		assert.Equal(t, agg.Lots[0].ID, got.Lots[0].ID)
		assert.Equal(t, agg.Lots[0].LotNumbers, got.Lots[0].LotNumbers)
		assert.Equal(t, agg.Contacts[0].ID, got.Contacts[0].ID)
		assert.Equal(t, agg.Renderings[0].ID, got.Renderings[0].ID)
		assert.Equal(t, agg.AmenityIDs, got.AmenityIDs)
		assert.Equal(t, agg.SitePlan.File, got.SitePlan.File)
	}
	assert.Empty(t, res.Warnings)
	assert.Empty(t, h.released, "no file was released")
	assert.Equal(t, map[string]int{
		"projects": 1, "floor_plans": 1, "lots": 1, "lot_floor_plans": 0, "renderings": 1,
		"documents": 0, "features_finishes": 0, "contacts": 1, "site_plans": 1,
		"amenities": 1, "project_amenities": 1,
	}, h.store.Counts())
}

func TestSlugIsStableAcrossRenames(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{})

	res, err := h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		Fields: map[string]any{"name": "Oak Ridge Phase II", "slug": "ignored"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Oak Ridge Phase II", res.Project.Name)
	assert.Equal(t, "oak-ridge", res.Project.Slug)

	bySlug, err := h.rec.LoadAggregateBySlug(context.Background(), "oak-ridge")
	require.NoError(t, err)
	assert.Equal(t, agg.ID, bySlug.ID)
}

func TestSlugsAreUnique(t *testing.T) {
	h := newHarness(t)
	var slugs []string
	for i := 0; i < 3; i++ {
		agg := h.create(t, &reconcile.Request{Fields: h.fields(map[string]any{"name": "Foo"})})
		slugs = append(slugs, agg.Slug)
	}
	assert.Equal(t, []string{"foo", "foo-1", "foo-2"}, slugs)
}

func TestInvalidChildAbortsBeforeAnyWrite(t *testing.T) {
	h := newHarness(t)
	before := h.store.Counts()

	_, err := h.rec.CreateAggregate(context.Background(), &reconcile.Request{
		Fields:     h.fields(nil),
		FloorPlans: payloads(map[string]any{"name": "A"}, map[string]any{"name": "B"}, map[string]any{"name": "C", "bedrooms": "abc"}),
	})

	ve := asValidation(t, err)
	assert.Equal(t, reconcile.KindCoercion, ve.Kind)
	assert.Equal(t, reconcile.ChildFloorPlans, ve.Child)
	assert.Equal(t, 2, ve.Index)
	assert.Equal(t, "bedrooms", ve.Field)
	assert.Equal(t, "invalid", reconcile.Outcome(err))
	assert.Equal(t, before, h.store.Counts())
}

func TestFailureInsideTransactionRollsBackEverything(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{FloorPlans: payloads(map[string]any{"name": "Keep"})})
	before := h.store.Counts()

	fp := []reconcile.ChildPayload{{Fields: map[string]any{"name": "New"}, File: upload("new.pdf")}}
	_, err := h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		Fields:     map[string]any{"name": "Renamed"},
		FloorPlans: &fp,
		Lots:       payloads(map[string]any{"lot_number": "1"}, map[string]any{"price": "10"}),
	})

	ve := asValidation(t, err)
	assert.Equal(t, reconcile.ChildLots, ve.Child)
	assert.Equal(t, 1, ve.Index)
	assert.Equal(t, "lot_number", ve.Field)
	assert.Equal(t, before, h.store.Counts())

	reloaded, err := h.rec.LoadAggregate(context.Background(), agg.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oak Ridge", reloaded.Name)
	require.Len(t, reloaded.FloorPlans, 1)
	assert.Equal(t, "Keep", reloaded.FloorPlans[0].Name)
	assert.Empty(t, h.released)
}

func TestStoreFailureDiscardsStoredFiles(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{})
	boom := errors.New("connection reset")
	h.store.InjectFault("renderings.create", boom)

	var stored []string
	rec := reconcile.New(h.store, spyFiles{Disk: h.disk, saved: &stored})
	_, err := rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		FloorPlans:    &[]reconcile.ChildPayload{{Fields: map[string]any{"name": "A"}, File: upload("a.pdf")}},
		RenderingsAdd: []reconcile.ChildPayload{{File: upload("front.jpg")}},
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, "error", reconcile.Outcome(err))
	require.Len(t, stored, 2)
	for _, name := range stored {
		assert.False(t, h.disk.Exists(name), "%s left behind", name)
	}
	assert.Equal(t, 0, h.store.Counts()["floor_plans"])
}

type spyFiles struct {
	*storage.Disk
	saved *[]string
}

func (s spyFiles) Save(ctx context.Context, dir string, up *reconcile.Upload) (string, error) {
	name, err := s.Disk.Save(ctx, dir, up)
	if err == nil {
		*s.saved = append(*s.saved, name)
	}
	return name, err
}

func TestConstraintViolationIsReported(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{})
	h.store.InjectFault("floor_plans.create", fmt.Errorf("floor_plans_project_id_name_key: %w", reconcile.ErrConflict))

	_, err := h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		FloorPlans: payloads(map[string]any{"name": "A"}),
	})

	var ce *reconcile.ConstraintError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, reconcile.ChildFloorPlans, ce.Entity)
	assert.ErrorIs(t, err, reconcile.ErrConflict)
	assert.Equal(t, "conflict", reconcile.Outcome(err))
}

func TestRenderingsAreDeletedOnlyWhenMissingFromKeepList(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{
		RenderingsAdd: []reconcile.ChildPayload{{File: upload("1.jpg")}, {File: upload("2.jpg")}, {File: upload("3.jpg")}},
	})
	require.Len(t, agg.Renderings, 3)
	r1, r2, r3 := agg.Renderings[0], agg.Renderings[1], agg.Renderings[2]

	res, err := h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		RenderingsAdd: []reconcile.ChildPayload{{File: upload("4.jpg")}},
	})
	require.NoError(t, err)
	assert.Len(t, res.Project.Renderings, 4, "no keep list leaves existing renderings alone")
	assert.Equal(t, 3, res.Project.Renderings[3].Order, "new renderings go after existing ones")

	res, err = h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{KeepRenderings: ids(r1.ID, r3.ID)})
	require.NoError(t, err)

	var kept []int64
	for _, r := range res.Project.Renderings {
		kept = append(kept, r.ID)
	}
	assert.Equal(t, []int64{r1.ID, r3.ID}, kept)
	require.Len(t, h.released, 1)
	assert.Len(t, h.released[0], 2)
	assert.Contains(t, h.released[0], r2.Image)
	assert.False(t, h.disk.Exists(r2.Image))
	assert.True(t, h.disk.Exists(r1.Image))

	res, err = h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		KeepRenderings: ids(r1.ID),
		RenderingsAdd:  []reconcile.ChildPayload{{File: upload("5.jpg")}},
	})
	require.NoError(t, err)
	require.Len(t, res.Project.Renderings, 2, "renderings added with a keep list are not pruned")
	assert.Equal(t, r1.ID, res.Project.Renderings[0].ID)
}

func TestLegacyDocumentKeepListsPruneOnlyTheirType(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{
		DocumentsAdd: []reconcile.ChildPayload{
			{Fields: map[string]any{"document_type": "Document"}, File: upload("deed.pdf")},
			{Fields: map[string]any{"document_type": "Document"}, File: upload("hoa.pdf")},
			{Fields: map[string]any{"document_type": "Marketing Material"}, File: upload("flyer.pdf")},
		},
	})
	require.Len(t, agg.Documents, 3)
	deed, flyer := agg.Documents[0], agg.Documents[2]

	req, err := reconcile.ParseDocument(map[string]any{"existing_legal_documents": fmt.Sprintf("[%d]", deed.ID)})
	require.NoError(t, err)
	res, err := h.rec.UpdateAggregate(context.Background(), agg.ID, req)
	require.NoError(t, err)

	var kept []int64
	for _, d := range res.Project.Documents {
		kept = append(kept, d.ID)
	}
	assert.ElementsMatch(t, []int64{deed.ID, flyer.ID}, kept, "marketing material survives a legal keep list")

	req, err = reconcile.ParseDocument(map[string]any{"existing_marketing_documents": "[]"})
	require.NoError(t, err)
	res, err = h.rec.UpdateAggregate(context.Background(), agg.ID, req)
	require.NoError(t, err)
	require.Len(t, res.Project.Documents, 1)
	assert.Equal(t, deed.ID, res.Project.Documents[0].ID)
	assert.False(t, h.disk.Exists(flyer.File))
}

func TestAssociationsReplaceOnlyWhenSubmitted(t *testing.T) {
	h := newHarness(t)
	pool := h.store.AddAmenity(models.Amenity{Name: "Pool"})
	gym := h.store.AddAmenity(models.Amenity{Name: "Gym"})
	park := h.store.AddAmenity(models.Amenity{Name: "Park"})
	agg := h.create(t, &reconcile.Request{AmenityIDs: ids(pool.ID, gym.ID)})
	ctx := context.Background()

	res, err := h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{Fields: map[string]any{"is_featured": "true"}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{pool.ID, gym.ID}, res.Project.AmenityIDs, "omitted list leaves the set alone")
	assert.True(t, res.Project.IsFeatured)

	res, err = h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{AmenityIDs: ids(park.ID, 9999)})
	require.NoError(t, err)
	assert.Equal(t, []int64{park.ID}, res.Project.AmenityIDs)
	assert.Equal(t, []reconcile.ReferenceWarning{{Relation: "project_amenities", OwnerID: agg.ID, Index: reconcile.ParentIndex, ID: 9999}}, res.Warnings)

	res, err = h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{AmenityIDs: ids()})
	require.NoError(t, err)
	assert.Empty(t, res.Project.AmenityIDs, "empty list clears the set")
}

func TestLotFloorPlanLinks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	agg := h.create(t, &reconcile.Request{
		FloorPlans: payloads(map[string]any{"name": "A"}, map[string]any{"name": "B"}),
		Lots:       payloads(map[string]any{"lot_number": "1"}),
	})
	fpA, fpB := agg.FloorPlans[0].ID, agg.FloorPlans[1].ID
	lot := agg.Lots[0]

	res, err := h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{
		Lots: payloads(map[string]any{"id": float64(lot.ID), "lot_number": "1", "floor_plan_ids": []any{float64(fpA), float64(fpB)}}),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{fpA, fpB}, res.Project.Lots[0].FloorPlanIDs)

	res, err = h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{
		Lots: payloads(map[string]any{"id": float64(lot.ID), "price": "125000"}),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{fpA, fpB}, res.Project.Lots[0].FloorPlanIDs, "omitted floor_plan_ids keeps links")
	assert.Equal(t, 125000.0, *res.Project.Lots[0].Price)

	res, err = h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{
		DeletedFloorPlanIDs: []int64{fpA},
		Lots:                payloads(map[string]any{"id": float64(lot.ID), "floor_plan_ids": fmt.Sprintf("[%d, %d]", fpA, fpB)}),
	})
	require.NoError(t, err)
	require.Len(t, res.Project.FloorPlans, 1)
	assert.Equal(t, fpB, res.Project.FloorPlans[0].ID)
	assert.Equal(t, []int64{fpB}, res.Project.Lots[0].FloorPlanIDs)
	assert.Equal(t, []reconcile.ReferenceWarning{{Relation: "lot_floor_plans", OwnerID: lot.ID, Index: 0, ID: fpA}}, res.Warnings)
}

func TestFullReplaceCollections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	agg := h.create(t, &reconcile.Request{
		Lots:     payloads(map[string]any{"lot_number": "1"}, map[string]any{"lot_number": "2"}),
		Contacts: payloads(map[string]any{"name": "Ann"}, map[string]any{"name": "Bob"}),
	})

	res, err := h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{
		Lots: payloads(map[string]any{"id": float64(agg.Lots[1].ID), "lot_number": "2B"}, map[string]any{"lot_number": "3"}),
	})
	require.NoError(t, err)
	require.Len(t, res.Project.Lots, 2)
	assert.Equal(t, agg.Lots[1].ID, res.Project.Lots[0].ID)
	assert.Equal(t, "2B", res.Project.Lots[0].LotNumber)
	assert.Equal(t, "3", res.Project.Lots[1].LotNumber)
	assert.Len(t, res.Project.Contacts, 2, "omitted contacts are untouched")

	res, err = h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{Contacts: payloads()})
	require.NoError(t, err)
	assert.Empty(t, res.Project.Contacts, "an empty list deletes every contact")
	assert.Len(t, res.Project.Lots, 2)
}

func TestExplicitDeletionWinsOverUpdate(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{Lots: payloads(map[string]any{"lot_number": "1"}, map[string]any{"lot_number": "2"})})
	first := agg.Lots[0].ID

	res, err := h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		DeletedLotIDs: []int64{first, 424242},
		Lots: payloads(
			map[string]any{"id": float64(first), "price": "1"},
			map[string]any{"id": float64(agg.Lots[1].ID)},
		),
	})
	require.NoError(t, err)
	require.Len(t, res.Project.Lots, 1)
	assert.Equal(t, "2", res.Project.Lots[0].LotNumber)
}

func TestFloorPlanNameTieBreak(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{
		FloorPlans: payloads(map[string]any{"name": "Plan A"}, map[string]any{"name": "plan a "}),
	})
	require.Len(t, agg.FloorPlans, 1)

	res, err := h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		FloorPlans: payloads(map[string]any{"name": "PLAN A", "price": "5"}),
	})
	require.NoError(t, err)
	require.Len(t, res.Project.FloorPlans, 1)
	assert.Equal(t, agg.FloorPlans[0].ID, res.Project.FloorPlans[0].ID)
	assert.Equal(t, "PLAN A", res.Project.FloorPlans[0].Name)
	assert.Equal(t, 5.0, *res.Project.FloorPlans[0].Price)
}

func TestEmptyStringClearsNullableFields(t *testing.T) {
	h := newHarness(t)
	agg := h.create(t, &reconcile.Request{
		Fields: h.fields(map[string]any{"price_starting_from": "250000", "bedrooms": 4.0}),
		Lots:   payloads(map[string]any{"lot_number": "1", "price": "1000"}),
	})
	require.NotNil(t, agg.PriceStartingFrom)

	res, err := h.rec.UpdateAggregate(context.Background(), agg.ID, &reconcile.Request{
		Fields: map[string]any{"price_starting_from": "", "bedrooms": ""},
		Lots:   payloads(map[string]any{"id": float64(agg.Lots[0].ID), "price": ""}),
	})
	require.NoError(t, err)
	assert.Nil(t, res.Project.PriceStartingFrom)
	assert.Nil(t, res.Project.Bedrooms)
	assert.Nil(t, res.Project.Lots[0].Price)
}

func TestProjectValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.rec.CreateAggregate(ctx, &reconcile.Request{Fields: h.fields(map[string]any{"colour": "red"})})
	assert.Equal(t, "colour", asValidation(t, err).Field)

	_, err = h.rec.CreateAggregate(ctx, &reconcile.Request{Fields: map[string]any{"name": "No City"}})
	assert.Equal(t, "city_id", asValidation(t, err).Field)

	_, err = h.rec.CreateAggregate(ctx, &reconcile.Request{Fields: map[string]any{"name": "Lost", "city_id": 9999.0}})
	ve := asValidation(t, err)
	assert.Equal(t, "city_id", ve.Field)
	assert.Equal(t, reconcile.KindShape, ve.Kind)

	_, err = h.rec.CreateAggregate(ctx, &reconcile.Request{Fields: h.fields(map[string]any{"price_starting_from": "10", "price_ending_at": "5"})})
	assert.Equal(t, "price_ending_at", asValidation(t, err).Field)

	_, err = h.rec.CreateAggregate(ctx, &reconcile.Request{Fields: h.fields(map[string]any{"price_starting_from": "-1"})})
	ve = asValidation(t, err)
	assert.Equal(t, reconcile.KindCoercion, ve.Kind)

	_, err = h.rec.CreateAggregate(ctx, &reconcile.Request{RenderingsAdd: []reconcile.ChildPayload{{Fields: map[string]any{"title": "x"}}}, Fields: h.fields(nil)})
	ve = asValidation(t, err)
	assert.Equal(t, reconcile.ChildRenderings, ve.Child)
	assert.Equal(t, "image", ve.Field)

	assert.Equal(t, 0, h.store.Counts()["projects"])

	_, err = h.rec.UpdateAggregate(ctx, 12345, &reconcile.Request{})
	assert.ErrorIs(t, err, reconcile.ErrNotFound)
	assert.Equal(t, "not_found", reconcile.Outcome(err))
}

func TestUnknownDeveloperIsDroppedWithWarning(t *testing.T) {
	h := newHarness(t)
	dev := h.store.AddDeveloper(models.Developer{Name: "Acme Homes"})

	res, err := h.rec.CreateAggregate(context.Background(), &reconcile.Request{Fields: h.fields(map[string]any{"developer_id": "31337"})})
	require.NoError(t, err)
	assert.Nil(t, res.Project.DeveloperID)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "project_developer", res.Warnings[0].Relation)

	res, err = h.rec.UpdateAggregate(context.Background(), res.Project.ID, &reconcile.Request{Fields: map[string]any{"developer_id": float64(dev.ID)}})
	require.NoError(t, err)
	require.NotNil(t, res.Project.Developer)
	assert.Equal(t, "Acme Homes", res.Project.Developer.Name)
	assert.Empty(t, res.Warnings)
}

func TestReplacingAndRemovingFiles(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	agg := h.create(t, &reconcile.Request{
		Lots:     &[]reconcile.ChildPayload{{Fields: map[string]any{"lot_number": "1"}, File: upload("lot-v1.png")}},
		SitePlan: &reconcile.ChildPayload{File: upload("site-v1.pdf")},
	})
	oldLot, oldSite := agg.Lots[0].LotRendering, agg.SitePlan.File

	res, err := h.rec.UpdateAggregate(ctx, agg.ID, &reconcile.Request{
		Lots:     &[]reconcile.ChildPayload{{Fields: map[string]any{"id": float64(agg.Lots[0].ID)}, File: upload("lot-v2.png")}},
		SitePlan: &reconcile.ChildPayload{Fields: map[string]any{"file_remove": "true"}},
	})
	require.NoError(t, err)

	assert.NotEqual(t, oldLot, res.Project.Lots[0].LotRendering)
	assert.True(t, h.disk.Exists(res.Project.Lots[0].LotRendering))
	assert.Empty(t, res.Project.SitePlan.File)
	assert.Empty(t, res.Project.SitePlan.FileURL)
	require.Len(t, h.released, 1)
	assert.ElementsMatch(t, []string{oldLot, oldSite}, h.released[0])
	assert.False(t, h.disk.Exists(oldLot))
	assert.False(t, h.disk.Exists(oldSite))
}

func TestDeleteAggregateReleasesEveryFile(t *testing.T) {
	h := newHarness(t)
	gym := h.store.AddAmenity(models.Amenity{Name: "Gym"})
	agg := h.create(t, &reconcile.Request{
		FloorPlans:         &[]reconcile.ChildPayload{{Fields: map[string]any{"name": "A"}, File: upload("a.pdf")}},
		RenderingsAdd:      []reconcile.ChildPayload{{File: upload("r.jpg")}},
		FeatureFinishesAdd: []reconcile.ChildPayload{{File: upload("f.jpg")}},
		DocumentsAdd:       []reconcile.ChildPayload{{File: upload("d.pdf")}},
		Contacts:           payloads(map[string]any{"name": "Ann"}),
		AmenityIDs:         ids(gym.ID),
	})

	require.NoError(t, h.rec.DeleteAggregate(context.Background(), agg.ID))

	counts := h.store.Counts()
	delete(counts, "amenities")
	for table, n := range counts {
		assert.Zero(t, n, table)
	}
	assert.Equal(t, 1, h.store.Counts()["amenities"], "catalog rows survive")
	require.Len(t, h.released, 1)
	assert.Len(t, h.released[0], 4)
	for _, name := range h.released[0] {
		assert.False(t, h.disk.Exists(name))
	}

	_, err := h.rec.LoadAggregate(context.Background(), agg.ID)
	assert.ErrorIs(t, err, reconcile.ErrNotFound)
	assert.ErrorIs(t, h.rec.DeleteAggregate(context.Background(), agg.ID), reconcile.ErrNotFound)
}
