package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
)

func TestParseDocumentSplitsCollections(t *testing.T) {
	req, err := ParseDocument(map[string]any{
		"name":                   "Oak Ridge",
		"city_id":                "3",
		"floor_plans":            `[{"name": "A"}, {"id": 4, "name": "B"}]`,
		"lots":                   []any{map[string]any{"lot_number": "1"}},
		"amenity_ids":            "",
		"deleted_floor_plan_ids": "[7, 8]",
		"site_plan":              map[string]any{"title": "Phase 1"},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"name": "Oak Ridge", "city_id": "3"}, req.Fields)
	require.NotNil(t, req.FloorPlans)
	require.Len(t, *req.FloorPlans, 2)
	assert.Equal(t, "B", (*req.FloorPlans)[1].Fields["name"])
	require.NotNil(t, req.Lots)
	assert.Len(t, *req.Lots, 1)
	assert.Nil(t, req.Contacts, "omitted collection stays nil")
	require.NotNil(t, req.AmenityIDs)
	assert.Empty(t, *req.AmenityIDs, "empty string clears the set")
	assert.Equal(t, []int64{7, 8}, req.DeletedFloorPlanIDs)
	require.NotNil(t, req.SitePlan)
	assert.Equal(t, "Phase 1", req.SitePlan.Fields["title"])
}

func TestParseDocumentMergesKeepAliases(t *testing.T) {
	req, err := ParseDocument(map[string]any{
		"existing_images":              []any{1.0},
		"existing_renderings_keep":     "2",
		"existing_legal_documents":     "[5]",
		"existing_marketing_documents": "[6]",
	})
	require.NoError(t, err)

	require.NotNil(t, req.KeepRenderings)
	assert.ElementsMatch(t, []int64{1, 2}, *req.KeepRenderings)
	assert.Nil(t, req.KeepDocuments, "legacy document lists stay scoped to their type")
	assert.Equal(t, map[string][]int64{
		models.DocumentTypeDocument:  {5},
		models.DocumentTypeMarketing: {6},
	}, req.KeepDocumentsByType)
	assert.Nil(t, req.KeepFeatureFinishes)
}

func TestParseDocumentEmptyLegacyListClearsItsType(t *testing.T) {
	req, err := ParseDocument(map[string]any{"existing_marketing_documents": "[]"})
	require.NoError(t, err)

	list, ok := req.KeepDocumentsByType[models.DocumentTypeMarketing]
	assert.True(t, ok)
	assert.Empty(t, list)
	_, ok = req.KeepDocumentsByType[models.DocumentTypeDocument]
	assert.False(t, ok)
}

func TestParseDocumentNullMeansOmitted(t *testing.T) {
	req, err := ParseDocument(map[string]any{"floor_plans": nil, "amenity_ids": nil, "site_plan": nil})
	require.NoError(t, err)
	assert.Nil(t, req.FloorPlans)
	assert.Nil(t, req.AmenityIDs)
	assert.Nil(t, req.SitePlan)
}

func TestParseDocumentRejectsMalformedCollections(t *testing.T) {
	_, err := ParseDocument(map[string]any{"floor_plans": 5.0})
	ve := validationError(t, err)
	assert.Equal(t, ChildFloorPlans, ve.Child)
	assert.Equal(t, KindShape, ve.Kind)

	_, err = ParseDocument(map[string]any{"lots": []any{map[string]any{}, "lot 2"}})
	ve = validationError(t, err)
	assert.Equal(t, ChildLots, ve.Child)
	assert.Equal(t, 1, ve.Index)

	_, err = ParseDocument(map[string]any{"contacts": "[{"})
	ve = validationError(t, err)
	assert.Equal(t, ChildContacts, ve.Child)

	_, err = ParseDocument(map[string]any{"amenity_ids": "[1, -2]"})
	ve = validationError(t, err)
	assert.Equal(t, KindCoercion, ve.Kind)
	assert.Equal(t, KeyAmenityIDs, ve.Field)

	_, err = ParseDocument(map[string]any{"site_plan": "plan.pdf"})
	ve = validationError(t, err)
	assert.Equal(t, ChildSitePlan, ve.Child)
}
