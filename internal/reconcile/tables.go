package reconcile

import (
	"strings"

	"backend/internal/models"
)

const (
	ChildFloorPlans      = "floor_plans"
	ChildLots            = "lots"
	ChildRenderings      = "renderings"
	ChildDocuments       = "documents"
	ChildFeatureFinishes = "features_finishes"
	ChildContacts        = "contacts"
	ChildSitePlan        = "site_plan"
)

func concat[T any](groups ...[]Field[T]) []Field[T] {
	var out []Field[T]
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var projectFields = NewFieldTable("project", concat(
	[]Field[models.Project]{
		{Name: "name", Kind: String, Required: true, Set: func(p *models.Project, v any) { p.Name = strings.TrimSpace(asString(v)) }},
		{Name: "project_type", Kind: Choice, Choices: models.ProjectTypes, Set: func(p *models.Project, v any) {
			if s := asString(v); s != "" {
				p.ProjectType = s
			}
		}},
		{Name: "status", Kind: Choice, Choices: models.ProjectStatuses, Set: func(p *models.Project, v any) {
			if s := asString(v); s != "" {
				p.Status = s
			}
		}},
		{Name: "project_address", Kind: String, Set: func(p *models.Project, v any) { p.ProjectAddress = asString(v) }},
		{Name: "city_id", Kind: ID, Required: true, Set: func(p *models.Project, v any) { p.CityID, _ = v.(int64) }},
		{Name: "developer_id", Kind: ID, Set: func(p *models.Project, v any) { p.DeveloperID = asInt64Ptr(v) }},
		{Name: "price_starting_from", Kind: Decimal, Set: func(p *models.Project, v any) { p.PriceStartingFrom = asFloatPtr(v) }},
		{Name: "price_ending_at", Kind: Decimal, Set: func(p *models.Project, v any) { p.PriceEndingAt = asFloatPtr(v) }},
		{Name: "project_description", Kind: String, Set: func(p *models.Project, v any) { p.Description = asString(v) }},
		{Name: "project_video_url", Kind: String, Set: func(p *models.Project, v any) { p.VideoURL = strings.TrimSpace(asString(v)) }},
		{Name: "area_square_footage", Kind: Decimal, Set: func(p *models.Project, v any) { p.AreaSquareFootage = asFloatPtr(v) }},
		{Name: "lot_size", Kind: Decimal, Set: func(p *models.Project, v any) { p.LotSize = asFloatPtr(v) }},
		{Name: "garage_spaces", Kind: Integer, Set: func(p *models.Project, v any) { p.GarageSpaces = asIntPtr(v) }},
		{Name: "bedrooms", Kind: Integer, Set: func(p *models.Project, v any) { p.Bedrooms = asIntPtr(v) }},
		{Name: "bathrooms", Kind: Decimal, Set: func(p *models.Project, v any) { p.Bathrooms = asFloatPtr(v) }},
		{Name: "is_featured", Kind: Boolean, Set: func(p *models.Project, v any) { p.IsFeatured = asBool(v) }},
		{Name: "is_active", Kind: Boolean, Set: func(p *models.Project, v any) {
			if b, ok := v.(bool); ok {
				p.IsActive = b
			}
		}},
	},
	readOnly[models.Project]("id", "slug", "created_at", "updated_at", "city", "developer",
		"renderings", "documents", "features_finishes", "amenities", "city_name", "city_slug"),
)...)

var floorPlanFields = NewFieldTable("floor plan", concat(
	[]Field[models.FloorPlan]{
		{Name: "id", Kind: ID},
		{Name: "name", Kind: String, Set: func(f *models.FloorPlan, v any) { f.Name = strings.TrimSpace(asString(v)) }},
		{Name: "house_type", Kind: Choice, Choices: models.ProjectTypes, Set: func(f *models.FloorPlan, v any) {
			if s := asString(v); s != "" {
				f.HouseType = s
			}
		}},
		{Name: "availability_status", Kind: Choice, Choices: models.AvailabilityStatuses, Set: func(f *models.FloorPlan, v any) {
			if s := asString(v); s != "" {
				f.AvailabilityStatus = s
			}
		}},
		{Name: "square_footage", Kind: Integer, Set: func(f *models.FloorPlan, v any) { f.SquareFootage = asIntPtr(v) }},
		{Name: "bedrooms", Kind: Integer, Set: func(f *models.FloorPlan, v any) { f.Bedrooms = asIntPtr(v) }},
		{Name: "bathrooms", Kind: Decimal, Set: func(f *models.FloorPlan, v any) { f.Bathrooms = asFloatPtr(v) }},
		{Name: "garage_spaces", Kind: Integer, Set: func(f *models.FloorPlan, v any) { f.GarageSpaces = asIntPtr(v) }},
		{Name: "price", Kind: Decimal, Set: func(f *models.FloorPlan, v any) { f.Price = asFloatPtr(v) }},
		{Name: "plan_file_remove", Kind: Boolean},
	},
	readOnly[models.FloorPlan]("project_id", "project", "plan_file", "plan_file_url", "created_at", "updated_at", "lots"),
)...)

var lotFields = NewFieldTable("lot", concat(
	[]Field[models.Lot]{
		{Name: "id", Kind: ID},
		{Name: "lot_number", Kind: String, Required: true, Set: func(l *models.Lot, v any) { l.LotNumber = strings.TrimSpace(asString(v)) }},
		{Name: "lot_numbers", Kind: String, Set: func(l *models.Lot, v any) {
			l.SetLotNumbersList(strings.Split(asString(v), ","))
		}},
		{Name: "lot_numbers_list", Kind: StringList, Set: func(l *models.Lot, v any) {
			list, _ := v.([]string)
			l.SetLotNumbersList(list)
		}},
		{Name: "availability_status", Kind: Choice, Choices: models.AvailabilityStatuses, Set: func(l *models.Lot, v any) {
			if s := asString(v); s != "" {
				l.AvailabilityStatus = s
			}
		}},
		{Name: "lot_size", Kind: Decimal, Set: func(l *models.Lot, v any) { l.LotSize = asFloatPtr(v) }},
		{Name: "price", Kind: Decimal, Set: func(l *models.Lot, v any) { l.Price = asFloatPtr(v) }},
		{Name: "order", Kind: Integer, Set: func(l *models.Lot, v any) { l.Order = asInt(v) }},
		{Name: "floor_plan_ids", Kind: IDList},
		{Name: "lot_rendering_remove", Kind: Boolean},
	},
	readOnly[models.Lot]("project_id", "project", "lot_rendering", "lot_rendering_url", "created_at", "updated_at", "floor_plans"),
)...)

var contactFields = NewFieldTable("contact", concat(
	[]Field[models.Contact]{
		{Name: "id", Kind: ID},
		{Name: "name", Kind: String, Required: true, Set: func(c *models.Contact, v any) { c.Name = strings.TrimSpace(asString(v)) }},
		{Name: "email", Kind: String, Set: func(c *models.Contact, v any) { c.Email = asStringPtr(v) }},
		{Name: "phone", Kind: String, Set: func(c *models.Contact, v any) { c.Phone = asStringPtr(v) }},
		{Name: "order", Kind: Integer, Set: func(c *models.Contact, v any) { c.Order = asInt(v) }},
	},
	readOnly[models.Contact]("project_id", "project"),
)...)

var renderingFields = NewFieldTable("rendering", []Field[models.Rendering]{
	{Name: "title", Kind: String, Set: func(r *models.Rendering, v any) { r.Title = strings.TrimSpace(asString(v)) }},
	{Name: "order", Kind: Integer, Set: func(r *models.Rendering, v any) { r.Order = asInt(v) }},
}...)

var featureFinishFields = NewFieldTable("feature finish", []Field[models.FeatureFinish]{
	{Name: "title", Kind: String, Set: func(f *models.FeatureFinish, v any) { f.Title = strings.TrimSpace(asString(v)) }},
	{Name: "order", Kind: Integer, Set: func(f *models.FeatureFinish, v any) { f.Order = asInt(v) }},
}...)

var documentFields = NewFieldTable("document", []Field[models.Document]{
	{Name: "title", Kind: String, Set: func(d *models.Document, v any) { d.Title = strings.TrimSpace(asString(v)) }},
	{Name: "document_type", Kind: Choice, Choices: models.DocumentTypes, Set: func(d *models.Document, v any) {
		if s := asString(v); s != "" {
			d.DocumentType = s
		}
	}},
}...)

var sitePlanFields = NewFieldTable("site plan", concat(
	[]Field[models.SitePlan]{
		{Name: "title", Kind: String, Set: func(s *models.SitePlan, v any) { s.Title = strings.TrimSpace(asString(v)) }},
		{Name: "file_remove", Kind: Boolean},
	},
	readOnly[models.SitePlan]("id", "project_id", "file", "file_url", "updated_at"),
)...)
