package models

// ProjectAggregate is a project with every collection it owns, as returned
// after a reconcile and by the detail endpoint.
type ProjectAggregate struct {
	Project
	City            *City           `json:"city,omitempty"`
	Developer       *Developer      `json:"developer,omitempty"`
	FloorPlans      []FloorPlan     `json:"floor_plans"`
	Lots            []Lot           `json:"lots"`
	Renderings      []Rendering     `json:"renderings"`
	Documents       []Document      `json:"documents"`
	FeatureFinishes []FeatureFinish `json:"features_finishes"`
	Contacts        []Contact       `json:"contacts"`
	Amenities       []Amenity       `json:"amenities"`
	AmenityIDs      []int64         `json:"amenity_ids"`
	SitePlan        *SitePlan       `json:"site_plan"`
}
