package models

import (
	"time"
)

const (
	ProjectTypeSingleFamily = "Single Family"
	ProjectTypeMultiFamily  = "Multi Family"
	ProjectTypeCondominium  = "Condominium"
	ProjectTypeTownhouse    = "Townhouse"
	ProjectTypeMoveInReady  = "Move in Ready"
	ProjectTypeOther        = "Other"
)

// ProjectTypes doubles as the list of floor plan house types.
var ProjectTypes = []string{
	ProjectTypeSingleFamily,
	ProjectTypeMultiFamily,
	ProjectTypeCondominium,
	ProjectTypeTownhouse,
	ProjectTypeMoveInReady,
	ProjectTypeOther,
}

const (
	ProjectStatusPlanning     = "Planning"
	ProjectStatusApproval     = "Approval"
	ProjectStatusSales        = "Sales"
	ProjectStatusConstruction = "Construction"
	ProjectStatusCompleted    = "Completed"
	ProjectStatusOnHold       = "On Hold"
)

var ProjectStatuses = []string{
	ProjectStatusPlanning,
	ProjectStatusApproval,
	ProjectStatusSales,
	ProjectStatusConstruction,
	ProjectStatusCompleted,
	ProjectStatusOnHold,
}

type Project struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Slug              string    `json:"slug"`
	ProjectType       string    `json:"project_type"`
	Status            string    `json:"status"`
	ProjectAddress    string    `json:"project_address"`
	PriceStartingFrom *float64  `json:"price_starting_from"`
	PriceEndingAt     *float64  `json:"price_ending_at"`
	Description       string    `json:"project_description"`
	VideoURL          string    `json:"project_video_url"`
	AreaSquareFootage *float64  `json:"area_square_footage"`
	LotSize           *float64  `json:"lot_size"`
	GarageSpaces      *int      `json:"garage_spaces"`
	Bedrooms          *int      `json:"bedrooms"`
	Bathrooms         *float64  `json:"bathrooms"`
	IsFeatured        bool      `json:"is_featured"`
	IsActive          bool      `json:"is_active"`
	CityID            int64     `json:"city_id"`
	DeveloperID       *int64    `json:"developer_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Prepare fills the defaults a new project gets before its first insert.
func (p *Project) Prepare() {
	if p.ProjectType == "" {
		p.ProjectType = ProjectTypeSingleFamily
	}
	if p.Status == "" {
		p.Status = ProjectStatusPlanning
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

// ProjectSummary is the list representation used by the public listings.
type ProjectSummary struct {
	Project
	CityName       string `json:"city_name"`
	CitySlug       string `json:"city_slug"`
	CoverImageURL  string `json:"cover_image,omitempty"`
	FloorPlanCount int    `json:"floor_plan_count"`
	LotCount       int    `json:"lot_count"`
}

// ProjectFilter carries the query parameters of the public project listing.
type ProjectFilter struct {
	ProjectType string
	Status      string
	CityID      *int64
	CitySlug    string
	IsFeatured  *bool
	PriceMin    *float64
	PriceMax    *float64
	Search      string
	Ordering    string
	ActiveOnly  bool
	Limit       int
	Offset      int
}
