package models

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	AvailabilityAvailable  = "Available"
	AvailabilityReserved   = "Reserved"
	AvailabilitySold       = "Sold"
	AvailabilityComingSoon = "Coming Soon"
)

var AvailabilityStatuses = []string{
	AvailabilityAvailable,
	AvailabilityReserved,
	AvailabilitySold,
	AvailabilityComingSoon,
}

type FloorPlan struct {
	ID                 int64     `json:"id"`
	ProjectID          int64     `json:"project_id"`
	Name               string    `json:"name"`
	HouseType          string    `json:"house_type"`
	AvailabilityStatus string    `json:"availability_status"`
	SquareFootage      *int      `json:"square_footage"`
	Bedrooms           *int      `json:"bedrooms"`
	Bathrooms          *float64  `json:"bathrooms"`
	GarageSpaces       *int      `json:"garage_spaces"`
	Price              *float64  `json:"price"`
	PlanFile           string    `json:"plan_file"`
	PlanFileURL        string    `json:"plan_file_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (f *FloorPlan) Prepare() {
	if f.HouseType == "" {
		f.HouseType = ProjectTypeSingleFamily
	}
	if f.AvailabilityStatus == "" {
		f.AvailabilityStatus = AvailabilityAvailable
	}
	now := time.Now().UTC()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
}

type Lot struct {
	ID                 int64     `json:"id"`
	ProjectID          int64     `json:"project_id"`
	LotNumber          string    `json:"lot_number"`
	LotNumbers         string    `json:"lot_numbers"`
	AvailabilityStatus string    `json:"availability_status"`
	LotSize            *float64  `json:"lot_size"`
	Price              *float64  `json:"price"`
	LotRendering       string    `json:"lot_rendering"`
	LotRenderingURL    string    `json:"lot_rendering_url,omitempty"`
	Order              int       `json:"order"`
	FloorPlanIDs       []int64   `json:"floor_plan_ids"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (l *Lot) Prepare() {
	if l.AvailabilityStatus == "" {
		l.AvailabilityStatus = AvailabilityAvailable
	}
	now := time.Now().UTC()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
}

// LotNumbersList parses the comma-separated auxiliary lot numbers.
func (l *Lot) LotNumbersList() []string {
	if strings.TrimSpace(l.LotNumbers) == "" {
		return []string{}
	}
	parts := strings.Split(l.LotNumbers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MarshalJSON adds the parsed lot_numbers_list to the stored representation.
func (l Lot) MarshalJSON() ([]byte, error) {
	type lot Lot
	return json.Marshal(struct {
		lot
		LotNumbersList []string `json:"lot_numbers_list"`
	}{lot: lot(l), LotNumbersList: l.LotNumbersList()})
}

// SetLotNumbersList stores numbers as a comma-separated list. It does not
// touch LotNumber.
func (l *Lot) SetLotNumbersList(numbers []string) {
	clean := make([]string, 0, len(numbers))
	for _, n := range numbers {
		n = strings.TrimSpace(strings.ReplaceAll(n, ",", ""))
		if n != "" {
			clean = append(clean, n)
		}
	}
	l.LotNumbers = strings.Join(clean, ",")
}

const (
	DocumentTypeBrochure   = "Brochure"
	DocumentTypeFactSheet  = "Fact Sheet"
	DocumentTypeContract   = "Contract"
	DocumentTypeDisclosure = "Disclosure"
	DocumentTypeDocument   = "Document"
	DocumentTypeMarketing  = "Marketing Material"
	DocumentTypeOther      = "Other"
)

var DocumentTypes = []string{
	DocumentTypeBrochure,
	DocumentTypeFactSheet,
	DocumentTypeContract,
	DocumentTypeDisclosure,
	DocumentTypeDocument,
	DocumentTypeMarketing,
	DocumentTypeOther,
}

type Document struct {
	ID           int64     `json:"id"`
	ProjectID    int64     `json:"project_id"`
	Title        string    `json:"title"`
	DocumentType string    `json:"document_type"`
	File         string    `json:"document"`
	FileURL      string    `json:"document_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (d *Document) Prepare() {
	if d.DocumentType == "" {
		d.DocumentType = DocumentTypeDocument
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
}

// Rendering is a project image; FeatureFinish shares the same shape.
type Rendering struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	ImageURL  string    `json:"image_url,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Rendering) Prepare() {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

type FeatureFinish struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	Image     string    `json:"image"`
	ImageURL  string    `json:"image_url,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *FeatureFinish) Prepare() {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
}

type Contact struct {
	ID        int64   `json:"id"`
	ProjectID int64   `json:"project_id"`
	Name      string  `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Order     int     `json:"order"`
}

type SitePlan struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	File      string    `json:"file"`
	FileURL   string    `json:"file_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
