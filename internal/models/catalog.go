package models

import (
	"time"
)

// Catalog entities are persisted through gorm; the tags mirror the SQL in
// internal/database/migrations.go.

type State struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	Abbreviation string    `gorm:"type:varchar(2);not null" json:"abbreviation"`
	Slug         string    `gorm:"type:varchar(120);uniqueIndex" json:"slug"`
	Description  string    `gorm:"type:text" json:"description"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (State) TableName() string { return "states" }

func (s *State) GetSlug() string     { return s.Slug }
func (s *State) SetSlug(slug string) { s.Slug = slug }
func (s *State) SlugSource() string  { return s.Name }
func (s *State) GetID() int64        { return s.ID }

type City struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(120);uniqueIndex" json:"slug"`
	StateID     int64     `gorm:"not null;index" json:"state_id"`
	State       *State    `gorm:"foreignKey:StateID" json:"state,omitempty"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (City) TableName() string { return "cities" }

func (c *City) GetSlug() string     { return c.Slug }
func (c *City) SetSlug(slug string) { c.Slug = slug }
func (c *City) SlugSource() string  { return c.Name }
func (c *City) GetID() int64        { return c.ID }

type Developer struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(200);not null" json:"name"`
	Slug      string    `gorm:"type:varchar(220);uniqueIndex" json:"slug"`
	Email     string    `gorm:"type:varchar(254)" json:"email" validate:"omitempty,email"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	Website   string    `gorm:"type:varchar(200)" json:"website"`
	Details   string    `gorm:"type:text" json:"details"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Developer) TableName() string { return "developers" }

func (d *Developer) GetSlug() string     { return d.Slug }
func (d *Developer) SetSlug(slug string) { d.Slug = slug }
func (d *Developer) SlugSource() string  { return d.Name }
func (d *Developer) GetID() int64        { return d.ID }

const (
	AmenityCategoryRecreation     = "Recreation"
	AmenityCategoryFitness        = "Fitness"
	AmenityCategoryCommunity      = "Community"
	AmenityCategorySecurity       = "Security"
	AmenityCategoryTransportation = "Transportation"
	AmenityCategoryLifestyle      = "Lifestyle"
	AmenityCategoryTechnology     = "Technology"
	AmenityCategoryEnvironment    = "Environment"
	AmenityCategoryOther          = "Other"
)

var AmenityCategories = []string{
	AmenityCategoryRecreation,
	AmenityCategoryFitness,
	AmenityCategoryCommunity,
	AmenityCategorySecurity,
	AmenityCategoryTransportation,
	AmenityCategoryLifestyle,
	AmenityCategoryTechnology,
	AmenityCategoryEnvironment,
	AmenityCategoryOther,
}

type Amenity struct {
	ID          int64     `gorm:"primaryKey" json:"id" yaml:"-"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name" yaml:"name"`
	Category    string    `gorm:"type:varchar(30);not null;default:Other" json:"category" yaml:"category"`
	Icon        string    `gorm:"type:varchar(50)" json:"icon" yaml:"icon"`
	Description string    `gorm:"type:text" json:"description" yaml:"description"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active" yaml:"-"`
	Order       int       `gorm:"column:sort_order;not null;default:0" json:"order" yaml:"order"`
	CreatedAt   time.Time `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"-"`
}

func (Amenity) TableName() string { return "amenities" }

const (
	TestimonialSourceGoogle   = "Google"
	TestimonialSourceFacebook = "Facebook"
	TestimonialSourceYelp     = "Yelp"
	TestimonialSourceZillow   = "Zillow"
	TestimonialSourceOther    = "Other"
)

var TestimonialSources = []string{
	TestimonialSourceGoogle,
	TestimonialSourceFacebook,
	TestimonialSourceYelp,
	TestimonialSourceZillow,
	TestimonialSourceOther,
}

type Testimonial struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);not null" json:"name"`
	Testimonial string    `gorm:"type:text;not null" json:"testimonial"`
	Source      string    `gorm:"type:varchar(20);not null;default:Google" json:"source"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Testimonial) TableName() string { return "testimonials" }

type ProjectInquiry struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ProjectID *int64    `gorm:"index" json:"project_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Email     string    `gorm:"type:varchar(254);not null" json:"email" validate:"required,email"`
	Phone     string    `gorm:"type:varchar(30)" json:"phone"`
	Message   string    `gorm:"type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProjectInquiry) TableName() string { return "project_inquiries" }
