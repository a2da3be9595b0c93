// Package memstore is an in-memory reconcile.Store. Every transaction works
// on a copy of the data that replaces the original only on success.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"backend/internal/models"
	"backend/internal/reconcile"
)

type Store struct {
	mu     sync.Mutex
	data   *state
	faults map[string]error
}

type state struct {
	seq              int64
	projects         map[int64]models.Project
	floorPlans       map[int64]models.FloorPlan
	lots             map[int64]models.Lot
	lotFloorPlans    map[int64][]int64
	renderings       map[int64]models.Rendering
	documents        map[int64]models.Document
	featureFinishes  map[int64]models.FeatureFinish
	contacts         map[int64]models.Contact
	sitePlans        map[int64]models.SitePlan
	amenities        map[int64]models.Amenity
	projectAmenities map[int64][]int64
	cities           map[int64]models.City
	developers       map[int64]models.Developer
}

func New() *Store {
	return &Store{
		data: &state{
			projects:         map[int64]models.Project{},
			floorPlans:       map[int64]models.FloorPlan{},
			lots:             map[int64]models.Lot{},
			lotFloorPlans:    map[int64][]int64{},
			renderings:       map[int64]models.Rendering{},
			documents:        map[int64]models.Document{},
			featureFinishes:  map[int64]models.FeatureFinish{},
			contacts:         map[int64]models.Contact{},
			sitePlans:        map[int64]models.SitePlan{},
			amenities:        map[int64]models.Amenity{},
			projectAmenities: map[int64][]int64{},
			cities:           map[int64]models.City{},
			developers:       map[int64]models.Developer{},
		},
		faults: map[string]error{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneLinks(m map[int64][]int64) map[int64][]int64 {
	out := make(map[int64][]int64, len(m))
	for k, v := range m {
		out[k] = append([]int64(nil), v...)
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		seq:              s.seq,
		projects:         cloneMap(s.projects),
		floorPlans:       cloneMap(s.floorPlans),
		lots:             cloneMap(s.lots),
		lotFloorPlans:    cloneLinks(s.lotFloorPlans),
		renderings:       cloneMap(s.renderings),
		documents:        cloneMap(s.documents),
		featureFinishes:  cloneMap(s.featureFinishes),
		contacts:         cloneMap(s.contacts),
		sitePlans:        cloneMap(s.sitePlans),
		amenities:        cloneMap(s.amenities),
		projectAmenities: cloneLinks(s.projectAmenities),
		cities:           cloneMap(s.cities),
		developers:       cloneMap(s.developers),
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// InjectFault makes the operation named op (for example "lots.create") fail
// with err until cleared with a nil err.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx reconcile.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, &tx{st: work, faults: s.faults}); err != nil {
		return err
	}
	s.data = work
	return nil
}

// AddCity, AddDeveloper and AddAmenity seed reference rows.
func (s *Store) AddCity(c models.City) models.City {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.data.nextID()
	s.data.cities[c.ID] = c
	return c
}

func (s *Store) AddDeveloper(d models.Developer) models.Developer {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.data.nextID()
	s.data.developers[d.ID] = d
	return d
}

func (s *Store) AddAmenity(a models.Amenity) models.Amenity {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.data.nextID()
	s.data.amenities[a.ID] = a
	return a
}

// Counts reports the number of rows per table, for assertions.
func (s *Store) Counts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := 0
	for _, ids := range s.data.lotFloorPlans {
		links += len(ids)
	}
	amenityLinks := 0
	for _, ids := range s.data.projectAmenities {
		amenityLinks += len(ids)
	}
	return map[string]int{
		"projects":          len(s.data.projects),
		"floor_plans":       len(s.data.floorPlans),
		"lots":              len(s.data.lots),
		"lot_floor_plans":   links,
		"renderings":        len(s.data.renderings),
		"documents":         len(s.data.documents),
		"features_finishes": len(s.data.featureFinishes),
		"contacts":          len(s.data.contacts),
		"site_plans":        len(s.data.sitePlans),
		"amenities":         len(s.data.amenities),
		"project_amenities": amenityLinks,
	}
}

// List implements the public project listing over the committed data.
func (s *Store) List(_ context.Context, f models.ProjectFilter) ([]models.ProjectSummary, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.ProjectSummary
	search := strings.ToLower(strings.TrimSpace(f.Search))
	for _, p := range s.data.projects {
		city := s.data.cities[p.CityID]
		switch {
		case f.ActiveOnly && !p.IsActive,
			f.ProjectType != "" && p.ProjectType != f.ProjectType,
			f.Status != "" && p.Status != f.Status,
			f.CityID != nil && p.CityID != *f.CityID,
			f.CitySlug != "" && city.Slug != f.CitySlug,
			f.IsFeatured != nil && p.IsFeatured != *f.IsFeatured,
			f.PriceMin != nil && (p.PriceEndingAt == nil || *p.PriceEndingAt < *f.PriceMin),
			f.PriceMax != nil && (p.PriceStartingFrom == nil || *p.PriceStartingFrom > *f.PriceMax),
			search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.ProjectAddress+" "+city.Name), search):
			continue
		}

		sum := models.ProjectSummary{Project: p, CityName: city.Name, CitySlug: city.Slug}
		for _, fp := range s.data.floorPlans {
			if fp.ProjectID == p.ID {
				sum.FloorPlanCount++
			}
		}
		for _, l := range s.data.lots {
			if l.ProjectID == p.ID {
				sum.LotCount++
			}
		}
		var cover *models.Rendering
		for _, r := range s.data.renderings {
			if r.ProjectID == p.ID && (cover == nil || r.Order < cover.Order || (r.Order == cover.Order && r.ID < cover.ID)) {
				rr := r
				cover = &rr
			}
		}
		if cover != nil {
			sum.CoverImageURL = cover.Image
		}
		out = append(out, sum)
	}

	sortSummaries(out, f.Ordering)
	total := len(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			out = nil
		} else {
			out = out[f.Offset:]
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func sortSummaries(out []models.ProjectSummary, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	key := strings.TrimPrefix(ordering, "-")
	less := func(a, b models.ProjectSummary) bool {
		return a.CreatedAt.After(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID > b.ID)
	}
	switch key {
	case "name":
		less = func(a, b models.ProjectSummary) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case "price_starting_from":
		less = func(a, b models.ProjectSummary) bool { return price(a.PriceStartingFrom) < price(b.PriceStartingFrom) }
	case "created_at":
		less = func(a, b models.ProjectSummary) bool {
			return a.CreatedAt.Before(b.CreatedAt) || (a.CreatedAt.Equal(b.CreatedAt) && a.ID < b.ID)
		}
	default:
		desc = false
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
}

func price(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

var _ reconcile.Store = (*Store)(nil)

func stamp(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}
