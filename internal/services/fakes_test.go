package services

import (
	"context"
	"fmt"
	"time"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
)

// In-memory ports for service tests. They count calls so cache behavior and
// call paths can be asserted without a database or network.

type memDistanceStore struct {
	records map[[2]int64]*domain.DistanceRecord
	gets    int
	upserts int
}

func newMemDistanceStore() *memDistanceStore {
	return &memDistanceStore{records: map[[2]int64]*domain.DistanceRecord{}}
}

func (s *memDistanceStore) Get(ctx context.Context, from, to int64) (*domain.DistanceRecord, bool, error) {
	s.gets++
	from, to = domain.NormalizePair(from, to)
	rec, ok := s.records[[2]int64{from, to}]
	return rec, ok, nil
}

func (s *memDistanceStore) Upsert(ctx context.Context, rec *domain.DistanceRecord) error {
	s.upserts++
	from, to := domain.NormalizePair(rec.FromLocationID, rec.ToLocationID)
	s.records[[2]int64{from, to}] = rec
	return nil
}

func (s *memDistanceStore) Delete(ctx context.Context, from, to int64) error {
	from, to = domain.NormalizePair(from, to)
	delete(s.records, [2]int64{from, to})
	return nil
}

func (s *memDistanceStore) ListOutdated(ctx context.Context, thresholdDays int) ([]*domain.DistanceRecord, error) {
	var out []*domain.DistanceRecord
	for _, rec := range s.records {
		if rec.IsOutdated(thresholdDays) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type memLocationRepo struct {
	locations map[int64]*domain.Location
}

func newMemLocationRepo(locs ...*domain.Location) *memLocationRepo {
	r := &memLocationRepo{locations: map[int64]*domain.Location{}}
	for _, loc := range locs {
		r.locations[loc.ID] = loc
	}
	return r
}

func (r *memLocationRepo) Get(ctx context.Context, id int64) (*domain.Location, error) {
	loc, ok := r.locations[id]
	if !ok {
		return nil, fmt.Errorf("location %d: %w", id, ports.ErrNotFound)
	}
	cp := *loc
	return &cp, nil
}

func (r *memLocationRepo) GetByShortCode(ctx context.Context, code string) (*domain.Location, error) {
	for _, loc := range r.locations {
		if loc.ShortCode == code {
			cp := *loc
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("location %q: %w", code, ports.ErrNotFound)
}

func (r *memLocationRepo) List(ctx context.Context) ([]*domain.Location, error) {
	var out []*domain.Location
	for _, loc := range r.locations {
		cp := *loc
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memLocationRepo) ListByType(ctx context.Context, t domain.LocationType) ([]*domain.Location, error) {
	var out []*domain.Location
	for _, loc := range r.locations {
		if loc.Type == t {
			cp := *loc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLocationRepo) ListPairedDistributionCenters(ctx context.Context, recyclingID int64) ([]*domain.Location, error) {
	var out []*domain.Location
	for _, loc := range r.locations {
		if loc.IsDistributionCenter() && loc.RecyclingLocationID != nil && *loc.RecyclingLocationID == recyclingID {
			cp := *loc
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memLocationRepo) Create(ctx context.Context, loc *domain.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	r.locations[loc.ID] = loc
	return nil
}

func (r *memLocationRepo) Update(ctx context.Context, loc *domain.Location) error {
	if err := loc.Validate(); err != nil {
		return err
	}
	if _, ok := r.locations[loc.ID]; !ok {
		return fmt.Errorf("location %d: %w", loc.ID, ports.ErrNotFound)
	}
	r.locations[loc.ID] = loc
	return nil
}

func (r *memLocationRepo) Delete(ctx context.Context, id int64) error {
	delete(r.locations, id)
	return nil
}

type memGeocodeCache struct {
	entries map[string]domain.Coordinates
	puts    int
}

func newMemGeocodeCache() *memGeocodeCache {
	return &memGeocodeCache{entries: map[string]domain.Coordinates{}}
}

func (c *memGeocodeCache) Get(ctx context.Context, key string) (domain.Coordinates, bool, error) {
	coords, ok := c.entries[key]
	return coords, ok, nil
}

func (c *memGeocodeCache) Put(ctx context.Context, key string, coords domain.Coordinates) error {
	c.puts++
	c.entries[key] = coords
	return nil
}

type memRouteCache struct {
	entries map[string]*ports.AggregateRoute
}

func newMemRouteCache() *memRouteCache {
	return &memRouteCache{entries: map[string]*ports.AggregateRoute{}}
}

func (c *memRouteCache) GetAggregate(ctx context.Context, key string) (*ports.AggregateRoute, bool, error) {
	route, ok := c.entries[key]
	return route, ok, nil
}

func (c *memRouteCache) PutAggregate(ctx context.Context, key string, route *ports.AggregateRoute) error {
	c.entries[key] = route
	return nil
}

func ptrF(v float64) *float64 { return &v }
func ptrI(v int64) *int64     { return &v }

func testLocation(id int64, code string, t domain.LocationType) *domain.Location {
	return &domain.Location{
		ID:        id,
		ShortCode: code,
		Name:      code,
		Address:   fmt.Sprintf("%d Main St", id),
		City:      "Austin",
		State:     "TX",
		Zip:       "78701",
		Country:   "US",
		Type:      t,
		IsActive:  true,
	}
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
