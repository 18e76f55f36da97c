package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/geo"
	"location-distance-service/internal/platform/obs"
	"location-distance-service/internal/ports"
)

const (
	SourceCached     = "cached"
	SourceCalculated = "calculated"
)

// DistanceResult is a stored or freshly computed distance, tagged with where
// it came from.
type DistanceResult struct {
	Record *domain.DistanceRecord
	Source string
}

// DistanceService owns the distance cache: it answers pair lookups from the
// store when possible and computes fresh results otherwise, using the
// straight-line estimator when both locations have known coordinates and the
// external route resolver when they do not.
type DistanceService struct {
	store    ports.DistanceStore
	geocoder ports.Geocoder
	routes   ports.RouteProvider
	now      func() time.Time
}

func NewDistanceService(
	store ports.DistanceStore,
	geocoder ports.Geocoder,
	routes ports.RouteProvider,
) *DistanceService {
	return &DistanceService{
		store:    store,
		geocoder: geocoder,
		routes:   routes,
		now:      time.Now,
	}
}

// Between returns the distance between two locations.
//
// Without force, an existing record is returned as-is: no staleness check is
// applied on read (staleness is a reporting capability, see Outdated). With
// force, or on a store miss, a fresh result is computed and upserted under
// the normalized pair key. On any computation error nothing is written; a
// stale record, if one exists, remains untouched.
func (s *DistanceService) Between(
	ctx context.Context,
	a, b *domain.Location,
	force bool,
) (_ DistanceResult, err error) {
	defer obs.Time(ctx, "distance.Between")(&err)

	if a == nil || b == nil {
		return DistanceResult{}, errors.New("distance between: both locations must be non-nil")
	}

	from, to := domain.NormalizePair(a.ID, b.ID)

	if !force {
		rec, ok, err := s.store.Get(ctx, from, to)
		if err != nil {
			return DistanceResult{}, fmt.Errorf("distance between (%d,%d): read store: %w", from, to, err)
		}
		if ok {
			return DistanceResult{Record: rec, Source: SourceCached}, nil
		}
	}

	rec, err := s.compute(ctx, a, b)
	if err != nil {
		return DistanceResult{}, fmt.Errorf(
			"distance between %q and %q: %w",
			a.ShortCode, b.ShortCode, err,
		)
	}

	rec.FromLocationID = from
	rec.ToLocationID = to
	rec.CalculatedAt = s.now().UTC()

	if err := s.store.Upsert(ctx, rec); err != nil {
		return DistanceResult{}, fmt.Errorf("distance between (%d,%d): write store: %w", from, to, err)
	}

	return DistanceResult{Record: rec, Source: SourceCalculated}, nil
}

func (s *DistanceService) compute(
	ctx context.Context,
	a, b *domain.Location,
) (*domain.DistanceRecord, error) {
	// Fast path: both coordinates known, no external call. Straight-line
	// estimates carry no duration or route geometry.
	if a.HasCoordinates() && b.HasCoordinates() {
		km, miles := geo.Estimate(a.Coordinates(), b.Coordinates())
		return &domain.DistanceRecord{
			DistanceKm:    km,
			DistanceMiles: miles,
		}, nil
	}

	originAddr := a.FullAddress()
	if originAddr == "" {
		return nil, fmt.Errorf("location %q has neither coordinates nor an address", a.ShortCode)
	}
	destAddr := b.FullAddress()
	if destAddr == "" {
		return nil, fmt.Errorf("location %q has neither coordinates nor an address", b.ShortCode)
	}

	origin, err := s.geocoder.Geocode(ctx, originAddr)
	if err != nil {
		return nil, fmt.Errorf("geocode origin %q: %w", originAddr, err)
	}

	dest, err := s.geocoder.Geocode(ctx, destAddr)
	if err != nil {
		return nil, fmt.Errorf("geocode destination %q: %w", destAddr, err)
	}

	route, err := s.routes.ResolveRoute(ctx, []domain.Coordinates{origin, dest})
	if err != nil {
		return nil, fmt.Errorf("resolve route: %w", err)
	}

	return recordFromRoute(&route), nil
}

// recordFromRoute converts raw route metrics (meters, seconds) into the
// stored representation (rounded km/miles, human duration).
func recordFromRoute(route *ports.RouteResult) *domain.DistanceRecord {
	km := route.DistanceMeters / 1000
	seconds := int(route.DurationSeconds)

	return &domain.DistanceRecord{
		DistanceKm:      geo.Round1(km),
		DistanceMiles:   geo.Round1(geo.KmToMiles(km)),
		DurationText:    domain.HumanDuration(seconds),
		DurationMinutes: domain.DurationMinutes(seconds),
		RouteCoords:     route.Geometry,
	}
}

// Outdated returns stored records older than the threshold, for reporting.
func (s *DistanceService) Outdated(ctx context.Context, thresholdDays int) ([]*domain.DistanceRecord, error) {
	if thresholdDays <= 0 {
		thresholdDays = domain.DefaultOutdatedDays
	}
	recs, err := s.store.ListOutdated(ctx, thresholdDays)
	if err != nil {
		return nil, fmt.Errorf("outdated distances: %w", err)
	}
	return recs, nil
}

// Delete removes the stored record for a pair, if present.
func (s *DistanceService) Delete(ctx context.Context, aID, bID int64) error {
	if err := s.store.Delete(ctx, aID, bID); err != nil {
		return fmt.Errorf("delete distance (%d,%d): %w", aID, bID, err)
	}
	return nil
}
