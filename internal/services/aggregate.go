package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/geo"
	"location-distance-service/internal/platform/obs"
	"location-distance-service/internal/ports"
)

// RouteAggregator computes routes through an ordered sequence of locations.
// The default strategy stitches consecutive pairwise legs, riding the
// per-pair distance store; the direct strategy issues a single multi-waypoint
// request and requires every stop to already carry coordinates.
type RouteAggregator struct {
	repo      ports.LocationRepository
	distances *DistanceService
	routes    ports.RouteProvider
	cache     ports.RouteCache
}

func NewRouteAggregator(
	repo ports.LocationRepository,
	distances *DistanceService,
	routes ports.RouteProvider,
	cache ports.RouteCache,
) *RouteAggregator {
	return &RouteAggregator{repo: repo, distances: distances, routes: routes, cache: cache}
}

// AggregateCacheKey hashes the ordered id list. Order matters: reversing a
// route is a different route.
func AggregateCacheKey(ids []int64) string {
	return hashIDList("", ids)
}

// DirectCacheKey is kept distinct from the stitched key so the two
// strategies never serve each other's results.
func DirectCacheKey(ids []int64) string {
	return hashIDList("direct|", ids)
}

func hashIDList(prefix string, ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	sum := sha256.Sum256([]byte(prefix + strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// Aggregate resolves a multi-stop route by chaining pairwise distances.
// Any leg failing aborts the whole computation; partial results are never
// cached or returned.
func (r *RouteAggregator) Aggregate(ctx context.Context, ids []int64) (_ *ports.AggregateRoute, err error) {
	defer obs.Time(ctx, "route.Aggregate")(&err)

	if len(ids) < 2 {
		return nil, fmt.Errorf("aggregate route: %w", ports.ErrInsufficientWaypoints)
	}

	key := AggregateCacheKey(ids)
	if route, ok := r.cacheGet(ctx, key); ok {
		return route, nil
	}

	locs, err := r.loadLocations(ctx, ids)
	if err != nil {
		return nil, err
	}

	var (
		totalKm      float64
		totalMinutes int
		coords       []domain.RoutePoint
	)
	for i := 0; i < len(locs)-1; i++ {
		res, err := r.distances.Between(ctx, locs[i], locs[i+1], false)
		if err != nil {
			return nil, fmt.Errorf("aggregate route: leg %d: %w", i, err)
		}
		rec := res.Record
		totalKm += rec.DistanceKm
		totalMinutes += rec.DurationMinutes
		coords = appendSegment(coords, rec.RouteCoords, i > 0)
	}

	coords = trimClosedLoop(coords)

	route := &ports.AggregateRoute{
		LocationIDs:     ids,
		TotalKm:         geo.Round1(totalKm),
		TotalMiles:      geo.Round1(geo.KmToMiles(totalKm)),
		TotalDuration:   domain.HumanDuration(totalMinutes * 60),
		DurationMinutes: totalMinutes,
		RouteCoords:     coords,
	}
	r.cachePut(ctx, key, route)
	return route, nil
}

// AggregateDirect resolves the whole route in one provider call. Every stop
// must already have coordinates; nothing is geocoded here.
func (r *RouteAggregator) AggregateDirect(ctx context.Context, ids []int64) (_ *ports.AggregateRoute, err error) {
	defer obs.Time(ctx, "route.AggregateDirect")(&err)

	if len(ids) < 2 {
		return nil, fmt.Errorf("aggregate direct route: %w", ports.ErrInsufficientWaypoints)
	}

	key := DirectCacheKey(ids)
	if route, ok := r.cacheGet(ctx, key); ok {
		return route, nil
	}

	locs, err := r.loadLocations(ctx, ids)
	if err != nil {
		return nil, err
	}

	waypoints := make([]domain.Coordinates, len(locs))
	for i, loc := range locs {
		if !loc.HasCoordinates() {
			return nil, fmt.Errorf(
				"aggregate direct route: location %q: %w",
				loc.ShortCode, ports.ErrMissingCoordinates,
			)
		}
		waypoints[i] = loc.Coordinates()
	}

	result, err := r.routes.ResolveRoute(ctx, waypoints)
	if err != nil {
		return nil, fmt.Errorf("aggregate direct route: %w", err)
	}

	km := result.DistanceMeters / 1000
	seconds := int(result.DurationSeconds)
	route := &ports.AggregateRoute{
		LocationIDs:     ids,
		TotalKm:         geo.Round1(km),
		TotalMiles:      geo.Round1(geo.KmToMiles(km)),
		TotalDuration:   domain.HumanDuration(seconds),
		DurationMinutes: domain.DurationMinutes(seconds),
		RouteCoords:     result.Geometry,
	}
	r.cachePut(ctx, key, route)
	return route, nil
}

func (r *RouteAggregator) loadLocations(ctx context.Context, ids []int64) ([]*domain.Location, error) {
	locs := make([]*domain.Location, len(ids))
	for i, id := range ids {
		loc, err := r.repo.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("aggregate route: load location %d: %w", id, err)
		}
		locs[i] = loc
	}
	return locs, nil
}

func (r *RouteAggregator) cacheGet(ctx context.Context, key string) (*ports.AggregateRoute, bool) {
	if r.cache == nil {
		return nil, false
	}
	route, ok, err := r.cache.GetAggregate(ctx, key)
	if err != nil {
		log.Printf("route cache read failed: key=%s err=%v", key, err)
		return nil, false
	}
	return route, ok
}

func (r *RouteAggregator) cachePut(ctx context.Context, key string, route *ports.AggregateRoute) {
	if r.cache == nil {
		return
	}
	if err := r.cache.PutAggregate(ctx, key, route); err != nil {
		log.Printf("route cache write failed: key=%s err=%v", key, err)
	}
}

// appendSegment stitches one leg's geometry onto the running coordinate list.
// Legs after the first start at the point the previous leg ended on, so their
// first point is dropped to avoid duplicates at the seams.
func appendSegment(coords, segment []domain.RoutePoint, dropFirst bool) []domain.RoutePoint {
	if dropFirst && len(segment) > 0 {
		segment = segment[1:]
	}
	return append(coords, segment...)
}

// trimClosedLoop drops the final point of a closed route so the start does
// not appear twice.
func trimClosedLoop(coords []domain.RoutePoint) []domain.RoutePoint {
	if len(coords) > 2 && coords[0] == coords[len(coords)-1] {
		return coords[:len(coords)-1]
	}
	return coords
}
