package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"location-distance-service/internal/adapters/mapbox"
	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
)

func seedLeg(t *testing.T, store *memDistanceStore, from, to int64, km float64, minutes int, coords ...domain.RoutePoint) {
	t.Helper()
	rec := &domain.DistanceRecord{
		FromLocationID:  from,
		ToLocationID:    to,
		DistanceKm:      km,
		DurationMinutes: minutes,
		RouteCoords:     coords,
		CalculatedAt:    time.Now().UTC(),
	}
	if err := store.Upsert(context.Background(), rec); err != nil {
		t.Fatalf("seed leg (%d,%d): %v", from, to, err)
	}
}

func aggregatorFixture(locs ...*domain.Location) (*memDistanceStore, *memRouteCache, *RouteAggregator) {
	repo := newMemLocationRepo(locs...)
	store := newMemDistanceStore()
	distances := NewDistanceService(store, &mapbox.MockGeocoder{}, &mapbox.MockRouteProvider{})
	cache := newMemRouteCache()
	agg := NewRouteAggregator(repo, distances, &mapbox.MockRouteProvider{}, cache)
	return store, cache, agg
}

func TestAggregateStitchesLegsWithoutSeamDuplicates(t *testing.T) {
	a := testLocation(1, "PU-01", domain.TypePickup)
	b := testLocation(2, "DC-01", domain.TypeDistributionCenter)
	c := testLocation(3, "REC-01", domain.TypeRecycling)
	store, _, agg := aggregatorFixture(a, b, c)

	seedLeg(t, store, 1, 2, 10.5, 12,
		domain.RoutePoint{-97.74, 30.26},
		domain.RoutePoint{-97.72, 30.28},
		domain.RoutePoint{-97.70, 30.30})
	seedLeg(t, store, 2, 3, 4.2, 7,
		domain.RoutePoint{-97.70, 30.30},
		domain.RoutePoint{-97.68, 30.32},
		domain.RoutePoint{-97.66, 30.34})

	route, err := agg.Aggregate(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if route.TotalKm != 14.7 {
		t.Fatalf("total km = %v, want 14.7", route.TotalKm)
	}
	if route.DurationMinutes != 19 {
		t.Fatalf("duration minutes = %d, want 19", route.DurationMinutes)
	}
	if route.TotalDuration != "19 min" {
		t.Fatalf("duration = %q, want %q", route.TotalDuration, "19 min")
	}
	// Two 3-point legs sharing the seam point stitch into 5 points.
	if len(route.RouteCoords) != 5 {
		t.Fatalf("stitched points = %d, want 5: %v", len(route.RouteCoords), route.RouteCoords)
	}
	if route.RouteCoords[2] != (domain.RoutePoint{-97.70, 30.30}) {
		t.Fatalf("seam point = %v", route.RouteCoords[2])
	}
}

func TestAggregateDropsClosingPointOfLoop(t *testing.T) {
	a := testLocation(1, "DC-01", domain.TypeDistributionCenter)
	b := testLocation(2, "PU-01", domain.TypePickup)
	c := testLocation(3, "PU-02", domain.TypePickup)
	store, _, agg := aggregatorFixture(a, b, c)

	start := domain.RoutePoint{-97.74, 30.26}
	seedLeg(t, store, 1, 2, 5, 8, start, domain.RoutePoint{-97.72, 30.28})
	seedLeg(t, store, 2, 3, 5, 8, domain.RoutePoint{-97.72, 30.28}, domain.RoutePoint{-97.70, 30.30})
	seedLeg(t, store, 1, 3, 5, 8, domain.RoutePoint{-97.70, 30.30}, start)

	route, err := agg.Aggregate(context.Background(), []int64{1, 2, 3, 1})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(route.RouteCoords) != 3 {
		t.Fatalf("loop points = %d, want 3: %v", len(route.RouteCoords), route.RouteCoords)
	}
	if route.RouteCoords[len(route.RouteCoords)-1] == start {
		t.Fatalf("closing duplicate of the start point survived")
	}
}

func TestAggregateRejectsSingleStop(t *testing.T) {
	_, _, agg := aggregatorFixture(testLocation(1, "DC-01", domain.TypeDistributionCenter))

	_, err := agg.Aggregate(context.Background(), []int64{1})
	if !errors.Is(err, ports.ErrInsufficientWaypoints) {
		t.Fatalf("err = %v, want ErrInsufficientWaypoints", err)
	}
}

func TestAggregateAbortsOnFailedLeg(t *testing.T) {
	a := testLocation(1, "PU-01", domain.TypePickup)
	b := testLocation(2, "DC-01", domain.TypeDistributionCenter)
	c := testLocation(3, "REC-01", domain.TypeRecycling)
	c.Address, c.City, c.State, c.Zip, c.Country = "", "", "", "", ""
	store, cache, agg := aggregatorFixture(a, b, c)

	seedLeg(t, store, 1, 2, 10.5, 12, domain.RoutePoint{-97.74, 30.26}, domain.RoutePoint{-97.70, 30.30})
	// Leg (2,3) is not seeded and location 3 cannot be resolved.

	if _, err := agg.Aggregate(context.Background(), []int64{1, 2, 3}); err == nil {
		t.Fatalf("expected failure on unresolvable leg")
	}
	if len(cache.entries) != 0 {
		t.Fatalf("partial result was cached")
	}
}

func TestAggregateServedFromCacheOnRepeat(t *testing.T) {
	a := testLocation(1, "PU-01", domain.TypePickup)
	b := testLocation(2, "DC-01", domain.TypeDistributionCenter)
	store, _, agg := aggregatorFixture(a, b)

	seedLeg(t, store, 1, 2, 10.5, 12, domain.RoutePoint{-97.74, 30.26}, domain.RoutePoint{-97.70, 30.30})

	if _, err := agg.Aggregate(context.Background(), []int64{1, 2}); err != nil {
		t.Fatalf("first Aggregate: %v", err)
	}
	gets := store.gets
	if _, err := agg.Aggregate(context.Background(), []int64{1, 2}); err != nil {
		t.Fatalf("second Aggregate: %v", err)
	}
	if store.gets != gets {
		t.Fatalf("cached aggregate re-read the distance store")
	}
}

func TestAggregateCacheKeyIsOrderSensitive(t *testing.T) {
	if AggregateCacheKey([]int64{1, 2, 3}) == AggregateCacheKey([]int64{3, 2, 1}) {
		t.Fatalf("reversed routes share a cache key")
	}
	if AggregateCacheKey([]int64{1, 23}) == AggregateCacheKey([]int64{12, 3}) {
		t.Fatalf("id concatenation is ambiguous")
	}
	if AggregateCacheKey([]int64{1, 2}) == DirectCacheKey([]int64{1, 2}) {
		t.Fatalf("stitched and direct strategies share a cache key")
	}
}

func TestAggregateDirectRequiresCoordinates(t *testing.T) {
	a := testLocation(1, "DC-01", domain.TypeDistributionCenter)
	a.Latitude, a.Longitude = ptrF(30.2672), ptrF(-97.7431)
	b := testLocation(2, "REC-01", domain.TypeRecycling) // no coordinates
	_, _, agg := aggregatorFixture(a, b)

	_, err := agg.AggregateDirect(context.Background(), []int64{1, 2})
	if !errors.Is(err, ports.ErrMissingCoordinates) {
		t.Fatalf("err = %v, want ErrMissingCoordinates", err)
	}
}

func TestAggregateDirectSingleProviderCall(t *testing.T) {
	a := testLocation(1, "DC-01", domain.TypeDistributionCenter)
	a.Latitude, a.Longitude = ptrF(30.2672), ptrF(-97.7431)
	b := testLocation(2, "PU-01", domain.TypePickup)
	b.Latitude, b.Longitude = ptrF(30.3000), ptrF(-97.7000)
	c := testLocation(3, "REC-01", domain.TypeRecycling)
	c.Latitude, c.Longitude = ptrF(30.3400), ptrF(-97.6600)

	repo := newMemLocationRepo(a, b, c)
	store := newMemDistanceStore()
	distances := NewDistanceService(store, &mapbox.MockGeocoder{}, &mapbox.MockRouteProvider{})

	waypoints := []domain.Coordinates{a.Coordinates(), b.Coordinates(), c.Coordinates()}
	routes := &mapbox.MockRouteProvider{Routes: map[string]ports.RouteResult{
		mapbox.MockRouteKey(waypoints): {
			DistanceMeters:  20000,
			DurationSeconds: 3600,
			Geometry: []domain.RoutePoint{
				{-97.7431, 30.2672},
				{-97.7000, 30.3000},
				{-97.6600, 30.3400},
			},
		},
	}}
	agg := NewRouteAggregator(repo, distances, routes, newMemRouteCache())

	route, err := agg.AggregateDirect(context.Background(), []int64{1, 2, 3})
	if err != nil {
		t.Fatalf("AggregateDirect: %v", err)
	}
	if routes.Calls != 1 {
		t.Fatalf("provider calls = %d, want 1", routes.Calls)
	}
	if route.TotalKm != 20 {
		t.Fatalf("total km = %v, want 20", route.TotalKm)
	}
	if route.TotalMiles != 12.4 {
		t.Fatalf("total miles = %v, want 12.4", route.TotalMiles)
	}
	if route.TotalDuration != "1 hr" {
		t.Fatalf("duration = %q, want %q", route.TotalDuration, "1 hr")
	}
	if store.upserts != 0 {
		t.Fatalf("direct route wrote pairwise records: upserts=%d", store.upserts)
	}
}
