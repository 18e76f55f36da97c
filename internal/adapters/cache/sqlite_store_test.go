package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"location-distance-service/internal/adapters/repositories"
	"location-distance-service/internal/domain"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive for the test.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := repositories.InitSchema(db); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return db
}

func TestDistanceStoreRoundTrip(t *testing.T) {
	store := NewSqliteDistanceStore(newTestDB(t))
	ctx := context.Background()

	calcAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rec := &domain.DistanceRecord{
		FromLocationID:  2,
		ToLocationID:    5,
		DistanceKm:      12.3,
		DistanceMiles:   7.6,
		DurationText:    "18 min",
		DurationMinutes: 18,
		RouteCoords: []domain.RoutePoint{
			{-89.65, 39.78},
			{-89.64, 39.79},
		},
		CalculatedAt: calcAt,
	}

	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, ok, err := store.Get(ctx, 2, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected stored record")
	}
	if got.DistanceKm != 12.3 || got.DistanceMiles != 7.6 {
		t.Fatalf("distances = %v / %v", got.DistanceKm, got.DistanceMiles)
	}
	if got.DurationText != "18 min" || got.DurationMinutes != 18 {
		t.Fatalf("duration = %q / %d", got.DurationText, got.DurationMinutes)
	}
	if len(got.RouteCoords) != 2 || got.RouteCoords[0] != (domain.RoutePoint{-89.65, 39.78}) {
		t.Fatalf("route coords = %v", got.RouteCoords)
	}
	if !got.CalculatedAt.Equal(calcAt) {
		t.Fatalf("calculated_at = %v, want %v", got.CalculatedAt, calcAt)
	}
}

func TestDistanceStoreNormalizesReversedPairs(t *testing.T) {
	store := NewSqliteDistanceStore(newTestDB(t))
	ctx := context.Background()

	rec := &domain.DistanceRecord{
		FromLocationID: 9,
		ToLocationID:   4,
		DistanceKm:     1.0,
		DistanceMiles:  0.6,
		CalculatedAt:   time.Now().UTC(),
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Both orderings must hit the same row.
	a, okA, err := store.Get(ctx, 4, 9)
	if err != nil || !okA {
		t.Fatalf("Get(4,9): ok=%v err=%v", okA, err)
	}
	b, okB, err := store.Get(ctx, 9, 4)
	if err != nil || !okB {
		t.Fatalf("Get(9,4): ok=%v err=%v", okB, err)
	}
	if a.FromLocationID != 4 || a.ToLocationID != 9 {
		t.Fatalf("stored pair = (%d,%d), want (4,9)", a.FromLocationID, a.ToLocationID)
	}
	if b.FromLocationID != a.FromLocationID || b.ToLocationID != a.ToLocationID {
		t.Fatal("reversed lookup returned a different record")
	}
}

func TestDistanceStoreOverwrites(t *testing.T) {
	store := NewSqliteDistanceStore(newTestDB(t))
	ctx := context.Background()

	first := &domain.DistanceRecord{
		FromLocationID: 1, ToLocationID: 2,
		DistanceKm: 10.0, DistanceMiles: 6.2,
		CalculatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	second := &domain.DistanceRecord{
		FromLocationID: 1, ToLocationID: 2,
		DistanceKm: 11.5, DistanceMiles: 7.1,
		CalculatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Upsert(ctx, second); err != nil {
		t.Fatalf("Upsert overwrite: %v", err)
	}

	got, ok, err := store.Get(ctx, 1, 2)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.DistanceKm != 11.5 {
		t.Fatalf("distance_km = %v, want overwritten 11.5", got.DistanceKm)
	}
}

func TestDistanceStoreDelete(t *testing.T) {
	store := NewSqliteDistanceStore(newTestDB(t))
	ctx := context.Background()

	rec := &domain.DistanceRecord{
		FromLocationID: 3, ToLocationID: 8,
		DistanceKm: 5, DistanceMiles: 3.1,
		CalculatedAt: time.Now().UTC(),
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// Delete with the reversed ordering must still remove the row.
	if err := store.Delete(ctx, 8, 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, ok, err := store.Get(ctx, 3, 8)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("record should be deleted")
	}
}

func TestDistanceStoreListOutdated(t *testing.T) {
	store := NewSqliteDistanceStore(newTestDB(t))
	ctx := context.Background()

	fresh := &domain.DistanceRecord{
		FromLocationID: 1, ToLocationID: 2,
		DistanceKm: 1, DistanceMiles: 0.6,
		CalculatedAt: time.Now().UTC(),
	}
	stale := &domain.DistanceRecord{
		FromLocationID: 1, ToLocationID: 3,
		DistanceKm: 2, DistanceMiles: 1.2,
		CalculatedAt: time.Now().AddDate(0, 0, -45).UTC(),
	}
	for _, r := range []*domain.DistanceRecord{fresh, stale} {
		if err := store.Upsert(ctx, r); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	outdated, err := store.ListOutdated(ctx, domain.DefaultOutdatedDays)
	if err != nil {
		t.Fatalf("ListOutdated: %v", err)
	}
	if len(outdated) != 1 {
		t.Fatalf("got %d outdated records, want 1", len(outdated))
	}
	if outdated[0].ToLocationID != 3 {
		t.Fatalf("wrong record flagged: %+v", outdated[0])
	}
}

func TestGeocodeCacheRoundTripAndExpiry(t *testing.T) {
	db := newTestDB(t)
	gc := NewSqliteGeocodeCache(db)
	ctx := context.Background()

	coords := domain.Coordinates{Lon: -112.074, Lat: 33.4484}
	if err := gc.Put(ctx, "abc", coords); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := gc.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != coords {
		t.Fatalf("Get = (%+v, %v), want hit with %+v", got, ok, coords)
	}

	// Rewind the expiry behind now; the entry must turn into a miss.
	if _, err := db.Exec(
		`UPDATE geocode_cache SET expires_at = ? WHERE address_hash = ?;`,
		time.Now().Add(-time.Hour).UTC().Format(time.RFC3339), "abc",
	); err != nil {
		t.Fatalf("expire entry: %v", err)
	}

	_, ok, err = gc.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get after expiry: %v", err)
	}
	if ok {
		t.Fatal("expired entry must be a miss")
	}
}
