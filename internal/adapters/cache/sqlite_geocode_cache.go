package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"location-distance-service/internal/domain"
)

// Geocode cache entries live for roughly a year; addresses rarely move.
const geocodeTTL = 365 * 24 * time.Hour

// SQLite-backed cache mapping address-hash keys to geographic coordinates.
// Keys are expected to be consistent (already normalized and hashed) by the
// caller. Expired rows behave as misses and are lazily overwritten.
type SqliteGeocodeCache struct {
	DB *sql.DB
}

func NewSqliteGeocodeCache(db *sql.DB) *SqliteGeocodeCache {
	return &SqliteGeocodeCache{DB: db}
}

// Fetch cached coordinates for a key. Expired entries report a miss.
func (s *SqliteGeocodeCache) Get(
	ctx context.Context,
	key string,
) (domain.Coordinates, bool, error) {
	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Coordinates{}, false, errors.New("get geocode cache: key must not be empty")
	}

	q := `
	SELECT lon, lat, expires_at
    FROM geocode_cache
    WHERE address_hash = ?;
	`

	var (
		coords     domain.Coordinates
		expiresRaw string
	)
	err := s.DB.QueryRowContext(ctx, q, key).Scan(&coords.Lon, &coords.Lat, &expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: query geocode_cache: %w", err)
	}

	expires, err := time.Parse(time.RFC3339, expiresRaw)
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: parse expires_at %q: %w", expiresRaw, err)
	}
	if !expires.After(time.Now()) {
		return domain.Coordinates{}, false, nil
	}

	return coords, true, nil
}

// Store a key -> coordinate mapping with the standard expiry.
func (s *SqliteGeocodeCache) Put(
	ctx context.Context,
	key string,
	coords domain.Coordinates,
) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert geocode cache: key must not be empty")
	}

	q := `
	INSERT OR REPLACE INTO geocode_cache (
        address_hash,
        lon,
        lat,
        expires_at
    )
    VALUES (?, ?, ?, ?);
	`

	expires := time.Now().Add(geocodeTTL).UTC().Format(time.RFC3339)
	if _, err := s.DB.ExecContext(ctx, q, key, coords.Lon, coords.Lat, expires); err != nil {
		return fmt.Errorf("insert geocode cache key=%q: %w", key, err)
	}

	return nil
}
