package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/platform/obs"
)

// SQLGeocodeCache is the Postgres-backed variant of the geocode cache.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

// Fetch cached coordinates for a key. Expired entries report a miss.
func (s *SQLGeocodeCache) Get(
	ctx context.Context,
	key string,
) (_ domain.Coordinates, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Coordinates{}, false, errors.New("geocode cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Coordinates{}, false, errors.New("get geocode cache: key must not be empty")
	}

	q := `
	SELECT lon, lat
    FROM geocode_cache
    WHERE address_hash = $1 AND expires_at > now();
	`

	var coords domain.Coordinates
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&coords.Lon, &coords.Lat)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Coordinates{}, false, nil
	}
	if err != nil {
		return domain.Coordinates{}, false, fmt.Errorf("get geocode cache: query geocode_cache: %w", err)
	}

	return coords, true, nil
}

// Store a key -> coordinate mapping with the standard expiry.
func (s *SQLGeocodeCache) Put(
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
	INSERT INTO geocode_cache (address_hash, lon, lat, expires_at)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (address_hash) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat,
		expires_at = EXCLUDED.expires_at;
	`

	expires := time.Now().Add(geocodeTTL).UTC()
	if _, err := s.DB.ExecContext(ctx, q, key, coords.Lon, coords.Lat, expires); err != nil {
		return fmt.Errorf("insert geocode cache key=%q: %w", key, err)
	}

	return nil
}
