package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/platform/obs"
)

// SQLDistanceStore is the Postgres-backed variant of the distance store.
type SQLDistanceStore struct {
	DB *sql.DB
}

func NewSQLDistanceStore(db *sql.DB) *SQLDistanceStore {
	return &SQLDistanceStore{DB: db}
}

// Fetch the stored record for a location pair.
func (s *SQLDistanceStore) Get(
	ctx context.Context,
	from, to int64,
) (_ *domain.DistanceRecord, _ bool, err error) {
	defer obs.Time(ctx, "distance.store.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("distance store: db is nil")
	}

	from, to = domain.NormalizePair(from, to)

	q := `
	SELECT from_location_id, to_location_id, distance_km, distance_miles,
	       duration_text, duration_minutes, route_coords, calculated_at
    FROM location_distances
    WHERE from_location_id = $1 AND to_location_id = $2;
	`

	var (
		rec       domain.DistanceRecord
		coordsRaw []byte
	)
	err = s.DB.QueryRowContext(ctx, q, from, to).Scan(
		&rec.FromLocationID,
		&rec.ToLocationID,
		&rec.DistanceKm,
		&rec.DistanceMiles,
		&rec.DurationText,
		&rec.DurationMinutes,
		&coordsRaw,
		&rec.CalculatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get distance record: query location_distances: %w", err)
	}

	if len(coordsRaw) > 0 {
		if err := json.Unmarshal(coordsRaw, &rec.RouteCoords); err != nil {
			return nil, false, fmt.Errorf("get distance record (%d,%d): decode route coords: %w", from, to, err)
		}
	}

	return &rec, true, nil
}

// Create or overwrite the record for its normalized pair.
func (s *SQLDistanceStore) Upsert(ctx context.Context, rec *domain.DistanceRecord) (err error) {
	defer obs.Time(ctx, "distance.store.Upsert")(&err)

	if s.DB == nil {
		return errors.New("distance store: db is nil")
	}
	if rec == nil {
		return errors.New("upsert distance record: record is nil")
	}

	from, to := domain.NormalizePair(rec.FromLocationID, rec.ToLocationID)

	coordsRaw, err := json.Marshal(rec.RouteCoords)
	if err != nil {
		return fmt.Errorf("upsert distance record: encode route coords: %w", err)
	}

	q := `
	INSERT INTO location_distances (
        from_location_id, to_location_id, distance_km, distance_miles,
        duration_text, duration_minutes, route_coords, calculated_at
    )
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (from_location_id, to_location_id) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		distance_miles = EXCLUDED.distance_miles,
		duration_text = EXCLUDED.duration_text,
		duration_minutes = EXCLUDED.duration_minutes,
		route_coords = EXCLUDED.route_coords,
		calculated_at = EXCLUDED.calculated_at;
	`

	_, err = s.DB.ExecContext(ctx, q,
		from, to,
		rec.DistanceKm, rec.DistanceMiles,
		rec.DurationText, rec.DurationMinutes,
		coordsRaw, rec.CalculatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert distance record (%d,%d): %w", from, to, err)
	}

	return nil
}

// Remove the record for a location pair, if present.
func (s *SQLDistanceStore) Delete(ctx context.Context, from, to int64) error {
	if s.DB == nil {
		return errors.New("distance store: db is nil")
	}

	from, to = domain.NormalizePair(from, to)

	q := `DELETE FROM location_distances WHERE from_location_id = $1 AND to_location_id = $2;`
	if _, err := s.DB.ExecContext(ctx, q, from, to); err != nil {
		return fmt.Errorf("delete distance record (%d,%d): %w", from, to, err)
	}

	return nil
}

// List records calculated more than thresholdDays ago.
func (s *SQLDistanceStore) ListOutdated(
	ctx context.Context,
	thresholdDays int,
) ([]*domain.DistanceRecord, error) {
	if s.DB == nil {
		return nil, errors.New("distance store: db is nil")
	}

	cutoff := time.Now().AddDate(0, 0, -thresholdDays).UTC()

	q := `
	SELECT from_location_id, to_location_id, distance_km, distance_miles,
	       duration_text, duration_minutes, route_coords, calculated_at
    FROM location_distances
    WHERE calculated_at < $1
    ORDER BY calculated_at;
	`

	rows, err := s.DB.QueryContext(ctx, q, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list outdated distances: query location_distances: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.DistanceRecord, 0, 16)
	for rows.Next() {
		var (
			rec       domain.DistanceRecord
			coordsRaw []byte
		)
		if err := rows.Scan(
			&rec.FromLocationID,
			&rec.ToLocationID,
			&rec.DistanceKm,
			&rec.DistanceMiles,
			&rec.DurationText,
			&rec.DurationMinutes,
			&coordsRaw,
			&rec.CalculatedAt,
		); err != nil {
			return nil, fmt.Errorf("list outdated distances: scan row: %w", err)
		}
		if len(coordsRaw) > 0 {
			if err := json.Unmarshal(coordsRaw, &rec.RouteCoords); err != nil {
				return nil, fmt.Errorf("list outdated distances: decode route coords: %w", err)
			}
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list outdated distances: row iteration: %w", err)
	}

	return out, nil
}
