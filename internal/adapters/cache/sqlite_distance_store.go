package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"location-distance-service/internal/domain"
)

// SQLite-backed store holding one DistanceRecord per normalized location
// pair. Pair normalization is re-applied on every call so reversed lookups
// hit the same row.
type SqliteDistanceStore struct {
	DB *sql.DB
}

func NewSqliteDistanceStore(db *sql.DB) *SqliteDistanceStore {
	return &SqliteDistanceStore{DB: db}
}

// Fetch the stored record for a location pair.
func (s *SqliteDistanceStore) Get(
	ctx context.Context,
	from, to int64,
) (*domain.DistanceRecord, bool, error) {
	if s.DB == nil {
		return nil, false, errors.New("distance store: db is nil")
	}

	from, to = domain.NormalizePair(from, to)

	q := `
	SELECT
        from_location_id,
        to_location_id,
        distance_km,
        distance_miles,
        duration_text,
        duration_minutes,
        route_coords,
        calculated_at
    FROM location_distances
    WHERE from_location_id = ? AND to_location_id = ?;
	`

	var (
		rec       domain.DistanceRecord
		coordsRaw string
		calcRaw   string
	)
	err := s.DB.QueryRowContext(ctx, q, from, to).Scan(
		&rec.FromLocationID,
		&rec.ToLocationID,
		&rec.DistanceKm,
		&rec.DistanceMiles,
		&rec.DurationText,
		&rec.DurationMinutes,
		&coordsRaw,
		&calcRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get distance record: query location_distances: %w", err)
	}

	if err := decodeRecordFields(&rec, coordsRaw, calcRaw); err != nil {
		return nil, false, fmt.Errorf("get distance record (%d,%d): %w", from, to, err)
	}

	return &rec, true, nil
}

// Create or overwrite the record for its normalized pair.
func (s *SqliteDistanceStore) Upsert(ctx context.Context, rec *domain.DistanceRecord) error {
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
	INSERT OR REPLACE INTO location_distances (
        from_location_id,
        to_location_id,
        distance_km,
        distance_miles,
        duration_text,
        duration_minutes,
        route_coords,
        calculated_at
    )
    VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`

	_, err = s.DB.ExecContext(ctx, q,
		from, to,
		rec.DistanceKm, rec.DistanceMiles,
		rec.DurationText, rec.DurationMinutes,
		string(coordsRaw),
		rec.CalculatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert distance record (%d,%d): %w", from, to, err)
	}

	return nil
}

// Remove the record for a location pair, if present.
func (s *SqliteDistanceStore) Delete(ctx context.Context, from, to int64) error {
	if s.DB == nil {
		return errors.New("distance store: db is nil")
	}

	from, to = domain.NormalizePair(from, to)

	q := `DELETE FROM location_distances WHERE from_location_id = ? AND to_location_id = ?;`
	if _, err := s.DB.ExecContext(ctx, q, from, to); err != nil {
		return fmt.Errorf("delete distance record (%d,%d): %w", from, to, err)
	}

	return nil
}

// List records calculated more than thresholdDays ago.
func (s *SqliteDistanceStore) ListOutdated(
	ctx context.Context,
	thresholdDays int,
) ([]*domain.DistanceRecord, error) {
	if s.DB == nil {
		return nil, errors.New("distance store: db is nil")
	}

	cutoff := time.Now().AddDate(0, 0, -thresholdDays).UTC().Format(time.RFC3339)

	q := `
	SELECT
        from_location_id,
        to_location_id,
        distance_km,
        distance_miles,
        duration_text,
        duration_minutes,
        route_coords,
        calculated_at
    FROM location_distances
    WHERE calculated_at < ?
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
			coordsRaw string
			calcRaw   string
		)
		if err := rows.Scan(
			&rec.FromLocationID,
			&rec.ToLocationID,
			&rec.DistanceKm,
			&rec.DistanceMiles,
			&rec.DurationText,
			&rec.DurationMinutes,
			&coordsRaw,
			&calcRaw,
		); err != nil {
			return nil, fmt.Errorf("list outdated distances: scan row: %w", err)
		}
		if err := decodeRecordFields(&rec, coordsRaw, calcRaw); err != nil {
			return nil, fmt.Errorf("list outdated distances: %w", err)
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list outdated distances: row iteration: %w", err)
	}

	return out, nil
}

func decodeRecordFields(rec *domain.DistanceRecord, coordsRaw, calcRaw string) error {
	if coordsRaw != "" {
		if err := json.Unmarshal([]byte(coordsRaw), &rec.RouteCoords); err != nil {
			return fmt.Errorf("decode route coords: %w", err)
		}
	}

	calc, err := time.Parse(time.RFC3339, calcRaw)
	if err != nil {
		return fmt.Errorf("parse calculated_at %q: %w", calcRaw, err)
	}
	rec.CalculatedAt = calc

	return nil
}
