package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"location-distance-service/internal/domain"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLocationsQuery := `
	CREATE TABLE IF NOT EXISTS locations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        short_code TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL DEFAULT '',
        address TEXT NOT NULL DEFAULT '',
        city TEXT NOT NULL DEFAULT '',
        state TEXT NOT NULL DEFAULT '',
        zip TEXT NOT NULL DEFAULT '',
        country TEXT NOT NULL DEFAULT 'US',
        type TEXT NOT NULL DEFAULT 'pickup',
        latitude REAL,
        longitude REAL,
        recycling_location_id INTEGER REFERENCES locations(id) ON DELETE SET NULL,
        is_active INTEGER NOT NULL DEFAULT 1
    );
	`

	createDistancesQuery := `
	CREATE TABLE IF NOT EXISTS location_distances (
        from_location_id INTEGER NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
        to_location_id INTEGER NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
        distance_km REAL NOT NULL,
        distance_miles REAL NOT NULL,
        duration_text TEXT NOT NULL DEFAULT '',
        duration_minutes INTEGER NOT NULL DEFAULT 0,
        route_coords TEXT NOT NULL DEFAULT '[]',
        calculated_at TEXT NOT NULL,
        PRIMARY KEY (from_location_id, to_location_id)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address_hash TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL,
        expires_at TEXT NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_location_distances_to_from
    ON location_distances(to_location_id, from_location_id);
	`

	statements := []string{
		createLocationsQuery,
		createDistancesQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Initialize the Postgres database schema (used by dbtool).
func InitSchemaPostgres(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`
	CREATE TABLE IF NOT EXISTS locations (
        id BIGSERIAL PRIMARY KEY,
        short_code TEXT NOT NULL UNIQUE,
        name TEXT NOT NULL DEFAULT '',
        address TEXT NOT NULL DEFAULT '',
        city TEXT NOT NULL DEFAULT '',
        state TEXT NOT NULL DEFAULT '',
        zip TEXT NOT NULL DEFAULT '',
        country TEXT NOT NULL DEFAULT 'US',
        type TEXT NOT NULL DEFAULT 'pickup',
        latitude DOUBLE PRECISION,
        longitude DOUBLE PRECISION,
        recycling_location_id BIGINT REFERENCES locations(id) ON DELETE SET NULL,
        is_active BOOLEAN NOT NULL DEFAULT TRUE
    );
	`,
		`
	CREATE TABLE IF NOT EXISTS location_distances (
        from_location_id BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
        to_location_id BIGINT NOT NULL REFERENCES locations(id) ON DELETE CASCADE,
        distance_km DOUBLE PRECISION NOT NULL,
        distance_miles DOUBLE PRECISION NOT NULL,
        duration_text TEXT NOT NULL DEFAULT '',
        duration_minutes INTEGER NOT NULL DEFAULT 0,
        route_coords JSONB NOT NULL DEFAULT '[]',
        calculated_at TIMESTAMPTZ NOT NULL,
        PRIMARY KEY (from_location_id, to_location_id)
    );
	`,
		`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address_hash TEXT PRIMARY KEY,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL,
        expires_at TIMESTAMPTZ NOT NULL
    );
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_location_distances_to_from
    ON location_distances(to_location_id, from_location_id);
	`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type LocationSeed struct {
	ShortCode          string   `json:"short_code"`
	Name               string   `json:"name"`
	Address            string   `json:"address"`
	City               string   `json:"city"`
	State              string   `json:"state"`
	Zip                string   `json:"zip"`
	Country            string   `json:"country"`
	Type               string   `json:"type"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	RecyclingShortCode string   `json:"recycling_short_code"`
}

// Populate the locations table from a JSON seed file. Recycling pairings are
// resolved by short code in a second pass so seed order does not matter.
//
// Seeding runs only against an empty table. Locations are a source of truth
// with stable ids that distance records reference; re-inserting them on a
// later boot would churn ids and cascade away the stored distances.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM locations;`).Scan(&count); err != nil {
		return fmt.Errorf("seed locations: count existing rows: %w", err)
	}
	if count > 0 {
		log.Printf("Seed skipped: locations table already has %d rows", count)
		return nil
	}

	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed locations: read %q: %w", jsonPath, err)
	}

	var data []LocationSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("seed locations: parse json: %w", err)
	}

	for i, item := range data {
		if strings.TrimSpace(item.ShortCode) == "" {
			return fmt.Errorf("seed locations: item at index %d: short_code cannot be empty", i+1)
		}
		if item.Type != "" && !domain.LocationType(item.Type).Valid() {
			return fmt.Errorf("seed locations: item %q: unknown type %q", item.ShortCode, item.Type)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed locations: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Plain INSERT: the table is known to be empty, and a duplicate short
	// code inside the seed file should fail loudly, not silently replace.
	insert := `
	INSERT INTO locations (
        short_code, name, address, city, state, zip, country,
        type, latitude, longitude, is_active
    )
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1);
	`
	stmt, err := tx.Prepare(insert)
	if err != nil {
		return fmt.Errorf("seed locations: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range data {
		typ := item.Type
		if typ == "" {
			typ = string(domain.TypePickup)
		}
		country := item.Country
		if country == "" {
			country = "US"
		}

		if _, err := stmt.Exec(
			item.ShortCode, item.Name, item.Address, item.City,
			item.State, item.Zip, country, typ,
			item.Latitude, item.Longitude,
		); err != nil {
			return fmt.Errorf("seed locations: insert %q: %w", item.ShortCode, err)
		}
	}

	pair := `
	UPDATE locations
	SET recycling_location_id = (SELECT id FROM locations r WHERE r.short_code = ?)
	WHERE short_code = ?;
	`
	for _, item := range data {
		if item.RecyclingShortCode == "" {
			continue
		}
		if _, err := tx.Exec(pair, item.RecyclingShortCode, item.ShortCode); err != nil {
			return fmt.Errorf("seed locations: pair %q -> %q: %w", item.ShortCode, item.RecyclingShortCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed locations: commit tx: %w", err)
	}

	return nil
}
