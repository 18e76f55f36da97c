package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
)

// SQLite-backed implementation of the LocationRepository port.
type SqliteLocationRepository struct{ DB *sql.DB }

func NewSqliteLocationRepository(db *sql.DB) *SqliteLocationRepository {
	return &SqliteLocationRepository{DB: db}
}

const locationColumns = `
	id, short_code, name, address, city, state, zip, country,
	type, latitude, longitude, recycling_location_id, is_active
`

func scanLocation(row interface{ Scan(dest ...any) error }) (*domain.Location, error) {
	var (
		loc         domain.Location
		lat, lon    sql.NullFloat64
		recyclingID sql.NullInt64
		typ         string
	)

	err := row.Scan(
		&loc.ID, &loc.ShortCode, &loc.Name,
		&loc.Address, &loc.City, &loc.State, &loc.Zip, &loc.Country,
		&typ, &lat, &lon, &recyclingID, &loc.IsActive,
	)
	if err != nil {
		return nil, err
	}

	loc.Type = domain.LocationType(typ)
	if lat.Valid {
		loc.Latitude = &lat.Float64
	}
	if lon.Valid {
		loc.Longitude = &lon.Float64
	}
	if recyclingID.Valid {
		loc.RecyclingLocationID = &recyclingID.Int64
	}

	return &loc, nil
}

func nullableF(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableI(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Get returns a location by id.
func (s *SqliteLocationRepository) Get(ctx context.Context, id int64) (*domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	q := `SELECT ` + locationColumns + ` FROM locations WHERE id = ?;`

	loc, err := scanLocation(s.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get location id=%d: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get location id=%d: %w", id, err)
	}

	return loc, nil
}

// GetByShortCode returns a location by its unique short code.
func (s *SqliteLocationRepository) GetByShortCode(ctx context.Context, code string) (*domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	q := `SELECT ` + locationColumns + ` FROM locations WHERE short_code = ?;`

	loc, err := scanLocation(s.DB.QueryRowContext(ctx, q, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get location short_code=%q: %w", code, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get location short_code=%q: %w", code, err)
	}

	return loc, nil
}

func (s *SqliteLocationRepository) queryLocations(ctx context.Context, q string, args ...any) ([]*domain.Location, error) {
	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query locations table: %w", err)
	}
	defer rows.Close()

	locations := make([]*domain.Location, 0, 32)
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location row: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("location row iteration: %w", err)
	}

	return locations, nil
}

// List returns all locations ordered by short code.
func (s *SqliteLocationRepository) List(ctx context.Context) ([]*domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	q := `SELECT ` + locationColumns + ` FROM locations ORDER BY short_code;`
	locs, err := s.queryLocations(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locs, nil
}

// ListByType returns all locations of one type ordered by short code.
func (s *SqliteLocationRepository) ListByType(ctx context.Context, t domain.LocationType) ([]*domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	q := `SELECT ` + locationColumns + ` FROM locations WHERE type = ? ORDER BY short_code;`
	locs, err := s.queryLocations(ctx, q, string(t))
	if err != nil {
		return nil, fmt.Errorf("list locations type=%q: %w", t, err)
	}
	return locs, nil
}

// ListPairedDistributionCenters returns every distribution center paired to
// the given recycling location.
func (s *SqliteLocationRepository) ListPairedDistributionCenters(ctx context.Context, recyclingID int64) ([]*domain.Location, error) {
	if s.DB == nil {
		return nil, errors.New("location repository: DB is nil")
	}

	q := `SELECT ` + locationColumns + `
	FROM locations
	WHERE type = ? AND recycling_location_id = ?
	ORDER BY short_code;`

	locs, err := s.queryLocations(ctx, q, string(domain.TypeDistributionCenter), recyclingID)
	if err != nil {
		return nil, fmt.Errorf("list paired DCs recycling_id=%d: %w", recyclingID, err)
	}
	return locs, nil
}

// Create inserts a new location and sets its assigned id.
func (s *SqliteLocationRepository) Create(ctx context.Context, loc *domain.Location) error {
	if s.DB == nil {
		return errors.New("location repository: DB is nil")
	}

	if err := loc.Validate(); err != nil {
		return err
	}

	q := `
	INSERT INTO locations (
        short_code, name, address, city, state, zip, country,
        type, latitude, longitude, recycling_location_id, is_active
    )
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	res, err := s.DB.ExecContext(ctx, q,
		loc.ShortCode, loc.Name, loc.Address, loc.City, loc.State, loc.Zip, loc.Country,
		string(loc.Type), nullableF(loc.Latitude), nullableF(loc.Longitude),
		nullableI(loc.RecyclingLocationID), loc.IsActive,
	)
	if err != nil {
		return fmt.Errorf("create location %q: %w", loc.ShortCode, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("create location %q: last insert id: %w", loc.ShortCode, err)
	}
	loc.ID = id

	return nil
}

// Update overwrites an existing location.
func (s *SqliteLocationRepository) Update(ctx context.Context, loc *domain.Location) error {
	if s.DB == nil {
		return errors.New("location repository: DB is nil")
	}

	if err := loc.Validate(); err != nil {
		return err
	}

	q := `
	UPDATE locations
	SET short_code = ?, name = ?, address = ?, city = ?, state = ?, zip = ?, country = ?,
	    type = ?, latitude = ?, longitude = ?, recycling_location_id = ?, is_active = ?
	WHERE id = ?;
	`

	res, err := s.DB.ExecContext(ctx, q,
		loc.ShortCode, loc.Name, loc.Address, loc.City, loc.State, loc.Zip, loc.Country,
		string(loc.Type), nullableF(loc.Latitude), nullableF(loc.Longitude),
		nullableI(loc.RecyclingLocationID), loc.IsActive,
		loc.ID,
	)
	if err != nil {
		return fmt.Errorf("update location id=%d: %w", loc.ID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update location id=%d: rows affected: %w", loc.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update location id=%d: %w", loc.ID, ports.ErrNotFound)
	}

	return nil
}

// Delete removes a location. Distance records cascade via the schema.
func (s *SqliteLocationRepository) Delete(ctx context.Context, id int64) error {
	if s.DB == nil {
		return errors.New("location repository: DB is nil")
	}

	res, err := s.DB.ExecContext(ctx, `DELETE FROM locations WHERE id = ?;`, id)
	if err != nil {
		return fmt.Errorf("delete location id=%d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete location id=%d: rows affected: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete location id=%d: %w", id, ports.ErrNotFound)
	}

	return nil
}
