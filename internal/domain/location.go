package domain

import (
	"errors"
	"fmt"
	"strings"
)

// LocationType distinguishes the roles a location can play in the network.
type LocationType string

const (
	TypePickup             LocationType = "pickup"
	TypeDistributionCenter LocationType = "distribution_center"
	TypeRecycling          LocationType = "recycling"
	TypeOther              LocationType = "other"
)

func (t LocationType) Valid() bool {
	switch t {
	case TypePickup, TypeDistributionCenter, TypeRecycling, TypeOther:
		return true
	}
	return false
}

// ErrRecyclingPairingInvalid is the save-time invariant violation: only a
// distribution center may carry a recycling pairing. It blocks the write.
var ErrRecyclingPairingInvalid = errors.New("only distribution centers can be assigned a recycling location")

// Location is the source-of-truth entity for a physical site. Distance data
// is derived from two locations' addresses/coordinates and lives elsewhere.
type Location struct {
	ID        int64
	ShortCode string
	Name      string
	Address   string
	City      string
	State     string
	Zip       string
	Country   string
	Type      LocationType
	Latitude  *float64
	Longitude *float64

	// Plain self-referential FK. Non-nil only when Type is
	// distribution_center (see Validate).
	RecyclingLocationID *int64

	IsActive bool
}

func (l *Location) IsPickup() bool             { return l.Type == TypePickup }
func (l *Location) IsDistributionCenter() bool { return l.Type == TypeDistributionCenter }
func (l *Location) IsRecycling() bool          { return l.Type == TypeRecycling }

// HasCoordinates reports whether both latitude and longitude are known.
func (l *Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Coordinates returns the known coordinate pair. Callers must check
// HasCoordinates first.
func (l *Location) Coordinates() Coordinates {
	return Coordinates{Lon: *l.Longitude, Lat: *l.Latitude}
}

// FullAddress joins the postal fields with commas, omitting empty parts.
// State and zip are combined into one part ("IL 62704").
func (l *Location) FullAddress() string {
	parts := make([]string, 0, 4)

	if s := strings.TrimSpace(l.Address); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(l.City); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(l.State); s != "" {
		if z := strings.TrimSpace(l.Zip); z != "" {
			parts = append(parts, s+" "+z)
		} else {
			parts = append(parts, s)
		}
	}
	if s := strings.TrimSpace(l.Country); s != "" {
		parts = append(parts, s)
	}

	return strings.Join(parts, ", ")
}

// Validate enforces write-boundary invariants.
func (l *Location) Validate() error {
	if strings.TrimSpace(l.ShortCode) == "" {
		return errors.New("validate location: short_code must be non-empty")
	}

	if !l.Type.Valid() {
		return fmt.Errorf("validate location: unknown type %q", l.Type)
	}

	if l.RecyclingLocationID != nil && l.Type != TypeDistributionCenter {
		return fmt.Errorf("validate location %q: %w", l.ShortCode, ErrRecyclingPairingInvalid)
	}

	if (l.Latitude == nil) != (l.Longitude == nil) {
		return fmt.Errorf("validate location %q: latitude and longitude must be set together", l.ShortCode)
	}
	if l.HasCoordinates() && !l.Coordinates().Valid() {
		return fmt.Errorf("validate location %q: coordinates out of range", l.ShortCode)
	}

	return nil
}
