package ports

import "errors"

// Typed failures surfaced by the distance core. All of these are returned to
// the immediate caller, never treated as fatal; batch commands skip-and-log,
// handlers degrade to "No route" responses.
var (
	// ErrGeocodeNotFound: the geocoding service returned no match for an
	// address.
	ErrGeocodeNotFound = errors.New("geocode: no results for address")

	// ErrRouteNotFound: the directions service returned no route between the
	// given coordinates.
	ErrRouteNotFound = errors.New("route: no route found")

	// ErrMissingConfiguration: no API credential configured for the external
	// routing/geocoding provider.
	ErrMissingConfiguration = errors.New("routing provider credential not configured")

	// ErrMissingCoordinates: the multi-waypoint strategy requires known
	// coordinates on every location.
	ErrMissingCoordinates = errors.New("location has no known coordinates")

	// ErrInsufficientWaypoints: a route needs at least two stops.
	ErrInsufficientWaypoints = errors.New("at least 2 locations are required")

	// ErrNotFound: a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
