package mapbox

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
)

// MockGeocoder is an in-memory Geocoder for tests. It counts external-call
// equivalents so cache behavior can be asserted.
type MockGeocoder struct {
	Coords map[string]domain.Coordinates
	Calls  int
	Err    error
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	m.Calls++
	if m.Err != nil {
		return domain.Coordinates{}, m.Err
	}
	c, ok := m.Coords[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, ports.ErrGeocodeNotFound)
	}
	return c, nil
}

// MockRouteKey builds the lookup key a MockRouteProvider uses for a waypoint
// sequence.
func MockRouteKey(waypoints []domain.Coordinates) string {
	parts := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		parts = append(parts,
			strconv.FormatFloat(w.Lon, 'f', 4, 64)+","+strconv.FormatFloat(w.Lat, 'f', 4, 64))
	}
	return strings.Join(parts, ";")
}

// MockRouteProvider is an in-memory RouteProvider for tests.
type MockRouteProvider struct {
	Routes map[string]ports.RouteResult
	Calls  int
	Err    error
}

func (m *MockRouteProvider) ResolveRoute(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (ports.RouteResult, error) {
	m.Calls++
	if m.Err != nil {
		return ports.RouteResult{}, m.Err
	}
	if len(waypoints) < 2 {
		return ports.RouteResult{}, ports.ErrInsufficientWaypoints
	}
	r, ok := m.Routes[MockRouteKey(waypoints)]
	if !ok {
		return ports.RouteResult{}, fmt.Errorf("mock route %q: %w", MockRouteKey(waypoints), ports.ErrRouteNotFound)
	}
	return r, nil
}
