package ports

import (
	"context"

	"location-distance-service/internal/domain"
)

// Raw driving-route metrics as reported by the directions service.
type RouteResult struct {
	DistanceMeters  float64
	DurationSeconds float64
	Geometry        []domain.RoutePoint
}

// Contract for retrieving a driving route through two or more coordinates.
type RouteProvider interface {
	// ResolveRoute returns the best route visiting the waypoints in order,
	// with full-resolution geometry. Returns ErrRouteNotFound when the
	// service has no route, ErrInsufficientWaypoints for fewer than two
	// waypoints, and ErrMissingConfiguration when no credential is
	// configured.
	ResolveRoute(ctx context.Context, waypoints []domain.Coordinates) (RouteResult, error)
}
