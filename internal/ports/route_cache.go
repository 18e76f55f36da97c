package ports

import (
	"context"

	"location-distance-service/internal/domain"
)

// AggregateRoute is a stitched or single-request route through an ordered
// sequence of locations.
type AggregateRoute struct {
	LocationIDs     []int64             `json:"location_ids"`
	TotalKm         float64             `json:"total_km"`
	TotalMiles      float64             `json:"total_miles"`
	TotalDuration   string              `json:"total_duration"`
	DurationMinutes int                 `json:"duration_minutes"`
	RouteCoords     []domain.RoutePoint `json:"route_coords"`
}

// RouteCache holds computed aggregate routes for a short period (~7 days),
// keyed by a hash of the ordered location id list.
type RouteCache interface {
	GetAggregate(ctx context.Context, key string) (*AggregateRoute, bool, error)
	PutAggregate(ctx context.Context, key string, route *AggregateRoute) error
}
