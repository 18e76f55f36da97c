package dto

type MultiRouteRequest struct {
	LocationIDs []int64 `json:"location_ids"`
	// Direct requests a single multi-waypoint resolution instead of
	// stitched pairwise legs; it requires stored coordinates on every stop.
	Direct      bool    `json:"direct"`
}

type MultiRouteResponse struct {
	LocationIDs     []int64      `json:"location_ids"`
	TotalKm         float64      `json:"total_km"`
	TotalMiles      float64      `json:"total_miles"`
	TotalDuration   string       `json:"total_duration"`
	DurationMinutes int          `json:"duration_minutes"`
	RouteCoords     [][2]float64 `json:"route_coords"`
}
