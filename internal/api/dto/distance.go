package dto

import "time"

type DistanceRequest struct {
	FromID int64 `json:"from_id"`
	ToID   int64 `json:"to_id"`
	Force  bool  `json:"force"`
}

type DistanceResponse struct {
	FromLocationID  int64        `json:"from_location_id"`
	ToLocationID    int64        `json:"to_location_id"`
	DistanceKm      float64      `json:"distance_km"`
	DistanceMiles   float64      `json:"distance_miles"`
	Duration        string       `json:"duration,omitempty"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
	RouteCoords     [][2]float64 `json:"route_coords,omitempty"`
	CalculatedAt    time.Time    `json:"calculated_at"`
	Source          string       `json:"source"`
}

// RecyclingDistanceRow is one line of the DC-to-recycling report. Distance
// and duration are preformatted display strings; unpaired centers carry the
// sentinel message instead of a recycling location.
type RecyclingDistanceRow struct {
	DistributionCenter string `json:"distribution_center"`
	RecyclingLocation  string `json:"recycling_location,omitempty"`
	Distance           string `json:"distance"`
	Duration           string `json:"duration"`
	Message            string `json:"message,omitempty"`
}

type RecyclingDistanceReport struct {
	Rows []RecyclingDistanceRow `json:"rows"`
}
