package domain

import (
	"fmt"
	"time"
)

// DefaultOutdatedDays is the reporting threshold after which a stored
// distance is considered stale. Staleness is a query capability only;
// reads never refresh automatically.
const DefaultOutdatedDays = 30

// RoutePoint is a single [lng, lat] vertex of a driving route polyline.
type RoutePoint [2]float64

// DistanceRecord is the cached result of a distance computation between an
// unordered pair of locations. The pair is stored normalized: the smaller
// location id is always FromLocationID. Records are overwritten on
// recomputation, never appended, and are derived data - never hand-edited.
type DistanceRecord struct {
	FromLocationID  int64
	ToLocationID    int64
	DistanceKm      float64
	DistanceMiles   float64
	DurationText    string
	DurationMinutes int
	RouteCoords     []RoutePoint
	CalculatedAt    time.Time
}

// NormalizePair returns the canonical (smaller-id-first) ordering for a
// location pair so that reverse-direction lookups hit the same record.
func NormalizePair(a, b int64) (from, to int64) {
	if a <= b {
		return a, b
	}
	return b, a
}

// IsOutdated reports whether the record was calculated more than
// thresholdDays ago.
func (r *DistanceRecord) IsOutdated(thresholdDays int) bool {
	if r.CalculatedAt.IsZero() {
		return true
	}
	return r.CalculatedAt.Before(time.Now().AddDate(0, 0, -thresholdDays))
}

// DistanceDisplay renders "12.3 km (7.6 mi)" or an em-dash sentinel when the
// distance is unknown.
func (r *DistanceRecord) DistanceDisplay() string {
	if r == nil {
		return "—"
	}
	return fmt.Sprintf("%.1f km (%.1f mi)", r.DistanceKm, r.DistanceMiles)
}

// DurationDisplay renders the human-readable duration or an em-dash when the
// duration is unknown (straight-line estimates carry no duration).
func (r *DistanceRecord) DurationDisplay() string {
	if r == nil || r.DurationText == "" {
		return "—"
	}
	return r.DurationText
}
