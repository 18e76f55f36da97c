package domain

import (
	"math"
	"strconv"
	"strings"
)

// HumanDuration formats whole seconds as "H hr M min", omitting zero
// segments. Sub-minute durations render as "< 1 min".
func HumanDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	parts := make([]string, 0, 2)
	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+" hr")
	}
	if minutes > 0 {
		parts = append(parts, strconv.Itoa(minutes)+" min")
	}

	if len(parts) == 0 {
		return "< 1 min"
	}
	return strings.Join(parts, " ")
}

// DurationMinutes converts whole seconds to minutes, rounded to nearest.
func DurationMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}
