package ports

import (
	"context"

	"location-distance-service/internal/domain"
)

// Contract for resolving a free-text address to coordinates.
type Geocoder interface {
	// Geocode returns the single best coordinate match for an address.
	// Returns ErrGeocodeNotFound when the service has no match and
	// ErrMissingConfiguration when no credential is configured.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// GeocodeCache is a long-lived address -> coordinate cache. Entries expire
// (~1 year) and expired entries behave as misses; there is no explicit
// invalidation.
type GeocodeCache interface {
	// Get returns the cached coordinates for a key, with ok=false on a miss
	// (including expiry).
	Get(ctx context.Context, key string) (domain.Coordinates, bool, error)
	// Put stores coordinates under a key with the cache's expiry policy.
	Put(ctx context.Context, key string, coords domain.Coordinates) error
}
