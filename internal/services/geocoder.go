package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
)

// NormalizeAddress collapses whitespace and lowercases so equivalent
// spellings share one cache entry.
func NormalizeAddress(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// GeocodeCacheKey is the cache key for an address: a hex digest of the
// normalized string, so arbitrarily long addresses stay within key limits.
func GeocodeCacheKey(address string) string {
	sum := sha256.Sum256([]byte(NormalizeAddress(address)))
	return hex.EncodeToString(sum[:])
}

// CachedGeocoder layers the persistent geocode cache over an external
// geocoder. Hits never touch the network; misses are resolved once and
// stored for the cache's lifetime (~1 year). No retries beyond the transport
// layer - callers decide whether to retry.
type CachedGeocoder struct {
	geocoder ports.Geocoder
	cache    ports.GeocodeCache
}

func NewCachedGeocoder(geocoder ports.Geocoder, cache ports.GeocodeCache) *CachedGeocoder {
	return &CachedGeocoder{geocoder: geocoder, cache: cache}
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	addr := NormalizeAddress(address)
	if addr == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: address must be non-empty")
	}

	key := GeocodeCacheKey(addr)

	if g.cache != nil {
		coords, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("geocode %q: read cache: %w", addr, err)
		}
		if ok {
			return coords, nil
		}
	}

	coords, err := g.geocoder.Geocode(ctx, addr)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if g.cache != nil {
		if err := g.cache.Put(ctx, key, coords); err != nil {
			log.Printf("geocode cache write failed: addr=%q err=%v", addr, err)
		}
	}

	return coords, nil
}
