package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/platform/obs"
	"location-distance-service/internal/ports"
)

type geocodeResponse struct {
	Features []struct {
		Center []float64 `json:"center"`
	} `json:"features"`
}

// Geocode resolves a free-text address to its single best coordinate match,
// constrained to address-type results and the configured country filter.
// No caching here; callers wrap the client in the cached geocoder service.
func (c *Client) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "mapbox.Geocode")(&err)

	if err := c.configured(); err != nil {
		return domain.Coordinates{}, err
	}

	addr := strings.Join(strings.Fields(address), " ")
	if addr == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: address must be non-empty")
	}

	endpoint := fmt.Sprintf(
		"%s/geocoding/v5/mapbox.places/%s.json",
		c.baseURL, url.PathEscape(addr),
	)

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("limit", "1")
		q.Set("types", "address")
		q.Set("country", c.country)
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", addr, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", addr, ports.ErrGeocodeNotFound)
	}

	// Mapbox centers are [lng, lat].
	center := decoded.Features[0].Center
	if len(center) != 2 {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: invalid center format", addr)
	}

	coords := domain.Coordinates{Lon: center[0], Lat: center[1]}
	if !coords.Valid() {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: coordinates out of range", addr)
	}

	return coords, nil
}
