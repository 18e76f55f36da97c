package mapbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/platform/obs"
	"location-distance-service/internal/ports"
)

type directionsResponse struct {
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
	Code string `json:"code"`
}

// ResolveRoute fetches the best driving route through the waypoints in
// order, requesting full-resolution GeoJSON geometry.
func (c *Client) ResolveRoute(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "mapbox.ResolveRoute")(&err)

	if err := c.configured(); err != nil {
		return ports.RouteResult{}, err
	}

	if len(waypoints) < 2 {
		return ports.RouteResult{}, fmt.Errorf(
			"resolve route: got %d waypoints: %w",
			len(waypoints), ports.ErrInsufficientWaypoints,
		)
	}

	// Path segment format: lng,lat;lng,lat;...
	parts := make([]string, 0, len(waypoints))
	for _, w := range waypoints {
		ll := w.CoordsToList()
		parts = append(parts,
			strconv.FormatFloat(ll[0], 'f', 6, 64)+","+strconv.FormatFloat(ll[1], 'f', 6, 64))
	}

	endpoint := fmt.Sprintf(
		"%s/directions/v5/%s/%s",
		c.baseURL, c.profile, strings.Join(parts, ";"),
	)

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("geometries", "geojson")
		q.Set("overview", "full")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteResult{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(decoded.Routes) == 0 {
		return ports.RouteResult{}, fmt.Errorf(
			"directions (%d waypoints): %w",
			len(waypoints), ports.ErrRouteNotFound,
		)
	}

	best := decoded.Routes[0]

	geometry := make([]domain.RoutePoint, 0, len(best.Geometry.Coordinates))
	for i, p := range best.Geometry.Coordinates {
		if len(p) != 2 {
			return ports.RouteResult{}, fmt.Errorf("directions: invalid geometry point at index %d", i)
		}
		geometry = append(geometry, domain.RoutePoint{p[0], p[1]})
	}

	return ports.RouteResult{
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Geometry:        geometry,
	}, nil
}
