package mapbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
)

func TestGeocodeBestMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/geocoding/v5/mapbox.places/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("access_token") != "test-token" {
			t.Errorf("missing access_token, got %q", q.Get("access_token"))
		}
		if q.Get("limit") != "1" || q.Get("types") != "address" || q.Get("country") != "us" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"center":[-89.650148,39.781721]}]}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	coords, err := client.Geocode(context.Background(), "100 Main St, Springfield, IL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := domain.Coordinates{Lon: -89.650148, Lat: 39.781721}
	if coords != want {
		t.Fatalf("coords = %+v, want %+v", coords, want)
	}
}

func TestGeocodeNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[]}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	_, err := client.Geocode(context.Background(), "nowhere")
	if !errors.Is(err, ports.ErrGeocodeNotFound) {
		t.Fatalf("expected ErrGeocodeNotFound, got %v", err)
	}
}

func TestGeocodeMissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"center":[-112.0866,33.4417]}]}`))
	}))
	defer server.Close()

	client := NewClient("", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	_, err := client.Geocode(context.Background(), "100 Main St")
	if !errors.Is(err, ports.ErrMissingConfiguration) {
		t.Fatalf("expected ErrMissingConfiguration, got %v", err)
	}

	// Once a credential arrives, the same call succeeds.
	client.SetToken("test-token")
	coords, err := client.Geocode(context.Background(), "100 Main St")
	if err != nil {
		t.Fatalf("Geocode after SetToken: %v", err)
	}
	if coords.Lat != 33.4417 {
		t.Fatalf("lat = %v, want 33.4417", coords.Lat)
	}
}

func TestResolveRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/directions/v5/mapbox/driving/") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if !strings.Contains(r.URL.Path, "-89.650000,39.780000;-89.630000,39.800000") {
			t.Errorf("unexpected waypoints in path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("geometries") != "geojson" || q.Get("overview") != "full" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"code": "Ok",
			"routes": [{
				"distance": 12345.6,
				"duration": 987.4,
				"geometry": {"coordinates": [[-89.65, 39.78], [-89.64, 39.79], [-89.63, 39.80]]}
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	result, err := client.ResolveRoute(context.Background(), []domain.Coordinates{
		{Lon: -89.65, Lat: 39.78},
		{Lon: -89.63, Lat: 39.80},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.DistanceMeters != 12345.6 {
		t.Errorf("distance = %v, want 12345.6", result.DistanceMeters)
	}
	if result.DurationSeconds != 987.4 {
		t.Errorf("duration = %v, want 987.4", result.DurationSeconds)
	}
	if len(result.Geometry) != 3 {
		t.Fatalf("geometry has %d points, want 3", len(result.Geometry))
	}
	if result.Geometry[0] != (domain.RoutePoint{-89.65, 39.78}) {
		t.Errorf("geometry[0] = %v", result.Geometry[0])
	}
}

func TestResolveRouteEmptyRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code": "NoRoute", "routes": []}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	_, err := client.ResolveRoute(context.Background(), []domain.Coordinates{
		{Lon: 0, Lat: 0},
		{Lon: 1, Lat: 1},
	})
	if !errors.Is(err, ports.ErrRouteNotFound) {
		t.Fatalf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestResolveRouteInsufficientWaypoints(t *testing.T) {
	client := NewClient("test-token")

	_, err := client.ResolveRoute(context.Background(), []domain.Coordinates{{Lon: 0, Lat: 0}})
	if !errors.Is(err, ports.ErrInsufficientWaypoints) {
		t.Fatalf("expected ErrInsufficientWaypoints, got %v", err)
	}
}

func TestDoWithRetryRecoversFromTransientFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"center":[-112.074,33.4484]}]}`))
	}))
	defer server.Close()

	client := NewClient("test-token", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	coords, err := client.Geocode(context.Background(), "1901 W Madison St, Phoenix, AZ")
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("attempts = %d, want 2", attempts)
	}
	if coords.Lat != 33.4484 {
		t.Fatalf("coords = %+v", coords)
	}
}

func TestPermanentFailureNotRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient("bad-token", WithBaseURL(server.URL), WithHTTPClient(server.Client()))

	_, err := client.Geocode(context.Background(), "100 Main St")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (4xx must not be retried)", attempts)
	}
}
