package api

import (
	"net/http"

	"location-distance-service/internal/api/handlers"
	"location-distance-service/internal/ports"
	"location-distance-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(
	db handlers.Pinger,
	repo ports.LocationRepository,
	locations *services.LocationService,
	distances *services.DistanceService,
	aggregator *services.RouteAggregator,
) http.Handler {
	mux := http.NewServeMux()

	healthHandler := &handlers.HealthHandler{DB: db}
	locHandler := &handlers.LocationHandler{Locations: locations}
	distHandler := &handlers.DistanceHandler{Repo: repo, Distances: distances}
	routeHandler := &handlers.RouteHandler{Aggregator: aggregator}

	mux.HandleFunc("/health", healthHandler.Check)
	mux.HandleFunc("/locations", locHandler.Collection)
	mux.HandleFunc("/locations/", locHandler.Item)
	mux.HandleFunc("/distances", distHandler.Compute)
	mux.HandleFunc("/distances/recycling", distHandler.RecyclingReport)
	mux.HandleFunc("/routes/multi", routeHandler.Multi)

	return loggingMiddleware(mux)
}
