package handlers

import (
	"errors"
	"net/http"

	"location-distance-service/internal/api/dto"
	"location-distance-service/internal/ports"
	"location-distance-service/internal/services"
)

type RouteHandler struct {
	Aggregator *services.RouteAggregator
}

// Multi serves POST /routes/multi: an aggregated route through an ordered
// list of locations.
func (h *RouteHandler) Multi(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.MultiRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.LocationIDs) < 2 {
		writeError(w, r, http.StatusBadRequest, "at least two location_ids are required")
		return
	}

	var (
		route *ports.AggregateRoute
		err   error
	)
	if req.Direct {
		route, err = h.Aggregator.AggregateDirect(r.Context(), req.LocationIDs)
	} else {
		route, err = h.Aggregator.Aggregate(r.Context(), req.LocationIDs)
	}
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "location not found")
			return
		}
		writeDistanceError(w, r, err)
		return
	}

	coords := make([][2]float64, len(route.RouteCoords))
	for i, p := range route.RouteCoords {
		coords[i] = p
	}
	writeJSON(w, r, http.StatusOK, dto.MultiRouteResponse{
		LocationIDs:     route.LocationIDs,
		TotalKm:         route.TotalKm,
		TotalMiles:      route.TotalMiles,
		TotalDuration:   route.TotalDuration,
		DurationMinutes: route.DurationMinutes,
		RouteCoords:     coords,
	})
}
