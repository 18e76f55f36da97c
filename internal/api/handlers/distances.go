package handlers

import (
	"errors"
	"log"
	"net/http"

	"location-distance-service/internal/api/dto"
	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
	"location-distance-service/internal/services"
)

type DistanceHandler struct {
	Repo      ports.LocationRepository
	Distances *services.DistanceService
}

// Compute serves POST /distances: resolve the distance between two locations,
// from the store when a record exists and freshly otherwise.
func (h *DistanceHandler) Compute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.DistanceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.FromID <= 0 || req.ToID <= 0 {
		writeError(w, r, http.StatusBadRequest, "from_id and to_id are required")
		return
	}
	if req.FromID == req.ToID {
		writeError(w, r, http.StatusBadRequest, "from_id and to_id must differ")
		return
	}

	from, err := h.Repo.Get(r.Context(), req.FromID)
	if err != nil {
		writeLocationLoadError(w, r, req.FromID, err)
		return
	}
	to, err := h.Repo.Get(r.Context(), req.ToID)
	if err != nil {
		writeLocationLoadError(w, r, req.ToID, err)
		return
	}

	res, err := h.Distances.Between(r.Context(), from, to, req.Force)
	if err != nil {
		writeDistanceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toDistanceResponse(res))
}

// RecyclingReport serves GET /distances/recycling: one row per distribution
// center with its paired recycling location and the stored (or freshly
// computed) distance. Unpaired and unresolvable centers still get a row.
func (h *DistanceHandler) RecyclingReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dcs, err := h.Repo.ListByType(r.Context(), domain.TypeDistributionCenter)
	if err != nil {
		log.Printf("recycling report failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	report := dto.RecyclingDistanceReport{Rows: make([]dto.RecyclingDistanceRow, 0, len(dcs))}
	for _, dc := range dcs {
		report.Rows = append(report.Rows, h.recyclingRow(r, dc))
	}
	writeJSON(w, r, http.StatusOK, report)
}

func (h *DistanceHandler) recyclingRow(r *http.Request, dc *domain.Location) dto.RecyclingDistanceRow {
	row := dto.RecyclingDistanceRow{DistributionCenter: dc.Name}

	// A nil record renders the "—" sentinels.
	var record *domain.DistanceRecord

	switch {
	case dc.RecyclingLocationID == nil:
		row.Message = "No recycling location assigned"
	default:
		rec, err := h.Repo.Get(r.Context(), *dc.RecyclingLocationID)
		if err != nil {
			log.Printf("recycling report: dc=%s load pairing failed: %v", dc.ShortCode, err)
			row.Message = "Recycling location unavailable"
			break
		}
		row.RecyclingLocation = rec.Name

		res, err := h.Distances.Between(r.Context(), dc, rec, false)
		if err != nil {
			log.Printf("recycling report: dc=%s recycling=%s err=%v", dc.ShortCode, rec.ShortCode, err)
			row.Message = "No route found"
			break
		}
		record = res.Record
	}

	row.Distance = record.DistanceDisplay()
	row.Duration = record.DurationDisplay()
	return row
}

func writeLocationLoadError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "location not found")
		return
	}
	log.Printf("load location failed: id=%d err=%v", id, err)
	writeError(w, r, http.StatusInternalServerError, "internal server error")
}

// writeDistanceError maps resolution failures onto responses: client-fixable
// conditions get 422, provider misconfiguration gets 502, anything else 500.
func writeDistanceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrGeocodeNotFound):
		writeError(w, r, http.StatusUnprocessableEntity, "address could not be geocoded")
	case errors.Is(err, ports.ErrRouteNotFound):
		writeError(w, r, http.StatusUnprocessableEntity, "no route found between locations")
	case errors.Is(err, ports.ErrMissingCoordinates):
		writeError(w, r, http.StatusUnprocessableEntity, "location has no coordinates")
	case errors.Is(err, ports.ErrInsufficientWaypoints):
		writeError(w, r, http.StatusBadRequest, "at least two waypoints are required")
	case errors.Is(err, ports.ErrMissingConfiguration):
		writeError(w, r, http.StatusBadGateway, "route provider is not configured")
	default:
		log.Printf("distance resolution failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func toDistanceResponse(res services.DistanceResult) dto.DistanceResponse {
	rec := res.Record
	coords := make([][2]float64, len(rec.RouteCoords))
	for i, p := range rec.RouteCoords {
		coords[i] = p
	}
	return dto.DistanceResponse{
		FromLocationID:  rec.FromLocationID,
		ToLocationID:    rec.ToLocationID,
		DistanceKm:      rec.DistanceKm,
		DistanceMiles:   rec.DistanceMiles,
		Duration:        rec.DurationText,
		DurationMinutes: rec.DurationMinutes,
		RouteCoords:     coords,
		CalculatedAt:    rec.CalculatedAt,
		Source:          res.Source,
	}
}
