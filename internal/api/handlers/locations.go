package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"location-distance-service/internal/api/dto"
	"location-distance-service/internal/domain"
	"location-distance-service/internal/ports"
	"location-distance-service/internal/services"
)

type LocationHandler struct {
	Locations *services.LocationService
}

// Collection serves the /locations endpoint: list and create.
func (h *LocationHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// Item serves /locations/{id}: fetch, update, delete.
func (h *LocationHandler) Item(w http.ResponseWriter, r *http.Request) {
	id, ok := locationID(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func locationID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimPrefix(r.URL.Path, "/locations/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid location id")
		return 0, false
	}
	return id, true
}

func (h *LocationHandler) list(w http.ResponseWriter, r *http.Request) {
	locs, err := h.Locations.List(r.Context())
	if err != nil {
		log.Printf("list locations failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListLocationResponse{Locations: make([]dto.LocationResponse, 0, len(locs))}
	for _, loc := range locs {
		res.Locations = append(res.Locations, toLocationResponse(loc))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *LocationHandler) get(w http.ResponseWriter, r *http.Request, id int64) {
	loc, err := h.Locations.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "location not found")
			return
		}
		log.Printf("get location failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, toLocationResponse(loc))
}

func (h *LocationHandler) create(w http.ResponseWriter, r *http.Request) {
	var req dto.LocationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	loc := fromLocationRequest(&req)
	if err := loc.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.Locations.Create(r.Context(), loc); err != nil {
		log.Printf("create location failed: code=%s err=%v", loc.ShortCode, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusCreated, toLocationResponse(loc))
}

func (h *LocationHandler) update(w http.ResponseWriter, r *http.Request, id int64) {
	var req dto.LocationRequest
	if !decodeBody(w, r, &req) {
		return
	}

	loc := fromLocationRequest(&req)
	loc.ID = id
	if err := loc.Validate(); err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := h.Locations.Update(r.Context(), loc); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "location not found")
			return
		}
		log.Printf("update location failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, toLocationResponse(loc))
}

func (h *LocationHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.Locations.Delete(r.Context(), id); err != nil {
		log.Printf("delete location failed: id=%d err=%v", id, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func fromLocationRequest(req *dto.LocationRequest) *domain.Location {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &domain.Location{
		ShortCode:           strings.TrimSpace(req.ShortCode),
		Name:                strings.TrimSpace(req.Name),
		Address:             strings.TrimSpace(req.Address),
		City:                strings.TrimSpace(req.City),
		State:               strings.TrimSpace(req.State),
		Zip:                 strings.TrimSpace(req.Zip),
		Country:             strings.TrimSpace(req.Country),
		Type:                domain.LocationType(req.Type),
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		RecyclingLocationID: req.RecyclingLocationID,
		IsActive:            active,
	}
}

func toLocationResponse(loc *domain.Location) dto.LocationResponse {
	return dto.LocationResponse{
		ID:                  loc.ID,
		ShortCode:           loc.ShortCode,
		Name:                loc.Name,
		Address:             loc.Address,
		City:                loc.City,
		State:               loc.State,
		Zip:                 loc.Zip,
		Country:             loc.Country,
		FullAddress:         loc.FullAddress(),
		Type:                string(loc.Type),
		Latitude:            loc.Latitude,
		Longitude:           loc.Longitude,
		RecyclingLocationID: loc.RecyclingLocationID,
		IsActive:            loc.IsActive,
	}
}
