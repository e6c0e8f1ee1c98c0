package handlers

import (
	"net/http"
	"strconv"

	"github.com/healthatlas/facility-registry/internal/domain/repositories"
)

// LookupHandler serves the geography hierarchy and the flat lookup tables.
type LookupHandler struct {
	states        repositories.StateRepository
	regions       repositories.RegionRepository
	districts     repositories.DistrictRepository
	facilityTypes repositories.NamedLookupRepository
	ownerships    repositories.NamedLookupRepository
	statuses      repositories.NamedLookupRepository
}

// NewLookupHandler creates a new lookup handler
func NewLookupHandler(
	states repositories.StateRepository,
	regions repositories.RegionRepository,
	districts repositories.DistrictRepository,
	facilityTypes repositories.NamedLookupRepository,
	ownerships repositories.NamedLookupRepository,
	statuses repositories.NamedLookupRepository,
) *LookupHandler {
	return &LookupHandler{
		states:        states,
		regions:       regions,
		districts:     districts,
		facilityTypes: facilityTypes,
		ownerships:    ownerships,
		statuses:      statuses,
	}
}

// ListStates handles GET /api/states
func (h *LookupHandler) ListStates(w http.ResponseWriter, r *http.Request) {
	states, err := h.states.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"states": states,
		"count":  len(states),
	})
}

// ListRegions handles GET /api/states/{stateId}/regions
func (h *LookupHandler) ListRegions(w http.ResponseWriter, r *http.Request) {
	stateID, err := strconv.ParseInt(r.PathValue("stateId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "state id must be an integer")
		return
	}

	regions, err := h.regions.ListByState(r.Context(), stateID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"regions": regions,
		"count":   len(regions),
	})
}

// ListDistricts handles GET /api/regions/{regionId}/districts
func (h *LookupHandler) ListDistricts(w http.ResponseWriter, r *http.Request) {
	regionID, err := strconv.ParseInt(r.PathValue("regionId"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "region id must be an integer")
		return
	}

	districts, err := h.districts.ListByRegion(r.Context(), regionID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"districts": districts,
		"count":     len(districts),
	})
}

// ListFacilityTypes handles GET /api/facility-types
func (h *LookupHandler) ListFacilityTypes(w http.ResponseWriter, r *http.Request) {
	h.listNamed(w, r, h.facilityTypes, "facility_types")
}

// ListOwnerships handles GET /api/ownerships
func (h *LookupHandler) ListOwnerships(w http.ResponseWriter, r *http.Request) {
	h.listNamed(w, r, h.ownerships, "ownerships")
}

// ListOperationalStatuses handles GET /api/operational-statuses
func (h *LookupHandler) ListOperationalStatuses(w http.ResponseWriter, r *http.Request) {
	h.listNamed(w, r, h.statuses, "operational_statuses")
}

func (h *LookupHandler) listNamed(w http.ResponseWriter, r *http.Request, repo repositories.NamedLookupRepository, key string) {
	values, err := repo.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		key:     values,
		"count": len(values),
	})
}
