package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/healthatlas/facility-registry/internal/application/services"
	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
)

// FacilityHandler handles facility-related HTTP requests
type FacilityHandler struct {
	facilityService *services.FacilityService
	validate        *validator.Validate
}

// NewFacilityHandler creates a new facility handler
func NewFacilityHandler(facilityService *services.FacilityService) *FacilityHandler {
	return &FacilityHandler{
		facilityService: facilityService,
		validate:        validator.New(),
	}
}

type partnerPayload struct {
	Name    *string `json:"name" validate:"omitempty,max=255"`
	EndDate *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type facilityPayload struct {
	ExternalFacilityID  string           `json:"external_facility_id" validate:"required,max=100"`
	Name                string           `json:"name" validate:"required,max=255"`
	Latitude            *float64         `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude           *float64         `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	DistrictID          int64            `json:"district_id" validate:"required,gt=0"`
	FacilityTypeID      int64            `json:"facility_type_id" validate:"required,gt=0"`
	OwnershipID         int64            `json:"ownership_id" validate:"required,gt=0"`
	OperationalStatusID int64            `json:"operational_status_id" validate:"required,gt=0"`
	Partners            []partnerPayload `json:"partners" validate:"max=6,dive"`
	InChargeName        *string          `json:"in_charge_name" validate:"omitempty,max=255"`
	InChargeNumber      *string          `json:"in_charge_number" validate:"omitempty,max=50"`
}

func (p *facilityPayload) toEntity() (*entities.HealthFacility, error) {
	facility := &entities.HealthFacility{
		ExternalFacilityID:  p.ExternalFacilityID,
		Name:                p.Name,
		Latitude:            p.Latitude,
		Longitude:           p.Longitude,
		DistrictID:          p.DistrictID,
		FacilityTypeID:      p.FacilityTypeID,
		OwnershipID:         p.OwnershipID,
		OperationalStatusID: p.OperationalStatusID,
		InChargeName:        p.InChargeName,
		InChargeNumber:      p.InChargeNumber,
	}
	for i, partner := range p.Partners {
		facility.Partners[i].Name = partner.Name
		if partner.EndDate != nil {
			parsed, err := time.Parse("2006-01-02", *partner.EndDate)
			if err != nil {
				return nil, err
			}
			parsed = parsed.UTC()
			facility.Partners[i].EndDate = &parsed
		}
	}
	return facility, nil
}

func (h *FacilityHandler) decodePayload(w http.ResponseWriter, r *http.Request) (*facilityPayload, bool) {
	var payload facilityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	if err := h.validate.Struct(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &payload, true
}

// CreateFacility handles POST /api/facilities
func (h *FacilityHandler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	facility, err := payload.toEntity()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid partner end date")
		return
	}

	now := time.Now().UTC()
	facility.CreatedAt = now
	facility.UpdatedAt = now

	if err := h.facilityService.Create(r.Context(), facility); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, facility)
}

// GetFacility handles GET /api/facilities/{id}
func (h *FacilityHandler) GetFacility(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "facility id must be an integer")
		return
	}

	facility, err := h.facilityService.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, facility)
}

// GetFacilityByExternalID handles GET /api/facilities/external/{externalId}
func (h *FacilityHandler) GetFacilityByExternalID(w http.ResponseWriter, r *http.Request) {
	facility, err := h.facilityService.GetByExternalID(r.Context(), r.PathValue("externalId"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, facility)
}

// UpdateFacility handles PUT /api/facilities/{id}
func (h *FacilityHandler) UpdateFacility(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "facility id must be an integer")
		return
	}

	payload, ok := h.decodePayload(w, r)
	if !ok {
		return
	}
	facility, err := payload.toEntity()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid partner end date")
		return
	}
	facility.ID = id
	facility.UpdatedAt = time.Now().UTC()

	if err := h.facilityService.Update(r.Context(), facility); err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, facility)
}

// DeleteFacility handles DELETE /api/facilities/{id}
func (h *FacilityHandler) DeleteFacility(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "facility id must be an integer")
		return
	}

	if err := h.facilityService.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFacilities handles GET /api/facilities
func (h *FacilityHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := repositories.FacilityFilter{
		NameQuery: query.Get("q"),
		SortBy:    query.Get("sort"),
		SortDesc:  query.Get("order") == "desc",
	}

	for param, dest := range map[string]**int64{
		"district_id":           &filter.DistrictID,
		"facility_type_id":      &filter.FacilityTypeID,
		"ownership_id":          &filter.OwnershipID,
		"operational_status_id": &filter.OperationalStatusID,
	} {
		raw := query.Get(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, param+" must be an integer")
			return
		}
		*dest = &id
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "offset must be an integer")
			return
		}
		filter.Offset = offset
	}

	page, err := h.facilityService.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}
