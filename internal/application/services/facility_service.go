package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
	"github.com/healthatlas/facility-registry/internal/importer"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// FacilityService handles single-facility CRUD on top of the repository,
// enforcing the field rules that the bulk import applies to its records.
type FacilityService struct {
	facilities repositories.FacilityRepository
}

// NewFacilityService creates a new facility service
func NewFacilityService(facilities repositories.FacilityRepository) *FacilityService {
	return &FacilityService{facilities: facilities}
}

// FacilityPage is one page of a facility listing with the unpaginated total.
type FacilityPage struct {
	Items  []*entities.HealthFacility `json:"items"`
	Total  int                        `json:"total"`
	Limit  int                        `json:"limit"`
	Offset int                        `json:"offset"`
}

// Create validates and inserts a new facility.
func (s *FacilityService) Create(ctx context.Context, facility *entities.HealthFacility) error {
	if err := validateFacility(facility); err != nil {
		return err
	}
	if _, err := s.facilities.GetByExternalID(ctx, facility.ExternalFacilityID); err == nil {
		return apperrors.NewConflictError(
			fmt.Sprintf("facility with external id %q already exists", facility.ExternalFacilityID))
	} else if !apperrors.IsNotFound(err) {
		return err
	}
	return s.facilities.Create(ctx, facility)
}

// GetByID retrieves a facility by its internal ID.
func (s *FacilityService) GetByID(ctx context.Context, id int64) (*entities.HealthFacility, error) {
	return s.facilities.GetByID(ctx, id)
}

// GetByExternalID retrieves a facility by its external facility id.
func (s *FacilityService) GetByExternalID(ctx context.Context, externalID string) (*entities.HealthFacility, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperrors.NewValidationError("external facility id is required")
	}
	return s.facilities.GetByExternalID(ctx, externalID)
}

// Update validates and overwrites an existing facility.
func (s *FacilityService) Update(ctx context.Context, facility *entities.HealthFacility) error {
	if facility.ID <= 0 {
		return apperrors.NewValidationError("facility id is required")
	}
	if err := validateFacility(facility); err != nil {
		return err
	}
	return s.facilities.Update(ctx, facility)
}

// Delete removes a facility.
func (s *FacilityService) Delete(ctx context.Context, id int64) error {
	return s.facilities.Delete(ctx, id)
}

// List returns one page of facilities with the total match count. Limits are
// clamped rather than rejected.
func (s *FacilityService) List(ctx context.Context, filter repositories.FacilityFilter) (*FacilityPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.SortBy != "" && !validSortColumn(filter.SortBy) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported sort column %q", filter.SortBy))
	}

	items, err := s.facilities.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.facilities.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entities.HealthFacility{}
	}
	return &FacilityPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func validSortColumn(col string) bool {
	switch col {
	case repositories.SortByName, repositories.SortByExternalID,
		repositories.SortByCreatedAt, repositories.SortByUpdatedAt:
		return true
	}
	return false
}

func validateFacility(f *entities.HealthFacility) error {
	f.ExternalFacilityID = strings.TrimSpace(f.ExternalFacilityID)
	f.Name = strings.TrimSpace(f.Name)

	if f.ExternalFacilityID == "" {
		return apperrors.NewValidationError("external facility id is required")
	}
	if f.Name == "" {
		return apperrors.NewValidationError("facility name is required")
	}
	if f.DistrictID <= 0 {
		return apperrors.NewValidationError("district id is required")
	}
	if f.FacilityTypeID <= 0 {
		return apperrors.NewValidationError("facility type id is required")
	}
	if f.OwnershipID <= 0 {
		return apperrors.NewValidationError("ownership id is required")
	}
	if f.OperationalStatusID <= 0 {
		return apperrors.NewValidationError("operational status id is required")
	}
	if f.Latitude != nil && (*f.Latitude < importer.LatitudeMin || *f.Latitude > importer.LatitudeMax) {
		return apperrors.NewValidationError("latitude must be between -90 and 90")
	}
	if f.Longitude != nil && (*f.Longitude < importer.LongitudeMin || *f.Longitude > importer.LongitudeMax) {
		return apperrors.NewValidationError("longitude must be between -180 and 180")
	}
	return nil
}
