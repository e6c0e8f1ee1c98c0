package repositories

import (
	"context"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
)

// FacilityRepository defines the interface for health-facility data operations
type FacilityRepository interface {
	// Create inserts a new facility and fills in its generated ID
	Create(ctx context.Context, facility *entities.HealthFacility) error

	// CreateBatch inserts a batch of facilities in one statement
	CreateBatch(ctx context.Context, facilities []*entities.HealthFacility) error

	// GetByID retrieves a facility by ID
	GetByID(ctx context.Context, id int64) (*entities.HealthFacility, error)

	// GetByExternalID retrieves a facility by its external facility id
	GetByExternalID(ctx context.Context, externalID string) (*entities.HealthFacility, error)

	// Update overwrites all mutable fields of a facility
	Update(ctx context.Context, facility *entities.HealthFacility) error

	// Delete removes a facility
	Delete(ctx context.Context, id int64) error

	// List retrieves facilities matching the filter
	List(ctx context.Context, filter FacilityFilter) ([]*entities.HealthFacility, error)

	// Count returns the number of facilities matching the filter, ignoring
	// pagination
	Count(ctx context.Context, filter FacilityFilter) (int, error)
}

// Sortable columns accepted by FacilityFilter.SortBy.
const (
	SortByName       = "name"
	SortByExternalID = "external_facility_id"
	SortByCreatedAt  = "created_at"
	SortByUpdatedAt  = "updated_at"
)

// FacilityFilter defines filters, sorting and pagination for facility listing
type FacilityFilter struct {
	DistrictID          *int64
	FacilityTypeID      *int64
	OwnershipID         *int64
	OperationalStatusID *int64
	NameQuery           string
	SortBy              string
	SortDesc            bool
	Limit               int
	Offset              int
}
