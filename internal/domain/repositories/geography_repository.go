package repositories

import (
	"context"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
)

// StateRepository defines the interface for state data operations
type StateRepository interface {
	// Create inserts a new state and fills in its generated ID
	Create(ctx context.Context, state *entities.State) error

	// GetByCode retrieves a state by its unique code
	GetByCode(ctx context.Context, code string) (*entities.State, error)

	// List retrieves all states ordered by name
	List(ctx context.Context) ([]*entities.State, error)
}

// RegionRepository defines the interface for region data operations
type RegionRepository interface {
	// Create inserts a new region and fills in its generated ID
	Create(ctx context.Context, region *entities.Region) error

	// GetByStateAndName retrieves a region by its (state, name) identity
	GetByStateAndName(ctx context.Context, stateID int64, name string) (*entities.Region, error)

	// ListByState retrieves a state's regions ordered by name
	ListByState(ctx context.Context, stateID int64) ([]*entities.Region, error)
}

// DistrictRepository defines the interface for district data operations
type DistrictRepository interface {
	// Create inserts a new district and fills in its generated ID
	Create(ctx context.Context, district *entities.District) error

	// GetByRegionAndName retrieves a district by its (region, name) identity
	GetByRegionAndName(ctx context.Context, regionID int64, name string) (*entities.District, error)

	// ListByRegion retrieves a region's districts ordered by name
	ListByRegion(ctx context.Context, regionID int64) ([]*entities.District, error)
}
