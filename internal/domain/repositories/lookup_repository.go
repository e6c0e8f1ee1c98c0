package repositories

import (
	"context"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
)

// NamedLookupRepository covers the flat lookup tables (facility types,
// ownerships, operational statuses), which share a single shape: an
// auto-generated ID and a unique name.
type NamedLookupRepository interface {
	// Create inserts a new lookup value and fills in its generated ID
	Create(ctx context.Context, value *entities.LookupValue) error

	// GetByName retrieves a lookup value by its unique name
	GetByName(ctx context.Context, name string) (*entities.LookupValue, error)

	// List retrieves all values ordered by name
	List(ctx context.Context) ([]*entities.LookupValue, error)
}
