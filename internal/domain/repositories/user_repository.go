package repositories

import (
	"context"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
)

// UserRepository defines the interface for user account operations
type UserRepository interface {
	// Create inserts a new user
	Create(ctx context.Context, user *entities.User) error

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*entities.User, error)
}
