package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
	"github.com/healthatlas/facility-registry/internal/infrastructure/clients/postgres"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

// StateAdapter implements the StateRepository interface
type StateAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewStateAdapter creates a new state adapter
func NewStateAdapter(client *postgres.Client) repositories.StateRepository {
	return &StateAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new state and fills in its generated ID
func (a *StateAdapter) Create(ctx context.Context, state *entities.State) error {
	query, args, err := a.db.Insert("states").
		Rows(goqu.Record{
			"code":       state.Code,
			"name":       state.Name,
			"created_at": state.CreatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build state insert", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&state.ID); err != nil {
		return apperrors.NewInternalError("failed to create state", err)
	}
	return nil
}

// GetByCode retrieves a state by its unique code
func (a *StateAdapter) GetByCode(ctx context.Context, code string) (*entities.State, error) {
	query, args, err := a.db.Select("id", "code", "name", "created_at").
		From("states").
		Where(goqu.Ex{"code": code}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build state query", err)
	}

	state := &entities.State{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&state.ID, &state.Code, &state.Name, &state.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("state with code %q not found", code))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get state", err)
	}
	return state, nil
}

// List retrieves all states ordered by name
func (a *StateAdapter) List(ctx context.Context) ([]*entities.State, error) {
	query, args, err := a.db.Select("id", "code", "name", "created_at").
		From("states").
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build state list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list states", err)
	}
	defer rows.Close()

	states := []*entities.State{}
	for rows.Next() {
		state := &entities.State{}
		if err := rows.Scan(&state.ID, &state.Code, &state.Name, &state.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan state", err)
		}
		states = append(states, state)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating states", err)
	}
	return states, nil
}
