package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
	"github.com/healthatlas/facility-registry/internal/infrastructure/clients/postgres"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

// RegionAdapter implements the RegionRepository interface
type RegionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRegionAdapter creates a new region adapter
func NewRegionAdapter(client *postgres.Client) repositories.RegionRepository {
	return &RegionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new region and fills in its generated ID
func (a *RegionAdapter) Create(ctx context.Context, region *entities.Region) error {
	query, args, err := a.db.Insert("regions").
		Rows(goqu.Record{
			"state_id":   region.StateID,
			"name":       region.Name,
			"created_at": region.CreatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build region insert", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&region.ID); err != nil {
		return apperrors.NewInternalError("failed to create region", err)
	}
	return nil
}

// GetByStateAndName retrieves a region by its (state, name) identity
func (a *RegionAdapter) GetByStateAndName(ctx context.Context, stateID int64, name string) (*entities.Region, error) {
	query, args, err := a.db.Select("id", "state_id", "name", "created_at").
		From("regions").
		Where(goqu.Ex{"state_id": stateID, "name": name}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build region query", err)
	}

	region := &entities.Region{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&region.ID, &region.StateID, &region.Name, &region.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("region %q not found in state %d", name, stateID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get region", err)
	}
	return region, nil
}

// ListByState retrieves a state's regions ordered by name
func (a *RegionAdapter) ListByState(ctx context.Context, stateID int64) ([]*entities.Region, error) {
	query, args, err := a.db.Select("id", "state_id", "name", "created_at").
		From("regions").
		Where(goqu.Ex{"state_id": stateID}).
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build region list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list regions", err)
	}
	defer rows.Close()

	regions := []*entities.Region{}
	for rows.Next() {
		region := &entities.Region{}
		if err := rows.Scan(&region.ID, &region.StateID, &region.Name, &region.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan region", err)
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating regions", err)
	}
	return regions, nil
}
