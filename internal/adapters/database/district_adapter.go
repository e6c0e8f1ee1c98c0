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

// DistrictAdapter implements the DistrictRepository interface
type DistrictAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDistrictAdapter creates a new district adapter
func NewDistrictAdapter(client *postgres.Client) repositories.DistrictRepository {
	return &DistrictAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new district and fills in its generated ID
func (a *DistrictAdapter) Create(ctx context.Context, district *entities.District) error {
	query, args, err := a.db.Insert("districts").
		Rows(goqu.Record{
			"region_id":  district.RegionID,
			"name":       district.Name,
			"created_at": district.CreatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build district insert", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&district.ID); err != nil {
		return apperrors.NewInternalError("failed to create district", err)
	}
	return nil
}

// GetByRegionAndName retrieves a district by its (region, name) identity
func (a *DistrictAdapter) GetByRegionAndName(ctx context.Context, regionID int64, name string) (*entities.District, error) {
	query, args, err := a.db.Select("id", "region_id", "name", "created_at").
		From("districts").
		Where(goqu.Ex{"region_id": regionID, "name": name}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build district query", err)
	}

	district := &entities.District{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&district.ID, &district.RegionID, &district.Name, &district.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("district %q not found in region %d", name, regionID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get district", err)
	}
	return district, nil
}

// ListByRegion retrieves a region's districts ordered by name
func (a *DistrictAdapter) ListByRegion(ctx context.Context, regionID int64) ([]*entities.District, error) {
	query, args, err := a.db.Select("id", "region_id", "name", "created_at").
		From("districts").
		Where(goqu.Ex{"region_id": regionID}).
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build district list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list districts", err)
	}
	defer rows.Close()

	districts := []*entities.District{}
	for rows.Next() {
		district := &entities.District{}
		if err := rows.Scan(&district.ID, &district.RegionID, &district.Name, &district.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError("failed to scan district", err)
		}
		districts = append(districts, district)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating districts", err)
	}
	return districts, nil
}
