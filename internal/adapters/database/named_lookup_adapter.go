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

// NamedLookupAdapter implements NamedLookupRepository against one of the
// flat lookup tables. The three lookup tables share a shape, so a single
// adapter parameterized by table name serves them all.
type NamedLookupAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	table  string
	label  string
}

func newNamedLookupAdapter(client *postgres.Client, table, label string) *NamedLookupAdapter {
	return &NamedLookupAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		table:  table,
		label:  label,
	}
}

// NewFacilityTypeAdapter creates the facility-type lookup adapter
func NewFacilityTypeAdapter(client *postgres.Client) repositories.NamedLookupRepository {
	return newNamedLookupAdapter(client, "facility_types", "facility type")
}

// NewOwnershipAdapter creates the ownership lookup adapter
func NewOwnershipAdapter(client *postgres.Client) repositories.NamedLookupRepository {
	return newNamedLookupAdapter(client, "ownerships", "ownership")
}

// NewOperationalStatusAdapter creates the operational-status lookup adapter
func NewOperationalStatusAdapter(client *postgres.Client) repositories.NamedLookupRepository {
	return newNamedLookupAdapter(client, "operational_statuses", "operational status")
}

// Create inserts a new lookup value and fills in its generated ID
func (a *NamedLookupAdapter) Create(ctx context.Context, value *entities.LookupValue) error {
	query, args, err := a.db.Insert(a.table).
		Rows(goqu.Record{
			"name":       value.Name,
			"created_at": value.CreatedAt,
		}).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to build %s insert", a.label), err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&value.ID); err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to create %s", a.label), err)
	}
	return nil
}

// GetByName retrieves a lookup value by its unique name
func (a *NamedLookupAdapter) GetByName(ctx context.Context, name string) (*entities.LookupValue, error) {
	query, args, err := a.db.Select("id", "name", "created_at").
		From(a.table).
		Where(goqu.Ex{"name": name}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to build %s query", a.label), err)
	}

	value := &entities.LookupValue{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(&value.ID, &value.Name, &value.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s %q not found", a.label, name))
	}
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to get %s", a.label), err)
	}
	return value, nil
}

// List retrieves all values ordered by name
func (a *NamedLookupAdapter) List(ctx context.Context) ([]*entities.LookupValue, error) {
	query, args, err := a.db.Select("id", "name", "created_at").
		From(a.table).
		Order(goqu.I("name").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to build %s list query", a.label), err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("failed to list %ss", a.label), err)
	}
	defer rows.Close()

	values := []*entities.LookupValue{}
	for rows.Next() {
		value := &entities.LookupValue{}
		if err := rows.Scan(&value.ID, &value.Name, &value.CreatedAt); err != nil {
			return nil, apperrors.NewInternalError(fmt.Sprintf("failed to scan %s", a.label), err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("error iterating %ss", a.label), err)
	}
	return values, nil
}
