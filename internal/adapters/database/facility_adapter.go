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

// FacilityAdapter implements the FacilityRepository interface
type FacilityAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFacilityAdapter creates a new facility adapter
func NewFacilityAdapter(client *postgres.Client) repositories.FacilityRepository {
	return &FacilityAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

func facilityColumns() []any {
	cols := []any{
		"id", "external_facility_id", "name", "latitude", "longitude",
		"district_id", "facility_type_id", "ownership_id", "operational_status_id",
	}
	for i := 1; i <= entities.PartnerSlots; i++ {
		cols = append(cols,
			fmt.Sprintf("partner_%d_name", i),
			fmt.Sprintf("partner_%d_end_date", i),
		)
	}
	return append(cols, "in_charge_name", "in_charge_number", "created_at", "updated_at")
}

// facilityRecord maps an entity onto its column values, excluding the
// generated id.
func facilityRecord(f *entities.HealthFacility) goqu.Record {
	record := goqu.Record{
		"external_facility_id":  f.ExternalFacilityID,
		"name":                  f.Name,
		"latitude":              f.Latitude,
		"longitude":             f.Longitude,
		"district_id":           f.DistrictID,
		"facility_type_id":      f.FacilityTypeID,
		"ownership_id":          f.OwnershipID,
		"operational_status_id": f.OperationalStatusID,
		"in_charge_name":        f.InChargeName,
		"in_charge_number":      f.InChargeNumber,
		"created_at":            f.CreatedAt,
		"updated_at":            f.UpdatedAt,
	}
	for i := 0; i < entities.PartnerSlots; i++ {
		record[fmt.Sprintf("partner_%d_name", i+1)] = f.Partners[i].Name
		record[fmt.Sprintf("partner_%d_end_date", i+1)] = f.Partners[i].EndDate
	}
	return record
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFacility(row rowScanner) (*entities.HealthFacility, error) {
	f := &entities.HealthFacility{}
	var lat, lng sql.NullFloat64
	var inChargeName, inChargeNumber sql.NullString
	var partnerNames [entities.PartnerSlots]sql.NullString
	var partnerDates [entities.PartnerSlots]sql.NullTime

	dest := []any{
		&f.ID, &f.ExternalFacilityID, &f.Name, &lat, &lng,
		&f.DistrictID, &f.FacilityTypeID, &f.OwnershipID, &f.OperationalStatusID,
	}
	for i := 0; i < entities.PartnerSlots; i++ {
		dest = append(dest, &partnerNames[i], &partnerDates[i])
	}
	dest = append(dest, &inChargeName, &inChargeNumber, &f.CreatedAt, &f.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if lat.Valid {
		f.Latitude = &lat.Float64
	}
	if lng.Valid {
		f.Longitude = &lng.Float64
	}
	if inChargeName.Valid {
		f.InChargeName = &inChargeName.String
	}
	if inChargeNumber.Valid {
		f.InChargeNumber = &inChargeNumber.String
	}
	for i := 0; i < entities.PartnerSlots; i++ {
		if partnerNames[i].Valid {
			name := partnerNames[i].String
			f.Partners[i].Name = &name
		}
		if partnerDates[i].Valid {
			date := partnerDates[i].Time
			f.Partners[i].EndDate = &date
		}
	}
	return f, nil
}

// Create inserts a new facility and fills in its generated ID
func (a *FacilityAdapter) Create(ctx context.Context, facility *entities.HealthFacility) error {
	query, args, err := a.db.Insert("health_facilities").
		Rows(facilityRecord(facility)).
		Returning("id").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build facility insert", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&facility.ID); err != nil {
		return apperrors.NewInternalError("failed to create facility", err)
	}
	return nil
}

// CreateBatch inserts a batch of facilities in one statement
func (a *FacilityAdapter) CreateBatch(ctx context.Context, facilities []*entities.HealthFacility) error {
	if len(facilities) == 0 {
		return nil
	}

	rows := make([]any, 0, len(facilities))
	for _, f := range facilities {
		rows = append(rows, facilityRecord(f))
	}

	query, args, err := a.db.Insert("health_facilities").Rows(rows...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build facility batch insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert facility batch", err)
	}
	return nil
}

// GetByID retrieves a facility by ID
func (a *FacilityAdapter) GetByID(ctx context.Context, id int64) (*entities.HealthFacility, error) {
	return a.getByField(ctx, "id", id)
}

// GetByExternalID retrieves a facility by its external facility id
func (a *FacilityAdapter) GetByExternalID(ctx context.Context, externalID string) (*entities.HealthFacility, error) {
	return a.getByField(ctx, "external_facility_id", externalID)
}

func (a *FacilityAdapter) getByField(ctx context.Context, field string, value any) (*entities.HealthFacility, error) {
	query, args, err := a.db.Select(facilityColumns()...).
		From("health_facilities").
		Where(goqu.Ex{field: value}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build facility query", err)
	}

	facility, err := scanFacility(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility with %s %v not found", field, value))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get facility", err)
	}
	return facility, nil
}

// Update overwrites all mutable fields of a facility
func (a *FacilityAdapter) Update(ctx context.Context, facility *entities.HealthFacility) error {
	record := facilityRecord(facility)
	delete(record, "created_at")

	query, args, err := a.db.Update("health_facilities").
		Set(record).
		Where(goqu.Ex{"id": facility.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build facility update", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update facility", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %d not found", facility.ID))
	}
	return nil
}

// Delete removes a facility
func (a *FacilityAdapter) Delete(ctx context.Context, id int64) error {
	query, args, err := a.db.Delete("health_facilities").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build facility delete", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete facility", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("facility with id %d not found", id))
	}
	return nil
}

func applyFacilityFilter(ds *goqu.SelectDataset, filter repositories.FacilityFilter) *goqu.SelectDataset {
	if filter.DistrictID != nil {
		ds = ds.Where(goqu.Ex{"district_id": *filter.DistrictID})
	}
	if filter.FacilityTypeID != nil {
		ds = ds.Where(goqu.Ex{"facility_type_id": *filter.FacilityTypeID})
	}
	if filter.OwnershipID != nil {
		ds = ds.Where(goqu.Ex{"ownership_id": *filter.OwnershipID})
	}
	if filter.OperationalStatusID != nil {
		ds = ds.Where(goqu.Ex{"operational_status_id": *filter.OperationalStatusID})
	}
	if filter.NameQuery != "" {
		ds = ds.Where(goqu.I("name").ILike("%" + filter.NameQuery + "%"))
	}
	return ds
}

func sortColumn(filter repositories.FacilityFilter) string {
	switch filter.SortBy {
	case repositories.SortByName, repositories.SortByExternalID,
		repositories.SortByCreatedAt, repositories.SortByUpdatedAt:
		return filter.SortBy
	}
	return repositories.SortByName
}

// List retrieves facilities matching the filter
func (a *FacilityAdapter) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.HealthFacility, error) {
	ds := applyFacilityFilter(a.db.Select(facilityColumns()...).From("health_facilities"), filter)

	order := goqu.I(sortColumn(filter)).Asc()
	if filter.SortDesc {
		order = goqu.I(sortColumn(filter)).Desc()
	}
	ds = ds.Order(order)

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build facility list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list facilities", err)
	}
	defer rows.Close()

	facilities := []*entities.HealthFacility{}
	for rows.Next() {
		facility, err := scanFacility(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan facility", err)
		}
		facilities = append(facilities, facility)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating facilities", err)
	}
	return facilities, nil
}

// Count returns the number of facilities matching the filter
func (a *FacilityAdapter) Count(ctx context.Context, filter repositories.FacilityFilter) (int, error) {
	ds := applyFacilityFilter(a.db.Select(goqu.COUNT("*")).From("health_facilities"), filter)

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build facility count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count facilities", err)
	}
	return count, nil
}
