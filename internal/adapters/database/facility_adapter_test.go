package database

import (
	"context"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
	"github.com/healthatlas/facility-registry/internal/infrastructure/clients/postgres"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

func newMockAdapter(t *testing.T) (*FacilityAdapter, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := NewFacilityAdapter(postgres.NewClientFromDB(db)).(*FacilityAdapter)
	return adapter, mock
}

func facilityRow(id int64) *sqlmock.Rows {
	cols := make([]string, 0, len(facilityColumns()))
	for _, c := range facilityColumns() {
		cols = append(cols, c.(string))
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	row := []driver.Value{
		id, fmt.Sprintf("HF-%03d", id), "Alpha Clinic", 2.7724590, 32.2881230,
		int64(1), int64(1), int64(1), int64(1),
	}
	for i := 0; i < entities.PartnerSlots; i++ {
		row = append(row, nil, nil)
	}
	row = append(row, nil, nil, now, now)

	rows := sqlmock.NewRows(cols)
	rows.AddRow(row...)
	return rows
}

func TestFacilityAdapter_GetByID(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT .+ FROM "health_facilities" WHERE \("id" = 7\)`).
		WillReturnRows(facilityRow(7))

	facility, err := adapter.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), facility.ID)
	assert.Equal(t, "HF-007", facility.ExternalFacilityID)
	require.NotNil(t, facility.Latitude)
	assert.InDelta(t, 2.7724590, *facility.Latitude, 1e-9)
	assert.Nil(t, facility.InChargeName)
	assert.Nil(t, facility.Partners[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityAdapter_GetByIDNotFound(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	cols := make([]string, 0, len(facilityColumns()))
	for _, c := range facilityColumns() {
		cols = append(cols, c.(string))
	}
	mock.ExpectQuery(`SELECT .+ FROM "health_facilities"`).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err := adapter.GetByID(context.Background(), 99)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityAdapter_CreateFillsID(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`INSERT INTO "health_facilities" .+ RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	now := time.Now().UTC()
	facility := &entities.HealthFacility{
		ExternalFacilityID:  "HF-042",
		Name:                "Alpha Clinic",
		DistrictID:          1,
		FacilityTypeID:      1,
		OwnershipID:         1,
		OperationalStatusID: 1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	require.NoError(t, adapter.Create(context.Background(), facility))
	assert.Equal(t, int64(42), facility.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityAdapter_CreateBatchEmptyIsNoop(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	require.NoError(t, adapter.CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityAdapter_CreateBatch(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(`INSERT INTO "health_facilities"`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	now := time.Now().UTC()
	batch := []*entities.HealthFacility{
		{ExternalFacilityID: "HF-001", Name: "A", DistrictID: 1, FacilityTypeID: 1, OwnershipID: 1, OperationalStatusID: 1, CreatedAt: now, UpdatedAt: now},
		{ExternalFacilityID: "HF-002", Name: "B", DistrictID: 1, FacilityTypeID: 1, OwnershipID: 1, OperationalStatusID: 1, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, adapter.CreateBatch(context.Background(), batch))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityAdapter_UpdateNotFound(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(`UPDATE "health_facilities" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	facility := &entities.HealthFacility{
		ID:                  99,
		ExternalFacilityID:  "HF-099",
		Name:                "Gone Clinic",
		DistrictID:          1,
		FacilityTypeID:      1,
		OwnershipID:         1,
		OperationalStatusID: 1,
	}
	err := adapter.Update(context.Background(), facility)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityAdapter_Delete(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(`DELETE FROM "health_facilities" WHERE \("id" = 7\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacilityAdapter_Count(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) .*FROM "health_facilities"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := adapter.Count(context.Background(), repositories.FacilityFilter{NameQuery: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
