package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthatlas/facility-registry/internal/api/handlers"
	"github.com/healthatlas/facility-registry/internal/application/services"
	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

type memFacilityRepo struct {
	seq  int64
	byID map[int64]*entities.HealthFacility
}

func newMemFacilityRepo() *memFacilityRepo {
	return &memFacilityRepo{byID: map[int64]*entities.HealthFacility{}}
}

func (r *memFacilityRepo) Create(_ context.Context, f *entities.HealthFacility) error {
	r.seq++
	f.ID = r.seq
	copied := *f
	r.byID[f.ID] = &copied
	return nil
}

func (r *memFacilityRepo) CreateBatch(ctx context.Context, fs []*entities.HealthFacility) error {
	for _, f := range fs {
		if err := r.Create(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (r *memFacilityRepo) GetByID(_ context.Context, id int64) (*entities.HealthFacility, error) {
	if f, ok := r.byID[id]; ok {
		return f, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("facility %d not found", id))
}

func (r *memFacilityRepo) GetByExternalID(_ context.Context, externalID string) (*entities.HealthFacility, error) {
	for _, f := range r.byID {
		if f.ExternalFacilityID == externalID {
			return f, nil
		}
	}
	return nil, apperrors.NewNotFoundError("facility not found")
}

func (r *memFacilityRepo) Update(_ context.Context, f *entities.HealthFacility) error {
	if _, ok := r.byID[f.ID]; !ok {
		return apperrors.NewNotFoundError("facility not found")
	}
	copied := *f
	r.byID[f.ID] = &copied
	return nil
}

func (r *memFacilityRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return apperrors.NewNotFoundError("facility not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *memFacilityRepo) List(_ context.Context, _ repositories.FacilityFilter) ([]*entities.HealthFacility, error) {
	out := make([]*entities.HealthFacility, 0, len(r.byID))
	for _, f := range r.byID {
		out = append(out, f)
	}
	return out, nil
}

func (r *memFacilityRepo) Count(_ context.Context, _ repositories.FacilityFilter) (int, error) {
	return len(r.byID), nil
}

func newFacilityHandler() (*handlers.FacilityHandler, *memFacilityRepo) {
	repo := newMemFacilityRepo()
	return handlers.NewFacilityHandler(services.NewFacilityService(repo)), repo
}

func createPayload() map[string]interface{} {
	return map[string]interface{}{
		"external_facility_id":  "HF-001",
		"name":                  "Alpha Clinic",
		"district_id":           1,
		"facility_type_id":      1,
		"ownership_id":          1,
		"operational_status_id": 1,
		"latitude":              2.77,
		"longitude":             32.28,
		"partners": []map[string]interface{}{
			{"name": "UNICEF", "end_date": "2027-06-30"},
		},
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestFacilityHandler_CreateFacility(t *testing.T) {
	handler, repo := newFacilityHandler()

	rec := postJSON(t, handler.CreateFacility, "/api/facilities", createPayload())
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created entities.HealthFacility
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "HF-001", created.ExternalFacilityID)
	require.NotNil(t, created.Partners[0].Name)
	assert.Equal(t, "UNICEF", *created.Partners[0].Name)
	assert.Len(t, repo.byID, 1)
}

func TestFacilityHandler_CreateFacility_Validation(t *testing.T) {
	handler, _ := newFacilityHandler()

	payload := createPayload()
	payload["name"] = ""
	rec := postJSON(t, handler.CreateFacility, "/api/facilities", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	payload = createPayload()
	payload["latitude"] = 91.0
	rec = postJSON(t, handler.CreateFacility, "/api/facilities", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacilityHandler_CreateFacility_Conflict(t *testing.T) {
	handler, _ := newFacilityHandler()

	rec := postJSON(t, handler.CreateFacility, "/api/facilities", createPayload())
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.CreateFacility, "/api/facilities", createPayload())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestFacilityHandler_GetFacility(t *testing.T) {
	handler, repo := newFacilityHandler()
	require.NoError(t, repo.Create(context.Background(), &entities.HealthFacility{
		ExternalFacilityID: "HF-001", Name: "Alpha Clinic",
		DistrictID: 1, FacilityTypeID: 1, OwnershipID: 1, OperationalStatusID: 1,
	}))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/facilities/{id}", handler.GetFacility)

	req := httptest.NewRequest(http.MethodGet, "/api/facilities/1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/facilities/999", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/facilities/abc", nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacilityHandler_ListFacilities(t *testing.T) {
	handler, repo := newFacilityHandler()
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &entities.HealthFacility{
			ExternalFacilityID: fmt.Sprintf("HF-%03d", i), Name: fmt.Sprintf("Clinic %d", i),
			DistrictID: 1, FacilityTypeID: 1, OwnershipID: 1, OperationalStatusID: 1,
		}))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/facilities?limit=2", nil)
	rec := httptest.NewRecorder()
	handler.ListFacilities(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var page services.FacilityPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Limit)
}

func TestFacilityHandler_ListFacilities_BadQuery(t *testing.T) {
	handler, _ := newFacilityHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/facilities?district_id=abc", nil)
	rec := httptest.NewRecorder()
	handler.ListFacilities(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFacilityHandler_DeleteFacility(t *testing.T) {
	handler, repo := newFacilityHandler()
	require.NoError(t, repo.Create(context.Background(), &entities.HealthFacility{
		ExternalFacilityID: "HF-001", Name: "Alpha Clinic",
		DistrictID: 1, FacilityTypeID: 1, OwnershipID: 1, OperationalStatusID: 1,
	}))

	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/facilities/{id}", handler.DeleteFacility)

	req := httptest.NewRequest(http.MethodDelete, "/api/facilities/1", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.byID)
}
