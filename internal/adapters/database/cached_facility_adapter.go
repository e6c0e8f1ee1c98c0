package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/domain/providers"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
)

// CachedFacilityAdapter wraps a FacilityRepository with read-through caching
// of single-facility reads. Writes invalidate the affected key; list queries
// always go to the database.
type CachedFacilityAdapter struct {
	adapter repositories.FacilityRepository
	cache   providers.CacheProvider
}

// NewCachedFacilityAdapter creates a new cached facility adapter
func NewCachedFacilityAdapter(adapter repositories.FacilityRepository, cache providers.CacheProvider) repositories.FacilityRepository {
	return &CachedFacilityAdapter{adapter: adapter, cache: cache}
}

const facilityByIDTTL = 5 * time.Minute

func facilityCacheKey(id int64) string {
	return fmt.Sprintf("facility:%d", id)
}

// GetByID retrieves a facility by ID with caching
func (a *CachedFacilityAdapter) GetByID(ctx context.Context, id int64) (*entities.HealthFacility, error) {
	cacheKey := facilityCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var facility entities.HealthFacility
		if err := json.Unmarshal(cached, &facility); err == nil {
			return &facility, nil
		}
		log.Warn().Int64("facility_id", id).Msg("discarding unreadable cache entry")
	}

	facility, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(facility); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, facilityByIDTTL); err != nil {
			log.Warn().Err(err).Int64("facility_id", id).Msg("failed to cache facility")
		}
	}
	return facility, nil
}

// GetByExternalID passes through; external-id reads happen almost only during
// import where stale hits would be harmful.
func (a *CachedFacilityAdapter) GetByExternalID(ctx context.Context, externalID string) (*entities.HealthFacility, error) {
	return a.adapter.GetByExternalID(ctx, externalID)
}

// Create passes through to the underlying repository
func (a *CachedFacilityAdapter) Create(ctx context.Context, facility *entities.HealthFacility) error {
	return a.adapter.Create(ctx, facility)
}

// CreateBatch passes through to the underlying repository
func (a *CachedFacilityAdapter) CreateBatch(ctx context.Context, facilities []*entities.HealthFacility) error {
	return a.adapter.CreateBatch(ctx, facilities)
}

// Update updates a facility and invalidates its cache entry
func (a *CachedFacilityAdapter) Update(ctx context.Context, facility *entities.HealthFacility) error {
	if err := a.adapter.Update(ctx, facility); err != nil {
		return err
	}
	a.invalidate(ctx, facility.ID)
	return nil
}

// Delete deletes a facility and invalidates its cache entry
func (a *CachedFacilityAdapter) Delete(ctx context.Context, id int64) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx, id)
	return nil
}

// List passes through to the underlying repository
func (a *CachedFacilityAdapter) List(ctx context.Context, filter repositories.FacilityFilter) ([]*entities.HealthFacility, error) {
	return a.adapter.List(ctx, filter)
}

// Count passes through to the underlying repository
func (a *CachedFacilityAdapter) Count(ctx context.Context, filter repositories.FacilityFilter) (int, error) {
	return a.adapter.Count(ctx, filter)
}

func (a *CachedFacilityAdapter) invalidate(ctx context.Context, id int64) {
	if err := a.cache.Delete(ctx, facilityCacheKey(id)); err != nil {
		log.Warn().Err(err).Int64("facility_id", id).Msg("failed to invalidate facility cache")
	}
}
