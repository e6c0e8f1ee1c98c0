package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthatlas/facility-registry/internal/domain/providers"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
)

const (
	dashboardCacheKey = "dashboard:summary"
	dashboardCacheTTL = 5 * time.Minute
)

// DashboardService serves registry-wide aggregates, cached because the
// summary touches every table and the numbers tolerate a short staleness.
type DashboardService struct {
	dashboards repositories.DashboardRepository
	cache      providers.CacheProvider
}

// NewDashboardService creates a new dashboard service. The cache may be nil,
// in which case every call hits storage.
func NewDashboardService(dashboards repositories.DashboardRepository, cache providers.CacheProvider) *DashboardService {
	return &DashboardService{dashboards: dashboards, cache: cache}
}

// Summary returns the dashboard aggregates, from cache when available.
func (s *DashboardService) Summary(ctx context.Context) (*repositories.DashboardSummary, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, dashboardCacheKey); err == nil {
			var summary repositories.DashboardSummary
			unmarshalErr := json.Unmarshal(cached, &summary)
			if unmarshalErr == nil {
				return &summary, nil
			}
			log.Warn().Err(unmarshalErr).Msg("discarding malformed cached dashboard summary")
		}
	}

	summary, err := s.dashboards.Summary(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(summary); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, dashboardCacheTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache dashboard summary")
			}
		}
	}
	return summary, nil
}

// Invalidate drops the cached summary, called after bulk imports.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, dashboardCacheKey); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate dashboard summary cache")
	}
}
