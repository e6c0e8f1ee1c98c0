package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/healthatlas/facility-registry/internal/adapters/cache"
	"github.com/healthatlas/facility-registry/internal/adapters/database"
	"github.com/healthatlas/facility-registry/internal/api/handlers"
	"github.com/healthatlas/facility-registry/internal/api/middleware"
	"github.com/healthatlas/facility-registry/internal/api/routes"
	"github.com/healthatlas/facility-registry/internal/application/services"
	"github.com/healthatlas/facility-registry/internal/domain/providers"
	"github.com/healthatlas/facility-registry/internal/domain/repositories"
	"github.com/healthatlas/facility-registry/internal/infrastructure/clients/postgres"
	"github.com/healthatlas/facility-registry/internal/infrastructure/clients/redis"
	"github.com/healthatlas/facility-registry/internal/infrastructure/observability"
	"github.com/healthatlas/facility-registry/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("facility-registry-api", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize postgres client")
	}
	defer pgClient.Close()
	log.Info().Msg("postgres client initialized")

	// Redis is optional; the service works without caching.
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without cache")
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Msg("redis client initialized")
	}

	stateAdapter := database.NewStateAdapter(pgClient)
	regionAdapter := database.NewRegionAdapter(pgClient)
	districtAdapter := database.NewDistrictAdapter(pgClient)
	facilityTypeAdapter := database.NewFacilityTypeAdapter(pgClient)
	ownershipAdapter := database.NewOwnershipAdapter(pgClient)
	statusAdapter := database.NewOperationalStatusAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)
	dashboardAdapter := database.NewDashboardAdapter(pgClient)

	baseFacilityAdapter := database.NewFacilityAdapter(pgClient)
	var facilityAdapter repositories.FacilityRepository = baseFacilityAdapter
	if cacheProvider != nil {
		facilityAdapter = database.NewCachedFacilityAdapter(baseFacilityAdapter, cacheProvider)
	}

	facilityService := services.NewFacilityService(facilityAdapter)
	importService := services.NewImportService(
		stateAdapter, regionAdapter, districtAdapter,
		facilityTypeAdapter, ownershipAdapter, statusAdapter,
		facilityAdapter, cfg.Import.BatchSize,
	)
	authService := services.NewAuthService(userAdapter, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	dashboardService := services.NewDashboardService(dashboardAdapter, cacheProvider)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	router := routes.NewRouter(
		handlers.NewFacilityHandler(facilityService),
		handlers.NewLookupHandler(
			stateAdapter, regionAdapter, districtAdapter,
			facilityTypeAdapter, ownershipAdapter, statusAdapter,
		),
		handlers.NewImportHandler(importService, dashboardService, cfg.Import.SkipReasonCap),
		handlers.NewAuthHandler(authService, userAdapter),
		handlers.NewDashboardHandler(dashboardService),
		authMiddleware,
		cfg.Server.AllowedOrigins,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
