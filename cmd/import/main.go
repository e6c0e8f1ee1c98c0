// Command import runs a facility bulk import from the command line against
// the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/healthatlas/facility-registry/internal/adapters/database"
	"github.com/healthatlas/facility-registry/internal/application/services"
	"github.com/healthatlas/facility-registry/internal/infrastructure/clients/postgres"
	"github.com/healthatlas/facility-registry/internal/infrastructure/observability"
	"github.com/healthatlas/facility-registry/pkg/config"
)

func main() {
	filePath := flag.String("file", "", "path to the facility CSV file (required)")
	update := flag.Bool("update", false, "update facilities that already exist instead of skipping them")
	flag.Parse()

	if *filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("facility-registry-import", cfg.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize postgres client")
	}
	defer pgClient.Close()

	importService := services.NewImportService(
		database.NewStateAdapter(pgClient),
		database.NewRegionAdapter(pgClient),
		database.NewDistrictAdapter(pgClient),
		database.NewFacilityTypeAdapter(pgClient),
		database.NewOwnershipAdapter(pgClient),
		database.NewOperationalStatusAdapter(pgClient),
		database.NewFacilityAdapter(pgClient),
		cfg.Import.BatchSize,
	)

	report, err := importService.ImportFile(context.Background(), *filePath, *update)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	fmt.Printf("states: %d, regions: %d, districts: %d\n", report.States, report.Regions, report.Districts)
	fmt.Printf("facility types: %d, ownerships: %d, operational statuses: %d\n",
		report.FacilityTypes, report.Ownerships, report.OperationalStatuses)
	fmt.Printf("inserted: %d, updated: %d, skipped: %d\n", report.Inserted, report.Updated, report.Skipped)
	for _, skip := range report.SkipReasons {
		fmt.Printf("  skipped %s: %s\n", skip.Identifier, skip.Reason)
	}
}
