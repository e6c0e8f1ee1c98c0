// Seed creates an initial admin account and the baseline lookup values so a
// fresh deployment can log in and start importing.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/healthatlas/facility-registry/internal/adapters/database"
	"github.com/healthatlas/facility-registry/internal/application/services"
	"github.com/healthatlas/facility-registry/internal/domain/entities"
	"github.com/healthatlas/facility-registry/internal/infrastructure/clients/postgres"
	"github.com/healthatlas/facility-registry/pkg/config"
	apperrors "github.com/healthatlas/facility-registry/pkg/errors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	adminEmail := os.Getenv("SEED_ADMIN_EMAIL")
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD are required")
	}

	userRepo := database.NewUserAdapter(pgClient)
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	if _, err := userRepo.GetByEmail(ctx, adminEmail); err == nil {
		log.Printf("Admin user %s already exists, skipping", adminEmail)
	} else {
		if _, err := authService.Register(ctx, adminEmail, adminPassword, "Administrator", entities.RoleAdmin); err != nil {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Printf("Created admin user %s", adminEmail)
	}

	seeds := []struct {
		repo interface {
			Create(ctx context.Context, value *entities.LookupValue) error
			GetByName(ctx context.Context, name string) (*entities.LookupValue, error)
		}
		names []string
	}{
		{database.NewFacilityTypeAdapter(pgClient), []string{
			"Hospital", "Health Centre IV", "Health Centre III", "Health Centre II", "Clinic",
		}},
		{database.NewOwnershipAdapter(pgClient), []string{
			"Government", "Private", "PNFP",
		}},
		{database.NewOperationalStatusAdapter(pgClient), []string{
			"Operational", "Closed", "Under Construction",
		}},
	}

	for _, seed := range seeds {
		for _, name := range seed.names {
			if _, err := seed.repo.GetByName(ctx, name); err == nil {
				continue
			} else if !apperrors.IsNotFound(err) {
				log.Fatalf("Failed to check lookup value %q: %v", name, err)
			}
			value := &entities.LookupValue{Name: name, CreatedAt: time.Now().UTC()}
			if err := seed.repo.Create(ctx, value); err != nil {
				log.Fatalf("Failed to seed lookup value %q: %v", name, err)
			}
			log.Printf("Seeded lookup value %q", name)
		}
	}

	log.Println("Seed complete")
}
