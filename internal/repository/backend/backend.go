// Package backend opens the storage backend selected in the configuration.
package backend

import (
	"context"
	"fmt"
	"os"

	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/repository/firestoredb"
	"vehicle-rental-backend/internal/repository/memory"
	"vehicle-rental-backend/internal/repository/postgres"
)

// Open connects to the configured store. Closing the returned store releases
// the underlying connection.
func Open(ctx context.Context, cfg *config.Config) (*repository.Store, error) {
	switch cfg.Store.Type {
	case config.StoreMemory:
		db := memory.NewDB()
		if cfg.Store.SeedFile != "" {
			if err := seedMemory(db, cfg.Store.SeedFile); err != nil {
				return nil, err
			}
		}
		logger.Info("Using in-memory store", "seed_file", cfg.Store.SeedFile)
		return memory.NewStore(db), nil

	case config.StoreFirestore:
		logger.Info("Firestore configuration", "project_id", cfg.Firebase.ProjectID, "emulator_host", cfg.Firebase.EmulatorHost)
		cols := firestoredb.Collections{
			Clients:  cfg.Firebase.Collections.Clients,
			Vehicles: cfg.Firebase.Collections.Vehicles,
			Rentals:  cfg.Firebase.Collections.Rentals,
		}
		client, err := firestoredb.NewClient(ctx, firestoredb.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			EmulatorHost:    cfg.Firebase.EmulatorHost,
			Collections:     cols,
		})
		if err != nil {
			return nil, err
		}
		return firestoredb.NewStore(client, cols), nil

	case config.StorePostgres:
		logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database connection established")
		return postgres.NewStore(db), nil

	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Store.Type)
	}
}

func seedMemory(db *memory.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	clients, vehicles, err := db.LoadSeed(f)
	if err != nil {
		return err
	}
	logger.Info("Seeded in-memory store", "clients", clients, "vehicles", vehicles)
	return nil
}
