// Package firestoredb stores clients, vehicles and rentals in Cloud Firestore
// through the Firebase Admin SDK.
package firestoredb

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
)

// Config holds the Firebase project settings.
type Config struct {
	ProjectID       string
	CredentialsFile string
	EmulatorHost    string
	Collections     Collections
}

// Collections names the collections read and written by the store.
type Collections struct {
	Clients  string
	Vehicles string
	Rentals  string
}

// NewClient initializes a Firebase app and returns its Firestore client.
func NewClient(ctx context.Context, cfg Config) (*firestore.Client, error) {
	if cfg.EmulatorHost != "" {
		// Read by the Firestore client at construction time.
		if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return nil, err
		}
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	logger.ExternalServiceCall("firebase", "NewApp", "project_id", cfg.ProjectID)
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		logger.ExternalServiceResult("firebase", "NewApp", err)
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	logger.ExternalServiceResult("firebase", "Firestore", err)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

type database struct {
	client   *firestore.Client
	clients  *firestore.CollectionRef
	vehicles *firestore.CollectionRef
	rentals  *firestore.CollectionRef
}

// NewStore exposes client through the repository contracts.
func NewStore(client *firestore.Client, cols Collections) *repository.Store {
	d := &database{
		client:   client,
		clients:  client.Collection(cols.Clients),
		vehicles: client.Collection(cols.Vehicles),
		rentals:  client.Collection(cols.Rentals),
	}
	return &repository.Store{
		ClientRepository:  &clientRepository{d},
		VehicleRepository: &vehicleRepository{d},
		RentalRepository:  &rentalRepository{d},
		TxRunner:          d,
		HealthChecker:     d,
		Closer:            client,
	}
}

// Ping issues a single-document read against the rentals collection.
func (d *database) Ping(ctx context.Context) error {
	iter := d.rentals.Limit(1).Documents(ctx)
	defer iter.Stop()

	if _, err := iter.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// RunInTx runs fn in a Firestore transaction with a single attempt.
func (d *database) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	err := d.client.RunTransaction(ctx, func(ctx context.Context, ftx *firestore.Transaction) error {
		return fn(ctx, &tx{db: d, tx: ftx})
	}, firestore.MaxAttempts(1))
	return mapError(err)
}

// mapError translates Firestore status codes into repository sentinels.
// Errors without a gRPC status pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrConflict) {
		return err
	}
	switch status.Code(err) {
	case codes.NotFound:
		return repository.ErrNotFound
	case codes.Aborted:
		return fmt.Errorf("%v: %w", status.Convert(err).Message(), repository.ErrConflict)
	}
	return err
}
