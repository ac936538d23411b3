package repository

import (
	"context"
	"errors"
	"io"
	"time"

	"vehicle-rental-backend/internal/domain"
)

var (
	// ErrNotFound is returned when a document or row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a transaction lost a write race.
	ErrConflict = errors.New("transaction conflict")
)

type ClientRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Client, error)
}

type VehicleRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)
	FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error)
	ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.Vehicle, error)
}

type RentalRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Rental, error)
	// List returns rentals newest first, starting strictly after the cursor
	// position when after is not nil.
	List(ctx context.Context, filter domain.RentalFilter, after *domain.RentalCursor, limit int) ([]domain.Rental, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Rental, error)
	ListByVehicle(ctx context.Context, vehicleID string) ([]domain.Rental, error)
	ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error)
}

// Tx is the view of the store inside one atomic transaction. All reads must
// happen before the first write.
type Tx interface {
	GetRental(ctx context.Context, id string) (*domain.Rental, error)
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	// HasActiveRental reports whether a rental other than excludeRentalID
	// holds the vehicle in active status.
	HasActiveRental(ctx context.Context, vehicleID, excludeRentalID string) (bool, error)

	CreateRental(ctx context.Context, rental *domain.Rental) error
	UpdateRental(ctx context.Context, rental *domain.Rental) error
	DeleteRental(ctx context.Context, id string) error
	UpdateVehicleStatus(ctx context.Context, vehicleID string, status domain.VehicleStatus, at time.Time) error
}

// TxRunner commits every write made by fn atomically, or none of them.
// Implementations never retry; a lost race surfaces as ErrConflict.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Store bundles the repositories of one storage backend.
type Store struct {
	ClientRepository
	VehicleRepository
	RentalRepository
	TxRunner
	HealthChecker
	io.Closer
}
