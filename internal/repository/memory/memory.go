// Package memory is a process-local transactional store. Transactions are
// optimistic: reads record document versions and the commit fails with
// repository.ErrConflict when any of them changed in between.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

type versioned[T any] struct {
	value   T
	version int64
}

// DB holds every collection of the in-memory backend.
type DB struct {
	mu       sync.RWMutex
	clients  map[string]domain.Client
	vehicles map[string]versioned[domain.Vehicle]
	rentals  map[string]versioned[domain.Rental]
	// claims holds, per vehicle id, the version of the last write to a rental
	// referencing that vehicle. It guards HasActiveRental queries.
	claims  map[string]int64
	version int64
}

func NewDB() *DB {
	return &DB{
		clients:  make(map[string]domain.Client),
		vehicles: make(map[string]versioned[domain.Vehicle]),
		rentals:  make(map[string]versioned[domain.Rental]),
		claims:   make(map[string]int64),
	}
}

// NewStore exposes db through the repository contracts.
func NewStore(db *DB) *repository.Store {
	return &repository.Store{
		ClientRepository:  &clientRepository{db: db},
		VehicleRepository: &vehicleRepository{db: db},
		RentalRepository:  &rentalRepository{db: db},
		TxRunner:          db,
		HealthChecker:     db,
		Closer:            db,
	}
}

// PutClient inserts or replaces a client. Clients are owned by another
// subsystem, so they are written outside transactions.
func (db *DB) PutClient(c domain.Client) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.clients[c.ID] = c
}

// PutVehicle inserts or replaces a vehicle.
func (db *DB) PutVehicle(v domain.Vehicle) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.version++
	db.vehicles[v.ID] = versioned[domain.Vehicle]{value: v, version: db.version}
}

// PutRental inserts or replaces a rental.
func (db *DB) PutRental(r domain.Rental) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.version++
	db.touchClaims(r.ID, r.VehicleID)
	db.rentals[r.ID] = versioned[domain.Rental]{value: copyRental(r), version: db.version}
}

// touchClaims bumps the claim version of the vehicle a rental held before and
// after a write. Callers hold db.mu.
func (db *DB) touchClaims(rentalID, vehicleID string) {
	if old, ok := db.rentals[rentalID]; ok && old.value.VehicleID != "" {
		db.claims[old.value.VehicleID] = db.version
	}
	if vehicleID != "" {
		db.claims[vehicleID] = db.version
	}
}

func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (db *DB) Close() error {
	return nil
}

// RunInTx runs fn once and commits its buffered writes atomically.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	t := &tx{
		db:           db,
		vehicleReads: make(map[string]int64),
		rentalReads:  make(map[string]int64),
		claimReads:   make(map[string]int64),
	}
	if err := fn(ctx, t); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.commit()
}

func copyRental(r domain.Rental) domain.Rental {
	if r.AdditionalServiceIDs != nil {
		r.AdditionalServiceIDs = append([]string(nil), r.AdditionalServiceIDs...)
	}
	return r
}

type opKind int

const (
	opCreateRental opKind = iota
	opUpdateRental
	opDeleteRental
	opUpdateVehicle
)

type op struct {
	kind    opKind
	id      string
	rental  domain.Rental
	vehicle func(*domain.Vehicle)
}

type tx struct {
	db           *DB
	vehicleReads map[string]int64
	rentalReads  map[string]int64
	claimReads   map[string]int64
	ops          []op
}

func (t *tx) checkReadable() error {
	if len(t.ops) > 0 {
		return fmt.Errorf("memory: read after write in transaction")
	}
	return nil
}

func (t *tx) GetRental(ctx context.Context, id string) (*domain.Rental, error) {
	if err := t.checkReadable(); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	doc, ok := t.db.rentals[id]
	t.rentalReads[id] = doc.version
	if !ok {
		return nil, repository.ErrNotFound
	}
	r := copyRental(doc.value)
	return &r, nil
}

func (t *tx) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	if err := t.checkReadable(); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	doc, ok := t.db.vehicles[id]
	t.vehicleReads[id] = doc.version
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := doc.value
	return &v, nil
}

func (t *tx) HasActiveRental(ctx context.Context, vehicleID, excludeRentalID string) (bool, error) {
	if err := t.checkReadable(); err != nil {
		return false, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	t.claimReads[vehicleID] = t.db.claims[vehicleID]
	for id, doc := range t.db.rentals {
		if id == excludeRentalID {
			continue
		}
		if doc.value.VehicleID == vehicleID && doc.value.Status == domain.RentalStatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) CreateRental(ctx context.Context, rental *domain.Rental) error {
	t.ops = append(t.ops, op{kind: opCreateRental, id: rental.ID, rental: copyRental(*rental)})
	return nil
}

func (t *tx) UpdateRental(ctx context.Context, rental *domain.Rental) error {
	t.ops = append(t.ops, op{kind: opUpdateRental, id: rental.ID, rental: copyRental(*rental)})
	return nil
}

func (t *tx) DeleteRental(ctx context.Context, id string) error {
	t.ops = append(t.ops, op{kind: opDeleteRental, id: id})
	return nil
}

func (t *tx) UpdateVehicleStatus(ctx context.Context, vehicleID string, status domain.VehicleStatus, at time.Time) error {
	t.ops = append(t.ops, op{kind: opUpdateVehicle, id: vehicleID, vehicle: func(v *domain.Vehicle) {
		v.Status = status
		v.UpdatedAt = at
	}})
	return nil
}

func (t *tx) commit() error {
	if len(t.ops) == 0 {
		return nil
	}

	db := t.db
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, seen := range t.vehicleReads {
		if db.vehicles[id].version != seen {
			return fmt.Errorf("vehicle %s changed: %w", id, repository.ErrConflict)
		}
	}
	for id, seen := range t.rentalReads {
		if db.rentals[id].version != seen {
			return fmt.Errorf("rental %s changed: %w", id, repository.ErrConflict)
		}
	}
	for vehicleID, seen := range t.claimReads {
		if db.claims[vehicleID] != seen {
			return fmt.Errorf("rentals of vehicle %s changed: %w", vehicleID, repository.ErrConflict)
		}
	}

	// Validate every op before applying any of them.
	for _, o := range t.ops {
		switch o.kind {
		case opCreateRental:
			if _, exists := db.rentals[o.id]; exists {
				return fmt.Errorf("rental %s already exists", o.id)
			}
		case opUpdateRental, opDeleteRental:
			if _, exists := db.rentals[o.id]; !exists {
				return fmt.Errorf("rental %s: %w", o.id, repository.ErrNotFound)
			}
		case opUpdateVehicle:
			if _, exists := db.vehicles[o.id]; !exists {
				return fmt.Errorf("vehicle %s: %w", o.id, repository.ErrNotFound)
			}
		}
	}

	db.version++
	for _, o := range t.ops {
		switch o.kind {
		case opCreateRental, opUpdateRental:
			db.touchClaims(o.id, o.rental.VehicleID)
			db.rentals[o.id] = versioned[domain.Rental]{value: o.rental, version: db.version}
		case opDeleteRental:
			db.touchClaims(o.id, "")
			delete(db.rentals, o.id)
		case opUpdateVehicle:
			doc := db.vehicles[o.id]
			o.vehicle(&doc.value)
			doc.version = db.version
			db.vehicles[o.id] = doc
		}
	}
	return nil
}
