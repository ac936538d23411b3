package firestoredb

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"vehicle-rental-backend/internal/domain"
)

// tx adapts a Firestore transaction. Firestore itself rejects reads issued
// after the first write.
type tx struct {
	db *database
	tx *firestore.Transaction
}

func (t *tx) GetRental(ctx context.Context, id string) (*domain.Rental, error) {
	snap, err := t.tx.Get(t.db.rentals.Doc(id))
	if err != nil {
		return nil, mapError(err)
	}
	return toRental(snap)
}

func (t *tx) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	snap, err := t.tx.Get(t.db.vehicles.Doc(id))
	if err != nil {
		return nil, mapError(err)
	}
	return toVehicle(snap)
}

func (t *tx) HasActiveRental(ctx context.Context, vehicleID, excludeRentalID string) (bool, error) {
	q := t.db.rentals.
		Where("vehicleId", "==", vehicleID).
		Where("status", "==", string(domain.RentalStatusActive))
	snaps, err := t.tx.Documents(q).GetAll()
	if err != nil {
		return false, mapError(err)
	}
	for _, snap := range snaps {
		if snap.Ref.ID != excludeRentalID {
			return true, nil
		}
	}
	return false, nil
}

func (t *tx) CreateRental(ctx context.Context, rt *domain.Rental) error {
	return mapError(t.tx.Create(t.db.rentals.Doc(rt.ID), newRentalDoc(rt)))
}

func (t *tx) UpdateRental(ctx context.Context, rt *domain.Rental) error {
	return mapError(t.tx.Update(t.db.rentals.Doc(rt.ID), rentalUpdates(rt)))
}

func (t *tx) DeleteRental(ctx context.Context, id string) error {
	return mapError(t.tx.Delete(t.db.rentals.Doc(id), firestore.Exists))
}

func (t *tx) UpdateVehicleStatus(ctx context.Context, vehicleID string, status domain.VehicleStatus, at time.Time) error {
	return mapError(t.tx.Update(t.db.vehicles.Doc(vehicleID), []firestore.Update{
		{Path: "status", Value: string(status)},
		{Path: "updatedAt", Value: at},
	}))
}
