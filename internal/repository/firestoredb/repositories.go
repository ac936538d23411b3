package firestoredb

import (
	"context"
	"errors"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

type clientRepository struct {
	db *database
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	snap, err := r.db.clients.Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return toClient(snap)
}

type vehicleRepository struct {
	db *database
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	snap, err := r.db.vehicles.Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return toVehicle(snap)
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	iter := r.db.vehicles.Where("plate", "==", plate).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, mapError(err)
	}
	return toVehicle(snap)
}

func (r *vehicleRepository) ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.Vehicle, error) {
	snaps, err := r.db.vehicles.Where("status", "==", string(status)).Documents(ctx).GetAll()
	if err != nil {
		return nil, mapError(err)
	}

	vehicles := make([]domain.Vehicle, 0, len(snaps))
	for _, snap := range snaps {
		v, err := toVehicle(snap)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, nil
}

type rentalRepository struct {
	db *database
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	snap, err := r.db.rentals.Doc(id).Get(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return toRental(snap)
}

// List needs composite indexes on (status, createdAt) and (clientId, createdAt)
// when the matching filter is used.
func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter, after *domain.RentalCursor, limit int) ([]domain.Rental, error) {
	q := r.db.rentals.Query
	if filter.Status != "" {
		q = q.Where("status", "==", string(filter.Status))
	}
	if filter.ClientID != "" {
		q = q.Where("clientId", "==", filter.ClientID)
	}
	q = q.OrderBy("createdAt", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Desc)

	if after != nil {
		q = q.StartAfter(after.CreatedAt, r.db.rentals.Doc(after.ID))
	}

	return r.query(ctx, q.Limit(limit))
}

func (r *rentalRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Rental, error) {
	return r.query(ctx, r.db.rentals.Where("clientId", "==", clientID))
}

func (r *rentalRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.Rental, error) {
	return r.query(ctx, r.db.rentals.Where("vehicleId", "==", vehicleID))
}

func (r *rentalRepository) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.query(ctx, r.db.rentals.Where("status", "==", string(status)))
}

func (r *rentalRepository) query(ctx context.Context, q firestore.Query) ([]domain.Rental, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var rentals []domain.Rental
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, mapError(err)
		}
		rt, err := toRental(snap)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, nil
}
