package memory

import (
	"context"
	"sort"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

type clientRepository struct {
	db *DB
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type vehicleRepository struct {
	db *DB
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	doc, ok := r.db.vehicles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	v := doc.value
	return &v, nil
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, doc := range r.db.vehicles {
		if doc.value.Plate == plate {
			v := doc.value
			return &v, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *vehicleRepository) ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.Vehicle, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var vehicles []domain.Vehicle
	for _, doc := range r.db.vehicles {
		if doc.value.Status == status {
			vehicles = append(vehicles, doc.value)
		}
	}
	sort.Slice(vehicles, func(i, j int) bool { return vehicles[i].ID < vehicles[j].ID })
	return vehicles, nil
}

type rentalRepository struct {
	db *DB
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	doc, ok := r.db.rentals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rt := copyRental(doc.value)
	return &rt, nil
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter, after *domain.RentalCursor, limit int) ([]domain.Rental, error) {
	rentals := r.collect(func(rt *domain.Rental) bool {
		if filter.Status != "" && rt.Status != filter.Status {
			return false
		}
		if after != nil && !after.Before(rt) {
			return false
		}
		return filter.ClientID == "" || rt.ClientID == filter.ClientID
	})
	sort.Slice(rentals, func(i, j int) bool { return newerFirst(&rentals[i], &rentals[j]) })

	if limit > 0 && len(rentals) > limit {
		rentals = rentals[:limit]
	}
	return rentals, nil
}

func (r *rentalRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Rental, error) {
	return r.collect(func(rt *domain.Rental) bool { return rt.ClientID == clientID }), nil
}

func (r *rentalRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.Rental, error) {
	return r.collect(func(rt *domain.Rental) bool { return rt.VehicleID == vehicleID }), nil
}

func (r *rentalRepository) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.collect(func(rt *domain.Rental) bool { return rt.Status == status }), nil
}

func (r *rentalRepository) collect(match func(*domain.Rental) bool) []domain.Rental {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var rentals []domain.Rental
	for _, doc := range r.db.rentals {
		if match(&doc.value) {
			rentals = append(rentals, copyRental(doc.value))
		}
	}
	return rentals
}

// newerFirst orders by creation time descending, then id descending.
func newerFirst(a, b *domain.Rental) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
