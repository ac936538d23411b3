package postgres

import (
	"context"
	"database/sql"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

const vehicleColumns = `id, plate, chassis, status, updated_at`

type vehicleRepository struct {
	db *sql.DB
}

func NewVehicleRepository(db *sql.DB) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

func (r *vehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return scanVehicle(r.db.QueryRowContext(ctx, query, id))
}

func (r *vehicleRepository) FindByPlate(ctx context.Context, plate string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE plate = $1`
	return scanVehicle(r.db.QueryRowContext(ctx, query, plate))
}

func (r *vehicleRepository) ListByStatus(ctx context.Context, status domain.VehicleStatus) ([]domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE status = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	if err := row.Scan(&v.ID, &v.Plate, &v.Chassis, &v.Status, &v.UpdatedAt); err != nil {
		return nil, mapError(err)
	}
	return v, nil
}
