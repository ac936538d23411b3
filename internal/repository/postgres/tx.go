package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

// tx implements repository.Tx. Reads take row locks with FOR UPDATE.
type tx struct {
	tx *sql.Tx
}

func (t *tx) GetRental(ctx context.Context, id string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	return scanRental(t.tx.QueryRowContext(ctx, query, id))
}

func (t *tx) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1 FOR UPDATE`
	return scanVehicle(t.tx.QueryRowContext(ctx, query, id))
}

func (t *tx) HasActiveRental(ctx context.Context, vehicleID, excludeRentalID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM rentals WHERE vehicle_id = $1 AND status = $2 AND id <> $3)`
	var found bool
	err := t.tx.QueryRowContext(ctx, query, vehicleID, domain.RentalStatusActive, excludeRentalID).Scan(&found)
	if err != nil {
		return false, mapError(err)
	}
	return found, nil
}

func (t *tx) CreateRental(ctx context.Context, rt *domain.Rental) error {
	query := `INSERT INTO rentals (` + rentalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := t.tx.ExecContext(ctx, query, rt.ID, rt.ClientID, rt.VehicleID, rt.Plate, rt.StartDate, rt.EndDate,
		rt.Amount, serviceIDs(rt), rt.Status, rt.CreatedAt, rt.UpdatedAt)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation {
		return fmt.Errorf("rental %s already exists", rt.ID)
	}
	return mapError(err)
}

func (t *tx) UpdateRental(ctx context.Context, rt *domain.Rental) error {
	query := `UPDATE rentals SET start_date=$1, end_date=$2, amount=$3, additional_service_ids=$4, status=$5, updated_at=$6 WHERE id=$7`
	result, err := t.tx.ExecContext(ctx, query, rt.StartDate, rt.EndDate, rt.Amount, serviceIDs(rt), rt.Status, rt.UpdatedAt, rt.ID)
	return checkAffected(result, err)
}

func (t *tx) DeleteRental(ctx context.Context, id string) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	return checkAffected(result, err)
}

func (t *tx) UpdateVehicleStatus(ctx context.Context, vehicleID string, status domain.VehicleStatus, at time.Time) error {
	query := `UPDATE vehicles SET status=$1, updated_at=$2 WHERE id=$3`
	result, err := t.tx.ExecContext(ctx, query, status, at, vehicleID)
	return checkAffected(result, err)
}

func checkAffected(result sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
