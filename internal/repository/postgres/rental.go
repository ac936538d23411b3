package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

const rentalColumns = `id, client_id, vehicle_id, plate, start_date, end_date, amount, additional_service_ids, status, created_at, updated_at`

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func (r *rentalRepository) GetByID(ctx context.Context, id string) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return scanRental(r.db.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) List(ctx context.Context, filter domain.RentalFilter, after *domain.RentalCursor, limit int) ([]domain.Rental, error) {
	sql := `SELECT ` + rentalColumns + ` FROM rentals WHERE 1 = 1`

	var args []interface{}
	argIdx := 1
	if filter.Status != "" {
		sql += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.ClientID != "" {
		sql += fmt.Sprintf(" AND client_id = $%d", argIdx)
		args = append(args, filter.ClientID)
		argIdx++
	}
	if after != nil {
		sql += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIdx, argIdx+1)
		args = append(args, after.CreatedAt, after.ID)
		argIdx += 2
	}

	sql += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIdx)
	args = append(args, limit)

	return r.query(ctx, sql, args...)
}

func (r *rentalRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Rental, error) {
	return r.query(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE client_id = $1`, clientID)
}

func (r *rentalRepository) ListByVehicle(ctx context.Context, vehicleID string) ([]domain.Rental, error) {
	return r.query(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE vehicle_id = $1`, vehicleID)
}

func (r *rentalRepository) ListByStatus(ctx context.Context, status domain.RentalStatus) ([]domain.Rental, error) {
	return r.query(ctx, `SELECT `+rentalColumns+` FROM rentals WHERE status = $1`, status)
}

func (r *rentalRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func scanRental(row rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(&rt.ID, &rt.ClientID, &rt.VehicleID, &rt.Plate, &rt.StartDate, &rt.EndDate, &rt.Amount,
		pq.Array(&rt.AdditionalServiceIDs), &rt.Status, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, mapError(err)
	}
	return rt, nil
}

// serviceIDs keeps the column NOT NULL for rentals without extras.
func serviceIDs(rt *domain.Rental) interface{} {
	if rt.AdditionalServiceIDs == nil {
		return pq.Array([]string{})
	}
	return pq.Array(rt.AdditionalServiceIDs)
}
