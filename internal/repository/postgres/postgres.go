package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
)

// Schema creates the tables used by this backend.
//
//go:embed schema.sql
var Schema string

// SQLSTATE codes that mean the transaction lost a race.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies Schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	logger.DatabaseCall("migrate", "schema.sql")
	_, err := db.ExecContext(ctx, Schema)
	logger.DatabaseResult("migrate", 0, err)
	return err
}

func NewStore(db *sql.DB) *repository.Store {
	d := &database{db: db}
	return &repository.Store{
		ClientRepository:  NewClientRepository(db),
		VehicleRepository: NewVehicleRepository(db),
		RentalRepository:  NewRentalRepository(db),
		TxRunner:          d,
		HealthChecker:     d,
		Closer:            db,
	}
}

type database struct {
	db *sql.DB
}

func (d *database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// RunInTx runs fn inside one database transaction. Rows read through the
// transaction are locked until commit, so concurrent engines serialize on the
// vehicle and rental rows they touch.
func (d *database) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	sqlTx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, &tx{tx: sqlTx}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		logger.DatabaseResult("commit", 0, err)
		return mapError(err)
	}
	return nil
}

// mapError translates driver errors into repository sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%s: %w", pqErr.Message, repository.ErrConflict)
		}
	}
	return err
}
