package postgres

import (
	"context"
	"database/sql"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/repository"
)

type clientRepository struct {
	db *sql.DB
}

func NewClientRepository(db *sql.DB) repository.ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	c := &domain.Client{}
	query := `SELECT id, name, birth_date, status FROM clients WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.BirthDate, &c.Status)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}
