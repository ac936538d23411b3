package service

import (
	"context"

	"vehicle-rental-backend/internal/domain"
)

type RentalService interface {
	CreateRental(ctx context.Context, in CreateRentalInput) (*domain.Rental, error)
	ListRentals(ctx context.Context, in ListRentalsInput) (*RentalPage, error)
	GetRental(ctx context.Context, id string) (*domain.Rental, error)
	UpdateRental(ctx context.Context, id string, in UpdateRentalInput) (*domain.Rental, error)
	DeleteRental(ctx context.Context, id string) error
	ClientRentalHistory(ctx context.Context, clientID string) ([]domain.Rental, error)
	VehicleRentalHistory(ctx context.Context, plate string) ([]domain.Rental, error)
}

type ReconciliationService interface {
	ReconcileVehicleStatus(ctx context.Context) (*ReconcileReport, error)
}

type EmailService interface {
	SendAdminNotification(ctx context.Context, adminEmail, subject, message string) error
}

// CreateRentalInput carries raw rental data as received from the boundary.
type CreateRentalInput struct {
	ClientID             string   `json:"clientId" validate:"required,cpf"`
	Plate                string   `json:"plate" validate:"required,plate"`
	StartDate            string   `json:"startDate" validate:"required,rentaldate"`
	EndDate              string   `json:"endDate" validate:"required,rentaldate"`
	Amount               float64  `json:"amount" validate:"gt=0"`
	AdditionalServiceIDs []string `json:"additionalServiceIds" validate:"omitempty,dive,required"`
}

// UpdateRentalInput holds a partial update. Nil fields are left unchanged.
type UpdateRentalInput struct {
	StartDate            *string   `json:"startDate,omitempty"`
	EndDate              *string   `json:"endDate,omitempty"`
	Amount               *float64  `json:"amount,omitempty"`
	AdditionalServiceIDs *[]string `json:"additionalServiceIds,omitempty"`
	Status               *string   `json:"status,omitempty"`
}

// Empty reports whether no field was supplied.
func (in UpdateRentalInput) Empty() bool {
	return in.StartDate == nil && in.EndDate == nil && in.Amount == nil &&
		in.AdditionalServiceIDs == nil && in.Status == nil
}

type ListRentalsInput struct {
	Limit    int
	Cursor   string
	Status   string
	ClientID string
}

// RentalPage is one page of rentals, newest first. NextCursor is empty on the
// last page.
type RentalPage struct {
	Rentals    []domain.Rental
	NextCursor string
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	// ReleasedVehicles were marked rented without an active rental and are
	// available again.
	ReleasedVehicles []string
	// UnclaimedRentals are active rentals whose vehicle is not marked rented.
	UnclaimedRentals []string
	Failed           int
}

// Drift reports whether the pass found any inconsistency.
func (r *ReconcileReport) Drift() bool {
	return len(r.ReleasedVehicles) > 0 || len(r.UnclaimedRentals) > 0 || r.Failed > 0
}

// Pagination bounds ListRentals page sizes.
type Pagination struct {
	DefaultLimit int
	MaxLimit     int
}
