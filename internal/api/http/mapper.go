package http

import (
	"time"

	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/validation"
)

type rentalView struct {
	ID                   string   `json:"id"`
	ClientID             string   `json:"clientId"`
	VehicleID            string   `json:"vehicleId"`
	Plate                string   `json:"plate"`
	StartDate            string   `json:"startDate"`
	EndDate              string   `json:"endDate"`
	Amount               float64  `json:"amount"`
	AdditionalServiceIDs []string `json:"additionalServiceIds"`
	Status               string   `json:"status"`
	CreatedAt            string   `json:"createdAt,omitempty"`
	UpdatedAt            string   `json:"updatedAt,omitempty"`
}

type dateFormatter func(time.Time) string

func mapRentalToView(rt *domain.Rental, formatDate dateFormatter) rentalView {
	ids := rt.AdditionalServiceIDs
	if ids == nil {
		ids = []string{}
	}
	return rentalView{
		ID:                   rt.ID,
		ClientID:             rt.ClientID,
		VehicleID:            rt.VehicleID,
		Plate:                rt.Plate,
		StartDate:            formatDate(rt.StartDate),
		EndDate:              formatDate(rt.EndDate),
		Amount:               rt.Amount.InexactFloat64(),
		AdditionalServiceIDs: ids,
		Status:               string(rt.Status),
		CreatedAt:            formatTimestamp(rt.CreatedAt),
		UpdatedAt:            formatTimestamp(rt.UpdatedAt),
	}
}

// mapRentalsToListView renders dates the way the admin tables display them.
func mapRentalsToListView(rentals []domain.Rental) []rentalView {
	views := make([]rentalView, 0, len(rentals))
	for i := range rentals {
		views = append(views, mapRentalToView(&rentals[i], validation.FormatDisplayDate))
	}
	return views
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
