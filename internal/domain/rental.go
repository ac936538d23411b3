package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
	RentalStatusCanceled  RentalStatus = "canceled"
)

// RentalStatuses lists every valid rental status.
var RentalStatuses = []RentalStatus{
	RentalStatusActive,
	RentalStatusCompleted,
	RentalStatusCanceled,
}

// rentalTransitions is the complete transition table of the rental state machine.
// States missing from the table are terminal.
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusActive: {RentalStatusCompleted, RentalStatusCanceled},
}

// Valid reports whether s is one of the known rental statuses.
func (s RentalStatus) Valid() bool {
	for _, known := range RentalStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s RentalStatus) Terminal() bool {
	return s.Valid() && len(rentalTransitions[s]) == 0
}

// AllowedTransition reports whether a rental may move from one status to another.
func AllowedTransition(from, to RentalStatus) bool {
	for _, next := range rentalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Rental struct {
	ID                   string          `json:"id"`
	ClientID             string          `json:"clientId"`
	VehicleID            string          `json:"vehicleId"`
	Plate                string          `json:"plate"`
	StartDate            time.Time       `json:"startDate"`
	EndDate              time.Time       `json:"endDate"`
	Amount               decimal.Decimal `json:"amount"`
	AdditionalServiceIDs []string        `json:"additionalServiceIds"`
	Status               RentalStatus    `json:"status"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// HoldsVehicle reports whether the rental references a vehicle document.
func (r *Rental) HoldsVehicle() bool {
	return r.VehicleID != ""
}

// RentalCursor is a position in the newest-first rental ordering. It holds
// the ordering keys, so it stays valid after the rental it came from is gone.
type RentalCursor struct {
	CreatedAt time.Time
	ID        string
}

// Before reports whether r sorts after the cursor position, newest first.
func (c RentalCursor) Before(r *Rental) bool {
	if !r.CreatedAt.Equal(c.CreatedAt) {
		return r.CreatedAt.Before(c.CreatedAt)
	}
	return r.ID < c.ID
}

// RentalFilter narrows rental listings. Empty fields match everything.
type RentalFilter struct {
	Status   RentalStatus
	ClientID string
}
