package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "available"
	VehicleStatusRented      VehicleStatus = "rented"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
	VehicleStatusSold        VehicleStatus = "sold"
)

// Vehicle is owned by the fleet subsystem. The rental engine only moves its
// status between available and rented.
type Vehicle struct {
	ID        string        `json:"id"`
	Plate     string        `json:"plate"`
	Chassis   string        `json:"chassis"`
	Status    VehicleStatus `json:"status"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
