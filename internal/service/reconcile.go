package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vehicle-rental-backend/internal/apperr"
	"vehicle-rental-backend/internal/domain"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
)

type reconciliationService struct {
	store      *repository.Store
	emailSvc   EmailService
	adminEmail string
	now        func() time.Time
}

func NewReconciliationService(store *repository.Store, emailSvc EmailService, adminEmail string) ReconciliationService {
	return &reconciliationService{
		store:      store,
		emailSvc:   emailSvc,
		adminEmail: adminEmail,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ReconcileVehicleStatus releases vehicles left rented without an active
// rental and reports active rentals whose vehicle is not marked rented.
func (s *reconciliationService) ReconcileVehicleStatus(ctx context.Context) (*ReconcileReport, error) {
	const method = "reconciliationService.ReconcileVehicleStatus"
	logger.EnterMethod(method)

	rented, err := s.store.VehicleRepository.ListByStatus(ctx, domain.VehicleStatusRented)
	if err != nil {
		logger.ExitMethodWithError(method, err)
		return nil, apperr.Internal(err)
	}
	active, err := s.store.RentalRepository.ListByStatus(ctx, domain.RentalStatusActive)
	if err != nil {
		logger.ExitMethodWithError(method, err)
		return nil, apperr.Internal(err)
	}

	claimed := make(map[string]bool, len(active))
	for _, rt := range active {
		if rt.HoldsVehicle() {
			claimed[rt.VehicleID] = true
		}
	}
	rentedIDs := make(map[string]bool, len(rented))
	for _, v := range rented {
		rentedIDs[v.ID] = true
	}

	report := &ReconcileReport{}
	for _, v := range rented {
		if claimed[v.ID] {
			continue
		}
		released, err := s.release(ctx, v.ID)
		if err != nil {
			logger.Error("Failed to release vehicle", "vehicle_id", v.ID, "error", err)
			report.Failed++
			continue
		}
		if released {
			logger.Warn("Released vehicle without active rental", "vehicle_id", v.ID, "plate", v.Plate)
			report.ReleasedVehicles = append(report.ReleasedVehicles, v.ID)
		}
	}

	for _, rt := range active {
		if rt.HoldsVehicle() && !rentedIDs[rt.VehicleID] {
			logger.Warn("Active rental holds a vehicle that is not rented", "rental_id", rt.ID, "vehicle_id", rt.VehicleID)
			report.UnclaimedRentals = append(report.UnclaimedRentals, rt.ID)
		}
	}

	if report.Drift() && s.adminEmail != "" {
		if err := s.emailSvc.SendAdminNotification(ctx, s.adminEmail, "Vehicle status reconciliation", report.summary()); err != nil {
			logger.Error("Failed to notify admin about reconciliation drift", "error", err)
		}
	}

	logger.ExitMethod(method, "released", len(report.ReleasedVehicles), "unclaimed", len(report.UnclaimedRentals), "failed", report.Failed)
	return report, nil
}

// release re-checks the vehicle inside a transaction before making it
// available, since a rental may have claimed it after the listing.
func (s *reconciliationService) release(ctx context.Context, vehicleID string) (bool, error) {
	released := false
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		v, err := tx.GetVehicle(ctx, vehicleID)
		if err != nil {
			return err
		}
		if v.Status != domain.VehicleStatusRented {
			return nil
		}
		busy, err := tx.HasActiveRental(ctx, vehicleID, "")
		if err != nil || busy {
			return err
		}
		released = true
		return tx.UpdateVehicleStatus(ctx, vehicleID, domain.VehicleStatusAvailable, s.now())
	})
	if err != nil {
		return false, err
	}
	return released, nil
}

func (r *ReconcileReport) summary() string {
	var b strings.Builder
	b.WriteString("Vehicle status reconciliation found inconsistencies.\n")
	if len(r.ReleasedVehicles) > 0 {
		fmt.Fprintf(&b, "\nVehicles released (rented without an active rental): %s\n", strings.Join(r.ReleasedVehicles, ", "))
	}
	if len(r.UnclaimedRentals) > 0 {
		fmt.Fprintf(&b, "\nActive rentals whose vehicle is not marked rented: %s\n", strings.Join(r.UnclaimedRentals, ", "))
	}
	if r.Failed > 0 {
		fmt.Fprintf(&b, "\nVehicles that could not be processed: %d\n", r.Failed)
	}
	return b.String()
}
