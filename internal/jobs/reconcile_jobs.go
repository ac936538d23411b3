package jobs

import (
	"context"
	"time"

	"vehicle-rental-backend/internal/logger"
)

const reconcileTimeout = 5 * time.Minute

// ReconcileVehicleStatus releases vehicles stuck in rented status and reports
// active rentals whose vehicle is not rented.
func (jr *JobRunner) ReconcileVehicleStatus() {
	jr.runWithRecovery("ReconcileVehicleStatus", func() {
		ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
		defer cancel()

		report, err := jr.services.Reconciliation.ReconcileVehicleStatus(ctx)
		if err != nil {
			logger.Error("Failed to reconcile vehicle status", "error", err)
			return
		}

		logger.Info("Reconciled vehicle status",
			"released", len(report.ReleasedVehicles),
			"unclaimed", len(report.UnclaimedRentals),
			"failed", report.Failed)
	})
}
