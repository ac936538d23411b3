package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/jobs"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository/backend"
	"vehicle-rental-backend/internal/scheduler"
	"vehicle-rental-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reconcile-vehicle-status', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Vehicle Rental Cronjob Runner...", "log_level", cfg.Log.Level, "store", cfg.Store.Type)

	if cfg.Store.Type == config.StoreMemory {
		logger.Warn("Memory store is private to this process; reconciliation will not reach the server's data")
	}

	// Initialize Store
	store, err := backend.Open(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Initialize Services
	emailService := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	reconciliationService := service.NewReconciliationService(store, emailService, cfg.SendGrid.AdminEmail)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(&jobs.Services{Reconciliation: reconciliationService}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			store.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.", "next_run", cronScheduler.NextRun())

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once. It reports false for unknown jobs.
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "reconcile-vehicle-status":
		jobRunner.ReconcileVehicleStatus()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - reconcile-vehicle-status\n")
		fmt.Printf("  - all\n")
		return false
	}
	return true
}
