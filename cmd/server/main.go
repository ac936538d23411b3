package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "vehicle-rental-backend/internal/api/grpc"
	httpapi "vehicle-rental-backend/internal/api/http"
	"vehicle-rental-backend/internal/config"
	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository/backend"
	"vehicle-rental-backend/internal/service"
)

const (
	healthInterval  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Vehicle Rental Backend...", "environment", cfg.Environment, "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress(), "store", cfg.Store.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Store
	store, err := backend.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "type", cfg.Store.Type)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	// Initialize Services
	rentalSvc := service.NewRentalService(store, service.Pagination{
		DefaultLimit: cfg.Pagination.DefaultLimit,
		MaxLimit:     cfg.Pagination.MaxLimit,
	})

	// Set up gRPC server
	healthHandler := api.NewHealthHandler(store)
	go healthHandler.Run(ctx, healthInterval)

	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := api.NewServer(healthHandler)

	// Set up HTTP server for the REST API
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewHandler(rentalSvc, store, cfg.CORS.AllowedOrigins, cfg.IsDevelopment()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	// Graceful shutdown
	healthHandler.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped")
}
