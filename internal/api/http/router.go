package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"vehicle-rental-backend/internal/logger"
	"vehicle-rental-backend/internal/repository"
	"vehicle-rental-backend/internal/service"
)

const healthTimeout = 2 * time.Second

// RegisterRentalRoutes registers the rental REST endpoints.
func RegisterRentalRoutes(router *mux.Router, handler *RentalHandler) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/rentals", handler.CreateRental).Methods("POST")
	api.HandleFunc("/rentals", handler.ListRentals).Methods("GET")
	api.HandleFunc("/rentals/{id}", handler.GetRental).Methods("GET")
	api.HandleFunc("/rentals/{id}", handler.UpdateRental).Methods("PUT", "PATCH")
	api.HandleFunc("/rentals/{id}", handler.DeleteRental).Methods("DELETE")
	api.HandleFunc("/clients/{clientId}/rentals", handler.ClientRentalHistory).Methods("GET")
	api.HandleFunc("/vehicles/{plate}/rentals", handler.VehicleRentalHistory).Methods("GET")
}

// RegisterHealthRoute reports 200 when the store answers a ping.
func RegisterHealthRoute(router *mux.Router, checker repository.HealthChecker) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := checker.Ping(ctx); err != nil {
			logger.Warn("Health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
}

// NewHandler builds the complete REST handler with CORS applied.
func NewHandler(rentalSvc service.RentalService, checker repository.HealthChecker, allowedOrigins []string, exposeInternal bool) http.Handler {
	router := mux.NewRouter()
	RegisterRentalRoutes(router, NewRentalHandler(rentalSvc, exposeInternal))
	RegisterHealthRoute(router, checker)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(router)
}
