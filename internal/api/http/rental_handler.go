package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vehicle-rental-backend/internal/apperr"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/validation"
)

// RentalHandler serves the rental REST API.
type RentalHandler struct {
	rentalSvc      service.RentalService
	exposeInternal bool
}

// NewRentalHandler creates a RentalHandler. exposeInternal adds the cause of
// internal errors to failure responses and is meant for development only.
func NewRentalHandler(rentalSvc service.RentalService, exposeInternal bool) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, exposeInternal: exposeInternal}
}

func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	in, err := decodeCreateRental(r)
	if err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	rt, err := h.rentalSvc.CreateRental(r.Context(), in)
	if err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{Success: true, ID: rt.ID})
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := service.ListRentalsInput{
		Cursor:   q.Get("cursor"),
		Status:   q.Get("status"),
		ClientID: q.Get("clientId"),
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperr.Validation(validation.FieldLimit, apperr.ReasonInvalidFormat, "limit must be an integer"), h.exposeInternal)
			return
		}
		in.Limit = limit
	}

	page, err := h.rentalSvc.ListRentals(r.Context(), in)
	if err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	writeJSON(w, http.StatusOK, rentalsResponse{
		Success:    true,
		Rentals:    mapRentalsToListView(page.Rentals),
		NextCursor: page.NextCursor,
	})
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	rt, err := h.rentalSvc.GetRental(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	writeJSON(w, http.StatusOK, rentalResponse{Success: true, Rental: mapRentalToView(rt, validation.FormatISODate)})
}

func (h *RentalHandler) UpdateRental(w http.ResponseWriter, r *http.Request) {
	in, err := decodeUpdateRental(r)
	if err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	if _, err := h.rentalSvc.UpdateRental(r.Context(), mux.Vars(r)["id"], in); err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *RentalHandler) DeleteRental(w http.ResponseWriter, r *http.Request) {
	if err := h.rentalSvc.DeleteRental(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *RentalHandler) ClientRentalHistory(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.ClientRentalHistory(r.Context(), mux.Vars(r)["clientId"])
	if err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	writeJSON(w, http.StatusOK, rentalsResponse{Success: true, Rentals: mapRentalsToListView(rentals)})
}

func (h *RentalHandler) VehicleRentalHistory(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.rentalSvc.VehicleRentalHistory(r.Context(), mux.Vars(r)["plate"])
	if err != nil {
		writeError(w, err, h.exposeInternal)
		return
	}
	writeJSON(w, http.StatusOK, rentalsResponse{Success: true, Rentals: mapRentalsToListView(rentals)})
}
