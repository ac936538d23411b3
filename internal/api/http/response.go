package http

import (
	"encoding/json"
	"net/http"

	"vehicle-rental-backend/internal/apperr"
	"vehicle-rental-backend/internal/logger"
)

type idResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
}

type rentalResponse struct {
	Success bool       `json:"success"`
	Rental  rentalView `json:"rental"`
}

type rentalsResponse struct {
	Success    bool         `json:"success"`
	Rentals    []rentalView `json:"rentals"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error, exposeInternal bool) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("Request failed", "error", err)
	}
	writeJSON(w, kind.HTTPStatus(), apperr.Format(err, exposeInternal))
}
