// Package apperr holds the closed error taxonomy returned by the rental engine
// and the uniform failure envelope handed to transport layers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindClientNotFound
	KindVehicleNotFound
	KindRentalNotFound
	KindClientInactive
	KindVehicleUnavailable
	KindInvalidTransition
	KindConcurrentModification
)

const (
	CodeInternal               = "internal_error"
	CodeValidation             = "validation_error"
	CodeClientNotFound         = "client_not_found"
	CodeVehicleNotFound        = "vehicle_not_found"
	CodeRentalNotFound         = "rental_not_found"
	CodeClientInactive         = "client_inactive"
	CodeVehicleUnavailable     = "vehicle_unavailable"
	CodeInvalidTransition      = "invalid_transition"
	CodeConcurrentModification = "concurrent_modification"
)

// InternalMessage is the only text callers see for unclassified failures.
const InternalMessage = "An unexpected error occurred"

// Code returns the stable machine-readable code of the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return CodeValidation
	case KindClientNotFound:
		return CodeClientNotFound
	case KindVehicleNotFound:
		return CodeVehicleNotFound
	case KindRentalNotFound:
		return CodeRentalNotFound
	case KindClientInactive:
		return CodeClientInactive
	case KindVehicleUnavailable:
		return CodeVehicleUnavailable
	case KindInvalidTransition:
		return CodeInvalidTransition
	case KindConcurrentModification:
		return CodeConcurrentModification
	default:
		return CodeInternal
	}
}

// HTTPStatus maps the kind onto a response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindClientNotFound, KindVehicleNotFound, KindRentalNotFound:
		return http.StatusNotFound
	case KindClientInactive:
		return http.StatusUnprocessableEntity
	case KindVehicleUnavailable, KindInvalidTransition, KindConcurrentModification:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	return k.Code()
}

// Reason refines a validation failure.
type Reason string

const (
	ReasonRequired      Reason = "required"
	ReasonInvalidFormat Reason = "invalid_format"
	ReasonInvalidRange  Reason = "invalid_range"
	ReasonInvalidValue  Reason = "invalid_value"
)

// Error is the structured error used across the service layer.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Reason  Reason
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the stable code of the error's kind.
func (e *Error) Code() string {
	return e.Kind.Code()
}

// KindOf classifies any error. Errors outside the taxonomy are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func Validation(field string, reason Reason, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Reason: reason, Message: message}
}

func ClientNotFound(id string) *Error {
	return &Error{Kind: KindClientNotFound, Message: fmt.Sprintf("client %s not found", id)}
}

func VehicleNotFound(plate string) *Error {
	return &Error{Kind: KindVehicleNotFound, Message: fmt.Sprintf("vehicle with plate %s not found", plate)}
}

func RentalNotFound(id string) *Error {
	return &Error{Kind: KindRentalNotFound, Message: fmt.Sprintf("rental %s not found", id)}
}

func ClientInactive(id string) *Error {
	return &Error{Kind: KindClientInactive, Message: fmt.Sprintf("client %s is not active", id)}
}

func VehicleUnavailable(plate string) *Error {
	return &Error{Kind: KindVehicleUnavailable, Message: fmt.Sprintf("vehicle %s is not available", plate)}
}

func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Field:   "status",
		Message: fmt.Sprintf("rental status cannot change from %s to %s", from, to),
	}
}

func ConcurrentModification(err error) *Error {
	return &Error{
		Kind:    KindConcurrentModification,
		Message: "the record was modified concurrently, retry the operation",
		Err:     err,
	}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: InternalMessage, Err: err}
}
