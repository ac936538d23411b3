package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"vehicle-rental-backend/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		_, err := ValidateCPF(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
		_, err := ValidatePlate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("rentaldate", func(fl validator.FieldLevel) bool {
		_, ok := ParseDate(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("rentalstatus", func(fl validator.FieldLevel) bool {
		_, err := ValidateStatus(fl.Field().String())
		return err == nil
	})

	return v
}

// Struct validates a request DTO and returns the first failing field as a
// validation error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Validation("", apperr.ReasonInvalidValue, "invalid request")
	}
	return fieldError(fieldErrs[0])
}

func fieldError(fe validator.FieldError) *apperr.Error {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return apperr.Validation(field, apperr.ReasonRequired, fmt.Sprintf("%s is required", field))
	case "gt", "gte", "min", "max", "lte", "lt", "oneof", "rentalstatus":
		return apperr.Validation(field, apperr.ReasonInvalidValue, fmt.Sprintf("%s has an invalid value", field))
	default:
		return apperr.Validation(field, apperr.ReasonInvalidFormat, fmt.Sprintf("%s has an invalid format", field))
	}
}
