// Package validation normalizes raw rental input. Every function is pure and
// reports failures as apperr validation errors naming the offending field.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vehicle-rental-backend/internal/apperr"
	"vehicle-rental-backend/internal/domain"
)

const (
	FieldClientID             = "clientId"
	FieldPlate                = "plate"
	FieldStartDate            = "startDate"
	FieldEndDate              = "endDate"
	FieldAmount               = "amount"
	FieldAdditionalServiceIDs = "additionalServiceIds"
	FieldStatus               = "status"
	FieldCursor               = "cursor"
	FieldLimit                = "limit"
	FieldID                   = "id"
)

const (
	DisplayDateLayout = "02/01/2006"
	// displayInputLayout also accepts unpadded days and months.
	displayInputLayout = "2/1/2006"
	ISODateLayout     = "2006-01-02"
)

type TaxIDKind int

const (
	TaxIDCPF TaxIDKind = iota
	TaxIDCNPJ
)

var (
	legacyPlatePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{4}$`)
	newPlatePattern    = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)

	cpfWeights   = []int{11, 10, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights1 = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeights2 = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// ValidateCPF normalizes an individual taxpayer id.
func ValidateCPF(input string) (string, error) {
	return ValidateTaxID(input, TaxIDCPF)
}

// ValidateTaxID strips formatting from a CPF or CNPJ and verifies its length
// and check digits.
func ValidateTaxID(input string, kind TaxIDKind) (string, error) {
	digits := onlyDigits(input)
	if digits == "" {
		return "", apperr.Validation(FieldClientID, apperr.ReasonRequired, "client tax id is required")
	}

	var ok bool
	switch kind {
	case TaxIDCNPJ:
		ok = len(digits) == 14 && !repeated(digits) && validCNPJ(digits)
	default:
		ok = len(digits) == 11 && !repeated(digits) && validCPF(digits)
	}
	if !ok {
		return "", apperr.Validation(FieldClientID, apperr.ReasonInvalidFormat, "invalid client tax id")
	}
	return digits, nil
}

// ValidatePlate accepts the legacy (AAA9999) and the current (AAA9A99) plate
// formats, ignoring case and separators.
func ValidatePlate(input string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(input) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	plate := b.String()
	if plate == "" {
		return "", apperr.Validation(FieldPlate, apperr.ReasonRequired, "plate is required")
	}
	if !legacyPlatePattern.MatchString(plate) && !newPlatePattern.MatchString(plate) {
		return "", apperr.Validation(FieldPlate, apperr.ReasonInvalidFormat, "invalid plate")
	}
	return plate, nil
}

// ParseDate reads DD/MM/YYYY, YYYY-MM-DD or an RFC 3339 timestamp and returns
// the calendar date at UTC midnight.
func ParseDate(input string) (time.Time, bool) {
	input = strings.TrimSpace(input)
	for _, layout := range []string{displayInputLayout, ISODateLayout} {
		if t, err := time.Parse(layout, input); err == nil {
			return t.UTC(), true
		}
	}
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// ValidateDate parses a single date attributed to field.
func ValidateDate(field, input string) (time.Time, error) {
	if strings.TrimSpace(input) == "" {
		return time.Time{}, apperr.Validation(field, apperr.ReasonRequired, fmt.Sprintf("%s is required", field))
	}
	t, ok := ParseDate(input)
	if !ok {
		return time.Time{}, apperr.Validation(field, apperr.ReasonInvalidFormat, fmt.Sprintf("invalid %s, expected DD/MM/YYYY or YYYY-MM-DD", field))
	}
	return t, nil
}

// ValidateDateRange parses both dates and requires start < end.
func ValidateDateRange(start, end string) (time.Time, time.Time, error) {
	s, err := ValidateDate(FieldStartDate, start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := ValidateDate(FieldEndDate, end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := CheckDateOrder(s, e); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}

// CheckDateOrder enforces start < end on already parsed dates.
func CheckDateOrder(start, end time.Time) error {
	if !start.Before(end) {
		return apperr.Validation(FieldEndDate, apperr.ReasonInvalidRange, "end date must be after start date")
	}
	return nil
}

// ValidatePositiveAmount rejects non-finite and non-positive values and rounds
// to cents.
func ValidatePositiveAmount(value float64) (decimal.Decimal, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return decimal.Zero, apperr.Validation(FieldAmount, apperr.ReasonInvalidValue, "amount must be a positive number")
	}
	amount := decimal.NewFromFloat(value).Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, apperr.Validation(FieldAmount, apperr.ReasonInvalidValue, "amount must be a positive number")
	}
	return amount, nil
}

// ValidateStatus checks rental status membership.
func ValidateStatus(input string) (domain.RentalStatus, error) {
	status := domain.RentalStatus(strings.ToLower(strings.TrimSpace(input)))
	if !status.Valid() {
		return "", apperr.Validation(FieldStatus, apperr.ReasonInvalidValue, "status must be one of active, completed, canceled")
	}
	return status, nil
}

// FormatDisplayDate renders a date the way the admin frontend shows it.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DisplayDateLayout)
}

// FormatISODate renders the stored representation of a date.
func FormatISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(ISODateLayout)
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func repeated(digits string) bool {
	return strings.Count(digits, digits[:1]) == len(digits)
}

func validCPF(digits string) bool {
	return cpfDigit(digits[:9], cpfWeights[1:]) == int(digits[9]-'0') &&
		cpfDigit(digits[:10], cpfWeights) == int(digits[10]-'0')
}

func cpfDigit(digits string, weights []int) int {
	sum := 0
	for i := range digits {
		sum += int(digits[i]-'0') * weights[i]
	}
	d := (sum * 10) % 11
	if d == 10 {
		return 0
	}
	return d
}

func validCNPJ(digits string) bool {
	return cnpjDigit(digits[:12], cnpjWeights1) == int(digits[12]-'0') &&
		cnpjDigit(digits[:13], cnpjWeights2) == int(digits[13]-'0')
}

func cnpjDigit(digits string, weights []int) int {
	sum := 0
	for i := range digits {
		sum += int(digits[i]-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}
