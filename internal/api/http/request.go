package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"vehicle-rental-backend/internal/apperr"
	"vehicle-rental-backend/internal/service"
	"vehicle-rental-backend/internal/validation"
)

const maxBodyBytes = 1 << 20

// fieldAliases maps each accepted request key to its canonical field. The
// admin frontend posts Portuguese keys.
var fieldAliases = map[string][]string{
	validation.FieldClientID:             {"clientId", "clienteId"},
	validation.FieldPlate:                {"plate", "placa"},
	validation.FieldStartDate:            {"startDate", "dataInicio"},
	validation.FieldEndDate:              {"endDate", "dataFim"},
	validation.FieldAmount:               {"amount", "valor"},
	validation.FieldAdditionalServiceIDs: {"additionalServiceIds", "servicosAdicionais"},
	validation.FieldStatus:               {"status"},
}

type requestBody map[string]json.RawMessage

func readBody(r *http.Request) (requestBody, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Validation("", apperr.ReasonInvalidFormat, "request body could not be read")
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return requestBody{}, nil
	}
	var body requestBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, apperr.Validation("", apperr.ReasonInvalidFormat, "request body must be a JSON object")
	}
	return body, nil
}

// lookup returns the raw value for a canonical field. JSON null counts as absent.
func (b requestBody) lookup(field string) (json.RawMessage, bool) {
	for _, key := range fieldAliases[field] {
		if raw, ok := b[key]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return raw, true
		}
	}
	return nil, false
}

func (b requestBody) stringField(field string) (*string, error) {
	raw, ok := b.lookup(field)
	if !ok {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, typeError(field, "a string")
	}
	return &s, nil
}

// amountField accepts a JSON number or a numeric string.
func (b requestBody) amountField(field string) (*float64, error) {
	raw, ok := b.lookup(field)
	if !ok {
		return nil, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return nil, typeError(field, "a number")
		}
		f := d.InexactFloat64()
		return &f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, typeError(field, "a number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, typeError(field, "a number")
	}
	f := d.InexactFloat64()
	return &f, nil
}

func (b requestBody) stringsField(field string) (*[]string, error) {
	raw, ok := b.lookup(field)
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, typeError(field, "an array of strings")
	}
	return &ids, nil
}

func typeError(field, want string) error {
	return apperr.Validation(field, apperr.ReasonInvalidFormat, fmt.Sprintf("%s must be %s", field, want))
}

func decodeCreateRental(r *http.Request) (service.CreateRentalInput, error) {
	var in service.CreateRentalInput
	body, err := readBody(r)
	if err != nil {
		return in, err
	}

	fields := []struct {
		name string
		dst  *string
	}{
		{validation.FieldClientID, &in.ClientID},
		{validation.FieldPlate, &in.Plate},
		{validation.FieldStartDate, &in.StartDate},
		{validation.FieldEndDate, &in.EndDate},
	}
	for _, f := range fields {
		v, err := body.stringField(f.name)
		if err != nil {
			return in, err
		}
		if v != nil {
			*f.dst = *v
		}
	}
	amount, err := body.amountField(validation.FieldAmount)
	if err != nil {
		return in, err
	}
	if amount != nil {
		in.Amount = *amount
	}
	ids, err := body.stringsField(validation.FieldAdditionalServiceIDs)
	if err != nil {
		return in, err
	}
	if ids != nil {
		in.AdditionalServiceIDs = *ids
	}
	return in, nil
}

func decodeUpdateRental(r *http.Request) (service.UpdateRentalInput, error) {
	var in service.UpdateRentalInput
	body, err := readBody(r)
	if err != nil {
		return in, err
	}
	if in.StartDate, err = body.stringField(validation.FieldStartDate); err != nil {
		return in, err
	}
	if in.EndDate, err = body.stringField(validation.FieldEndDate); err != nil {
		return in, err
	}
	if in.Status, err = body.stringField(validation.FieldStatus); err != nil {
		return in, err
	}
	if in.Amount, err = body.amountField(validation.FieldAmount); err != nil {
		return in, err
	}
	if in.AdditionalServiceIDs, err = body.stringsField(validation.FieldAdditionalServiceIDs); err != nil {
		return in, err
	}
	return in, nil
}
