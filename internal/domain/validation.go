package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/cloud-wave-best-zizon/store-service/internal/money"
	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected input location.
type FieldError struct {
	Type  string   `json:"type"`
	Loc   []string `json:"loc"`
	Msg   string   `json:"msg"`
	Input any      `json:"input"`
}

// ValidationError is returned when a request body does not match its schema.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", strings.Join(fe.Loc, "."), fe.Msg))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func NewValidationError(errs ...FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

type createProductPayload struct {
	Name     *string       `json:"name"     validate:"required,min=1"`
	Quantity *int          `json:"quantity" validate:"required"`
	Price    *money.Amount `json:"price"    validate:"required"`
	Status   *bool         `json:"status"   validate:"required"`
}

type updateProductPayload struct {
	Quantity *int          `json:"quantity"`
	Price    *money.Amount `json:"price"`
	Status   *bool         `json:"status"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeCreateProductRequest validates a create body. Every field is required.
func DecodeCreateProductRequest(body []byte) (CreateProductRequest, error) {
	var payload createProductPayload
	input, err := decodeBody(body, &payload)
	if err != nil {
		return CreateProductRequest{}, err
	}

	if err := validate.Struct(payload); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return CreateProductRequest{}, err
		}
		return CreateProductRequest{}, fromValidatorErrors(verrs, input)
	}

	if err := checkStorablePrice(payload.Price, input); err != nil {
		return CreateProductRequest{}, err
	}

	return CreateProductRequest{
		Name:     *payload.Name,
		Quantity: *payload.Quantity,
		Price:    *payload.Price,
		Status:   *payload.Status,
	}, nil
}

// DecodeUpdateProductRequest validates a partial update body. Absent and null
// fields stay nil; unknown fields (including name) are ignored.
func DecodeUpdateProductRequest(body []byte) (UpdateProductRequest, error) {
	var payload updateProductPayload
	input, err := decodeBody(body, &payload)
	if err != nil {
		return UpdateProductRequest{}, err
	}

	if err := checkStorablePrice(payload.Price, input); err != nil {
		return UpdateProductRequest{}, err
	}

	return UpdateProductRequest{
		Quantity: payload.Quantity,
		Price:    payload.Price,
		Status:   payload.Status,
	}, nil
}

// decodeBody unmarshals body into dst and returns the raw object for error
// reporting.
func decodeBody(body []byte, dst any) (map[string]any, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, NewValidationError(FieldError{
			Type:  "json_invalid",
			Loc:   []string{"body"},
			Msg:   "JSON decode error",
			Input: string(body),
		})
	}

	input, ok := raw.(map[string]any)
	if !ok {
		return nil, NewValidationError(FieldError{
			Type:  "model_attributes_type",
			Loc:   []string{"body"},
			Msg:   "Input should be a valid dictionary or object",
			Input: raw,
		})
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		var amountErr *money.ParseError
		switch {
		case errors.As(err, &typeErr):
			return nil, NewValidationError(typeFieldError(typeErr, input))
		case errors.As(err, &amountErr):
			return nil, NewValidationError(priceFieldError(amountErr, input))
		default:
			return nil, err
		}
	}

	return input, nil
}

func checkStorablePrice(price *money.Amount, input map[string]any) error {
	if price == nil {
		return nil
	}
	if _, err := money.ToStorage(*price); err != nil {
		var amountErr *money.ParseError
		if errors.As(err, &amountErr) {
			return NewValidationError(priceFieldError(amountErr, input))
		}
		return err
	}
	return nil
}

func typeFieldError(err *json.UnmarshalTypeError, input map[string]any) FieldError {
	kind, msg := "value_error", "Input has an invalid type"
	switch err.Type.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		kind, msg = "int_type", "Input should be a valid integer"
	case reflect.Bool:
		kind, msg = "bool_type", "Input should be a valid boolean"
	case reflect.String:
		kind, msg = "string_type", "Input should be a valid string"
	}

	return FieldError{
		Type:  kind,
		Loc:   []string{"body", err.Field},
		Msg:   msg,
		Input: input[err.Field],
	}
}

func priceFieldError(err *money.ParseError, input map[string]any) FieldError {
	if errors.Is(err, money.ErrNotDecimal) {
		return FieldError{
			Type:  "decimal_type",
			Loc:   []string{"body", "price"},
			Msg:   "Decimal input should be an integer, float, string or Decimal object",
			Input: input["price"],
		}
	}
	return FieldError{
		Type:  "decimal_parsing",
		Loc:   []string{"body", "price"},
		Msg:   "Input should be a valid decimal",
		Input: input["price"],
	}
}

func fromValidatorErrors(verrs validator.ValidationErrors, input map[string]any) *ValidationError {
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			out = append(out, FieldError{
				Type:  "missing",
				Loc:   []string{"body", field},
				Msg:   "Field required",
				Input: input,
			})
		case "min":
			out = append(out, FieldError{
				Type:  "string_too_short",
				Loc:   []string{"body", field},
				Msg:   fmt.Sprintf("String should have at least %s character", fe.Param()),
				Input: input[field],
			})
		default:
			out = append(out, FieldError{
				Type:  "value_error",
				Loc:   []string{"body", field},
				Msg:   fmt.Sprintf("%s is invalid", field),
				Input: input[field],
			})
		}
	}
	return NewValidationError(out...)
}
