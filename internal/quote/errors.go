package quote

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pricing/internal/common"
	"github.com/noah-isme/backend-pricing/internal/pricing"
	"github.com/noah-isme/backend-pricing/internal/voucher"
)

var (
	// ErrInvalidInput marks malformed requests.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnknownTax is returned when an item references a tax ID not declared on the request.
	ErrUnknownTax = errors.New("unknown tax id")
	// ErrDuplicateTax is returned when two taxes share an ID.
	ErrDuplicateTax = errors.New("duplicate tax id")
	// ErrTooManyItems is returned when a request exceeds the configured line limit.
	ErrTooManyItems = errors.New("too many items")
	// ErrUnknownStrategy is returned for a merge strategy the service does not know.
	ErrUnknownStrategy = errors.New("unknown merge strategy")
	// ErrNotFound is returned when a stored quote does not exist or has expired.
	ErrNotFound = errors.New("quote not found")
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &common.AppError{Code: common.CodeBadRequest, Message: err.Error(), HTTPStatus: http.StatusBadRequest, Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)}
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		fields = append(fields, FieldError{Field: field, Rule: fe.Tag(), Param: fe.Param()})
	}
	return &common.AppError{
		Code:       common.CodeBadRequest,
		Message:    "request validation failed",
		HTTPStatus: http.StatusBadRequest,
		Err:        fmt.Errorf("%w: %v", ErrInvalidInput, err),
		Details:    fields,
	}
}

func badRequest(message string, err error) error {
	return &common.AppError{Code: common.CodeBadRequest, Message: message, HTTPStatus: http.StatusBadRequest, Err: fmt.Errorf("%w: %w", ErrInvalidInput, err)}
}

// unprocessable wraps engine errors so handlers render them as 422.
func unprocessable(err error) error {
	if common.IsAppError(err) {
		return err
	}
	return &common.AppError{Code: common.CodeUnprocessable, Message: err.Error(), HTTPStatus: http.StatusUnprocessableEntity, Err: err}
}

// isPricingError reports whether err comes from building the price model.
func isPricingError(err error) bool {
	for _, target := range []error{
		pricing.ErrInvalidAmount,
		pricing.ErrInvalidModifierType,
		pricing.ErrInvalidModifierArgument,
		pricing.ErrDuplicateModifierInCall,
		voucher.ErrUnknownKind,
		ErrUnknownTax,
		ErrDuplicateTax,
		ErrUnknownStrategy,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
