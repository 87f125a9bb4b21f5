package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates that the actor is not allowed to act at all (unknown or unapproved account).
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the actor lacks the role or ownership the action requires.
var ErrForbidden = errors.New("forbidden")

// ErrNotEligible indicates that the operation status does not allow the requested transition.
var ErrNotEligible = errors.New("operation not eligible for this transition")

// ErrInsufficientFunds indicates that the solvency guard refused a withdrawal.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrConflict indicates a request that collides with one already in flight.
var ErrConflict = errors.New("conflict")

// ErrInternal indicates an unexpected infrastructure failure.
var ErrInternal = errors.New("internal error")

// InsufficientFundsError carries the currency and the approved balance that was available
// when the solvency guard fired. It matches ErrInsufficientFunds with errors.Is.
type InsufficientFundsError struct {
	Currency  string
	Available int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in %s: available %d, requested %d (minor units)", e.Currency, e.Available, e.Requested)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// NewInsufficientFundsError builds the solvency error for a currency.
func NewInsufficientFundsError(currency string, available, requested int64) error {
	return &InsufficientFundsError{Currency: currency, Available: available, Requested: requested}
}

// AppError wraps an infrastructure failure with the HTTP status it should surface as.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is lets 4xx AppErrors match the matching sentinel and everything else match ErrInternal.
func (e *AppError) Is(target error) bool {
	switch e.Code {
	case http.StatusBadRequest:
		return target == ErrValidation
	case http.StatusNotFound:
		return target == ErrNotFound
	default:
		return target == ErrInternal
	}
}

// NewAppError creates an AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates a 404 AppError without an underlying cause.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

// HTTPStatus maps an error from the service layer onto a response status.
// An error explicitly classified as internal stays a 500 whatever it wraps.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInternal):
		return http.StatusInternalServerError
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotEligible), errors.Is(err, ErrDuplicate), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
