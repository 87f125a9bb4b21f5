package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", fmt.Errorf("%w: amount", ErrValidation), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusForbidden},
		{"forbidden", fmt.Errorf("wrap: %w", ErrForbidden), http.StatusForbidden},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"not found app error", NewNotFoundError("user x"), http.StatusNotFound},
		{"bad request app error", NewAppError(http.StatusBadRequest, "invalid nextToken", errors.New("decode")), http.StatusBadRequest},
		{"not eligible", ErrNotEligible, http.StatusConflict},
		{"duplicate", ErrDuplicate, http.StatusConflict},
		{"conflict", ErrConflict, http.StatusConflict},
		{"insufficient", NewInsufficientFundsError("CDF", 300, 500), http.StatusUnprocessableEntity},
		{"internal app error", NewAppError(http.StatusInternalServerError, "boom", ErrDuplicate), http.StatusInternalServerError},
		{"unknown", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestInsufficientFundsError(t *testing.T) {
	err := fmt.Errorf("decide: %w", NewInsufficientFundsError("USD", 1200, 5000))

	assert.ErrorIs(t, err, ErrInsufficientFunds)
	var target *InsufficientFundsError
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, int64(1200), target.Available)
	assert.Contains(t, err.Error(), "USD")
	assert.Contains(t, err.Error(), "available 1200")
}

func TestAppError(t *testing.T) {
	cause := errors.New("unique violation")
	err := NewAppError(http.StatusInternalServerError, "could not allocate a unique reference", cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "could not allocate a unique reference: unique violation", err.Error())
	assert.Equal(t, "user 1 not found", NewNotFoundError("user 1 not found").Error())
}
