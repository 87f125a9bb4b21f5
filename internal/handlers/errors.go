package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	"github.com/SscSPs/gestion_caisse/internal/middleware"
	"github.com/SscSPs/gestion_caisse/internal/utils"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the generic error body returned by every handler.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InsufficientFundsResponse is returned with 422 when the solvency guard refuses a withdrawal.
type InsufficientFundsResponse struct {
	Error          string          `json:"error"`
	Currency       domain.Currency `json:"currency"`
	AvailableMinor int64           `json:"availableMinor"`
	Available      string          `json:"available"`
	RequestedMinor int64           `json:"requestedMinor"`
}

// respondError maps a service error onto its status. Client errors echo the message,
// server errors are logged and replaced by fallback.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: fallback})
		return
	}

	logger.Warn(fallback, slog.String("error", err.Error()), slog.Int("status", status))
	var funds *apperrors.InsufficientFundsError
	if errors.As(err, &funds) {
		currency := domain.Currency(funds.Currency)
		c.JSON(status, InsufficientFundsResponse{
			Error:          funds.Error(),
			Currency:       currency,
			AvailableMinor: funds.Available,
			Available:      utils.FormatMinor(funds.Available, currency),
			RequestedMinor: funds.Requested,
		})
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// respondBindError answers 400 for a body or query that failed binding.
func respondBindError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
}

// currentActor returns the authenticated actor or answers 401.
func currentActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Actor not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return domain.Actor{}, false
	}
	return actor, true
}
