package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/SscSPs/gestion_caisse/internal/middleware"
	"github.com/gin-gonic/gin"
)

// operationHandler handles the lifecycle of till operations.
type operationHandler struct {
	operationService portssvc.OperationSvcFacade
}

func newOperationHandler(os portssvc.OperationSvcFacade) *operationHandler {
	return &operationHandler{operationService: os}
}

// registerOperationRoutes registers the operation routes. idempotent wraps the
// mutating endpoints that clients are expected to retry.
func registerOperationRoutes(rg *gin.RouterGroup, os portssvc.OperationSvcFacade, idempotent gin.HandlerFunc) {
	h := newOperationHandler(os)

	ops := rg.Group("/operations")
	{
		ops.POST("", idempotent, h.createOperation)
		ops.GET("", h.listOperations)
		ops.GET("/:id", h.getOperation)
		ops.PATCH("/:id", h.updateOperation)
		ops.POST("/:id/cancel", h.cancelOperation)
		ops.POST("/:id/decide", idempotent, h.decideOperation)
	}
}

// createOperation godoc
// @Summary Submit an operation
// @Description Submits a deposit (VERSEMENT) or a withdrawal (RETRAIT). A withdrawal larger than the approved balance is refused.
// @Tags operations
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a retried request"
// @Param operation body dto.CreateOperationRequest true "Operation details"
// @Success 201 {object} dto.OperationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse "Account not approved"
// @Failure 409 {object} ErrorResponse "Same idempotency key in flight"
// @Failure 422 {object} InsufficientFundsResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/operations [post]
func (h *operationHandler) createOperation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.CreateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	draft, err := req.ToDraft()
	if err != nil {
		respondError(c, err, "Invalid operation")
		return
	}

	op, err := h.operationService.CreateOperation(c.Request.Context(), draft, actor)
	if err != nil {
		respondError(c, err, "Failed to create operation")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Operation submitted",
		slog.String("operation_id", op.ID), slog.String("reference", op.Reference))
	c.JSON(http.StatusCreated, dto.ToOperationResponse(op))
}

// listOperations godoc
// @Summary Search operations
// @Description Filters, sorts and paginates operations.
// @Tags operations
// @Produce json
// @Param status query string false "SOUMIS, APPROUVE, REJETE or ANNULE"
// @Param kind query string false "VERSEMENT or RETRAIT"
// @Param currency query string false "CDF or USD"
// @Param q query string false "Matches reference, counterparty or note"
// @Param valueDateFrom query string false "YYYY-MM-DD"
// @Param valueDateTo query string false "YYYY-MM-DD"
// @Param minAmount query int false "Minimum amount in minor units"
// @Param maxAmount query int false "Maximum amount in minor units"
// @Param sortBy query string false "createdAt, valueDate, amountMinor or reference" default(createdAt)
// @Param order query string false "asc or desc" default(desc)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Success 200 {object} dto.ListOperationsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/operations [get]
func (h *operationHandler) listOperations(c *gin.Context) {
	var params dto.ListOperationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	filter, err := params.ToFilter()
	if err != nil {
		respondError(c, err, "Invalid search")
		return
	}

	page, err := h.operationService.SearchOperations(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "Failed to search operations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListOperationsResponse(page))
}

// getOperation godoc
// @Summary Get an operation
// @Tags operations
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} dto.OperationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/operations/{id} [get]
func (h *operationHandler) getOperation(c *gin.Context) {
	op, err := h.operationService.GetOperation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get operation")
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}

// updateOperation godoc
// @Summary Edit a submitted operation
// @Description Changes the amount or the descriptive fields of an operation still SOUMIS. Only its creator or an admin may edit it.
// @Tags operations
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Param patch body dto.UpdateOperationRequest true "Fields to change"
// @Success 200 {object} dto.OperationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Operation already decided or canceled"
// @Failure 422 {object} InsufficientFundsResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/operations/{id} [patch]
func (h *operationHandler) updateOperation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.UpdateOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	operationID := c.Param("id")
	current, err := h.operationService.GetOperation(c.Request.Context(), operationID)
	if err != nil {
		respondError(c, err, "Failed to get operation")
		return
	}
	patch, err := req.ToPatch(current.Kind, current.Currency)
	if err != nil {
		respondError(c, err, "Invalid operation update")
		return
	}

	op, err := h.operationService.EditOperation(c.Request.Context(), operationID, patch, actor)
	if err != nil {
		respondError(c, err, "Failed to update operation")
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}

// cancelOperation godoc
// @Summary Cancel a submitted operation
// @Tags operations
// @Produce json
// @Param id path string true "Operation ID"
// @Success 200 {object} dto.OperationResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/operations/{id}/cancel [post]
func (h *operationHandler) cancelOperation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	op, err := h.operationService.CancelOperation(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		respondError(c, err, "Failed to cancel operation")
		return
	}
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}

// decideOperation godoc
// @Summary Approve or reject an operation
// @Description Managers and admins decide submitted operations. Approving a withdrawal re-checks the balance atomically.
// @Tags operations
// @Accept json
// @Produce json
// @Param id path string true "Operation ID"
// @Param Idempotency-Key header string false "Replays the first response for a retried request"
// @Param decision body dto.DecideRequest true "APPROUVE or REJETE"
// @Success 200 {object} dto.OperationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} InsufficientFundsResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/operations/{id}/decide [post]
func (h *operationHandler) decideOperation(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req dto.DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	op, err := h.operationService.DecideOperation(c.Request.Context(), c.Param("id"), req.Decision, actor)
	if err != nil {
		respondError(c, err, "Failed to decide operation")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Operation decided",
		slog.String("operation_id", op.ID), slog.String("status", string(op.Status)))
	c.JSON(http.StatusOK, dto.ToOperationResponse(op))
}
