package handlers

import (
	"fmt"
	"net/http"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/gin-gonic/gin"
)

// balanceHandler exposes approved balances.
type balanceHandler struct {
	balanceService portssvc.BalanceSvc
}

func newBalanceHandler(bs portssvc.BalanceSvc) *balanceHandler {
	return &balanceHandler{balanceService: bs}
}

func registerBalanceRoutes(rg *gin.RouterGroup, bs portssvc.BalanceSvc) {
	h := newBalanceHandler(bs)

	balances := rg.Group("/balances")
	{
		balances.GET("", h.listBalances)
		balances.GET("/:currency", h.getBalance)
		balances.GET("/:currency/reconcile", h.reconcile)
	}
}

// listBalances godoc
// @Summary Approved balances
// @Description Returns approved inflow, outflow and balance for every supported currency.
// @Tags balances
// @Produce json
// @Success 200 {object} dto.ListBalancesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/balances [get]
func (h *balanceHandler) listBalances(c *gin.Context) {
	totals, err := h.balanceService.GetTotals(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compute balances")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBalancesResponse(totals))
}

// getBalance godoc
// @Summary Approved balance of one currency
// @Tags balances
// @Produce json
// @Param currency path string true "CDF or USD"
// @Success 200 {object} dto.BalanceResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/balances/{currency} [get]
func (h *balanceHandler) getBalance(c *gin.Context) {
	currency, ok := currencyParam(c)
	if !ok {
		return
	}
	balance, err := h.balanceService.GetBalance(c.Request.Context(), currency)
	if err != nil {
		respondError(c, err, "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, dto.NewBalanceResponse(currency, balance))
}

// reconcile godoc
// @Summary Reconcile a balance against history
// @Description Replays the approvals recorded in history and compares the result with the balance computed from operations.
// @Tags balances
// @Produce json
// @Param currency path string true "CDF or USD"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/balances/{currency}/reconcile [get]
func (h *balanceHandler) reconcile(c *gin.Context) {
	currency, ok := currencyParam(c)
	if !ok {
		return
	}
	rec, err := h.balanceService.Reconcile(c.Request.Context(), currency)
	if err != nil {
		respondError(c, err, "Failed to reconcile balance")
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(rec))
}

// currencyParam reads the :currency path segment or answers 400.
func currencyParam(c *gin.Context) (domain.Currency, bool) {
	raw := c.Param("currency")
	currency, ok := domain.ParseCurrency(raw)
	if !ok {
		respondError(c, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, raw), "Invalid currency")
		return "", false
	}
	return currency, true
}
