package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/SscSPs/gestion_caisse/internal/apperrors"
	"github.com/SscSPs/gestion_caisse/internal/core/domain"
	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for dashboard reports
type reportingHandler struct {
	reportingService portssvc.ReportingSvc
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingSvc) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to reports
func registerReportingRoutes(rg *gin.RouterGroup, rs portssvc.ReportingSvc) {
	h := newReportingHandler(rs)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/daily", h.getDailyFlows)
		reportingGroup.GET("/top-beneficiaries", h.getTopBeneficiaries)
	}
}

// getDailyFlows godoc
// @Summary Daily approved flows
// @Description Approved inflow and outflow per value date and currency over the last days.
// @Tags reports
// @Produce json
// @Param days query int false "Window size in days" default(90)
// @Param currencies query string false "Comma separated currency codes"
// @Success 200 {object} dto.DailyFlowsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/reports/daily [get]
func (h *reportingHandler) getDailyFlows(c *gin.Context) {
	var params dto.DailyFlowsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	currencies, err := parseCurrencyList(params.Currencies)
	if err != nil {
		respondError(c, err, "Invalid currencies")
		return
	}

	rows, err := h.reportingService.DailyFlows(c.Request.Context(), params.Days, currencies)
	if err != nil {
		respondError(c, err, "Failed to generate report")
		return
	}
	c.JSON(http.StatusOK, dto.ToDailyFlowsResponse(params.Days, rows))
}

// getTopBeneficiaries godoc
// @Summary Top beneficiaries
// @Description Beneficiaries ranked by approved withdrawal total.
// @Tags reports
// @Produce json
// @Param limit query int false "Number of beneficiaries" default(10)
// @Success 200 {object} dto.TopBeneficiariesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/reports/top-beneficiaries [get]
func (h *reportingHandler) getTopBeneficiaries(c *gin.Context) {
	var params dto.TopBeneficiariesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	rows, err := h.reportingService.TopBeneficiaries(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err, "Failed to generate report")
		return
	}
	c.JSON(http.StatusOK, dto.ToTopBeneficiariesResponse(rows))
}

// parseCurrencyList splits a comma separated list. An empty list means every currency.
func parseCurrencyList(raw string) ([]domain.Currency, error) {
	var out []domain.Currency
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		currency, ok := domain.ParseCurrency(part)
		if !ok {
			return nil, fmt.Errorf("%w: unsupported currency %q", apperrors.ErrValidation, strings.TrimSpace(part))
		}
		out = append(out, currency)
	}
	return out, nil
}
