package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/gestion_caisse/internal/core/ports/services"
	"github.com/SscSPs/gestion_caisse/internal/dto"
	"github.com/gin-gonic/gin"
)

// historyHandler exposes the audit ledger.
type historyHandler struct {
	historyService portssvc.HistorySvc
}

func newHistoryHandler(hs portssvc.HistorySvc) *historyHandler {
	return &historyHandler{historyService: hs}
}

func registerHistoryRoutes(rg *gin.RouterGroup, hs portssvc.HistorySvc) {
	h := newHistoryHandler(hs)

	history := rg.Group("/history")
	{
		history.GET("", h.listRecent)
		history.GET("/search", h.search)
	}
}

// listRecent godoc
// @Summary Recent history
// @Description Returns the newest audit entries first, each carrying the reference of its operation.
// @Tags history
// @Produce json
// @Param limit query int false "Number of entries" default(50)
// @Success 200 {object} dto.ListHistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/history [get]
func (h *historyHandler) listRecent(c *gin.Context) {
	var params dto.ListHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	entries, err := h.historyService.ListRecent(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err, "Failed to list history")
		return
	}
	c.JSON(http.StatusOK, dto.ToListHistoryResponse(entries, nil))
}

// search godoc
// @Summary Search history
// @Description Filters the audit ledger. Pass the returned nextToken to get the following page.
// @Tags history
// @Produce json
// @Param kind query string false "VERSEMENT or RETRAIT"
// @Param currency query string false "CDF or USD"
// @Param actorId query string false "Author of the entry"
// @Param operationId query string false "Operation ID"
// @Param q query string false "Matches reference, payer, beneficiary, motive, purpose or note"
// @Param limit query int false "Page size" default(50)
// @Param nextToken query string false "Cursor from a previous page"
// @Success 200 {object} dto.ListHistoryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /api/v1/history/search [get]
func (h *historyHandler) search(c *gin.Context) {
	var params dto.SearchHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	entries, next, err := h.historyService.Search(c.Request.Context(), params.ToFilter(), params.Limit, params.NextToken)
	if err != nil {
		respondError(c, err, "Failed to search history")
		return
	}
	c.JSON(http.StatusOK, dto.ToListHistoryResponse(entries, next))
}
