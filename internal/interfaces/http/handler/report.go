package handler

import (
	reportapp "github.com/aquagest/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler exposes reporting projections over HTTP.
type ReportHandler struct {
	BaseHandler
	service *reportapp.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service *reportapp.Service) *ReportHandler {
	return &ReportHandler{service: service}
}

// Revenue handles GET /api/v1/reports/revenue
func (h *ReportHandler) Revenue(c *gin.Context) {
	var req reportapp.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "from and to are required RFC3339 timestamps")
		return
	}

	resp, err := h.service.Revenue(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DailyTotals handles GET /api/v1/reports/daily
func (h *ReportHandler) DailyTotals(c *gin.Context) {
	var req reportapp.PeriodRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "from and to are required RFC3339 timestamps")
		return
	}

	resp, err := h.service.DailyTotals(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// OutstandingBalances handles GET /api/v1/reports/outstanding
func (h *ReportHandler) OutstandingBalances(c *gin.Context) {
	resp, err := h.service.OutstandingBalances(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StockValuations handles GET /api/v1/reports/stock
func (h *ReportHandler) StockValuations(c *gin.Context) {
	resp, err := h.service.StockValuations(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
