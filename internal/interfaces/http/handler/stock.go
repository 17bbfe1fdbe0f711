package handler

import (
	"context"

	stockapp "github.com/aquagest/backend/internal/application/stock"
	"github.com/aquagest/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StockHandler exposes stock mutations and movement history over HTTP.
type StockHandler struct {
	BaseHandler
	service *stockapp.Service
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(service *stockapp.Service) *StockHandler {
	return &StockHandler{service: service}
}

// Receive handles POST /api/v1/products/:id/stock/receive
func (h *StockHandler) Receive(c *gin.Context) {
	var req stockapp.ReceiveStockRequest
	h.mutate(c, &req, func(ctx context.Context, productID, actorID uuid.UUID) (*stockapp.MovementResponse, error) {
		return h.service.Receive(ctx, productID, actorID, req)
	})
}

// Adjust handles POST /api/v1/products/:id/stock/adjust
func (h *StockHandler) Adjust(c *gin.Context) {
	var req stockapp.AdjustStockRequest
	h.mutate(c, &req, func(ctx context.Context, productID, actorID uuid.UUID) (*stockapp.MovementResponse, error) {
		return h.service.Adjust(ctx, productID, actorID, req)
	})
}

// RecordLoss handles POST /api/v1/products/:id/stock/loss
func (h *StockHandler) RecordLoss(c *gin.Context) {
	var req stockapp.RecordLossRequest
	h.mutate(c, &req, func(ctx context.Context, productID, actorID uuid.UUID) (*stockapp.MovementResponse, error) {
		return h.service.RecordLoss(ctx, productID, actorID, req)
	})
}

// History handles GET /api/v1/products/:id/stock/movements
func (h *StockHandler) History(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	var filter stockapp.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.service.History(c.Request.Context(), uuid.MustParse(uri.ID), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// mutate binds the product ID and request body, then runs the stock
// operation with the acting user.
func (h *StockHandler) mutate(c *gin.Context, req any, fn func(ctx context.Context, productID, actorID uuid.UUID) (*stockapp.MovementResponse, error)) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "invalid user identity")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid product id")
		return
	}

	if err := c.ShouldBindJSON(req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := fn(c.Request.Context(), uuid.MustParse(uri.ID), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
