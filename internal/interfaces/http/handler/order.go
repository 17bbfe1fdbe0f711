package handler

import (
	"context"
	"time"

	orderapp "github.com/aquagest/backend/internal/application/order"
	"github.com/aquagest/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OrderHandler exposes the order lifecycle over HTTP.
type OrderHandler struct {
	BaseHandler
	service *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *orderapp.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "invalid user identity")
		return
	}

	var req orderapp.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Create(c.Request.Context(), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	resp, err := h.service.GetByID(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber handles GET /api/v1/orders/number/:number
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "order number is required")
		return
	}

	resp, err := h.service.GetByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter orderapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListOverdue handles GET /api/v1/orders/overdue
func (h *OrderHandler) ListOverdue(c *gin.Context) {
	items, err := h.service.ListOverdue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// Deliveries handles GET /api/v1/orders/deliveries. The date query parameter
// defaults to today when absent.
func (h *OrderHandler) Deliveries(c *gin.Context) {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			h.BadRequest(c, "date must be formatted as YYYY-MM-DD")
			return
		}
		day = parsed
	}

	items, err := h.service.DeliveriesForDate(c.Request.Context(), day)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// AddLine handles POST /api/v1/orders/:id/lines
func (h *OrderHandler) AddLine(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req orderapp.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.AddLine(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateLine handles PUT /api/v1/orders/:id/lines/:lineId
func (h *OrderHandler) UpdateLine(c *gin.Context) {
	orderID, lineID, ok := h.bindOrderLineIDs(c)
	if !ok {
		return
	}

	var req orderapp.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdateLine(c.Request.Context(), orderID, lineID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveLine handles DELETE /api/v1/orders/:id/lines/:lineId
func (h *OrderHandler) RemoveLine(c *gin.Context) {
	orderID, lineID, ok := h.bindOrderLineIDs(c)
	if !ok {
		return
	}

	resp, err := h.service.RemoveLine(c.Request.Context(), orderID, lineID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ScheduleDelivery handles PUT /api/v1/orders/:id/delivery
func (h *OrderHandler) ScheduleDelivery(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req orderapp.ScheduleDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.ScheduleDelivery(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// OverrideDeliveryFee handles PUT /api/v1/orders/:id/delivery-fee
func (h *OrderHandler) OverrideDeliveryFee(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req orderapp.OverrideDeliveryFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.OverrideDeliveryFee(c.Request.Context(), uuid.MustParse(uri.ID), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Validate handles POST /api/v1/orders/:id/validate
func (h *OrderHandler) Validate(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "invalid user identity")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	resp, err := h.service.Validate(c.Request.Context(), uuid.MustParse(uri.ID), actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// StartPreparing handles POST /api/v1/orders/:id/prepare
func (h *OrderHandler) StartPreparing(c *gin.Context) {
	h.transition(c, h.service.StartPreparing)
}

// StartDelivery handles POST /api/v1/orders/:id/deliver
func (h *OrderHandler) StartDelivery(c *gin.Context) {
	h.transition(c, h.service.StartDelivery)
}

// MarkDelivered handles POST /api/v1/orders/:id/delivered
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	h.transition(c, h.service.MarkDelivered)
}

// Cancel handles POST /api/v1/orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "invalid user identity")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req orderapp.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.Cancel(c.Request.Context(), uuid.MustParse(uri.ID), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RecordPayment handles POST /api/v1/orders/:id/payments
func (h *OrderHandler) RecordPayment(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.Unauthorized(c, "invalid user identity")
		return
	}

	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	var req orderapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.RecordPayment(c.Request.Context(), uuid.MustParse(uri.ID), actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Convert handles POST /api/v1/orders/:id/convert
func (h *OrderHandler) Convert(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	resp, err := h.service.Convert(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.AlreadyDone {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// transition serves the fulfilment transitions that only need the order ID.
func (h *OrderHandler) transition(c *gin.Context, fn func(ctx context.Context, orderID uuid.UUID) (*orderapp.OrderResponse, error)) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BadRequest(c, "invalid order id")
		return
	}

	resp, err := fn(c.Request.Context(), uuid.MustParse(uri.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// bindOrderLineIDs parses the order and line IDs from the URI.
func (h *OrderHandler) bindOrderLineIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid order id")
		return uuid.Nil, uuid.Nil, false
	}
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		h.BadRequest(c, "invalid line id")
		return uuid.Nil, uuid.Nil, false
	}
	return orderID, lineID, true
}
