package order

import (
	"time"

	"github.com/aquagest/backend/internal/domain/order"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Requests ====================

// CreateOrderRequest represents a request to create an order
type CreateOrderRequest struct {
	ClientID     uuid.UUID              `json:"client_id" binding:"required"`
	DeliveryType string                 `json:"delivery_type" binding:"required,oneof=pickup home"`
	DeliveryDate *time.Time             `json:"delivery_date"`
	Lines        []CreateOrderLineInput `json:"lines"`
	Notes        string                 `json:"notes"`
}

// CreateOrderLineInput represents a line in the create order request.
// The unit price is snapshotted from the product; clients cannot set it.
type CreateOrderLineInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// AddLineRequest represents a request to add a line to a pending order
type AddLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateLineRequest represents a request to change a pending line's quantity
type UpdateLineRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// ScheduleDeliveryRequest represents a request to set the delivery date
type ScheduleDeliveryRequest struct {
	DeliveryDate time.Time `json:"delivery_date" binding:"required"`
}

// OverrideDeliveryFeeRequest represents a manual delivery fee override
type OverrideDeliveryFeeRequest struct {
	DeliveryFee decimal.Decimal `json:"delivery_fee" binding:"required"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=255"`
}

// RecordPaymentRequest represents a payment against an order
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=cash moncash natcash transfer check"`
	Reference string          `json:"reference" binding:"max=100"`
}

// ListFilter represents filter options for order lists
type ListFilter struct {
	Search       string     `form:"search"`
	ClientID     *uuid.UUID `form:"client_id"`
	Status       string     `form:"status" binding:"omitempty,oneof=pending validated preparing delivering delivered cancelled"`
	DeliveryType string     `form:"delivery_type" binding:"omitempty,oneof=pickup home"`
	Converted    *bool      `form:"converted"`
	StartDate    *time.Time `form:"start_date"`
	EndDate      *time.Time `form:"end_date"`
	Page         int        `form:"page" binding:"omitempty,min=1"`
	PageSize     int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Responses ====================

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID         `json:"id"`
	Number          string            `json:"number"`
	ClientID        uuid.UUID         `json:"client_id"`
	ClientName      string            `json:"client_name"`
	SalespersonID   uuid.UUID         `json:"salesperson_id"`
	DeliveryType    string            `json:"delivery_type"`
	Status          string            `json:"status"`
	Lines           []LineResponse    `json:"lines"`
	Payments        []PaymentResponse `json:"payments"`
	ProductAmount   decimal.Decimal   `json:"product_amount"`
	DeliveryFee     decimal.Decimal   `json:"delivery_fee"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	PaidAmount      decimal.Decimal   `json:"paid_amount"`
	RemainingAmount decimal.Decimal   `json:"remaining_amount"`
	PaymentStatus   string            `json:"payment_status"`
	Converted       bool              `json:"converted"`
	SaleID          *uuid.UUID        `json:"sale_id,omitempty"`
	DeliveryDate    *time.Time        `json:"delivery_date,omitempty"`
	DueDate         *time.Time        `json:"due_date,omitempty"`
	PenaltyAmount   decimal.Decimal   `json:"penalty_amount"`
	Overdue         bool              `json:"overdue"`
	Notes           string            `json:"notes,omitempty"`
	ValidatedAt     *time.Time        `json:"validated_at,omitempty"`
	DeliveredAt     *time.Time        `json:"delivered_at,omitempty"`
	CancelledAt     *time.Time        `json:"cancelled_at,omitempty"`
	CancelReason    string            `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Version         int               `json:"version"`
}

// LineResponse represents an order line in API responses
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SubTotal    decimal.Decimal `json:"sub_total"`
}

// PaymentResponse represents a payment record in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

// ListItemResponse represents an order in list responses (less detail)
type ListItemResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	ClientID        uuid.UUID       `json:"client_id"`
	ClientName      string          `json:"client_name"`
	DeliveryType    string          `json:"delivery_type"`
	Status          string          `json:"status"`
	LineCount       int             `json:"line_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	PaymentStatus   string          `json:"payment_status"`
	Converted       bool            `json:"converted"`
	DeliveryDate    *time.Time      `json:"delivery_date,omitempty"`
	Overdue         bool            `json:"overdue"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ConversionResponse reports the outcome of an order conversion
type ConversionResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	SaleID      uuid.UUID `json:"sale_id"`
	SaleNumber  string    `json:"sale_number"`
	AlreadyDone bool      `json:"already_done"` // True when the order was converted earlier
}

// ToOrderResponse converts an order aggregate to its response form
func ToOrderResponse(o *order.Order, now time.Time) OrderResponse {
	lines := make([]LineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, LineResponse{
			ID:          l.ID,
			ProductID:   l.ProductID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			SubTotal:    l.SubTotal,
		})
	}

	payments := make([]PaymentResponse, 0, len(o.Payments))
	for _, p := range o.Payments {
		payments = append(payments, PaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    p.Method.String(),
			Reference: p.Reference,
			PaidAt:    p.PaidAt,
		})
	}

	return OrderResponse{
		ID:              o.ID,
		Number:          o.Number,
		ClientID:        o.ClientID,
		ClientName:      o.ClientName,
		SalespersonID:   o.SalespersonID,
		DeliveryType:    string(o.DeliveryType),
		Status:          o.Status.String(),
		Lines:           lines,
		Payments:        payments,
		ProductAmount:   o.ProductAmount,
		DeliveryFee:     o.DeliveryFee,
		TotalAmount:     o.TotalAmount,
		PaidAmount:      o.PaidAmount,
		RemainingAmount: o.RemainingAmount,
		PaymentStatus:   string(o.PaymentStatus),
		Converted:       o.Converted,
		SaleID:          o.SaleID,
		DeliveryDate:    o.DeliveryDate,
		DueDate:         o.DueDate,
		PenaltyAmount:   o.PenaltyAmount,
		Overdue:         o.IsOverdue(now),
		Notes:           o.Notes,
		ValidatedAt:     o.ValidatedAt,
		DeliveredAt:     o.DeliveredAt,
		CancelledAt:     o.CancelledAt,
		CancelReason:    o.CancelReason,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.GetVersion(),
	}
}

// ToListItemResponse converts an order to its list item form
func ToListItemResponse(o *order.Order, now time.Time) ListItemResponse {
	return ListItemResponse{
		ID:              o.ID,
		Number:          o.Number,
		ClientID:        o.ClientID,
		ClientName:      o.ClientName,
		DeliveryType:    string(o.DeliveryType),
		Status:          o.Status.String(),
		LineCount:       o.LineCount(),
		TotalAmount:     o.TotalAmount,
		RemainingAmount: o.RemainingAmount,
		PaymentStatus:   string(o.PaymentStatus),
		Converted:       o.Converted,
		DeliveryDate:    o.DeliveryDate,
		Overdue:         o.IsOverdue(now),
		CreatedAt:       o.CreatedAt,
	}
}
