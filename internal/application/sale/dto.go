package sale

import (
	"time"

	"github.com/aquagest/backend/internal/domain/sale"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateDirectSaleRequest records a counter sale. The sale deducts stock
// immediately and may be settled by several payments, possibly of different
// methods.
type CreateDirectSaleRequest struct {
	ClientID *uuid.UUID               `json:"client_id"`
	Lines    []CreateSaleLineInput    `json:"lines" binding:"required,min=1"`
	Payments []CreateSalePaymentInput `json:"payments"`
	Notes    string                   `json:"notes"`
}

// CreateSaleLineInput represents a line in the direct sale request
type CreateSaleLineInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CreateSalePaymentInput represents a payment in the direct sale request
type CreateSalePaymentInput struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=cash moncash natcash transfer check"`
	Reference string          `json:"reference" binding:"max=100"`
}

// RecordPaymentRequest represents a payment against an existing sale
type RecordPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=cash moncash natcash transfer check"`
	Reference string          `json:"reference" binding:"max=100"`
}

// ListFilter represents filter options for sale lists
type ListFilter struct {
	Search    string     `form:"search"`
	ClientID  *uuid.UUID `form:"client_id"`
	Channel   string     `form:"channel" binding:"omitempty,oneof=direct order"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID              uuid.UUID         `json:"id"`
	Number          string            `json:"number"`
	Channel         string            `json:"channel"`
	ClientID        *uuid.UUID        `json:"client_id,omitempty"`
	ClientName      string            `json:"client_name,omitempty"`
	SalespersonID   uuid.UUID         `json:"salesperson_id"`
	SourceOrderID   *uuid.UUID        `json:"source_order_id,omitempty"`
	Lines           []LineResponse    `json:"lines"`
	Payments        []PaymentResponse `json:"payments"`
	ProductAmount   decimal.Decimal   `json:"product_amount"`
	DeliveryFee     decimal.Decimal   `json:"delivery_fee"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	PaidAmount      decimal.Decimal   `json:"paid_amount"`
	RemainingAmount decimal.Decimal   `json:"remaining_amount"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentMethod   string            `json:"payment_method"`
	Notes           string            `json:"notes,omitempty"`
	SoldAt          time.Time         `json:"sold_at"`
	CreatedAt       time.Time         `json:"created_at"`
}

// LineResponse represents a sale line in API responses
type LineResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SubTotal    decimal.Decimal `json:"sub_total"`
}

// PaymentResponse represents a sale payment in API responses
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference,omitempty"`
	PaidAt    time.Time       `json:"paid_at"`
}

// ListItemResponse represents a sale in list responses
type ListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	Number        string          `json:"number"`
	Channel       string          `json:"channel"`
	ClientName    string          `json:"client_name,omitempty"`
	LineCount     int             `json:"line_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentStatus string          `json:"payment_status"`
	SoldAt        time.Time       `json:"sold_at"`
}

// ToSaleResponse converts a sale aggregate to its response form
func ToSaleResponse(s *sale.Sale) SaleResponse {
	lines := make([]LineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
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

	payments := make([]PaymentResponse, 0, len(s.Payments))
	for _, p := range s.Payments {
		payments = append(payments, PaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    p.Method.String(),
			Reference: p.Reference,
			PaidAt:    p.PaidAt,
		})
	}

	return SaleResponse{
		ID:              s.ID,
		Number:          s.Number,
		Channel:         string(s.Channel),
		ClientID:        s.ClientID,
		ClientName:      s.ClientName,
		SalespersonID:   s.SalespersonID,
		SourceOrderID:   s.SourceOrderID,
		Lines:           lines,
		Payments:        payments,
		ProductAmount:   s.ProductAmount,
		DeliveryFee:     s.DeliveryFee,
		TotalAmount:     s.TotalAmount,
		PaidAmount:      s.PaidAmount,
		RemainingAmount: s.RemainingAmount,
		PaymentStatus:   string(s.PaymentStatus),
		PaymentMethod:   s.PaymentMethod.String(),
		Notes:           s.Notes,
		SoldAt:          s.SoldAt,
		CreatedAt:       s.CreatedAt,
	}
}

// ToListItemResponse converts a sale to its list item form
func ToListItemResponse(s *sale.Sale) ListItemResponse {
	return ListItemResponse{
		ID:            s.ID,
		Number:        s.Number,
		Channel:       string(s.Channel),
		ClientName:    s.ClientName,
		LineCount:     s.LineCount(),
		TotalAmount:   s.TotalAmount,
		PaidAmount:    s.PaidAmount,
		PaymentStatus: string(s.PaymentStatus),
		SoldAt:        s.SoldAt,
	}
}
