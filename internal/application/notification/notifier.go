// Package notification defines the fire-and-forget notification contract.
// Implementations must never fail the calling workflow: delivery is
// best-effort and errors are swallowed after logging.
package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderValidatedEvent is emitted when an order passes validation
type OrderValidatedEvent struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	ClientName  string          `json:"client_name"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// OrderConvertedEvent is emitted when a fully paid order becomes a sale
type OrderConvertedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	SaleID      uuid.UUID `json:"sale_id"`
	SaleNumber  string    `json:"sale_number"`
}

// LowStockEvent is emitted when a stock movement takes a product to or below
// its reorder threshold
type LowStockEvent struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	OnHand      int       `json:"on_hand"`
	Threshold   int       `json:"threshold"`
}

// Notifier fans business events out to interested users. Implementations are
// fire-and-forget: they log failures and return normally.
type Notifier interface {
	OrderValidated(ctx context.Context, event OrderValidatedEvent)
	OrderConverted(ctx context.Context, event OrderConvertedEvent)
	LowStock(ctx context.Context, event LowStockEvent)
}

// NoOpNotifier discards every event. Used in tests and as a default.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a NoOpNotifier
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// OrderValidated discards the event
func (n *NoOpNotifier) OrderValidated(_ context.Context, _ OrderValidatedEvent) {}

// OrderConverted discards the event
func (n *NoOpNotifier) OrderConverted(_ context.Context, _ OrderConvertedEvent) {}

// LowStock discards the event
func (n *NoOpNotifier) LowStock(_ context.Context, _ LowStockEvent) {}

var _ Notifier = (*NoOpNotifier)(nil)
