// Package report holds the read-model types backing the reporting endpoints.
// These are projections computed by SQL, not aggregates; nothing here is ever
// written back.
package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RevenueSummary aggregates finalized revenue over a period. Orders that were
// converted into sales are counted once, on the sale side only.
type RevenueSummary struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	SalesCount        int64           `json:"sales_count"`
	SalesRevenue      decimal.Decimal `json:"sales_revenue"`
	OrderPaymentsOpen decimal.Decimal `json:"order_payments_open"` // Paid on not-yet-converted orders
	DeliveryFees      decimal.Decimal `json:"delivery_fees"`
	TotalCollected    decimal.Decimal `json:"total_collected"`
}

// DailyTotal is one day's collected revenue
type DailyTotal struct {
	Day            time.Time       `json:"day"`
	SalesCount     int64           `json:"sales_count"`
	TotalCollected decimal.Decimal `json:"total_collected"`
}

// ClientBalance is the outstanding balance of one client across open orders
type ClientBalance struct {
	ClientID     uuid.UUID       `json:"client_id"`
	ClientName   string          `json:"client_name"`
	Zone         string          `json:"zone"`
	OpenOrders   int64           `json:"open_orders"`
	TotalDue     decimal.Decimal `json:"total_due"`
	OverdueCount int64           `json:"overdue_count"`
}

// StockValuation is one product's on-hand quantity valued at its unit price
type StockValuation struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductCode string          `json:"product_code"`
	ProductName string          `json:"product_name"`
	OnHand      int             `json:"on_hand"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Value       decimal.Decimal `json:"value"`
}

// Repository defines the read-model queries backing reports
type Repository interface {
	// RevenueSummary computes collected revenue within [from, to)
	RevenueSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error)

	// DailyTotals computes per-day collected revenue within [from, to)
	DailyTotals(ctx context.Context, from, to time.Time) ([]DailyTotal, error)

	// OutstandingBalances lists clients with open unconverted orders carrying
	// a balance, sorted by total due descending
	OutstandingBalances(ctx context.Context, now time.Time) ([]ClientBalance, error)

	// StockValuations values current on-hand stock per active product
	StockValuations(ctx context.Context) ([]StockValuation, error)
}
