package persistence

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/domain/report"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository with raw SQL aggregations.
// Converted orders are excluded from the order-side sums; their money lives on
// the sale produced by the conversion.
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// RevenueSummary computes collected revenue within [from, to)
func (r *GormReportRepository) RevenueSummary(ctx context.Context, from, to time.Time) (*report.RevenueSummary, error) {
	summary := &report.RevenueSummary{From: from, To: to}

	var saleRow struct {
		SalesCount   int64
		SalesRevenue string
		DeliveryFees string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*)                         AS sales_count,
		       COALESCE(SUM(paid_amount), 0)   AS sales_revenue,
		       COALESCE(SUM(delivery_fee), 0)  AS delivery_fees
		FROM sales
		WHERE sold_at >= ? AND sold_at < ?`, from, to).
		Scan(&saleRow).Error
	if err != nil {
		return nil, err
	}

	var orderRow struct {
		OrderPaymentsOpen string
	}
	err = r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(p.amount), 0) AS order_payments_open
		FROM order_payments p
		JOIN orders o ON o.id = p.order_id
		WHERE p.paid_at >= ? AND p.paid_at < ?
		  AND o.converted = false
		  AND o.status <> 'cancelled'`, from, to).
		Scan(&orderRow).Error
	if err != nil {
		return nil, err
	}

	summary.SalesCount = saleRow.SalesCount
	if summary.SalesRevenue, err = parseDecimal(saleRow.SalesRevenue); err != nil {
		return nil, err
	}
	if summary.DeliveryFees, err = parseDecimal(saleRow.DeliveryFees); err != nil {
		return nil, err
	}
	if summary.OrderPaymentsOpen, err = parseDecimal(orderRow.OrderPaymentsOpen); err != nil {
		return nil, err
	}
	summary.TotalCollected = summary.SalesRevenue.Add(summary.OrderPaymentsOpen)

	return summary, nil
}

// DailyTotals computes per-day collected revenue within [from, to)
func (r *GormReportRepository) DailyTotals(ctx context.Context, from, to time.Time) ([]report.DailyTotal, error) {
	var rows []struct {
		Day            time.Time
		SalesCount     int64
		TotalCollected string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE_TRUNC('day', sold_at)     AS day,
		       COUNT(*)                        AS sales_count,
		       COALESCE(SUM(paid_amount), 0)  AS total_collected
		FROM sales
		WHERE sold_at >= ? AND sold_at < ?
		GROUP BY DATE_TRUNC('day', sold_at)
		ORDER BY day ASC`, from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make([]report.DailyTotal, 0, len(rows))
	for _, row := range rows {
		collected, err := parseDecimal(row.TotalCollected)
		if err != nil {
			return nil, err
		}
		totals = append(totals, report.DailyTotal{
			Day:            row.Day,
			SalesCount:     row.SalesCount,
			TotalCollected: collected,
		})
	}
	return totals, nil
}

// OutstandingBalances lists clients with open unconverted orders carrying a
// balance, sorted by total due descending
func (r *GormReportRepository) OutstandingBalances(ctx context.Context, now time.Time) ([]report.ClientBalance, error) {
	var rows []struct {
		ClientID     string
		ClientName   string
		Zone         string
		OpenOrders   int64
		TotalDue     string
		OverdueCount int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT o.client_id                                                        AS client_id,
		       c.name                                                             AS client_name,
		       c.zone                                                             AS zone,
		       COUNT(*)                                                           AS open_orders,
		       COALESCE(SUM(o.remaining_amount), 0)                               AS total_due,
		       COUNT(*) FILTER (WHERE o.due_date IS NOT NULL AND o.due_date < ?)  AS overdue_count
		FROM orders o
		JOIN clients c ON c.id = o.client_id
		WHERE o.remaining_amount > 0
		  AND o.converted = false
		  AND o.status NOT IN ('cancelled')
		GROUP BY o.client_id, c.name, c.zone
		ORDER BY total_due DESC`, now).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	balances := make([]report.ClientBalance, 0, len(rows))
	for _, row := range rows {
		clientID, err := parseUUID(row.ClientID)
		if err != nil {
			return nil, err
		}
		due, err := parseDecimal(row.TotalDue)
		if err != nil {
			return nil, err
		}
		balances = append(balances, report.ClientBalance{
			ClientID:     clientID,
			ClientName:   row.ClientName,
			Zone:         row.Zone,
			OpenOrders:   row.OpenOrders,
			TotalDue:     due,
			OverdueCount: row.OverdueCount,
		})
	}
	return balances, nil
}

// StockValuations values current on-hand stock per active product
func (r *GormReportRepository) StockValuations(ctx context.Context) ([]report.StockValuation, error) {
	var rows []struct {
		ProductID   string
		ProductCode string
		ProductName string
		OnHand      int
		UnitPrice   string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT id         AS product_id,
		       code       AS product_code,
		       name       AS product_name,
		       on_hand    AS on_hand,
		       unit_price AS unit_price
		FROM products
		WHERE active = true
		ORDER BY code ASC`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	valuations := make([]report.StockValuation, 0, len(rows))
	for _, row := range rows {
		productID, err := parseUUID(row.ProductID)
		if err != nil {
			return nil, err
		}
		price, err := parseDecimal(row.UnitPrice)
		if err != nil {
			return nil, err
		}
		valuations = append(valuations, report.StockValuation{
			ProductID:   productID,
			ProductCode: row.ProductCode,
			ProductName: row.ProductName,
			OnHand:      row.OnHand,
			UnitPrice:   price,
			Value:       price.Mul(decimalFromInt(row.OnHand)),
		})
	}
	return valuations, nil
}
