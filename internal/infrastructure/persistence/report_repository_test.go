package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The report queries use Postgres-only SQL, so they are exercised against a
// mocked connection instead of the in-memory sqlite used elsewhere.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqlDB.Close() })
	return db, mock
}

func TestGormReportRepository_RevenueSummary(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormReportRepository(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM sales`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"sales_count", "sales_revenue", "delivery_fees"}).
			AddRow(3, "4500.00", "300.00"))
	mock.ExpectQuery(`FROM order_payments`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"order_payments_open"}).
			AddRow("1250.00"))

	summary, err := repo.RevenueSummary(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.SalesCount)
	assert.True(t, decimal.NewFromInt(4500).Equal(summary.SalesRevenue))
	assert.True(t, decimal.NewFromInt(300).Equal(summary.DeliveryFees))
	assert.True(t, decimal.NewFromInt(1250).Equal(summary.OrderPaymentsOpen))
	assert.True(t, decimal.NewFromInt(5750).Equal(summary.TotalCollected))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReportRepository_DailyTotals(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormReportRepository(db)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`DATE_TRUNC`).
		WithArgs(from, to).
		WillReturnRows(sqlmock.NewRows([]string{"day", "sales_count", "total_collected"}).
			AddRow(from, 2, "900.00").
			AddRow(from.AddDate(0, 0, 1), 1, "250.00"))

	totals, err := repo.DailyTotals(context.Background(), from, to)

	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, int64(2), totals[0].SalesCount)
	assert.True(t, decimal.NewFromInt(900).Equal(totals[0].TotalCollected))
	assert.True(t, decimal.NewFromInt(250).Equal(totals[1].TotalCollected))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReportRepository_OutstandingBalances(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormReportRepository(db)

	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	clientID := uuid.New()

	mock.ExpectQuery(`FROM orders o`).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows([]string{"client_id", "client_name", "zone", "open_orders", "total_due", "overdue_count"}).
			AddRow(clientID.String(), "Boutique Ti Marie", "Delmas 33", 2, "750.00", 1))

	balances, err := repo.OutstandingBalances(context.Background(), now)

	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, clientID, balances[0].ClientID)
	assert.Equal(t, "Boutique Ti Marie", balances[0].ClientName)
	assert.Equal(t, int64(2), balances[0].OpenOrders)
	assert.True(t, decimal.NewFromInt(750).Equal(balances[0].TotalDue))
	assert.Equal(t, int64(1), balances[0].OverdueCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormReportRepository_StockValuations(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormReportRepository(db)

	productID := uuid.New()

	mock.ExpectQuery(`FROM products`).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "product_code", "product_name", "on_hand", "unit_price"}).
			AddRow(productID.String(), "SACHET-5G", "Sachet d'eau 5 gallons", 80, "25.00"))

	valuations, err := repo.StockValuations(context.Background())

	require.NoError(t, err)
	require.Len(t, valuations, 1)
	assert.Equal(t, productID, valuations[0].ProductID)
	assert.Equal(t, 80, valuations[0].OnHand)
	assert.True(t, decimal.NewFromInt(2000).Equal(valuations[0].Value))
	assert.NoError(t, mock.ExpectationsWereMet())
}
