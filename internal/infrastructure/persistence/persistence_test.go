package persistence

import (
	"testing"

	"github.com/aquagest/backend/internal/domain/catalog"
	"github.com/aquagest/backend/internal/domain/identity"
	"github.com/aquagest/backend/internal/domain/order"
	"github.com/aquagest/backend/internal/domain/partner"
	"github.com/aquagest/backend/internal/domain/sale"
	"github.com/aquagest/backend/internal/domain/stock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an in-memory sqlite database with the full schema.
// Report queries use Postgres-only SQL and are exercised against a mocked
// connection in report_repository_test.go instead.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&catalog.Product{},
		&partner.Client{},
		&identity.User{},
		&stock.Movement{},
		&order.Order{},
		&order.Line{},
		&order.Payment{},
		&sale.Sale{},
		&sale.Line{},
		&sale.Payment{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}
