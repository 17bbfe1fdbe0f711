package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/aquagest/backend/internal/domain/sale"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/aquagest/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSale(t *testing.T, number string) *sale.Sale {
	t.Helper()
	s, err := sale.New(number, uuid.New())
	require.NoError(t, err)
	_, err = s.AddLine(uuid.New(), "GALLON-5", "Gallon d'eau 5gal", 4, decimal.NewFromInt(250))
	require.NoError(t, err)
	return s
}

func TestGormSaleRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	s := newTestSale(t, "VNT-20260115-0001")
	_, err := s.AddPayment(decimal.NewFromInt(1000), valueobject.PaymentMethodCash, "", uuid.Nil, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	found, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "VNT-20260115-0001", found.Number)
	require.Len(t, found.Lines, 1)
	require.Len(t, found.Payments, 1)
	assert.True(t, found.PaidAmount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, valueobject.PaymentStatusFullyPaid, found.PaymentStatus)

	byNumber, err := repo.FindByNumber(ctx, "VNT-20260115-0001")
	require.NoError(t, err)
	assert.Equal(t, s.ID, byNumber.ID)
}

func TestGormSaleRepository_FindBySourceOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	orderID := uuid.New()
	s, err := sale.NewFromOrder("VNT-20260115-0002", orderID, uuid.New(), uuid.New(), "Depot Kenscoff")
	require.NoError(t, err)
	_, err = s.AddLine(uuid.New(), "BLOC-1", "Bloc de glace", 2, decimal.NewFromInt(150))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, s))

	found, err := repo.FindBySourceOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)
	assert.Equal(t, sale.ChannelOrder, found.Channel)

	_, err = repo.FindBySourceOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSaleRepository_FindByPeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	inside := newTestSale(t, "VNT-20260110-0001")
	inside.SoldAt = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, inside))

	outside := newTestSale(t, "VNT-20260120-0001")
	outside.SoldAt = time.Date(2026, 1, 20, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, outside))

	from := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC)
	sales, err := repo.FindByPeriod(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "VNT-20260110-0001", sales[0].Number)
}

func TestGormSaleRepository_GenerateNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)

	number, err := repo.GenerateNumber(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "VNT-20260115-0001", number)

	s := newTestSale(t, number)
	require.NoError(t, repo.Save(ctx, s))

	number, err = repo.GenerateNumber(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "VNT-20260115-0002", number)
}
