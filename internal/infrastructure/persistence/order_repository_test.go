package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/aquagest/backend/internal/domain/order"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/aquagest/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T, number string) *order.Order {
	t.Helper()
	o, err := order.New(number, uuid.New(), "Boutique Mirlande", uuid.New(), order.DeliveryTypePickup)
	require.NoError(t, err)
	_, err = o.AddLine(uuid.New(), "SACHET-10", "Sachet d'eau 10oz", 20, decimal.NewFromInt(25))
	require.NoError(t, err)
	return o
}

func TestGormOrderRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, "ORD-20260115-0001")
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260115-0001", found.Number)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, 20, found.Lines[0].Quantity)
	assert.True(t, found.TotalAmount.Equal(decimal.NewFromInt(500)))

	byNumber, err := repo.FindByNumber(ctx, "ORD-20260115-0001")
	require.NoError(t, err)
	assert.Equal(t, o.ID, byNumber.ID)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_SavePersistsPayments(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, "ORD-20260115-0002")
	require.NoError(t, repo.Save(ctx, o))

	_, err := o.AddPayment(decimal.NewFromInt(200), valueobject.PaymentMethodCash, "", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, o))

	// Saving again must not duplicate the payment row
	require.NoError(t, repo.Save(ctx, o))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, found.Payments, 1)
	assert.True(t, found.PaidAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, found.RemainingAmount.Equal(decimal.NewFromInt(300)))
}

func TestGormOrderRepository_SaveDetectsConcurrentModification(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, "ORD-20260115-0003")
	require.NoError(t, repo.Save(ctx, o))

	stale, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)

	fresh, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, fresh))

	err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
}

func TestGormOrderRepository_MarkConverted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	o := newTestOrder(t, "ORD-20260115-0004")
	require.NoError(t, repo.Save(ctx, o))

	saleID := uuid.New()
	require.NoError(t, repo.MarkConverted(ctx, o.ID, saleID))

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, found.Converted)
	require.NotNil(t, found.SaleID)
	assert.Equal(t, saleID, *found.SaleID)

	// Second attempt loses the guard
	err = repo.MarkConverted(ctx, o.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// The original sale ID is untouched
	found, err = repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, saleID, *found.SaleID)

	err = repo.MarkConverted(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormOrderRepository_GenerateNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	number, err := repo.GenerateNumber(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260115-0001", number)

	o := newTestOrder(t, number)
	require.NoError(t, repo.Save(ctx, o))

	number, err = repo.GenerateNumber(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260115-0002", number)

	// Another day restarts the sequence
	number, err = repo.GenerateNumber(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "ORD-20260116-0001", number)
}

func TestGormOrderRepository_FindOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()
	now := time.Now()

	overdue := newTestOrder(t, "ORD-20260110-0001")
	past := now.AddDate(0, 0, -3)
	overdue.DueDate = &past
	require.NoError(t, repo.Save(ctx, overdue))

	paid := newTestOrder(t, "ORD-20260110-0002")
	paid.DueDate = &past
	_, err := paid.AddPayment(decimal.NewFromInt(500), valueobject.PaymentMethodCash, "", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, paid))

	future := newTestOrder(t, "ORD-20260110-0003")
	upcoming := now.AddDate(0, 0, 3)
	future.DueDate = &upcoming
	require.NoError(t, repo.Save(ctx, future))

	results, err := repo.FindOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ORD-20260110-0001", results[0].Number)
}

func TestGormOrderRepository_FindByStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormOrderRepository(db)
	ctx := context.Background()

	pending := newTestOrder(t, "ORD-20260112-0001")
	require.NoError(t, repo.Save(ctx, pending))

	validated := newTestOrder(t, "ORD-20260112-0002")
	require.NoError(t, validated.MarkValidated())
	require.NoError(t, repo.Save(ctx, validated))

	page, err := repo.FindByStatus(ctx, order.StatusPending, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ORD-20260112-0001", page.Items[0].Number)
	assert.Equal(t, int64(1), page.Total)
}
