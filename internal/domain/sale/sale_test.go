package sale

import (
	"testing"
	"time"

	"github.com/aquagest/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSale(t *testing.T) *Sale {
	s, err := New("VNT-20260115-0001", uuid.New())
	require.NoError(t, err)
	return s
}

func addTestLine(t *testing.T, s *Sale, name string, quantity int, price float64) *Line {
	line, err := s.AddLine(uuid.New(), "PRD-001", name, quantity, decimal.NewFromFloat(price))
	require.NoError(t, err)
	return line
}

// ============================================
// New Tests
// ============================================

func TestNew(t *testing.T) {
	t.Run("creates direct sale", func(t *testing.T) {
		salespersonID := uuid.New()
		s, err := New("VNT-20260115-0001", salespersonID)
		require.NoError(t, err)

		assert.Equal(t, ChannelDirect, s.Channel)
		assert.Equal(t, salespersonID, s.SalespersonID)
		assert.Nil(t, s.ClientID)
		assert.Nil(t, s.SourceOrderID)
		assert.True(t, s.TotalAmount.IsZero())
		assert.Equal(t, valueobject.PaymentStatusUnpaid, s.PaymentStatus)
		assert.False(t, s.SoldAt.IsZero())
	})

	t.Run("fails with empty number", func(t *testing.T) {
		_, err := New("", uuid.New())
		require.Error(t, err)
	})
}

func TestNewFromOrder(t *testing.T) {
	t.Run("creates order-channel sale with source link", func(t *testing.T) {
		orderID := uuid.New()
		clientID := uuid.New()
		s, err := NewFromOrder("VNT-20260115-0002", orderID, clientID, uuid.New(), "Boutique Mirlande")
		require.NoError(t, err)

		assert.Equal(t, ChannelOrder, s.Channel)
		require.NotNil(t, s.SourceOrderID)
		assert.Equal(t, orderID, *s.SourceOrderID)
		require.NotNil(t, s.ClientID)
		assert.Equal(t, clientID, *s.ClientID)
		assert.Equal(t, "Boutique Mirlande", s.ClientName)
	})

	t.Run("fails without source order", func(t *testing.T) {
		_, err := NewFromOrder("VNT-20260115-0003", uuid.Nil, uuid.New(), uuid.New(), "Boutique")
		require.Error(t, err)
	})
}

// ============================================
// Line Tests
// ============================================

func TestSale_AddLine(t *testing.T) {
	t.Run("adds line and recalculates totals", func(t *testing.T) {
		s := createTestSale(t)
		addTestLine(t, s, "Sachet dlo 20/pak", 10, 25.0)
		addTestLine(t, s, "Glas 5lb", 2, 100.0)

		assert.Equal(t, 2, s.LineCount())
		assert.True(t, s.ProductAmount.Equal(decimal.NewFromInt(450)))
		assert.True(t, s.TotalAmount.Equal(decimal.NewFromInt(450)))
		assert.True(t, s.RemainingAmount.Equal(decimal.NewFromInt(450)))
	})

	t.Run("rejects invalid quantity", func(t *testing.T) {
		s := createTestSale(t)
		_, err := s.AddLine(uuid.New(), "PRD-001", "Sachet dlo", 0, decimal.NewFromInt(25))
		require.Error(t, err)
	})
}

func TestSale_SetDeliveryFee(t *testing.T) {
	s := createTestSale(t)
	addTestLine(t, s, "Sachet dlo", 10, 100.0)

	require.NoError(t, s.SetDeliveryFee(decimal.NewFromInt(150)))
	assert.True(t, s.TotalAmount.Equal(decimal.NewFromInt(1150)))

	err := s.SetDeliveryFee(decimal.NewFromInt(-1))
	require.Error(t, err)
}

// ============================================
// Payment Tests
// ============================================

func TestSale_AddPayment(t *testing.T) {
	actorID := uuid.New()
	now := time.Now()

	t.Run("partial then full payment", func(t *testing.T) {
		s := createTestSale(t)
		addTestLine(t, s, "Sachet dlo", 10, 100.0) // total 1000

		_, err := s.AddPayment(decimal.NewFromInt(300), valueobject.PaymentMethodCash, "", actorID, now)
		require.NoError(t, err)
		assert.Equal(t, valueobject.PaymentStatusPartiallyPaid, s.PaymentStatus)
		assert.True(t, s.RemainingAmount.Equal(decimal.NewFromInt(700)))

		_, err = s.AddPayment(decimal.NewFromInt(700), valueobject.PaymentMethodNatCash, "TX-1432", actorID, now)
		require.NoError(t, err)
		assert.True(t, s.IsFullyPaid())
		assert.True(t, s.RemainingAmount.IsZero())
	})

	t.Run("rejects payment above remaining balance", func(t *testing.T) {
		s := createTestSale(t)
		addTestLine(t, s, "Sachet dlo", 10, 100.0)

		_, err := s.AddPayment(decimal.NewFromInt(1001), valueobject.PaymentMethodCash, "", actorID, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds remaining balance")

		_, err = s.AddPayment(decimal.NewFromInt(600), valueobject.PaymentMethodCash, "", actorID, now)
		require.NoError(t, err)
		_, err = s.AddPayment(decimal.NewFromInt(500), valueobject.PaymentMethodCash, "", actorID, now)
		require.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		s := createTestSale(t)
		addTestLine(t, s, "Sachet dlo", 10, 100.0)

		_, err := s.AddPayment(decimal.Zero, valueobject.PaymentMethodCash, "", actorID, now)
		require.Error(t, err)
	})

	t.Run("derives the payment method from the sub-ledger", func(t *testing.T) {
		s := createTestSale(t)
		addTestLine(t, s, "Sachet dlo", 10, 100.0)
		assert.Equal(t, valueobject.PaymentMethodCash, s.PaymentMethod)

		_, err := s.AddPayment(decimal.NewFromInt(400), valueobject.PaymentMethodMonCash, "TX-0012", actorID, now)
		require.NoError(t, err)
		assert.Equal(t, valueobject.PaymentMethodMonCash, s.PaymentMethod)

		_, err = s.AddPayment(decimal.NewFromInt(600), valueobject.PaymentMethodCash, "", actorID, now)
		require.NoError(t, err)
		assert.Equal(t, valueobject.PaymentMethodMixed, s.PaymentMethod)
	})

	t.Run("paid never exceeds total on converted ledgers", func(t *testing.T) {
		// Conversion copies the order's payment history; an overpaid order
		// must still report paid == total on the sale.
		orderID := uuid.New()
		s, err := NewFromOrder("VNT-20260115-0009", orderID, uuid.New(), uuid.New(), "Boutique")
		require.NoError(t, err)
		addTestLine(t, s, "Sachet dlo", 10, 100.0)

		s.Payments = append(s.Payments, Payment{SaleID: s.ID, Amount: decimal.NewFromInt(1200), Method: valueobject.PaymentMethodCash, PaidAt: now})
		s.refreshPaymentTotals()

		assert.True(t, s.PaidAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, s.RemainingAmount.IsZero())
		assert.True(t, s.IsFullyPaid())
	})
}
