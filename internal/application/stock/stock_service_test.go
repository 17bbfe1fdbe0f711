package stock

import (
	"context"
	"testing"

	"github.com/aquagest/backend/internal/application/notification"
	orderapp "github.com/aquagest/backend/internal/application/order"
	"github.com/aquagest/backend/internal/domain/catalog"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/aquagest/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBelowThreshold(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockMovementRepository is a mock implementation of stock.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Save(ctx context.Context, movement *stock.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) SaveAll(ctx context.Context, movements []*stock.Movement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.Movement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]stock.Movement, error) {
	args := m.Called(ctx, productID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindByDocumentRef(ctx context.Context, documentRef string) ([]stock.Movement, error) {
	args := m.Called(ctx, documentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.Movement), args.Error(1)
}

func (m *MockMovementRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(int64), args.Error(1)
}

// RecordingNotifier captures low-stock events for assertions
type RecordingNotifier struct {
	notification.NoOpNotifier
	lowStock []notification.LowStockEvent
}

func (r *RecordingNotifier) LowStock(_ context.Context, event notification.LowStockEvent) {
	r.lowStock = append(r.lowStock, event)
}

func newTestProduct(t *testing.T, onHand int) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("SACHET-5G", "Sachet d'eau 5 gallons", "sachet", decimal.NewFromInt(25), onHand)
	require.NoError(t, err)
	require.NoError(t, product.SetReorderThreshold(10))
	return product
}

func newService(productRepo *MockProductRepository, movementRepo *MockMovementRepository, notifier notification.Notifier) *Service {
	txScope := orderapp.NewNoOpTransactionScope(nil, productRepo, movementRepo, nil)
	return NewService(txScope, notifier)
}

func TestService_Receive(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	product := newTestProduct(t, 50)
	productRepo := new(MockProductRepository)
	movementRepo := new(MockMovementRepository)
	productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
	productRepo.On("Save", ctx, product).Return(nil)
	movementRepo.On("Save", ctx, mock.AnythingOfType("*stock.Movement")).Return(nil)

	svc := newService(productRepo, movementRepo, nil)
	resp, err := svc.Receive(ctx, product.ID, actorID, ReceiveStockRequest{Quantity: 30, Reason: "livraison fournisseur"})

	require.NoError(t, err)
	assert.Equal(t, 80, product.OnHand)
	assert.Equal(t, "IN", resp.Direction)
	assert.Equal(t, 30, resp.Quantity)
	assert.Equal(t, 50, resp.QuantityBefore)
	assert.Equal(t, 80, resp.QuantityAfter)
	productRepo.AssertExpectations(t)
	movementRepo.AssertExpectations(t)
}

func TestService_Adjust(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("records the difference against the physical count", func(t *testing.T) {
		product := newTestProduct(t, 50)
		productRepo := new(MockProductRepository)
		movementRepo := new(MockMovementRepository)
		productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)
		movementRepo.On("Save", ctx, mock.AnythingOfType("*stock.Movement")).Return(nil)

		svc := newService(productRepo, movementRepo, nil)
		resp, err := svc.Adjust(ctx, product.ID, actorID, AdjustStockRequest{CountedQuantity: 45, Reason: "inventaire mensuel"})

		require.NoError(t, err)
		assert.Equal(t, 45, product.OnHand)
		assert.Equal(t, "ADJUSTMENT", resp.Direction)
		assert.Equal(t, 5, resp.Quantity)
		assert.Equal(t, -5, resp.SignedQuantity)
	})

	t.Run("matching count is rejected as a no-op", func(t *testing.T) {
		product := newTestProduct(t, 50)
		productRepo := new(MockProductRepository)
		movementRepo := new(MockMovementRepository)
		productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)

		svc := newService(productRepo, movementRepo, nil)
		_, err := svc.Adjust(ctx, product.ID, actorID, AdjustStockRequest{CountedQuantity: 50, Reason: "inventaire"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_CHANGE", domainErr.Code)
		productRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestService_RecordLoss(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New()

	t.Run("emits a low stock event when the threshold is crossed", func(t *testing.T) {
		product := newTestProduct(t, 12)
		productRepo := new(MockProductRepository)
		movementRepo := new(MockMovementRepository)
		productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)
		productRepo.On("Save", ctx, product).Return(nil)
		movementRepo.On("Save", ctx, mock.AnythingOfType("*stock.Movement")).Return(nil)

		notifier := &RecordingNotifier{}
		svc := newService(productRepo, movementRepo, notifier)
		_, err := svc.RecordLoss(ctx, product.ID, actorID, RecordLossRequest{Quantity: 4, Reason: "fonte pendant coupure"})

		require.NoError(t, err)
		assert.Equal(t, 8, product.OnHand)
		require.Len(t, notifier.lowStock, 1)
		assert.Equal(t, product.ID, notifier.lowStock[0].ProductID)
		assert.Equal(t, 8, notifier.lowStock[0].OnHand)
	})

	t.Run("cannot write off more than on hand", func(t *testing.T) {
		product := newTestProduct(t, 3)
		productRepo := new(MockProductRepository)
		movementRepo := new(MockMovementRepository)
		productRepo.On("FindByIDForUpdate", ctx, product.ID).Return(product, nil)

		svc := newService(productRepo, movementRepo, nil)
		_, err := svc.RecordLoss(ctx, product.ID, actorID, RecordLossRequest{Quantity: 5, Reason: "casse"})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	})
}

func TestService_History(t *testing.T) {
	ctx := context.Background()
	product := newTestProduct(t, 50)

	movement, err := stock.NewMovement(product.ID, stock.DirectionIn, 20, 30, 50, "livraison")
	require.NoError(t, err)

	productRepo := new(MockProductRepository)
	movementRepo := new(MockMovementRepository)
	movementRepo.On("FindByProduct", ctx, product.ID, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 50
	})).Return([]stock.Movement{*movement}, nil)
	movementRepo.On("CountByProduct", ctx, product.ID).Return(int64(1), nil)

	svc := newService(productRepo, movementRepo, nil)
	items, total, err := svc.History(ctx, product.ID, MovementListFilter{})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, 20, items[0].Quantity)
	assert.Equal(t, "IN", items[0].Direction)
}
