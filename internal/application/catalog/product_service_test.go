package catalog

import (
	"context"
	"testing"

	"github.com/aquagest/backend/internal/domain/catalog"
	"github.com/aquagest/backend/internal/domain/shared"
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

func newTestProduct(t *testing.T) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("SACHET-5G", "Sachet d'eau 5 gallons", "sachet", decimal.NewFromInt(25), 100)
	require.NoError(t, err)
	return product
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates product with initial stock", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsByCode", ctx, "BLOC-GLACE").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		svc := NewService(repo)
		resp, err := svc.Create(ctx, CreateProductRequest{
			Code:             "BLOC-GLACE",
			Name:             "Bloc de glace",
			Unit:             "bloc",
			UnitPrice:        decimal.NewFromInt(150),
			InitialQuantity:  40,
			ReorderThreshold: 10,
		})

		require.NoError(t, err)
		assert.Equal(t, "BLOC-GLACE", resp.Code)
		assert.Equal(t, 40, resp.OnHand)
		assert.Equal(t, 10, resp.ReorderThreshold)
		assert.True(t, resp.Active)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate code", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsByCode", ctx, "SACHET-5G").Return(true, nil)

		svc := NewService(repo)
		_, err := svc.Create(ctx, CreateProductRequest{
			Code:      "SACHET-5G",
			Name:      "Sachet d'eau",
			Unit:      "sachet",
			UnitPrice: decimal.NewFromInt(25),
		})

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_PRODUCT_CODE", domainErr.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects invalid price", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsByCode", ctx, "GRATIS").Return(false, nil)

		svc := NewService(repo)
		_, err := svc.Create(ctx, CreateProductRequest{
			Code:      "GRATIS",
			Name:      "Produit gratuit",
			Unit:      "pcs",
			UnitPrice: decimal.Zero,
		})
		require.Error(t, err)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("updates only provided fields", func(t *testing.T) {
		product := newTestProduct(t)
		repo := new(MockProductRepository)
		repo.On("FindByID", ctx, product.ID).Return(product, nil)
		repo.On("Save", ctx, product).Return(nil)

		newPrice := decimal.NewFromInt(30)
		svc := NewService(repo)
		resp, err := svc.Update(ctx, product.ID, UpdateProductRequest{UnitPrice: &newPrice})

		require.NoError(t, err)
		assert.True(t, newPrice.Equal(resp.UnitPrice))
		assert.Equal(t, "Sachet d'eau 5 gallons", resp.Name)
		repo.AssertExpectations(t)
	})

	t.Run("returns not found for unknown product", func(t *testing.T) {
		repo := new(MockProductRepository)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		svc := NewService(repo)
		_, err := svc.Update(ctx, id, UpdateProductRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_DeactivateActivate(t *testing.T) {
	ctx := context.Background()
	product := newTestProduct(t)

	repo := new(MockProductRepository)
	repo.On("FindByID", ctx, product.ID).Return(product, nil)
	repo.On("Save", ctx, product).Return(nil)

	svc := NewService(repo)
	require.NoError(t, svc.Deactivate(ctx, product.ID))
	assert.False(t, product.Active)

	require.NoError(t, svc.Activate(ctx, product.ID))
	assert.True(t, product.Active)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	product := newTestProduct(t)

	repo := new(MockProductRepository)
	active := true
	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Page == 1 && f.PageSize == 20 && f.Filters["active"] == true
	})).Return([]catalog.Product{*product}, nil)
	repo.On("Count", ctx, mock.Anything).Return(int64(1), nil)

	svc := NewService(repo)
	items, total, err := svc.List(ctx, ListFilter{Active: &active})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, product.Code, items[0].Code)
}
