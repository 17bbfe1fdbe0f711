package order

import (
	"context"

	"github.com/aquagest/backend/internal/domain/catalog"
	"github.com/aquagest/backend/internal/domain/order"
	"github.com/aquagest/backend/internal/domain/sale"
	"github.com/aquagest/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories the
// order workflows touch. When a function executes within a scope, all
// repository operations share one database transaction and commit or roll
// back atomically.
//
// Validation depends on this: stock is reserved per line between
// EnsureCanValidate and MarkValidated, so an INSUFFICIENT_STOCK failure on
// any line must undo the deductions already applied for earlier lines.
// Conversion depends on it too: sale creation and the converted-flag update
// must land together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// OrderRepo returns the order repository scoped to the current transaction
	OrderRepo() order.Repository
	// ProductRepo returns the product repository scoped to the current transaction
	ProductRepo() catalog.ProductRepository
	// MovementRepo returns the stock movement repository scoped to the current transaction
	MovementRepo() stock.MovementRepository
	// SaleRepo returns the sale repository scoped to the current transaction
	SaleRepo() sale.Repository
}

// NoOpTransactionScope runs the function without a real transaction.
// Useful in tests.
type NoOpTransactionScope struct {
	orderRepo    order.Repository
	productRepo  catalog.ProductRepository
	movementRepo stock.MovementRepository
	saleRepo     sale.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	orderRepo order.Repository,
	productRepo catalog.ProductRepository,
	movementRepo stock.MovementRepository,
	saleRepo sale.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		saleRepo:     saleRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.Repository {
	return s.orderRepo
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.productRepo
}

// MovementRepo returns the stock movement repository
func (s *NoOpTransactionScope) MovementRepo() stock.MovementRepository {
	return s.movementRepo
}

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() sale.Repository {
	return s.saleRepo
}

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
