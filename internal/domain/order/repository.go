package order

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the persistence port for order aggregates
type Repository interface {
	// FindByID retrieves an order with its lines and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByNumber retrieves an order by its business number
	FindByNumber(ctx context.Context, number string) (*Order, error)

	// FindAll retrieves orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Order], error)

	// FindByClient retrieves orders for a client
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (*shared.Paginated[Order], error)

	// FindByStatus retrieves orders in a given status
	FindByStatus(ctx context.Context, status Status, filter shared.Filter) (*shared.Paginated[Order], error)

	// FindOverdue retrieves unconverted orders whose due date is before the
	// given time and which still carry a balance
	FindOverdue(ctx context.Context, now time.Time) ([]Order, error)

	// FindDeliveriesForDate retrieves validated and preparing home-delivery
	// orders scheduled for the given day
	FindDeliveriesForDate(ctx context.Context, day time.Time) ([]Order, error)

	// Save persists the aggregate with its lines and payments, enforcing
	// optimistic locking on the order row
	Save(ctx context.Context, o *Order) error

	// MarkConverted flips the converted flag and stamps the sale ID as a
	// direct column update. Returns ErrAlreadyExists when the order was
	// already converted, making conversion idempotent under races.
	MarkConverted(ctx context.Context, orderID, saleID uuid.UUID) error

	// GenerateNumber produces the next order number for the given day,
	// formatted ORD-YYYYMMDD-NNNN
	GenerateNumber(ctx context.Context, day time.Time) (string, error)

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
