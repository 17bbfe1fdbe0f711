package sale

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the persistence port for sale aggregates
type Repository interface {
	// FindByID retrieves a sale with its lines and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByNumber retrieves a sale by its business number
	FindByNumber(ctx context.Context, number string) (*Sale, error)

	// FindBySourceOrder retrieves the sale produced by converting the given
	// order, or ErrNotFound when the order has not been converted
	FindBySourceOrder(ctx context.Context, orderID uuid.UUID) (*Sale, error)

	// FindAll retrieves sales matching the filter
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[Sale], error)

	// FindByPeriod retrieves sales recorded within [from, to)
	FindByPeriod(ctx context.Context, from, to time.Time) ([]Sale, error)

	// Save persists the aggregate with its lines and payments
	Save(ctx context.Context, s *Sale) error

	// GenerateNumber produces the next sale number for the given day,
	// formatted VNT-YYYYMMDD-NNNN
	GenerateNumber(ctx context.Context, day time.Time) (string, error)

	// Count returns the number of sales matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
