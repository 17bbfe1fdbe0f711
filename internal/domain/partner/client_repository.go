package partner

import (
	"context"

	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindAll finds clients with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Client, error)

	// FindByZone finds active clients in a delivery zone
	FindByZone(ctx context.Context, zone string, filter shared.Filter) ([]Client, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// Count counts clients matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
