package stock

import (
	"context"

	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MovementRepository defines the interface for stock movement persistence.
// Movements are append-only: there is no update or delete.
type MovementRepository interface {
	// Save appends a movement record
	Save(ctx context.Context, movement *Movement) error

	// SaveAll appends multiple movement records
	SaveAll(ctx context.Context, movements []*Movement) error

	// FindByID finds a movement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Movement, error)

	// FindByProduct finds movements for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]Movement, error)

	// FindByDocumentRef finds movements linked to a source document
	FindByDocumentRef(ctx context.Context, documentRef string) ([]Movement, error)

	// CountByProduct counts movements for a product
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
}
