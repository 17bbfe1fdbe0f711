package stock

import (
	"time"

	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Direction represents the direction of a stock movement
type Direction string

const (
	// DirectionIn represents stock entering inventory (restock, order cancellation release)
	DirectionIn Direction = "IN"
	// DirectionOut represents stock leaving inventory (order validation, direct sale)
	DirectionOut Direction = "OUT"
	// DirectionAdjustment represents a manual correction after a physical count
	DirectionAdjustment Direction = "ADJUSTMENT"
	// DirectionLoss represents breakage, melt or spoilage write-offs
	DirectionLoss Direction = "LOSS"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is a known value
func (d Direction) IsValid() bool {
	switch d {
	case DirectionIn, DirectionOut, DirectionAdjustment, DirectionLoss:
		return true
	}
	return false
}

// Movement is an immutable record of a single stock change. Once created,
// movements are never updated or deleted; corrections are new movements.
type Movement struct {
	shared.BaseEntity
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_stock_movement_product"`
	Direction      Direction  `gorm:"type:varchar(20);not null;index"`
	Quantity       int        `gorm:"not null"` // Always positive; sign determined by direction
	QuantityBefore int        `gorm:"not null"`
	QuantityAfter  int        `gorm:"not null"`
	Reason         string     `gorm:"type:varchar(255);not null"`
	DocumentRef    string     `gorm:"type:varchar(50);index"` // Order or sale number, if any
	ActorID        *uuid.UUID `gorm:"type:uuid"`
	OccurredAt     time.Time  `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a new stock movement record
func NewMovement(productID uuid.UUID, direction Direction, quantity, before, after int, reason string) (*Movement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Invalid movement direction")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Movement reason is required")
	}

	return &Movement{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      productID,
		Direction:      direction,
		Quantity:       quantity,
		QuantityBefore: before,
		QuantityAfter:  after,
		Reason:         reason,
		OccurredAt:     time.Now(),
	}, nil
}

// WithDocumentRef sets the source document reference
func (m *Movement) WithDocumentRef(ref string) *Movement {
	m.DocumentRef = ref
	return m
}

// WithActorID sets the user who performed the operation
func (m *Movement) WithActorID(actorID uuid.UUID) *Movement {
	m.ActorID = &actorID
	return m
}

// SignedQuantity returns the quantity with sign based on direction
func (m *Movement) SignedQuantity() int {
	if m.Direction == DirectionOut || m.Direction == DirectionLoss {
		return -m.Quantity
	}
	if m.Direction == DirectionAdjustment {
		return m.QuantityAfter - m.QuantityBefore
	}
	return m.Quantity
}
