package stock

import (
	"fmt"
	"time"

	"github.com/aquagest/backend/internal/domain/catalog"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Ledger mutates product on-hand quantities and produces the corresponding
// immutable movement record for every change. Callers are expected to run
// ledger operations inside a transaction that holds a row lock on the product
// so concurrent mutations on the same product serialize.
type Ledger struct{}

// NewLedger creates a new stock ledger
func NewLedger() *Ledger {
	return &Ledger{}
}

// Decrease removes quantity from the product's on-hand stock.
// Fails with INSUFFICIENT_STOCK if the product cannot cover the quantity,
// leaving on-hand unchanged.
func (l *Ledger) Decrease(product *catalog.Product, quantity int, reason string, actorID uuid.UUID) (*Movement, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !product.CanFulfill(quantity) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Insufficient stock for product %s: requested %d, on hand %d", product.Code, quantity, product.OnHand))
	}

	before := product.OnHand
	product.OnHand -= quantity
	product.UpdatedAt = time.Now()
	product.IncrementVersion()

	movement, err := NewMovement(product.ID, DirectionOut, quantity, before, product.OnHand, reason)
	if err != nil {
		return nil, err
	}
	if actorID != uuid.Nil {
		movement.WithActorID(actorID)
	}
	return movement, nil
}

// Increase adds quantity to the product's on-hand stock
func (l *Ledger) Increase(product *catalog.Product, quantity int, reason string, actorID uuid.UUID) (*Movement, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	before := product.OnHand
	product.OnHand += quantity
	product.UpdatedAt = time.Now()
	product.IncrementVersion()

	movement, err := NewMovement(product.ID, DirectionIn, quantity, before, product.OnHand, reason)
	if err != nil {
		return nil, err
	}
	if actorID != uuid.Nil {
		movement.WithActorID(actorID)
	}
	return movement, nil
}

// Adjust sets on-hand to the counted quantity after a physical inventory
func (l *Ledger) Adjust(product *catalog.Product, counted int, reason string, actorID uuid.UUID) (*Movement, error) {
	if counted < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Counted quantity cannot be negative")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}

	before := product.OnHand
	diff := counted - before
	if diff == 0 {
		return nil, shared.NewDomainError("NO_CHANGE", "Counted quantity matches on-hand quantity")
	}

	product.OnHand = counted
	product.UpdatedAt = time.Now()
	product.IncrementVersion()

	qty := diff
	if qty < 0 {
		qty = -qty
	}
	movement, err := NewMovement(product.ID, DirectionAdjustment, qty, before, product.OnHand, reason)
	if err != nil {
		return nil, err
	}
	if actorID != uuid.Nil {
		movement.WithActorID(actorID)
	}
	return movement, nil
}

// RecordLoss writes off quantity lost to breakage, melt or spoilage
func (l *Ledger) RecordLoss(product *catalog.Product, quantity int, reason string, actorID uuid.UUID) (*Movement, error) {
	if quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !product.CanFulfill(quantity) {
		return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
			fmt.Sprintf("Cannot record loss of %d for product %s: on hand %d", quantity, product.Code, product.OnHand))
	}

	before := product.OnHand
	product.OnHand -= quantity
	product.UpdatedAt = time.Now()
	product.IncrementVersion()

	movement, err := NewMovement(product.ID, DirectionLoss, quantity, before, product.OnHand, reason)
	if err != nil {
		return nil, err
	}
	if actorID != uuid.Nil {
		movement.WithActorID(actorID)
	}
	return movement, nil
}
