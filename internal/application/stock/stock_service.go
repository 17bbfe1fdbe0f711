package stock

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/application/notification"
	orderapp "github.com/aquagest/backend/internal/application/order"
	"github.com/aquagest/backend/internal/domain/catalog"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/aquagest/backend/internal/domain/stock"
	"github.com/google/uuid"
)

// ReceiveStockRequest records incoming stock (production batch, purchase)
type ReceiveStockRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"required,min=1,max=255"`
}

// AdjustStockRequest sets on-hand to a counted quantity
type AdjustStockRequest struct {
	CountedQuantity int    `json:"counted_quantity" binding:"min=0"`
	Reason          string `json:"reason" binding:"required,min=1,max=255"`
}

// RecordLossRequest writes off lost stock
type RecordLossRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"required,min=1,max=255"`
}

// MovementListFilter represents filter options for movement history
type MovementListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MovementResponse represents a stock movement in API responses
type MovementResponse struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	Direction      string     `json:"direction"`
	Quantity       int        `json:"quantity"`
	SignedQuantity int        `json:"signed_quantity"`
	QuantityBefore int        `json:"quantity_before"`
	QuantityAfter  int        `json:"quantity_after"`
	Reason         string     `json:"reason"`
	DocumentRef    string     `json:"document_ref,omitempty"`
	ActorID        *uuid.UUID `json:"actor_id,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// ToMovementResponse converts a movement to its response form
func ToMovementResponse(m *stock.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Direction:      string(m.Direction),
		Quantity:       m.Quantity,
		SignedQuantity: m.SignedQuantity(),
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Reason:         m.Reason,
		DocumentRef:    m.DocumentRef,
		ActorID:        m.ActorID,
		OccurredAt:     m.OccurredAt,
	}
}

// Service handles explicit stock operations: receiving, adjusting after a
// count, and recording losses. Order validation and direct sales drive the
// ledger from their own services.
type Service struct {
	txScope  orderapp.TransactionScope
	ledger   *stock.Ledger
	notifier notification.Notifier
}

// NewService creates a new stock Service
func NewService(txScope orderapp.TransactionScope, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.NewNoOpNotifier()
	}
	return &Service{
		txScope:  txScope,
		ledger:   stock.NewLedger(),
		notifier: notifier,
	}
}

// Receive adds incoming stock to a product
func (s *Service) Receive(ctx context.Context, productID, actorID uuid.UUID, req ReceiveStockRequest) (*MovementResponse, error) {
	return s.apply(ctx, productID, func(p *catalog.Product) (*stock.Movement, error) {
		return s.ledger.Increase(p, req.Quantity, req.Reason, actorID)
	})
}

// Adjust reconciles on-hand stock with a physical count
func (s *Service) Adjust(ctx context.Context, productID, actorID uuid.UUID, req AdjustStockRequest) (*MovementResponse, error) {
	return s.apply(ctx, productID, func(p *catalog.Product) (*stock.Movement, error) {
		return s.ledger.Adjust(p, req.CountedQuantity, req.Reason, actorID)
	})
}

// RecordLoss writes off stock lost to breakage, melt or spoilage
func (s *Service) RecordLoss(ctx context.Context, productID, actorID uuid.UUID, req RecordLossRequest) (*MovementResponse, error) {
	return s.apply(ctx, productID, func(p *catalog.Product) (*stock.Movement, error) {
		return s.ledger.RecordLoss(p, req.Quantity, req.Reason, actorID)
	})
}

// History lists a product's movement records, newest first
func (s *Service) History(ctx context.Context, productID uuid.UUID, filter MovementListFilter) ([]MovementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}

	var movements []stock.Movement
	var total int64
	err := s.txScope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		found, err := repos.MovementRepo().FindByProduct(ctx, productID, shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
		})
		if err != nil {
			return err
		}
		count, err := repos.MovementRepo().CountByProduct(ctx, productID)
		if err != nil {
			return err
		}
		movements = found
		total = count
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	items := make([]MovementResponse, 0, len(movements))
	for idx := range movements {
		items = append(items, ToMovementResponse(&movements[idx]))
	}
	return items, total, nil
}

// apply locks the product row, runs the ledger operation, persists product
// and movement, and fans out a low-stock event when crossed.
func (s *Service) apply(ctx context.Context, productID uuid.UUID, op func(p *catalog.Product) (*stock.Movement, error)) (*MovementResponse, error) {
	var resp *MovementResponse
	var lowStock *notification.LowStockEvent

	err := s.txScope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		movement, err := op(product)
		if err != nil {
			return err
		}

		if err := repos.ProductRepo().Save(ctx, product); err != nil {
			return err
		}
		if err := repos.MovementRepo().Save(ctx, movement); err != nil {
			return err
		}

		if product.IsBelowThreshold() {
			lowStock = &notification.LowStockEvent{
				ProductID:   product.ID,
				ProductCode: product.Code,
				ProductName: product.Name,
				OnHand:      product.OnHand,
				Threshold:   product.ReorderThreshold,
			}
		}

		r := ToMovementResponse(movement)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if lowStock != nil {
		s.notifier.LowStock(ctx, *lowStock)
	}

	return resp, nil
}
