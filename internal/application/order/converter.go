package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aquagest/backend/internal/application/notification"
	"github.com/aquagest/backend/internal/domain/order"
	"github.com/aquagest/backend/internal/domain/sale"
	"github.com/aquagest/backend/internal/domain/shared"
)

// Converter turns a fully paid order into a finalized sale. Conversion is
// idempotent: converting the same order twice returns the existing sale
// instead of creating a second one, whichever instance won the race.
type Converter struct {
	txScope  TransactionScope
	notifier notification.Notifier
}

// NewConverter creates a new Converter
func NewConverter(txScope TransactionScope, notifier notification.Notifier) *Converter {
	if notifier == nil {
		notifier = notification.NewNoOpNotifier()
	}
	return &Converter{txScope: txScope, notifier: notifier}
}

// Convert produces the sale for a fully paid order. The sale copies the
// order's lines, delivery fee and full payment history, derives its payment
// method from that history, notes the source order number, and links back
// via SourceOrderID. The order's converted flag and the sale row commit in
// one transaction.
func (c *Converter) Convert(ctx context.Context, ord *order.Order) (*ConversionResponse, error) {
	if ord.Converted {
		return c.existingConversion(ctx, ord)
	}
	if !ord.IsFullyPaid() {
		return nil, shared.NewDomainError("ORDER_NOT_FULLY_PAID", "Only fully paid orders can become sales")
	}
	if ord.Status == order.StatusCancelled {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Cancelled orders cannot become sales")
	}

	var resp *ConversionResponse
	err := c.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.SaleRepo().GenerateNumber(ctx, time.Now())
		if err != nil {
			return err
		}

		s, err := sale.NewFromOrder(number, ord.ID, ord.ClientID, ord.SalespersonID, ord.ClientName)
		if err != nil {
			return err
		}

		for _, line := range ord.Lines {
			if _, err := s.AddLine(line.ProductID, line.ProductCode, line.ProductName, line.Quantity, line.UnitPrice); err != nil {
				return err
			}
		}
		if err := s.SetDeliveryFee(ord.DeliveryFee); err != nil {
			return err
		}
		entries := make([]sale.PaymentEntry, 0, len(ord.Payments))
		for _, p := range ord.Payments {
			entries = append(entries, sale.PaymentEntry{
				Amount:    p.Amount,
				Method:    p.Method,
				Reference: p.Reference,
				ActorID:   p.ActorID,
				PaidAt:    p.PaidAt,
			})
		}
		s.ImportPayments(entries)
		s.Notes = conversionNote(ord)

		if err := repos.SaleRepo().Save(ctx, s); err != nil {
			return err
		}

		// MarkConverted is a guarded column update; losing a concurrent race
		// surfaces as ErrAlreadyExists and rolls this sale back.
		if err := repos.OrderRepo().MarkConverted(ctx, ord.ID, s.ID); err != nil {
			return err
		}

		ord.MarkConverted(s.ID)
		resp = &ConversionResponse{
			OrderID:     ord.ID,
			OrderNumber: ord.Number,
			SaleID:      s.ID,
			SaleNumber:  s.Number,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return c.existingConversion(ctx, ord)
		}
		return nil, err
	}

	c.notifier.OrderConverted(ctx, notification.OrderConvertedEvent{
		OrderID:     resp.OrderID,
		OrderNumber: resp.OrderNumber,
		SaleID:      resp.SaleID,
		SaleNumber:  resp.SaleNumber,
	})

	return resp, nil
}

// conversionNote references the source order number, appended to any note
// already on the order
func conversionNote(ord *order.Order) string {
	note := fmt.Sprintf("Converted from order %s", ord.Number)
	if ord.Notes != "" {
		return ord.Notes + "\n" + note
	}
	return note
}

// existingConversion resolves the sale already produced for the order
func (c *Converter) existingConversion(ctx context.Context, ord *order.Order) (*ConversionResponse, error) {
	var resp *ConversionResponse
	err := c.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		s, err := repos.SaleRepo().FindBySourceOrder(ctx, ord.ID)
		if err != nil {
			return err
		}
		resp = &ConversionResponse{
			OrderID:     ord.ID,
			OrderNumber: ord.Number,
			SaleID:      s.ID,
			SaleNumber:  s.Number,
			AlreadyDone: true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
