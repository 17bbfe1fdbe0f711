package order

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/application/notification"
	"github.com/aquagest/backend/internal/domain/order"
	"github.com/aquagest/backend/internal/domain/partner"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/aquagest/backend/internal/domain/shared/valueobject"
	"github.com/aquagest/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryPolicy carries the commercial rates applied to orders. It is built
// from configuration at startup and passed in explicitly.
type DeliveryPolicy struct {
	// HomeDeliveryFeeRate is the fraction of the product amount charged for
	// home delivery, e.g. 0.15
	HomeDeliveryFeeRate decimal.Decimal
	// LatePenaltyRate is the fraction of the remaining balance charged when
	// an order goes past its due date, e.g. 0.015
	LatePenaltyRate decimal.Decimal
}

// Service handles order business operations
type Service struct {
	txScope    TransactionScope
	clientRepo partner.ClientRepository
	ledger     *stock.Ledger
	converter  *Converter
	policy     DeliveryPolicy
	notifier   notification.Notifier
}

// NewService creates a new order Service
func NewService(
	txScope TransactionScope,
	clientRepo partner.ClientRepository,
	converter *Converter,
	policy DeliveryPolicy,
	notifier notification.Notifier,
) *Service {
	if notifier == nil {
		notifier = notification.NewNoOpNotifier()
	}
	return &Service{
		txScope:    txScope,
		clientRepo: clientRepo,
		ledger:     stock.NewLedger(),
		converter:  converter,
		policy:     policy,
		notifier:   notifier,
	}
}

// Create creates a new pending order
func (s *Service) Create(ctx context.Context, salespersonID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if !client.Active {
		return nil, shared.NewDomainError("CLIENT_INACTIVE", "Cannot create an order for a deactivated client")
	}

	var resp *OrderResponse
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.OrderRepo().GenerateNumber(ctx, time.Now())
		if err != nil {
			return err
		}

		ord, err := order.New(number, client.ID, client.Name, salespersonID, order.DeliveryType(req.DeliveryType))
		if err != nil {
			return err
		}
		ord.Notes = req.Notes

		if req.DeliveryDate != nil {
			if err := ord.SetDeliveryDate(*req.DeliveryDate); err != nil {
				return err
			}
		}

		for _, input := range req.Lines {
			if err := s.addLineFromProduct(ctx, repos, ord, input.ProductID, input.Quantity); err != nil {
				return err
			}
		}
		ord.ComputeDeliveryFee(s.policy.HomeDeliveryFeeRate)

		if err := repos.OrderRepo().Save(ctx, ord); err != nil {
			return err
		}

		r := ToOrderResponse(ord, time.Now())
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetByID retrieves an order by ID
func (s *Service) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	ord, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	ord.RefreshPenalty(time.Now(), s.policy.LatePenaltyRate)
	r := ToOrderResponse(ord, time.Now())
	return &r, nil
}

// GetByNumber retrieves an order by its business number
func (s *Service) GetByNumber(ctx context.Context, number string) (*OrderResponse, error) {
	var ord *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByNumber(ctx, number)
		if err != nil {
			return err
		}
		ord = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	ord.RefreshPenalty(time.Now(), s.policy.LatePenaltyRate)
	r := ToOrderResponse(ord, time.Now())
	return &r, nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, filter ListFilter) ([]ListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  map[string]interface{}{},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.DeliveryType != "" {
		domainFilter.Filters["delivery_type"] = filter.DeliveryType
	}
	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = *filter.ClientID
	}
	if filter.Converted != nil {
		domainFilter.Filters["converted"] = *filter.Converted
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	var page *shared.Paginated[order.Order]
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		result, err := repos.OrderRepo().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	items := make([]ListItemResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToListItemResponse(&page.Items[idx], now))
	}
	return items, page.Total, nil
}

// AddLine adds a line to a pending order
func (s *Service) AddLine(ctx context.Context, orderID uuid.UUID, req AddLineRequest) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(repos TransactionalRepositories, ord *order.Order) error {
		return s.addLineFromProduct(ctx, repos, ord, req.ProductID, req.Quantity)
	})
}

// UpdateLine changes the quantity of a pending line
func (s *Service) UpdateLine(ctx context.Context, orderID, lineID uuid.UUID, req UpdateLineRequest) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(_ TransactionalRepositories, ord *order.Order) error {
		return ord.UpdateLineQuantity(lineID, req.Quantity)
	})
}

// RemoveLine removes a line from a pending order
func (s *Service) RemoveLine(ctx context.Context, orderID, lineID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(_ TransactionalRepositories, ord *order.Order) error {
		return ord.RemoveLine(lineID)
	})
}

// ScheduleDelivery sets the delivery date
func (s *Service) ScheduleDelivery(ctx context.Context, orderID uuid.UUID, req ScheduleDeliveryRequest) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(_ TransactionalRepositories, ord *order.Order) error {
		return ord.SetDeliveryDate(req.DeliveryDate)
	})
}

// OverrideDeliveryFee sets a manual delivery fee
func (s *Service) OverrideDeliveryFee(ctx context.Context, orderID uuid.UUID, req OverrideDeliveryFeeRequest) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(_ TransactionalRepositories, ord *order.Order) error {
		return ord.OverrideDeliveryFee(req.DeliveryFee)
	})
}

// Validate transitions a pending order to validated, reserving stock for
// every line inside one transaction. Any line short on stock rolls back the
// deductions already applied and leaves the order pending.
func (s *Service) Validate(ctx context.Context, orderID, actorID uuid.UUID) (*OrderResponse, error) {
	var resp *OrderResponse
	var lowStock []notification.LowStockEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ord, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := ord.EnsureCanValidate(); err != nil {
			return err
		}

		for _, line := range ord.Lines {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}

			movement, err := s.ledger.Decrease(product, line.Quantity, "order validated", actorID)
			if err != nil {
				return err
			}
			movement.WithDocumentRef(ord.Number)

			if err := repos.ProductRepo().Save(ctx, product); err != nil {
				return err
			}
			if err := repos.MovementRepo().Save(ctx, movement); err != nil {
				return err
			}

			if product.IsBelowThreshold() {
				lowStock = append(lowStock, notification.LowStockEvent{
					ProductID:   product.ID,
					ProductCode: product.Code,
					ProductName: product.Name,
					OnHand:      product.OnHand,
					Threshold:   product.ReorderThreshold,
				})
			}
		}

		if err := ord.MarkValidated(); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, ord); err != nil {
			return err
		}

		r := ToOrderResponse(ord, time.Now())
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.OrderValidated(ctx, notification.OrderValidatedEvent{
		OrderID:     resp.ID,
		OrderNumber: resp.Number,
		ClientName:  resp.ClientName,
		TotalAmount: resp.TotalAmount,
	})
	for _, event := range lowStock {
		s.notifier.LowStock(ctx, event)
	}

	return resp, nil
}

// Cancel cancels a pending or validated order. Stock reserved at validation
// is released in the same transaction.
func (s *Service) Cancel(ctx context.Context, orderID, actorID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	var resp *OrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ord, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		wasValidated := ord.Status == order.StatusValidated
		if err := ord.Cancel(req.Reason); err != nil {
			return err
		}

		if wasValidated {
			for _, line := range ord.Lines {
				product, err := repos.ProductRepo().FindByIDForUpdate(ctx, line.ProductID)
				if err != nil {
					return err
				}
				movement, err := s.ledger.Increase(product, line.Quantity, "order cancelled", actorID)
				if err != nil {
					return err
				}
				movement.WithDocumentRef(ord.Number)
				if err := repos.ProductRepo().Save(ctx, product); err != nil {
					return err
				}
				if err := repos.MovementRepo().Save(ctx, movement); err != nil {
					return err
				}
			}
		}

		if err := repos.OrderRepo().Save(ctx, ord); err != nil {
			return err
		}

		r := ToOrderResponse(ord, time.Now())
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// StartPreparing moves a validated order into preparation
func (s *Service) StartPreparing(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(_ TransactionalRepositories, ord *order.Order) error {
		return ord.StartPreparing()
	})
}

// StartDelivery moves a preparing order into delivering. Overdue orders with
// a balance are refused until settled.
func (s *Service) StartDelivery(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	now := time.Now()
	return s.mutate(ctx, orderID, func(_ TransactionalRepositories, ord *order.Order) error {
		ord.RefreshPenalty(now, s.policy.LatePenaltyRate)
		return ord.StartDelivery(now)
	})
}

// MarkDelivered completes the delivery
func (s *Service) MarkDelivered(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	return s.mutate(ctx, orderID, func(_ TransactionalRepositories, ord *order.Order) error {
		return ord.MarkDelivered()
	})
}

// RecordPayment appends a payment to the order's sub-ledger. When the
// payment settles the balance, the order converts into a sale immediately.
func (s *Service) RecordPayment(ctx context.Context, orderID, actorID uuid.UUID, req RecordPaymentRequest) (*OrderResponse, error) {
	var ord *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if _, err := found.AddPayment(req.Amount, valueobject.PaymentMethod(req.Method), req.Reference, actorID); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, found); err != nil {
			return err
		}
		ord = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ord.ShouldConvert() {
		if _, err := s.converter.Convert(ctx, ord); err != nil {
			return nil, err
		}
	}

	r := ToOrderResponse(ord, time.Now())
	return &r, nil
}

// Convert explicitly converts a fully paid order into a sale
func (s *Service) Convert(ctx context.Context, orderID uuid.UUID) (*ConversionResponse, error) {
	ord, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.converter.Convert(ctx, ord)
}

// ListOverdue returns open orders past their due date with a balance,
// penalties refreshed
func (s *Service) ListOverdue(ctx context.Context) ([]ListItemResponse, error) {
	now := time.Now()
	var overdue []order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindOverdue(ctx, now)
		if err != nil {
			return err
		}
		overdue = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	items := make([]ListItemResponse, 0, len(overdue))
	for idx := range overdue {
		overdue[idx].RefreshPenalty(now, s.policy.LatePenaltyRate)
		items = append(items, ToListItemResponse(&overdue[idx], now))
	}
	return items, nil
}

// DeliveriesForDate lists home deliveries scheduled for the given day
func (s *Service) DeliveriesForDate(ctx context.Context, day time.Time) ([]ListItemResponse, error) {
	var orders []order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindDeliveriesForDate(ctx, day)
		if err != nil {
			return err
		}
		orders = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]ListItemResponse, 0, len(orders))
	for idx := range orders {
		items = append(items, ToListItemResponse(&orders[idx], now))
	}
	return items, nil
}

// addLineFromProduct snapshots the product's current price onto a new line
func (s *Service) addLineFromProduct(ctx context.Context, repos TransactionalRepositories, ord *order.Order, productID uuid.UUID, quantity int) error {
	product, err := repos.ProductRepo().FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Active {
		return shared.NewDomainError("PRODUCT_INACTIVE", "Cannot order a deactivated product")
	}
	_, err = ord.AddLine(product.ID, product.Code, product.Name, quantity, product.UnitPrice)
	return err
}

// mutate loads the order, applies fn and saves, all in one transaction
func (s *Service) mutate(ctx context.Context, orderID uuid.UUID, fn func(repos TransactionalRepositories, ord *order.Order) error) (*OrderResponse, error) {
	var resp *OrderResponse
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		ord, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := fn(repos, ord); err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, ord); err != nil {
			return err
		}
		r := ToOrderResponse(ord, time.Now())
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// findOrder loads an order outside a mutating flow
func (s *Service) findOrder(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	var ord *order.Order
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		found, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		ord = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ord, nil
}
