package sale

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/application/notification"
	orderapp "github.com/aquagest/backend/internal/application/order"
	"github.com/aquagest/backend/internal/domain/partner"
	"github.com/aquagest/backend/internal/domain/sale"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/aquagest/backend/internal/domain/shared/valueobject"
	"github.com/aquagest/backend/internal/domain/stock"
	"github.com/google/uuid"
)

// Service handles sale business operations. Converted sales are created by
// the order converter; this service covers direct counter sales and reads.
type Service struct {
	txScope    orderapp.TransactionScope
	clientRepo partner.ClientRepository
	ledger     *stock.Ledger
	notifier   notification.Notifier
}

// NewService creates a new sale Service
func NewService(txScope orderapp.TransactionScope, clientRepo partner.ClientRepository, notifier notification.Notifier) *Service {
	if notifier == nil {
		notifier = notification.NewNoOpNotifier()
	}
	return &Service{
		txScope:    txScope,
		clientRepo: clientRepo,
		ledger:     stock.NewLedger(),
		notifier:   notifier,
	}
}

// CreateDirect records a counter sale. Stock is deducted immediately, per
// line, in the same transaction as the sale itself.
func (s *Service) CreateDirect(ctx context.Context, salespersonID uuid.UUID, req CreateDirectSaleRequest) (*SaleResponse, error) {
	var clientName string
	var clientID uuid.UUID
	if req.ClientID != nil {
		client, err := s.clientRepo.FindByID(ctx, *req.ClientID)
		if err != nil {
			return nil, err
		}
		clientID = client.ID
		clientName = client.Name
	}

	var resp *SaleResponse
	var lowStock []notification.LowStockEvent

	err := s.txScope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		number, err := repos.SaleRepo().GenerateNumber(ctx, time.Now())
		if err != nil {
			return err
		}

		sl, err := sale.New(number, salespersonID)
		if err != nil {
			return err
		}
		if clientID != uuid.Nil {
			sl.SetClient(clientID, clientName)
		}
		sl.Notes = req.Notes

		for _, input := range req.Lines {
			product, err := repos.ProductRepo().FindByIDForUpdate(ctx, input.ProductID)
			if err != nil {
				return err
			}
			if !product.Active {
				return shared.NewDomainError("PRODUCT_INACTIVE", "Cannot sell a deactivated product")
			}

			if _, err := sl.AddLine(product.ID, product.Code, product.Name, input.Quantity, product.UnitPrice); err != nil {
				return err
			}

			movement, err := s.ledger.Decrease(product, input.Quantity, "direct sale", salespersonID)
			if err != nil {
				return err
			}
			movement.WithDocumentRef(number)

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

		for _, input := range req.Payments {
			if _, err := sl.AddPayment(input.Amount, valueobject.PaymentMethod(input.Method), input.Reference, salespersonID, time.Now()); err != nil {
				return err
			}
		}

		if err := repos.SaleRepo().Save(ctx, sl); err != nil {
			return err
		}

		r := ToSaleResponse(sl)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, event := range lowStock {
		s.notifier.LowStock(ctx, event)
	}

	return resp, nil
}

// GetByID retrieves a sale by ID
func (s *Service) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.txScope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		sl, err := repos.SaleRepo().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		r := ToSaleResponse(sl)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetByNumber retrieves a sale by its business number
func (s *Service) GetByNumber(ctx context.Context, number string) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.txScope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		sl, err := repos.SaleRepo().FindByNumber(ctx, number)
		if err != nil {
			return err
		}
		r := ToSaleResponse(sl)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// List retrieves sales with filtering and pagination
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
	if filter.Channel != "" {
		domainFilter.Filters["channel"] = filter.Channel
	}
	if filter.ClientID != nil {
		domainFilter.Filters["client_id"] = *filter.ClientID
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	var page *shared.Paginated[sale.Sale]
	err := s.txScope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		result, err := repos.SaleRepo().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		page = result
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	items := make([]ListItemResponse, 0, len(page.Items))
	for idx := range page.Items {
		items = append(items, ToListItemResponse(&page.Items[idx]))
	}
	return items, page.Total, nil
}

// RecordPayment appends a payment to a sale carrying a balance
func (s *Service) RecordPayment(ctx context.Context, saleID, actorID uuid.UUID, req RecordPaymentRequest) (*SaleResponse, error) {
	var resp *SaleResponse
	err := s.txScope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		sl, err := repos.SaleRepo().FindByID(ctx, saleID)
		if err != nil {
			return err
		}
		if _, err := sl.AddPayment(req.Amount, valueobject.PaymentMethod(req.Method), req.Reference, actorID, time.Now()); err != nil {
			return err
		}
		if err := repos.SaleRepo().Save(ctx, sl); err != nil {
			return err
		}
		r := ToSaleResponse(sl)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
