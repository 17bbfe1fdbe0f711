package catalog

import (
	"context"
	"time"

	"github.com/aquagest/backend/internal/domain/catalog"
	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Code             string          `json:"code" binding:"required,min=1,max=50"`
	Name             string          `json:"name" binding:"required,min=1,max=200"`
	Description      string          `json:"description"`
	Unit             string          `json:"unit" binding:"required,min=1,max=20"`
	UnitPrice        decimal.Decimal `json:"unit_price" binding:"required"`
	InitialQuantity  int             `json:"initial_quantity" binding:"min=0"`
	ReorderThreshold int             `json:"reorder_threshold" binding:"min=0"`
}

// UpdateProductRequest represents a request to update a product
type UpdateProductRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description      *string          `json:"description"`
	UnitPrice        *decimal.Decimal `json:"unit_price"`
	ReorderThreshold *int             `json:"reorder_threshold" binding:"omitempty,min=0"`
}

// ListFilter represents filter options for product lists
type ListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Unit             string          `json:"unit"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	OnHand           int             `json:"on_hand"`
	ReorderThreshold int             `json:"reorder_threshold"`
	InitialQuantity  int             `json:"initial_quantity"`
	BelowThreshold   bool            `json:"below_threshold"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

// ToProductResponse converts a product to its response form
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Code:             p.Code,
		Name:             p.Name,
		Description:      p.Description,
		Unit:             p.Unit,
		UnitPrice:        p.UnitPrice,
		OnHand:           p.OnHand,
		ReorderThreshold: p.ReorderThreshold,
		InitialQuantity:  p.InitialQuantity,
		BelowThreshold:   p.IsBelowThreshold(),
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.GetVersion(),
	}
}

// Service handles product catalog operations
type Service struct {
	productRepo catalog.ProductRepository
}

// NewService creates a new catalog Service
func NewService(productRepo catalog.ProductRepository) *Service {
	return &Service{productRepo: productRepo}
}

// Create creates a new product
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	exists, err := s.productRepo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_PRODUCT_CODE", "Product code is already taken")
	}

	product, err := catalog.NewProduct(req.Code, req.Name, req.Unit, req.UnitPrice, req.InitialQuantity)
	if err != nil {
		return nil, err
	}
	product.Description = req.Description
	if req.ReorderThreshold > 0 {
		if err := product.SetReorderThreshold(req.ReorderThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByCode retrieves a product by its code
func (s *Service) GetByCode(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves products with filtering and pagination
func (s *Service) List(ctx context.Context, filter ListFilter) ([]ProductResponse, int64, error) {
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
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	items := make([]ProductResponse, 0, len(products))
	for idx := range products {
		items = append(items, ToProductResponse(&products[idx]))
	}
	return items, total, nil
}

// ListBelowThreshold lists active products at or below their reorder threshold
func (s *Service) ListBelowThreshold(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindBelowThreshold(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, 0, len(products))
	for idx := range products {
		items = append(items, ToProductResponse(&products[idx]))
	}
	return items, nil
}

// Update updates a product's details
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		description := product.Description
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(*req.Name, description); err != nil {
			return nil, err
		}
	} else if req.Description != nil {
		if err := product.Update(product.Name, *req.Description); err != nil {
			return nil, err
		}
	}
	if req.UnitPrice != nil {
		if err := product.SetUnitPrice(*req.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.ReorderThreshold != nil {
		if err := product.SetReorderThreshold(*req.ReorderThreshold); err != nil {
			return nil, err
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Deactivate soft-deactivates a product
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.Deactivate()
	return s.productRepo.Save(ctx, product)
}

// Activate re-enables a deactivated product
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	product.Activate()
	return s.productRepo.Save(ctx, product)
}
