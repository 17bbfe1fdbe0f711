package catalog

import (
	"strings"
	"time"

	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product represents a distributable product (water sachet, bottle, gallon, ice block).
// It is the aggregate root for catalog operations. OnHand is mutated exclusively
// through the stock ledger; direct field edits are reserved for initial setup.
type Product struct {
	shared.BaseAggregateRoot
	Code             string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name             string          `gorm:"type:varchar(200);not null"`
	Description      string          `gorm:"type:text"`
	Unit             string          `gorm:"type:varchar(20);not null"` // "sachet", "gallon", "block"
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OnHand           int             `gorm:"not null;default:0"`
	ReorderThreshold int             `gorm:"not null;default:0"`
	InitialQuantity  int             `gorm:"not null;default:0"` // Reference quantity at product creation
	Active           bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name, unit string, unitPrice decimal.Decimal, initialQuantity int) (*Product, error) {
	if err := validateCode(code); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if initialQuantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial quantity cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Unit:              unit,
		UnitPrice:         unitPrice,
		OnHand:            initialQuantity,
		InitialQuantity:   initialQuantity,
		Active:            true,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetUnitPrice updates the selling price
func (p *Product) SetUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	p.UnitPrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetReorderThreshold sets the low-stock alert threshold
func (p *Product) SetReorderThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Reorder threshold cannot be negative")
	}

	p.ReorderThreshold = threshold
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// Deactivate soft-deactivates the product. Historical orders keep referencing it;
// products are never hard-deleted once referenced.
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate re-enables a deactivated product
func (p *Product) Activate() {
	p.Active = true
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// CanFulfill returns true if on-hand stock covers the requested quantity
func (p *Product) CanFulfill(quantity int) bool {
	return quantity <= p.OnHand
}

// IsBelowThreshold returns true if on-hand stock is at or below the reorder threshold
func (p *Product) IsBelowThreshold() bool {
	return p.ReorderThreshold > 0 && p.OnHand <= p.ReorderThreshold
}

func validateCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_PRODUCT_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}
