package sale

import (
	"time"

	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/aquagest/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel identifies how the sale originated
type Channel string

const (
	// ChannelDirect is a counter sale recorded on the spot
	ChannelDirect Channel = "direct"
	// ChannelOrder is a sale produced by converting a fully paid order
	ChannelOrder Channel = "order"
)

// IsValid returns true if the channel is a known value
func (c Channel) IsValid() bool {
	return c == ChannelDirect || c == ChannelOrder
}

// Line is a sale line item. For converted sales the values are copied from
// the order line at conversion time.
type Line struct {
	shared.BaseEntity
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SubTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (Line) TableName() string {
	return "sale_lines"
}

// Payment is an append-only record in the sale's payment sub-ledger
type Payment struct {
	shared.BaseEntity
	SaleID    uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Method    valueobject.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference string                    `gorm:"type:varchar(100)"`
	ActorID   *uuid.UUID                `gorm:"type:uuid"`
	PaidAt    time.Time                 `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "sale_payments"
}

// Sale is the definitive commercial record. Unlike orders, a sale has no
// lifecycle: once recorded it only accepts payments up to its total.
type Sale struct {
	shared.BaseAggregateRoot
	Number        string     `gorm:"type:varchar(30);not null;uniqueIndex"`
	Channel       Channel    `gorm:"type:varchar(10);not null;index"`
	ClientID      *uuid.UUID `gorm:"type:uuid;index"` // Nil for anonymous counter sales
	ClientName    string     `gorm:"type:varchar(200)"`
	SalespersonID uuid.UUID  `gorm:"type:uuid;not null;index"`
	// SourceOrderID links back to the converted order; unique so one order
	// can never yield two sales
	SourceOrderID   *uuid.UUID                `gorm:"type:uuid;uniqueIndex"`
	Lines           []Line                    `gorm:"foreignKey:SaleID;references:ID"`
	Payments        []Payment                 `gorm:"foreignKey:SaleID;references:ID"`
	ProductAmount   decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	DeliveryFee     decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount     decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount      decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	RemainingAmount decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentStatus   valueobject.PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	// PaymentMethod summarizes the sub-ledger: the single payment's method,
	// or mixed when the sale was settled by more than one payment
	PaymentMethod valueobject.PaymentMethod `gorm:"type:varchar(20);not null;default:'cash'"`
	Notes         string                    `gorm:"type:text"`
	SoldAt        time.Time                 `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// New creates a direct counter sale with no lines yet
func New(number string, salespersonID uuid.UUID) (*Sale, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if salespersonID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALESPERSON", "Salesperson ID cannot be empty")
	}

	return &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Channel:           ChannelDirect,
		SalespersonID:     salespersonID,
		Lines:             make([]Line, 0),
		Payments:          make([]Payment, 0),
		ProductAmount:     decimal.Zero,
		DeliveryFee:       decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		RemainingAmount:   decimal.Zero,
		PaymentStatus:     valueobject.PaymentStatusUnpaid,
		PaymentMethod:     valueobject.PaymentMethodCash,
		SoldAt:            time.Now(),
	}, nil
}

// NewFromOrder creates a sale from a converted order. Lines, totals and
// payments are supplied by the converter, already copied from the order.
func NewFromOrder(number string, sourceOrderID, clientID, salespersonID uuid.UUID, clientName string) (*Sale, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_SALE_NUMBER", "Sale number cannot be empty")
	}
	if sourceOrderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_ORDER", "Source order ID cannot be empty")
	}

	s := &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Channel:           ChannelOrder,
		SalespersonID:     salespersonID,
		SourceOrderID:     &sourceOrderID,
		ClientName:        clientName,
		Lines:             make([]Line, 0),
		Payments:          make([]Payment, 0),
		ProductAmount:     decimal.Zero,
		DeliveryFee:       decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		RemainingAmount:   decimal.Zero,
		PaymentStatus:     valueobject.PaymentStatusUnpaid,
		PaymentMethod:     valueobject.PaymentMethodCash,
		SoldAt:            time.Now(),
	}
	if clientID != uuid.Nil {
		s.ClientID = &clientID
	}
	return s, nil
}

// SetClient attaches a known client to the sale
func (s *Sale) SetClient(clientID uuid.UUID, clientName string) {
	if clientID != uuid.Nil {
		s.ClientID = &clientID
	}
	s.ClientName = clientName
	s.UpdatedAt = time.Now()
}

// AddLine appends a line and recalculates totals
func (s *Sale) AddLine(productID uuid.UUID, productCode, productName string, quantity int, unitPrice decimal.Decimal) (*Line, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	line := Line{
		BaseEntity:  shared.NewBaseEntity(),
		SaleID:      s.ID,
		ProductID:   productID,
		ProductCode: productCode,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		SubTotal:    decimal.NewFromInt(int64(quantity)).Mul(unitPrice),
	}

	s.Lines = append(s.Lines, line)
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	return &s.Lines[len(s.Lines)-1], nil
}

// SetDeliveryFee records the delivery fee carried over from a converted order
func (s *Sale) SetDeliveryFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Delivery fee cannot be negative")
	}

	s.DeliveryFee = fee
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	return nil
}

// AddPayment appends a payment to the sub-ledger. Sale payments are capped:
// a payment exceeding the remaining balance is rejected, so paid can never
// exceed total.
func (s *Sale) AddPayment(amount decimal.Decimal, method valueobject.PaymentMethod, reference string, actorID uuid.UUID, paidAt time.Time) (*Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if amount.GreaterThan(s.RemainingAmount) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment exceeds remaining balance")
	}

	payment := Payment{
		BaseEntity: shared.NewBaseEntity(),
		SaleID:     s.ID,
		Amount:     amount,
		Method:     method,
		Reference:  reference,
		PaidAt:     paidAt,
	}
	if actorID != uuid.Nil {
		payment.ActorID = &actorID
	}

	s.Payments = append(s.Payments, payment)
	s.refreshPaymentTotals()
	s.UpdatedAt = time.Now()

	return &s.Payments[len(s.Payments)-1], nil
}

// PaymentEntry carries an external payment record into the sale's sub-ledger
type PaymentEntry struct {
	Amount    decimal.Decimal
	Method    valueobject.PaymentMethod
	Reference string
	ActorID   *uuid.UUID
	PaidAt    time.Time
}

// ImportPayments copies an order's payment history onto the sale during
// conversion. The per-payment cap is bypassed so the history is preserved
// verbatim; reported paid amount still never exceeds the total.
func (s *Sale) ImportPayments(entries []PaymentEntry) {
	for _, e := range entries {
		s.Payments = append(s.Payments, Payment{
			BaseEntity: shared.NewBaseEntity(),
			SaleID:     s.ID,
			Amount:     e.Amount,
			Method:     e.Method,
			Reference:  e.Reference,
			ActorID:    e.ActorID,
			PaidAt:     e.PaidAt,
		})
	}
	s.refreshPaymentTotals()
	s.UpdatedAt = time.Now()
}

// IsFullyPaid returns true when the payment status is fully paid
func (s *Sale) IsFullyPaid() bool {
	return s.PaymentStatus == valueobject.PaymentStatusFullyPaid
}

// LineCount returns the number of lines on the sale
func (s *Sale) LineCount() int {
	return len(s.Lines)
}

func (s *Sale) recalculateTotals() {
	productAmount := decimal.Zero
	for _, line := range s.Lines {
		productAmount = productAmount.Add(line.SubTotal)
	}
	s.ProductAmount = productAmount
	s.TotalAmount = s.ProductAmount.Add(s.DeliveryFee)
	s.refreshPaymentTotals()
}

func (s *Sale) refreshPaymentTotals() {
	paid := decimal.Zero
	for _, p := range s.Payments {
		paid = paid.Add(p.Amount)
	}
	// Payments are capped at the remaining balance, but conversion copies a
	// possibly overpaid order ledger; paid never reports above total.
	if paid.GreaterThan(s.TotalAmount) {
		paid = s.TotalAmount
	}
	s.PaidAmount = paid
	s.PaymentStatus, s.RemainingAmount = valueobject.DerivePaymentStatus(paid, s.TotalAmount)

	switch len(s.Payments) {
	case 0:
		s.PaymentMethod = valueobject.PaymentMethodCash
	case 1:
		s.PaymentMethod = s.Payments[0].Method
	default:
		s.PaymentMethod = valueobject.PaymentMethodMixed
	}
}
