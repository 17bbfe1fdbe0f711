package order

import (
	"fmt"
	"time"

	"github.com/aquagest/backend/internal/domain/shared"
	"github.com/aquagest/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an order
type Status string

const (
	StatusPending    Status = "pending"
	StatusValidated  Status = "validated"
	StatusPreparing  Status = "preparing"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// IsValid returns true if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusValidated, StatusPreparing, StatusDelivering, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusValidated || target == StatusCancelled
	case StatusValidated:
		return target == StatusPreparing || target == StatusCancelled
	case StatusPreparing:
		return target == StatusDelivering
	case StatusDelivering:
		return target == StatusDelivered
	case StatusDelivered, StatusCancelled:
		return false // Terminal states
	}
	return false
}

// DeliveryType represents how an order reaches the client
type DeliveryType string

const (
	DeliveryTypePickup DeliveryType = "pickup"
	DeliveryTypeHome   DeliveryType = "home"
)

// IsValid returns true if the delivery type is a known value
func (d DeliveryType) IsValid() bool {
	return d == DeliveryTypePickup || d == DeliveryTypeHome
}

// Line represents a line item in an order. Unit price is a snapshot taken at
// line creation; later product price changes do not affect existing orders.
type Line struct {
	shared.BaseEntity
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_order_line_product,priority:2"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SubTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (Line) TableName() string {
	return "order_lines"
}

// NewLine creates a new order line
func NewLine(orderID, productID uuid.UUID, productCode, productName string, quantity int, unitPrice decimal.Decimal) (*Line, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	qty := decimal.NewFromInt(int64(quantity))
	return &Line{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductCode: productCode,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		SubTotal:    qty.Mul(unitPrice),
	}, nil
}

// UpdateQuantity updates the line quantity and recalculates the sub-total
func (l *Line) UpdateQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}

	l.Quantity = quantity
	l.SubTotal = decimal.NewFromInt(int64(quantity)).Mul(l.UnitPrice)
	l.UpdatedAt = time.Now()

	return nil
}

// Payment is an append-only record in the order's payment sub-ledger
type Payment struct {
	shared.BaseEntity
	OrderID   uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	Method    valueobject.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference string                    `gorm:"type:varchar(100)"` // Mobile-money transaction ID, check number
	ActorID   *uuid.UUID                `gorm:"type:uuid"`
	PaidAt    time.Time                 `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "order_payments"
}

// Order represents a client order aggregate root. It owns its lines and its
// payment sub-ledger; totals and payment status are derived, never set
// directly.
type Order struct {
	shared.BaseAggregateRoot
	Number        string          `gorm:"type:varchar(30);not null;uniqueIndex"`
	ClientID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientName    string          `gorm:"type:varchar(200);not null"`
	SalespersonID uuid.UUID       `gorm:"type:uuid;not null;index"`
	DeliveryType  DeliveryType    `gorm:"type:varchar(10);not null"`
	Status        Status          `gorm:"type:varchar(15);not null;index"`
	Lines         []Line          `gorm:"foreignKey:OrderID;references:ID"`
	Payments      []Payment       `gorm:"foreignKey:OrderID;references:ID"`
	ProductAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DeliveryFee   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	// RemainingAmount is always max(TotalAmount - PaidAmount, 0)
	RemainingAmount decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	PaymentStatus   valueobject.PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Converted       bool                      `gorm:"not null;default:false"`
	SaleID          *uuid.UUID                `gorm:"type:uuid"` // Set once the order is converted
	DeliveryDate    *time.Time                `gorm:"type:timestamptz"`
	DueDate         *time.Time                `gorm:"type:timestamptz"`
	PenaltyAmount   decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	Notes           string                    `gorm:"type:text"`
	ValidatedAt     *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// New creates a new order in pending status
func New(number string, clientID uuid.UUID, clientName string, salespersonID uuid.UUID, deliveryType DeliveryType) (*Order, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if salespersonID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALESPERSON", "Salesperson ID cannot be empty")
	}
	if !deliveryType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DELIVERY_TYPE", "Delivery type must be pickup or home")
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		ClientID:          clientID,
		ClientName:        clientName,
		SalespersonID:     salespersonID,
		DeliveryType:      deliveryType,
		Status:            StatusPending,
		Lines:             make([]Line, 0),
		Payments:          make([]Payment, 0),
		ProductAmount:     decimal.Zero,
		DeliveryFee:       decimal.Zero,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		RemainingAmount:   decimal.Zero,
		PaymentStatus:     valueobject.PaymentStatusUnpaid,
		PenaltyAmount:     decimal.Zero,
	}, nil
}

// AddLine adds a line item to the order. Only allowed while pending.
// Stock is NOT touched here; it is reserved once, at validation.
func (o *Order) AddLine(productID uuid.UUID, productCode, productName string, quantity int, unitPrice decimal.Decimal) (*Line, error) {
	if o.Status != StatusPending {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Cannot add lines to a non-pending order")
	}

	for _, line := range o.Lines {
		if line.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already on this order, update the line instead")
		}
	}

	line, err := NewLine(o.ID, productID, productCode, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return line, nil
}

// UpdateLineQuantity updates the quantity of an existing line. Only allowed while pending.
func (o *Order) UpdateLineQuantity(lineID uuid.UUID, quantity int) error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot update lines on a non-pending order")
	}

	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			if err := o.Lines[idx].UpdateQuantity(quantity); err != nil {
				return err
			}
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// RemoveLine removes a line from the order. Only allowed while pending.
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot remove lines from a non-pending order")
	}

	for idx, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.recalculateTotals()
			o.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// SetDeliveryDate schedules the delivery
func (o *Order) SetDeliveryDate(date time.Time) error {
	if o.Status != StatusPending && o.Status != StatusValidated {
		return shared.NewDomainError("INVALID_TRANSITION", "Cannot reschedule delivery in current state")
	}

	o.DeliveryDate = &date
	o.UpdatedAt = time.Now()

	return nil
}

// ComputeDeliveryFee derives the delivery fee from the current product amount.
// This is the only place the fee is calculated; recalculateTotals always
// preserves the stored fee so that manual overrides survive line edits.
func (o *Order) ComputeDeliveryFee(homeDeliveryRate decimal.Decimal) {
	if o.DeliveryType == DeliveryTypeHome {
		o.DeliveryFee = o.ProductAmount.Mul(homeDeliveryRate).Round(2)
	} else {
		o.DeliveryFee = decimal.Zero
	}
	o.recalculateTotals()
	o.UpdatedAt = time.Now()
}

// OverrideDeliveryFee sets an explicit delivery fee, replacing any computed value
func (o *Order) OverrideDeliveryFee(fee decimal.Decimal) error {
	if fee.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Delivery fee cannot be negative")
	}

	o.DeliveryFee = fee
	o.recalculateTotals()
	o.UpdatedAt = time.Now()

	return nil
}

// EnsureCanValidate checks every precondition for validation except stock
// availability, which the stock ledger verifies per line inside the same
// transaction.
func (o *Order) EnsureCanValidate() error {
	if o.Status != StatusPending {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot validate order in %s status", o.Status))
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("EMPTY_ORDER", "Cannot validate an order without lines")
	}
	if o.DeliveryType == DeliveryTypeHome && o.DeliveryDate == nil {
		return shared.NewDomainError("MISSING_DELIVERY_DATE", "Delivery date required for home delivery")
	}
	return nil
}

// MarkValidated transitions the order to validated after stock has been
// reserved. Product amount is recomputed from lines; the delivery fee is
// preserved as-is. The due date is set to one day before the delivery date.
func (o *Order) MarkValidated() error {
	if err := o.EnsureCanValidate(); err != nil {
		return err
	}

	now := time.Now()
	o.recalculateTotals()
	if o.DeliveryDate != nil {
		due := o.DeliveryDate.AddDate(0, 0, -1)
		o.DueDate = &due
	}
	o.Status = StatusValidated
	o.ValidatedAt = &now
	o.UpdatedAt = now

	return nil
}

// Cancel cancels the order. Allowed from pending and validated only; the
// caller releases reserved stock before cancelling a validated order.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(StatusCancelled) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	return nil
}

// StartPreparing moves a validated order into preparation
func (o *Order) StartPreparing() error {
	if !o.Status.CanTransitionTo(StatusPreparing) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot start preparing order in %s status", o.Status))
	}

	o.Status = StatusPreparing
	o.UpdatedAt = time.Now()

	return nil
}

// CanEnterDelivery reports whether the order may move to delivering.
// An overdue order with an unpaid balance is blocked until the client
// settles the remainder plus penalty.
func (o *Order) CanEnterDelivery(now time.Time) error {
	if o.IsOverdue(now) && o.RemainingAmount.GreaterThan(decimal.Zero) {
		return shared.NewDomainError("OVERDUE_UNPAID_BALANCE",
			fmt.Sprintf("Order %s is overdue with %s remaining; payment required before delivery", o.Number, o.RemainingAmount.StringFixed(2)))
	}
	return nil
}

// StartDelivery moves a preparing order into delivering
func (o *Order) StartDelivery(now time.Time) error {
	if !o.Status.CanTransitionTo(StatusDelivering) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot start delivering order in %s status", o.Status))
	}
	if err := o.CanEnterDelivery(now); err != nil {
		return err
	}

	o.Status = StatusDelivering
	o.UpdatedAt = now

	return nil
}

// MarkDelivered completes the delivery
func (o *Order) MarkDelivered() error {
	if !o.Status.CanTransitionTo(StatusDelivered) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("Cannot mark order delivered in %s status", o.Status))
	}

	now := time.Now()
	o.Status = StatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now

	return nil
}

// AddPayment appends a payment to the sub-ledger and re-derives paid amount,
// remaining amount and payment status from the full payment list.
func (o *Order) AddPayment(amount decimal.Decimal, method valueobject.PaymentMethod, reference string, actorID uuid.UUID) (*Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() || method == valueobject.PaymentMethodMixed {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}
	if o.Status == StatusCancelled {
		return nil, shared.NewDomainError("INVALID_TRANSITION", "Cannot record payment on a cancelled order")
	}

	payment := &Payment{
		BaseEntity: shared.NewBaseEntity(),
		OrderID:    o.ID,
		Amount:     amount,
		Method:     method,
		Reference:  reference,
		PaidAt:     time.Now(),
	}
	if actorID != uuid.Nil {
		payment.ActorID = &actorID
	}

	o.Payments = append(o.Payments, *payment)
	o.refreshPaymentTotals()
	o.UpdatedAt = time.Now()

	return payment, nil
}

// IsOverdue returns true if the current date is past the due date
func (o *Order) IsOverdue(now time.Time) bool {
	return o.DueDate != nil && now.After(*o.DueDate)
}

// ComputePenalty returns the late penalty: penaltyRate of the remaining
// amount when overdue with a balance, zero otherwise.
func (o *Order) ComputePenalty(now time.Time, penaltyRate decimal.Decimal) decimal.Decimal {
	if o.IsOverdue(now) && o.RemainingAmount.GreaterThan(decimal.Zero) {
		return o.RemainingAmount.Mul(penaltyRate).Round(2)
	}
	return decimal.Zero
}

// RefreshPenalty recomputes and stores the penalty amount
func (o *Order) RefreshPenalty(now time.Time, penaltyRate decimal.Decimal) {
	o.PenaltyAmount = o.ComputePenalty(now, penaltyRate)
}

// MarkConverted records the conversion result on the in-memory aggregate.
// Persistence goes through OrderRepository.MarkConverted, a direct column
// update, so conversion never re-enters aggregate save logic.
func (o *Order) MarkConverted(saleID uuid.UUID) {
	o.Converted = true
	o.SaleID = &saleID
	o.UpdatedAt = time.Now()
}

// IsFullyPaid returns true when the payment status is fully paid
func (o *Order) IsFullyPaid() bool {
	return o.PaymentStatus == valueobject.PaymentStatusFullyPaid
}

// ShouldConvert returns true when the order is fully paid and not yet converted
func (o *Order) ShouldConvert() bool {
	return o.IsFullyPaid() && !o.Converted && o.Status != StatusCancelled
}

// GetLine returns a line by its ID
func (o *Order) GetLine(lineID uuid.UUID) *Line {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// LineCount returns the number of lines on the order
func (o *Order) LineCount() int {
	return len(o.Lines)
}

// recalculateTotals derives product amount from line sub-totals. The delivery
// fee is intentionally NOT recalculated here: it is computed once via
// ComputeDeliveryFee or set via OverrideDeliveryFee and then preserved, so a
// manual fee survives automated recomputes triggered by line edits.
func (o *Order) recalculateTotals() {
	productAmount := decimal.Zero
	for _, line := range o.Lines {
		productAmount = productAmount.Add(line.SubTotal)
	}
	o.ProductAmount = productAmount
	o.TotalAmount = o.ProductAmount.Add(o.DeliveryFee)
	o.refreshPaymentTotals()
}

// refreshPaymentTotals re-derives paid amount, remaining amount and payment
// status from the payment sub-ledger
func (o *Order) refreshPaymentTotals() {
	paid := decimal.Zero
	for _, p := range o.Payments {
		paid = paid.Add(p.Amount)
	}
	o.PaidAmount = paid
	o.PaymentStatus, o.RemainingAmount = valueobject.DerivePaymentStatus(paid, o.TotalAmount)
}
