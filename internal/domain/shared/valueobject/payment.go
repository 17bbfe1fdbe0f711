package valueobject

import "github.com/shopspring/decimal"

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodMonCash  PaymentMethod = "moncash"
	PaymentMethodNatCash  PaymentMethod = "natcash"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCheck    PaymentMethod = "check"
	// PaymentMethodMixed marks a sale settled by more than one payment method
	PaymentMethodMixed PaymentMethod = "mixed"
)

// IsValid returns true if the method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMonCash, PaymentMethodNatCash,
		PaymentMethodTransfer, PaymentMethodCheck, PaymentMethodMixed:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentStatus classifies how much of a total has been paid
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "unpaid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusFullyPaid     PaymentStatus = "fully_paid"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// DerivePaymentStatus computes the payment status and remaining amount from
// cumulative paid and total. Remaining is clamped at zero: overpayment never
// produces a negative balance.
func DerivePaymentStatus(paid, total decimal.Decimal) (PaymentStatus, decimal.Decimal) {
	if total.GreaterThan(decimal.Zero) && paid.GreaterThanOrEqual(total) {
		return PaymentStatusFullyPaid, decimal.Zero
	}
	remaining := total.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	if paid.GreaterThan(decimal.Zero) {
		return PaymentStatusPartiallyPaid, remaining
	}
	return PaymentStatusUnpaid, remaining
}
