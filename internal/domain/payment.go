package domain

import "time"

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	MethodMpesa         PaymentMethod = "mpesa"
	MethodCard          PaymentMethod = "card"
	MethodBankTransfer  PaymentMethod = "bank_transfer"
	MethodCash          PaymentMethod = "cash"
	MethodGiftVoucher   PaymentMethod = "gift_voucher"
	MethodLoyaltyPoints PaymentMethod = "loyalty_points"
)

// ValidPaymentMethod returns true if the method is one of the supported values
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodMpesa, MethodCard, MethodBankTransfer, MethodCash, MethodGiftVoucher, MethodLoyaltyPoints:
		return true
	default:
		return false
	}
}

// Payment represents a ledger entry tied to at most one booking.
// Rows are never deleted - refunds and failures are recorded in place
type Payment struct {
	ID        int64
	BookingID *int64 // nil = платеж вне бронирования (например, продажа в POS)
	Amount    float64
	Method    PaymentMethod
	Status    PaymentStatus

	ProcessedAt  *time.Time
	RefundAmount float64
	RefundedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsCompleted returns true if the payment went through
func (p *Payment) IsCompleted() bool {
	return p.Status == PaymentCompleted
}

// CanComplete returns true if the payment may be marked completed
func (p *Payment) CanComplete() bool {
	return p.Status == PaymentPending
}

// CanFail returns true if the payment may be marked failed
func (p *Payment) CanFail() bool {
	return p.Status == PaymentPending
}

// CanRefund returns true if the given amount may be refunded.
// A refund is only possible from completed status and may never exceed
// the originally paid amount
func (p *Payment) CanRefund(amount float64) bool {
	if p.Status != PaymentCompleted {
		return false
	}
	if amount <= 0 {
		return false
	}
	return amount <= p.Amount
}
