package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// DefaultCurrency is the currency used for gateway orders.
const DefaultCurrency = "INR"

// Payment tracks one payment-gateway order from initiation to verified
// completion. OrderID correlates 1:1 with the gateway order. The gateway
// identifiers are populated only after signature verification succeeds.
type Payment struct {
	ID               string
	OrderID          string
	UserID           string
	GroupID          string
	Amount           float64
	Currency         string
	Status           PaymentStatus
	GatewayPaymentID string
	GatewaySignature string
	CreatedAt        time.Time
}
