package repository

import (
	"context"

	"cabshare/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment. Order ids are unique; creating a second
	// payment for the same gateway order returns ErrAlreadyExists.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByOrderID retrieves a payment by its gateway order id.
	GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error)

	// CompleteByOrderID transitions the payment for orderID from pending to
	// completed and attaches the gateway identifiers. A payment already
	// completed is left untouched; re-applying is safe.
	CompleteByOrderID(ctx context.Context, orderID, gatewayPaymentID, signature string) error

	// GetAll retrieves all payments.
	GetAll(ctx context.Context) ([]*domain.Payment, error)

	// SumCompletedAmount returns the total amount across completed payments.
	SumCompletedAmount(ctx context.Context) (float64, error)

	// Count returns the total number of payments.
	Count(ctx context.Context) (int64, error)
}
