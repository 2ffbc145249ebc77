package postgres

import (
	"context"
	"database/sql"
	"errors"

	"cabshare/internal/domain"
	"cabshare/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

const paymentColumns = `id, order_id, user_id, group_id, amount, currency, status, gateway_payment_id, gateway_signature, created_at`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.UserID,
		payment.GroupID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		nullString(payment.GatewayPaymentID),
		nullString(payment.GatewaySignature),
		payment.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrAlreadyExists
	}
	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByOrderID retrieves a payment by its gateway order id.
func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`
	return r.getOne(ctx, query, orderID)
}

// CompleteByOrderID transitions the payment from pending to completed and
// attaches the gateway identifiers. Re-applying on an already completed
// payment is a no-op.
func (r *PaymentRepository) CompleteByOrderID(ctx context.Context, orderID, gatewayPaymentID, signature string) error {
	query := `
		UPDATE payments
		SET status = 'completed', gateway_payment_id = $1, gateway_signature = $2
		WHERE order_id = $3 AND status = 'pending'
	`

	result, err := r.q.ExecContext(ctx, query, gatewayPaymentID, signature, orderID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// No pending row matched: either the payment is gone or it already
	// completed (safe retry of a partially applied verification).
	existing, err := r.GetByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if existing.Status == domain.PaymentStatusCompleted {
		return nil
	}
	return repository.ErrVersionConflict
}

// GetAll retrieves all payments.
func (r *PaymentRepository) GetAll(ctx context.Context) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// SumCompletedAmount returns the total amount across completed payments.
func (r *PaymentRepository) SumCompletedAmount(ctx context.Context) (float64, error) {
	var total float64
	err := r.q.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status = 'completed'`).Scan(&total)
	return total, err
}

// Count returns the total number of payments.
func (r *PaymentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`).Scan(&count)
	return count, err
}

func (r *PaymentRepository) getOne(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

type paymentScanner interface {
	Scan(dest ...any) error
}

func scanPayment(s paymentScanner) (*domain.Payment, error) {
	var payment domain.Payment
	var gatewayPaymentID, gatewaySignature sql.NullString

	if err := s.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.UserID,
		&payment.GroupID,
		&payment.Amount,
		&payment.Currency,
		&payment.Status,
		&gatewayPaymentID,
		&gatewaySignature,
		&payment.CreatedAt,
	); err != nil {
		return nil, err
	}

	payment.GatewayPaymentID = gatewayPaymentID.String
	payment.GatewaySignature = gatewaySignature.String
	return &payment, nil
}
