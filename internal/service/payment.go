package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"cabshare/internal/domain"
	"cabshare/internal/gateway"
	"cabshare/internal/observability"
	"cabshare/internal/repository"
)

// PaymentGateway is the interface for the external payment gateway's order
// API. Amounts are in the gateway's minor unit.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (*gateway.Order, error)
}

// Ensure the HTTP client implements PaymentGateway.
var _ PaymentGateway = (*gateway.Client)(nil)

// PaymentService handles the payment lifecycle: gateway order initiation and
// signature-verified completion.
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	userRepo      repository.UserRepository
	groupRepo     repository.GroupRepository
	gateway       PaymentGateway
	gatewaySecret string
	logger        *slog.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	gw PaymentGateway,
	gatewaySecret string,
	logger *slog.Logger,
) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		groupRepo:     groupRepo,
		gateway:       gw,
		gatewaySecret: gatewaySecret,
		logger:        logger,
	}
}

// InitiatePaymentRequest contains the parameters for initiating a payment.
type InitiatePaymentRequest struct {
	UserID  string
	GroupID string
	Amount  float64
}

// InitiatePaymentResponse echoes the gateway order for the client checkout.
type InitiatePaymentResponse struct {
	OrderID  string
	Amount   int64 // minor units, as issued by the gateway
	Currency string
}

// InitiatePayment requests an order from the payment gateway and records a
// pending payment against it.
func (s *PaymentService) InitiatePayment(ctx context.Context, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.Amount <= 0 || math.IsNaN(req.Amount) || math.IsInf(req.Amount, 0) {
		return nil, ErrInvalidAmount
	}
	if _, err := uuid.Parse(req.GroupID); err != nil {
		return nil, ErrInvalidGroupID
	}

	receipt := fmt.Sprintf("receipt_%s_%s", req.GroupID, req.UserID)
	order, err := s.gateway.CreateOrder(ctx, int64(math.Round(req.Amount*100)), domain.DefaultCurrency, receipt)
	if err != nil {
		s.logger.Error("gateway order creation failed", "group_id", req.GroupID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	payment := &domain.Payment{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		UserID:    req.UserID,
		GroupID:   req.GroupID,
		Amount:    req.Amount,
		Currency:  order.Currency,
		Status:    domain.PaymentStatusPending,
		CreatedAt: time.Now(),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	return &InitiatePaymentResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
	}, nil
}

// VerifyPaymentRequest contains the gateway callback identifiers.
type VerifyPaymentRequest struct {
	UserID           string
	GatewayPaymentID string
	GatewayOrderID   string
	Signature        string
	GroupID          string
}

// VerifyPayment checks the gateway signature and, on success, marks the
// payment completed, flags the paying user as payment-verified and marks the
// user's member entry in the group as paid.
//
// The payment row is the durable fact; the user flag and member flag are
// derived from it and each step is idempotent, so a retry after a partial
// failure converges rather than double-applying.
func (s *PaymentService) VerifyPayment(ctx context.Context, req VerifyPaymentRequest) error {
	if req.GatewayPaymentID == "" || req.GatewayOrderID == "" || req.Signature == "" || req.GroupID == "" {
		return ErrInvalidPaymentDetails
	}
	if _, err := uuid.Parse(req.GroupID); err != nil {
		return ErrInvalidGroupID
	}

	if !gateway.VerifySignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature, s.gatewaySecret) {
		s.logger.Warn("payment signature mismatch", "order_id", req.GatewayOrderID)
		return ErrVerificationFailed
	}

	if _, err := s.paymentRepo.GetByOrderID(ctx, req.GatewayOrderID); err != nil {
		return err
	}

	if err := s.paymentRepo.CompleteByOrderID(ctx, req.GatewayOrderID, req.GatewayPaymentID, req.Signature); err != nil {
		return err
	}

	if err := s.userRepo.SetPaymentVerified(ctx, req.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := s.markMemberPaid(ctx, req.GroupID, req.UserID); err != nil {
		return err
	}

	observability.PaymentsVerifiedTotal.Inc()
	return nil
}

// GetPayment retrieves a payment, visible to its owner or an admin.
func (s *PaymentService) GetPayment(ctx context.Context, requester *domain.User, paymentID string) (*domain.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != requester.ID && !requester.IsAdmin {
		return nil, repository.ErrNotFound
	}
	return payment, nil
}

// markMemberPaid flips the member's payment status in the group. A missing
// group or membership is not an error here: the payment itself stands, and
// the member may have left after paying.
func (s *PaymentService) markMemberPaid(ctx context.Context, groupID, userID string) error {
	var lastErr error
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		group, err := s.groupRepo.GetByID(ctx, groupID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		idx := group.MemberIndex(userID)
		if idx < 0 {
			return nil
		}
		if group.Members[idx].PaymentStatus == domain.MemberPaymentPaid {
			return nil
		}
		group.Members[idx].PaymentStatus = domain.MemberPaymentPaid

		err = s.groupRepo.Update(ctx, group)
		if errors.Is(err, repository.ErrVersionConflict) {
			lastErr = err
			continue
		}
		return err
	}
	return lastErr
}
