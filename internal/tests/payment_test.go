package tests

import (
	"context"
	"errors"
	"testing"

	"cabshare/internal/domain"
	"cabshare/internal/gateway"
	"cabshare/internal/repository"
	"cabshare/internal/service"
)

const (
	testGroupID = "7df78e6c-13b1-43bd-a1d2-0a671a51a6fb"
	testSecret  = "test-gateway-secret"
)

func newPaymentFixture() (*MockPaymentRepository, *MockUserRepository, *MockGroupRepository, *MockGateway, *service.PaymentService) {
	paymentRepo := NewMockPaymentRepository()
	userRepo := NewMockUserRepository()
	groupRepo := NewMockGroupRepository()
	gw := NewMockGateway()
	svc := service.NewPaymentService(paymentRepo, userRepo, groupRepo, gw, testSecret, nil)
	return paymentRepo, userRepo, groupRepo, gw, svc
}

// ──────────────────────────────────────────────
// 1. INITIATION
// ──────────────────────────────────────────────

func TestInitiatePayment_Succeeds(t *testing.T) {
	t.Parallel()

	paymentRepo, _, _, gw, svc := newPaymentFixture()
	gw.OrderID = "order_abc"

	resp, err := svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		UserID:  "user-1",
		GroupID: testGroupID,
		Amount:  50,
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if resp.OrderID != "order_abc" {
		t.Errorf("expected gateway order id, got %s", resp.OrderID)
	}
	if resp.Amount != 5000 {
		t.Errorf("expected amount in minor units 5000, got %d", resp.Amount)
	}
	if resp.Currency != domain.DefaultCurrency {
		t.Errorf("expected currency %s, got %s", domain.DefaultCurrency, resp.Currency)
	}

	stored, err := paymentRepo.GetByOrderID(context.Background(), "order_abc")
	if err != nil {
		t.Fatalf("expected pending payment recorded: %v", err)
	}
	if stored.Status != domain.PaymentStatusPending {
		t.Errorf("expected pending status, got %s", stored.Status)
	}
	if stored.Amount != 50 {
		t.Errorf("expected stored amount in major units 50, got %v", stored.Amount)
	}
}

func TestInitiatePayment_InvalidInput_Fails(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		req     service.InitiatePaymentRequest
		wantErr error
	}{
		{
			name:    "zero amount",
			req:     service.InitiatePaymentRequest{UserID: "u", GroupID: testGroupID, Amount: 0},
			wantErr: service.ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			req:     service.InitiatePaymentRequest{UserID: "u", GroupID: testGroupID, Amount: -5},
			wantErr: service.ErrInvalidAmount,
		},
		{
			name:    "malformed group id",
			req:     service.InitiatePaymentRequest{UserID: "u", GroupID: "not-a-uuid", Amount: 50},
			wantErr: service.ErrInvalidGroupID,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, _, _, gw, svc := newPaymentFixture()

			_, err := svc.InitiatePayment(context.Background(), tc.req)
			if err != tc.wantErr {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if gw.CreateOrderCallCount != 0 {
				t.Error("expected gateway untouched on validation failure")
			}
		})
	}
}

func TestInitiatePayment_GatewayDown_NoLocalState(t *testing.T) {
	t.Parallel()

	paymentRepo, _, _, gw, svc := newPaymentFixture()
	gw.CreateOrderError = errors.New("connection refused")

	_, err := svc.InitiatePayment(context.Background(), service.InitiatePaymentRequest{
		UserID:  "user-1",
		GroupID: testGroupID,
		Amount:  50,
	})
	if !errors.Is(err, service.ErrGatewayUnavailable) {
		t.Errorf("expected ErrGatewayUnavailable, got %v", err)
	}

	if n, _ := paymentRepo.Count(context.Background()); n != 0 {
		t.Errorf("expected no payment recorded, got %d", n)
	}
}

// ──────────────────────────────────────────────
// 2. VERIFICATION
// ──────────────────────────────────────────────

func seedPendingPayment(paymentRepo *MockPaymentRepository, userRepo *MockUserRepository, groupRepo *MockGroupRepository) {
	userRepo.AddUser(&domain.User{ID: "user-1", Email: "u1@college.edu"})
	groupRepo.AddGroup(&domain.Group{
		ID:      testGroupID,
		RideID:  "ride-1",
		AdminID: "user-1",
		Members: []domain.GroupMember{
			{UserID: "user-1", PaymentStatus: domain.MemberPaymentPending},
			{UserID: "user-2", PaymentStatus: domain.MemberPaymentPending},
		},
		Status:     domain.GroupStatusOpen,
		MaxMembers: 4,
	})
	paymentRepo.AddPayment(&domain.Payment{
		ID:      "pay-1",
		OrderID: "order_abc",
		UserID:  "user-1",
		GroupID: testGroupID,
		Amount:  50,
		Status:  domain.PaymentStatusPending,
	})
}

func validVerifyRequest() service.VerifyPaymentRequest {
	return service.VerifyPaymentRequest{
		UserID:           "user-1",
		GatewayPaymentID: "pay_gw_1",
		GatewayOrderID:   "order_abc",
		Signature:        gateway.Signature("order_abc", "pay_gw_1", testSecret),
		GroupID:          testGroupID,
	}
}

func TestVerifyPayment_ValidSignature_CompletesSaga(t *testing.T) {
	t.Parallel()

	paymentRepo, userRepo, groupRepo, _, svc := newPaymentFixture()
	seedPendingPayment(paymentRepo, userRepo, groupRepo)

	if err := svc.VerifyPayment(context.Background(), validVerifyRequest()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	payment := paymentRepo.GetPayment("pay-1")
	if payment.Status != domain.PaymentStatusCompleted {
		t.Errorf("expected completed payment, got %s", payment.Status)
	}
	if payment.GatewayPaymentID != "pay_gw_1" {
		t.Errorf("expected gateway payment id recorded, got %q", payment.GatewayPaymentID)
	}

	if !userRepo.GetUser("user-1").PaymentVerified {
		t.Error("expected user flagged payment-verified")
	}

	group := groupRepo.GetGroup(testGroupID)
	if group.Members[0].PaymentStatus != domain.MemberPaymentPaid {
		t.Errorf("expected member marked paid, got %s", group.Members[0].PaymentStatus)
	}
	if group.Members[1].PaymentStatus != domain.MemberPaymentPending {
		t.Errorf("expected other member untouched, got %s", group.Members[1].PaymentStatus)
	}
}

func TestVerifyPayment_TamperedSignature_Rejected(t *testing.T) {
	t.Parallel()

	paymentRepo, userRepo, groupRepo, _, svc := newPaymentFixture()
	seedPendingPayment(paymentRepo, userRepo, groupRepo)

	req := validVerifyRequest()
	req.Signature = gateway.Signature("order_abc", "pay_gw_1", "wrong-secret")

	if err := svc.VerifyPayment(context.Background(), req); err != service.ErrVerificationFailed {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}

	if paymentRepo.GetPayment("pay-1").Status != domain.PaymentStatusPending {
		t.Error("expected payment untouched")
	}
	if userRepo.GetUser("user-1").PaymentVerified {
		t.Error("expected user flag untouched")
	}
}

func TestVerifyPayment_MissingFields_Rejected(t *testing.T) {
	t.Parallel()

	_, _, _, _, svc := newPaymentFixture()

	req := validVerifyRequest()
	req.Signature = ""

	if err := svc.VerifyPayment(context.Background(), req); err != service.ErrInvalidPaymentDetails {
		t.Errorf("expected ErrInvalidPaymentDetails, got %v", err)
	}
}

func TestVerifyPayment_UnknownOrder_NotFound(t *testing.T) {
	t.Parallel()

	_, _, _, _, svc := newPaymentFixture()

	req := validVerifyRequest()

	if err := svc.VerifyPayment(context.Background(), req); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestVerifyPayment_Retry_Converges(t *testing.T) {
	t.Parallel()

	paymentRepo, userRepo, groupRepo, _, svc := newPaymentFixture()
	seedPendingPayment(paymentRepo, userRepo, groupRepo)

	for i := 0; i < 3; i++ {
		if err := svc.VerifyPayment(context.Background(), validVerifyRequest()); err != nil {
			t.Fatalf("retry %d failed: %v", i, err)
		}
	}

	if paymentRepo.GetPayment("pay-1").Status != domain.PaymentStatusCompleted {
		t.Error("expected completed payment")
	}
	if groupRepo.GetGroup(testGroupID).Members[0].PaymentStatus != domain.MemberPaymentPaid {
		t.Error("expected member marked paid")
	}
}

func TestVerifyPayment_MemberLeftGroup_StillCompletes(t *testing.T) {
	t.Parallel()

	paymentRepo, userRepo, groupRepo, _, svc := newPaymentFixture()
	seedPendingPayment(paymentRepo, userRepo, groupRepo)

	// The payer left the group between initiation and verification. The
	// payment itself still stands.
	group := groupRepo.GetGroup(testGroupID)
	group.Members = group.Members[1:]
	group.AdminID = "user-2"
	groupRepo.AddGroup(group)

	if err := svc.VerifyPayment(context.Background(), validVerifyRequest()); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if paymentRepo.GetPayment("pay-1").Status != domain.PaymentStatusCompleted {
		t.Error("expected completed payment")
	}
}

// ──────────────────────────────────────────────
// 3. READ
// ──────────────────────────────────────────────

func TestGetPayment_OwnerAndAdminOnly(t *testing.T) {
	t.Parallel()

	paymentRepo, userRepo, groupRepo, _, svc := newPaymentFixture()
	seedPendingPayment(paymentRepo, userRepo, groupRepo)

	owner := &domain.User{ID: "user-1"}
	admin := &domain.User{ID: "admin-1", IsAdmin: true}
	stranger := &domain.User{ID: "user-9"}

	if _, err := svc.GetPayment(context.Background(), owner, "pay-1"); err != nil {
		t.Errorf("expected owner access, got %v", err)
	}
	if _, err := svc.GetPayment(context.Background(), admin, "pay-1"); err != nil {
		t.Errorf("expected admin access, got %v", err)
	}
	if _, err := svc.GetPayment(context.Background(), stranger, "pay-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound for stranger, got %v", err)
	}
}
