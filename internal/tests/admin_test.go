package tests

import (
	"context"
	"testing"

	"cabshare/internal/domain"
	"cabshare/internal/service"
)

func newAdminFixture() (*MockUserRepository, *MockRideRepository, *MockGroupRepository, *MockPaymentRepository, *service.AdminService) {
	userRepo := NewMockUserRepository()
	rideRepo := NewMockRideRepository()
	groupRepo := NewMockGroupRepository()
	paymentRepo := NewMockPaymentRepository()
	svc := service.NewAdminService(userRepo, rideRepo, groupRepo, paymentRepo)
	return userRepo, rideRepo, groupRepo, paymentRepo, svc
}

func TestAdminStats_AggregatesCountsAndRevenue(t *testing.T) {
	t.Parallel()

	userRepo, rideRepo, groupRepo, paymentRepo, svc := newAdminFixture()

	userRepo.AddUser(&domain.User{ID: "u1", Email: "a@x"})
	userRepo.AddUser(&domain.User{ID: "u2", Email: "b@x"})
	rideRepo.AddRide(&domain.Ride{ID: "r1", CreatorID: "u1"})
	groupRepo.AddGroup(&domain.Group{ID: "g1", RideID: "r1", AdminID: "u1"})
	paymentRepo.AddPayment(&domain.Payment{ID: "p1", OrderID: "o1", Amount: 100, Status: domain.PaymentStatusCompleted})
	paymentRepo.AddPayment(&domain.Payment{ID: "p2", OrderID: "o2", Amount: 50, Status: domain.PaymentStatusCompleted})
	paymentRepo.AddPayment(&domain.Payment{ID: "p3", OrderID: "o3", Amount: 999, Status: domain.PaymentStatusPending})

	stats, err := svc.GetStats(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if stats.TotalUsers != 2 {
		t.Errorf("expected 2 users, got %d", stats.TotalUsers)
	}
	if stats.TotalRides != 1 {
		t.Errorf("expected 1 ride, got %d", stats.TotalRides)
	}
	if stats.TotalGroups != 1 {
		t.Errorf("expected 1 group, got %d", stats.TotalGroups)
	}
	if stats.TotalPayments != 3 {
		t.Errorf("expected 3 payments, got %d", stats.TotalPayments)
	}
	// Only completed payments count toward revenue.
	if stats.TotalRevenue != 150 {
		t.Errorf("expected revenue 150, got %v", stats.TotalRevenue)
	}
	if len(stats.RecentRides) != 1 {
		t.Errorf("expected 1 recent ride, got %d", len(stats.RecentRides))
	}
}

func TestBanUnbanUser_FlipsFlag(t *testing.T) {
	t.Parallel()

	userRepo, _, _, _, svc := newAdminFixture()
	userRepo.AddUser(&domain.User{ID: "u1", Email: "a@x"})

	if err := svc.BanUser(context.Background(), "u1"); err != nil {
		t.Fatalf("ban failed: %v", err)
	}
	if !userRepo.GetUser("u1").IsBanned {
		t.Error("expected user banned")
	}

	// Banning again is a no-op.
	if err := svc.BanUser(context.Background(), "u1"); err != nil {
		t.Fatalf("repeat ban failed: %v", err)
	}

	if err := svc.UnbanUser(context.Background(), "u1"); err != nil {
		t.Fatalf("unban failed: %v", err)
	}
	if userRepo.GetUser("u1").IsBanned {
		t.Error("expected user unbanned")
	}
}

func TestBanUser_EmptyID_Fails(t *testing.T) {
	t.Parallel()

	_, _, _, _, svc := newAdminFixture()

	if err := svc.BanUser(context.Background(), ""); err != service.ErrInvalidUserID {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
}
