package service

import (
	"context"

	"cabshare/internal/domain"
	"cabshare/internal/repository"
)

// AdminService provides the read-side dashboard and moderation operations.
type AdminService struct {
	userRepo    repository.UserRepository
	rideRepo    repository.RideRepository
	groupRepo   repository.GroupRepository
	paymentRepo repository.PaymentRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	rideRepo repository.RideRepository,
	groupRepo repository.GroupRepository,
	paymentRepo repository.PaymentRepository,
) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		rideRepo:    rideRepo,
		groupRepo:   groupRepo,
		paymentRepo: paymentRepo,
	}
}

// Stats aggregates platform-wide counts and revenue for the dashboard.
type Stats struct {
	TotalUsers    int64          `json:"total_users"`
	TotalRides    int64          `json:"total_rides"`
	TotalGroups   int64          `json:"total_groups"`
	TotalPayments int64          `json:"total_payments"`
	TotalRevenue  float64        `json:"total_revenue"`
	RecentRides   []*domain.Ride `json:"recent_rides"`
}

const recentRidesLimit = 10

func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	rides, err := s.rideRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.paymentRepo.SumCompletedAmount(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.rideRepo.GetRecent(ctx, recentRidesLimit)
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalUsers:    users,
		TotalRides:    rides,
		TotalGroups:   groups,
		TotalPayments: payments,
		TotalRevenue:  revenue,
		RecentRides:   recent,
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.GetAll(ctx)
}

func (s *AdminService) ListRides(ctx context.Context) ([]*domain.Ride, error) {
	return s.rideRepo.GetAll(ctx)
}

func (s *AdminService) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	return s.groupRepo.GetAll(ctx)
}

func (s *AdminService) ListPayments(ctx context.Context) ([]*domain.Payment, error) {
	return s.paymentRepo.GetAll(ctx)
}

// BanUser blocks a user from authenticating. Banning an already banned
// user is a no-op.
func (s *AdminService) BanUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return s.userRepo.SetBanned(ctx, userID, true)
}

// UnbanUser restores a banned user's access.
func (s *AdminService) UnbanUser(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrInvalidUserID
	}
	return s.userRepo.SetBanned(ctx, userID, false)
}
