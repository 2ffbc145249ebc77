package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"cabshare/internal/domain"
	internalredis "cabshare/internal/redis"
	"cabshare/internal/repository"
)

// Placeholder trip estimates. A real deployment would call an external
// routing service, which is out of scope.
const (
	placeholderDistanceKm  = 10.0
	placeholderDurationMin = 30
	placeholderFare        = 200.0
)

// RideService handles ride creation and group suggestions.
type RideService struct {
	rideRepo      repository.RideRepository
	groupRepo     repository.GroupRepository
	cacheStore    internalredis.CacheStoreInterface
	groupCapacity int
}

// NewRideService creates a new RideService. cacheStore may be nil, in which
// case suggestions always hit the database.
func NewRideService(
	rideRepo repository.RideRepository,
	groupRepo repository.GroupRepository,
	cacheStore internalredis.CacheStoreInterface,
	groupCapacity int,
) *RideService {
	if groupCapacity <= 0 {
		groupCapacity = domain.DefaultMaxMembers
	}
	return &RideService{
		rideRepo:      rideRepo,
		groupRepo:     groupRepo,
		cacheStore:    cacheStore,
		groupCapacity: groupCapacity,
	}
}

// CreateRideRequest contains the parameters for creating a ride.
type CreateRideRequest struct {
	CreatorID string
	Pickup    domain.Location
	Drop      domain.Location
	Time      time.Time
	Mode      domain.RideMode
}

// CreateRideResponse contains the result of creating a ride.
type CreateRideResponse struct {
	Ride  *domain.Ride
	Group *domain.Group // set for sharing rides
}

// CreateRide creates a new ride. For sharing rides it also creates the
// fare-splitting group with the creator as sole member and admin, then
// back-fills the ride's group link.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*CreateRideResponse, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:           uuid.New().String(),
		CreatorID:    req.CreatorID,
		Pickup:       req.Pickup,
		Drop:         req.Drop,
		Time:         req.Time,
		DistanceKm:   placeholderDistanceKm,
		DurationMin:  placeholderDurationMin,
		FareEstimate: placeholderFare,
		Mode:         req.Mode,
		Status:       domain.RideStatusPending,
		CreatedAt:    time.Now(),
	}

	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return nil, err
	}

	var group *domain.Group
	if ride.Mode == domain.RideModeSharing {
		var err error
		group, err = s.ensureSharingGroup(ctx, ride)
		if err != nil {
			return nil, err
		}
	}

	return &CreateRideResponse{Ride: ride, Group: group}, nil
}

// GetRide retrieves a ride. A sharing ride whose group link went missing
// (crash between ride and group writes) is repaired on read: group creation
// is idempotent per ride, so the sequence is safely retryable.
func (s *RideService) GetRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	if ride.Mode == domain.RideModeSharing && ride.GroupID == "" {
		if _, err := s.ensureSharingGroup(ctx, ride); err != nil {
			return nil, err
		}
	}

	return ride, nil
}

// GetMyRides retrieves a user's rides, newest first.
func (s *RideService) GetMyRides(ctx context.Context, userID string) ([]*domain.Ride, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.rideRepo.GetByCreatorID(ctx, userID)
}

// GroupSuggestion is one open group offered to a user looking to share.
type GroupSuggestion struct {
	GroupID     string
	RideID      string
	AdminID     string
	MemberCount int
	MaxMembers  int
}

// SuggestGroups returns all open groups the user is not already a member of.
// No geographic or temporal similarity filter is applied; this is a known
// placeholder, not a matching algorithm.
func (s *RideService) SuggestGroups(ctx context.Context, userID string) ([]GroupSuggestion, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	cached, err := s.openGroups(ctx)
	if err != nil {
		return nil, err
	}

	suggestions := make([]GroupSuggestion, 0, len(cached))
	for _, g := range cached {
		if containsID(g.MemberIDs, userID) {
			continue
		}
		suggestions = append(suggestions, GroupSuggestion{
			GroupID:     g.ID,
			RideID:      g.RideID,
			AdminID:     g.AdminID,
			MemberCount: g.MemberCount,
			MaxMembers:  g.MaxMembers,
		})
	}
	return suggestions, nil
}

// ensureSharingGroup creates the group for a sharing ride if it does not
// exist yet, and back-fills the ride's group link. Idempotent per ride.
func (s *RideService) ensureSharingGroup(ctx context.Context, ride *domain.Ride) (*domain.Group, error) {
	group := &domain.Group{
		ID:      uuid.New().String(),
		RideID:  ride.ID,
		AdminID: ride.CreatorID,
		Members: []domain.GroupMember{{
			UserID:        ride.CreatorID,
			PaymentStatus: domain.MemberPaymentPending,
			JoinedAt:      time.Now(),
		}},
		Status:     domain.GroupStatusOpen,
		MaxMembers: s.groupCapacity,
		CreatedAt:  time.Now(),
	}

	err := s.groupRepo.Create(ctx, group)
	if errors.Is(err, repository.ErrAlreadyExists) {
		// A previous attempt got this far; reuse its group.
		group, err = s.groupRepo.GetByRideID(ctx, ride.ID)
	}
	if err != nil {
		return nil, err
	}

	if ride.GroupID == "" {
		if err := s.rideRepo.SetGroupID(ctx, ride.ID, group.ID); err != nil {
			return nil, err
		}
		ride.GroupID = group.ID
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateOpenGroups(ctx)
	}

	return group, nil
}

// openGroups returns the open-group listing, served from cache when possible.
func (s *RideService) openGroups(ctx context.Context) ([]internalredis.CachedGroup, error) {
	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetOpenGroups(ctx)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	groups, err := s.groupRepo.GetOpen(ctx)
	if err != nil {
		return nil, err
	}

	cached := make([]internalredis.CachedGroup, 0, len(groups))
	for _, g := range groups {
		memberIDs := make([]string, 0, len(g.Members))
		for _, m := range g.Members {
			memberIDs = append(memberIDs, m.UserID)
		}
		cached = append(cached, internalredis.CachedGroup{
			ID:          g.ID,
			RideID:      g.RideID,
			AdminID:     g.AdminID,
			MemberIDs:   memberIDs,
			MemberCount: len(g.Members),
			MaxMembers:  g.MaxMembers,
		})
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetOpenGroups(ctx, cached)
	}

	return cached, nil
}

func (s *RideService) validateCreateRequest(req CreateRideRequest) error {
	if req.CreatorID == "" {
		return ErrInvalidUserID
	}
	if !isValidLocation(req.Pickup) {
		return ErrInvalidPickupLocation
	}
	if !isValidLocation(req.Drop) {
		return ErrInvalidDropLocation
	}
	if req.Time.IsZero() {
		return ErrInvalidRideTime
	}
	if req.Mode != domain.RideModeSolo && req.Mode != domain.RideModeSharing {
		return ErrInvalidRideMode
	}
	return nil
}

func isValidLocation(loc domain.Location) bool {
	return loc.Address != "" && isValidLatitude(loc.Lat) && isValidLongitude(loc.Lng)
}

func isValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func isValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
