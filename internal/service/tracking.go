package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"cabshare/internal/domain"
	"cabshare/internal/observability"
	"cabshare/internal/repository"
)

// trackingTokenBytes gives 128 bits of entropy per token.
const trackingTokenBytes = 16

// TrackingService handles external-ride deep links, click tracking and
// referral commission crediting.
type TrackingService struct {
	trackingRepo   repository.TrackingRepository
	userRepo       repository.UserRepository
	baseURL        string
	commissionRate float64
	logger         *slog.Logger
}

// NewTrackingService creates a new TrackingService. baseURL is this
// service's externally reachable URL, used to build redirect links.
func NewTrackingService(
	trackingRepo repository.TrackingRepository,
	userRepo repository.UserRepository,
	baseURL string,
	commissionRate float64,
	logger *slog.Logger,
) *TrackingService {
	if commissionRate <= 0 {
		commissionRate = domain.DefaultCommissionRate
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackingService{
		trackingRepo:   trackingRepo,
		userRepo:       userRepo,
		baseURL:        baseURL,
		commissionRate: commissionRate,
		logger:         logger,
	}
}

// CreateLinkRequest contains the parameters for creating a tracking link.
type CreateLinkRequest struct {
	UserID string
	Pickup domain.Location
	Drop   domain.Location
}

// CreateLinkResponse contains the minted tracking link.
type CreateLinkResponse struct {
	TrackingID  string
	TrackingURL string // internally hosted redirect
	DeepLink    string // raw external-app deep link
}

// CreateLink mints an unguessable tracking token, builds the external-app
// deep link and persists the tracking record.
func (s *TrackingService) CreateLink(ctx context.Context, req CreateLinkRequest) (*CreateLinkResponse, error) {
	if req.UserID == "" {
		return nil, ErrInvalidUserID
	}
	if !isValidLocation(req.Pickup) {
		return nil, ErrInvalidPickupLocation
	}
	if !isValidLocation(req.Drop) {
		return nil, ErrInvalidDropLocation
	}

	token, err := newTrackingToken()
	if err != nil {
		return nil, err
	}

	tracking := &domain.RideTracking{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		TrackingID:     token,
		DeepLink:       buildDeepLink(req.Pickup, req.Drop),
		Pickup:         req.Pickup,
		Drop:           req.Drop,
		Status:         domain.TrackingStatusCreated,
		CommissionRate: s.commissionRate,
		CreatedAt:      time.Now(),
	}

	if err := s.trackingRepo.Create(ctx, tracking); err != nil {
		return nil, err
	}

	return &CreateLinkResponse{
		TrackingID:  token,
		TrackingURL: s.baseURL + "/v1/external/track/" + token,
		DeepLink:    tracking.DeepLink,
	}, nil
}

// Traverse registers a click on the tracking link and returns the deep link
// to redirect to. Public; repeat clicks keep incrementing the count.
func (s *TrackingService) Traverse(ctx context.Context, trackingID string) (string, error) {
	if trackingID == "" {
		return "", ErrInvalidTrackingID
	}

	tracking, err := s.trackingRepo.RegisterClick(ctx, trackingID)
	if err != nil {
		return "", err
	}

	observability.TrackingClicksTotal.Inc()
	return tracking.DeepLink, nil
}

// SubmitProofRequest contains the proof-of-fare submission.
type SubmitProofRequest struct {
	UserID     string
	TrackingID string
	ActualFare float64
	ProofImage string
}

// SubmitProof records the actual fare and proof, computes the commission and
// credits it to the owner's balance. Idempotent per tracking token: a record
// that already completed rejects resubmission and is never credited twice.
func (s *TrackingService) SubmitProof(ctx context.Context, req SubmitProofRequest) (*domain.RideTracking, error) {
	if req.ActualFare <= 0 {
		return nil, ErrInvalidFare
	}
	if req.TrackingID == "" {
		return nil, ErrInvalidTrackingID
	}

	tracking, err := s.trackingRepo.GetByTrackingID(ctx, req.TrackingID)
	if err != nil {
		return nil, err
	}
	if tracking.UserID != req.UserID {
		return nil, ErrNotTrackingOwner
	}
	if tracking.Status == domain.TrackingStatusCompleted || tracking.Status == domain.TrackingStatusCommissionPaid {
		return nil, ErrProofAlreadySubmitted
	}

	commission := req.ActualFare * tracking.CommissionRate / 100

	updated, err := s.trackingRepo.CompleteProof(ctx, req.TrackingID, req.ActualFare, commission, req.ProofImage)
	if errors.Is(err, repository.ErrNotFound) {
		// Lost the race against a concurrent submission.
		return nil, ErrProofAlreadySubmitted
	}
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.AddCommission(ctx, tracking.UserID, commission); err != nil {
		return nil, err
	}

	s.logger.Info("commission credited",
		"user_id", tracking.UserID,
		"tracking_id", req.TrackingID,
		"commission", commission,
	)
	observability.CommissionCredited.Add(commission)
	return updated, nil
}

// GetMyRecords retrieves the caller's tracking records, newest first.
func (s *TrackingService) GetMyRecords(ctx context.Context, userID string) ([]*domain.RideTracking, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.trackingRepo.GetByUserID(ctx, userID)
}

// GetRecord retrieves a tracking record, visible only to its owner.
func (s *TrackingService) GetRecord(ctx context.Context, userID, trackingID string) (*domain.RideTracking, error) {
	if trackingID == "" {
		return nil, ErrInvalidTrackingID
	}

	tracking, err := s.trackingRepo.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return nil, err
	}
	if tracking.UserID != userID {
		return nil, ErrNotTrackingOwner
	}
	return tracking, nil
}

func newTrackingToken() (string, error) {
	buf := make([]byte, trackingTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate tracking token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// buildDeepLink formats the external ride-hailing app deep link with the
// pickup and drop coordinates and the URL-encoded drop address.
func buildDeepLink(pickup, drop domain.Location) string {
	return "uber://?action=setPickup" +
		"&pickup[latitude]=" + formatCoord(pickup.Lat) +
		"&pickup[longitude]=" + formatCoord(pickup.Lng) +
		"&dropoff[latitude]=" + formatCoord(drop.Lat) +
		"&dropoff[longitude]=" + formatCoord(drop.Lng) +
		"&dropoff[nickname]=" + url.QueryEscape(drop.Address)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
