package repository

import (
	"context"

	"cabshare/internal/domain"
)

// TrackingRepository defines the persistence operations for external-ride
// tracking records.
type TrackingRepository interface {
	// Create persists a new tracking record.
	Create(ctx context.Context, tracking *domain.RideTracking) error

	// GetByTrackingID retrieves a record by its opaque token.
	GetByTrackingID(ctx context.Context, trackingID string) (*domain.RideTracking, error)

	// GetByUserID retrieves a user's tracking records, newest first.
	GetByUserID(ctx context.Context, userID string) ([]*domain.RideTracking, error)

	// RegisterClick atomically increments the click count, advances the
	// status from created to clicked, and returns the updated record.
	RegisterClick(ctx context.Context, trackingID string) (*domain.RideTracking, error)

	// CompleteProof attaches the actual fare, proof image and computed
	// commission, advancing the status to completed. It only applies while
	// the record has not yet reached completed; a record already completed
	// returns ErrNotFound so a lost race surfaces to the caller.
	CompleteProof(ctx context.Context, trackingID string, actualFare, commission float64, proofImage string) (*domain.RideTracking, error)
}
