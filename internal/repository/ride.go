package repository

import (
	"context"

	"cabshare/internal/domain"
)

// RideRepository defines the persistence operations for rides.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetByCreatorID retrieves a user's rides, newest first.
	GetByCreatorID(ctx context.Context, creatorID string) ([]*domain.Ride, error)

	// GetRecent retrieves the most recently created rides.
	GetRecent(ctx context.Context, limit int) ([]*domain.Ride, error)

	// GetAll retrieves all rides.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// SetGroupID back-fills the group link on a sharing ride.
	// Safe to re-apply with the same group id.
	SetGroupID(ctx context.Context, rideID, groupID string) error

	// Count returns the total number of rides.
	Count(ctx context.Context) (int64, error)
}
