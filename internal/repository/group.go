package repository

import (
	"context"

	"cabshare/internal/domain"
)

// GroupRepository defines the persistence operations for groups.
//
// Update and Delete are compare-and-swap operations on the group's version:
// they fail with ErrVersionConflict when a concurrent writer got there first.
// Callers re-read, re-validate and retry.
type GroupRepository interface {
	// Create persists a new group. A ride can have at most one group;
	// creating a second group for the same ride returns ErrAlreadyExists.
	Create(ctx context.Context, group *domain.Group) error

	// GetByID retrieves a group by ID.
	GetByID(ctx context.Context, id string) (*domain.Group, error)

	// GetByRideID retrieves the group linked to a ride.
	GetByRideID(ctx context.Context, rideID string) (*domain.Group, error)

	// GetOpen retrieves all groups with status open.
	GetOpen(ctx context.Context) ([]*domain.Group, error)

	// GetAll retrieves all groups.
	GetAll(ctx context.Context) ([]*domain.Group, error)

	// Update persists the group if its version is unchanged, bumping the
	// version on success (both in storage and on the passed struct).
	Update(ctx context.Context, group *domain.Group) error

	// Delete removes the group if its version is unchanged.
	Delete(ctx context.Context, id string, version int64) error

	// Count returns the total number of groups.
	Count(ctx context.Context) (int64, error)
}
