package repository

import (
	"context"

	"cabshare/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email (case-sensitive as stored).
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// UpdateProfile refreshes the display name, avatar and external
	// identity link of an existing user.
	UpdateProfile(ctx context.Context, id, name, avatar, externalID string) error

	// SetBanned flips the ban flag.
	SetBanned(ctx context.Context, id string, banned bool) error

	// SetPaymentVerified marks the user as having a verified payment.
	// Safe to re-apply.
	SetPaymentVerified(ctx context.Context, id string) error

	// AddCommission atomically increments the user's commission balance.
	AddCommission(ctx context.Context, id string, amount float64) error

	// Count returns the total number of users.
	Count(ctx context.Context) (int64, error)
}
