package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabshare/internal/domain"
	"cabshare/internal/repository"
)

// UserService provisions identities from the external OAuth verifier and
// serves profile reads.
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// RegisterRequest carries the verified claims forwarded by the OAuth layer.
type RegisterRequest struct {
	Email      string
	Name       string
	Picture    string
	ExternalID string
}

// Register upserts an identity from verified external claims. An existing
// identity with the same email has its profile refreshed; a new one is
// created with no local secret.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		if err := s.userRepo.UpdateProfile(ctx, existing.ID, name, req.Picture, req.ExternalID); err != nil {
			return nil, err
		}
		existing.Name = name
		existing.Avatar = req.Picture
		existing.ExternalID = req.ExternalID
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	user := &domain.User{
		ID:         uuid.New().String(),
		Name:       name,
		Email:      email,
		ExternalID: req.ExternalID,
		Avatar:     req.Picture,
		CreatedAt:  time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// Lost a concurrent registration for the same email.
			return s.userRepo.GetByEmail(ctx, email)
		}
		return nil, err
	}
	return user, nil
}

// GetProfile returns the caller's identity.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.userRepo.GetByID(ctx, userID)
}
