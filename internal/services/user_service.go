package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BradenHooton/dancingpony/internal/models"
	"github.com/BradenHooton/dancingpony/pkg/auth"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
}

// UserService handles user business logic
type UserService struct {
	repo       UserRepository
	bcryptCost int
	logger     *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, bcryptCost int, logger *slog.Logger) *UserService {
	return &UserService{
		repo:       repo,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates an active, non-superuser account. A weak password wraps
// models.ErrBadRequest and a taken email returns models.ErrConflict.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := auth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrBadRequest, err)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		s.logger.Info("registration rejected: email taken")
		return nil, models.ErrConflict
	case err != nil && !errors.Is(err, models.ErrNotFound):
		s.logger.Error("failed to check existing user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.repo.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(name),
		IsActive:     true,
	})
	if err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered", slog.String("user_id", created.ID))
	return created, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}
