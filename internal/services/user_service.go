package services

import (
	"context"
	"strings"

	"github.com/optaimi/pulse/internal/auth"
	"github.com/optaimi/pulse/internal/config"
	"github.com/optaimi/pulse/internal/domain/user"
	"github.com/optaimi/pulse/internal/pkg/errors"
	"github.com/optaimi/pulse/internal/pkg/logger"
)

// UserService manages registration and login
type UserService struct {
	repo   user.Repository
	cfg    config.AuthConfig
	logger *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, cfg config.AuthConfig, log *logger.Logger) *UserService {
	return &UserService{repo: repo, cfg: cfg, logger: log}
}

// Register creates a user and returns a token pair
func (s *UserService) Register(ctx context.Context, email, password string) (*user.User, auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, auth.TokenPair{}, errors.BadRequest("Email is required")
	}
	if len(password) < 8 {
		return nil, auth.TokenPair{}, errors.BadRequest("Password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password, s.cfg.BCryptCost)
	if err != nil {
		return nil, auth.TokenPair{}, errors.Internal("Failed to hash password", err)
	}

	u := &user.User{Email: email, PasswordHash: hash}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, auth.TokenPair{}, err
	}

	tokens, err := auth.MintTokens(u.ID, u.Email, s.cfg.JWTSecret, s.cfg.AccessTokenExpiry, s.cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, auth.TokenPair{}, errors.Internal("Failed to mint tokens", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
	}).Info("User registered")

	return u, tokens, nil
}

// Login verifies credentials and returns a token pair
func (s *UserService) Login(ctx context.Context, email, password string) (*user.User, auth.TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, auth.TokenPair{}, errors.Unauthorized("Invalid email or password")
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, auth.TokenPair{}, errors.Unauthorized("Invalid email or password")
	}

	tokens, err := auth.MintTokens(u.ID, u.Email, s.cfg.JWTSecret, s.cfg.AccessTokenExpiry, s.cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, auth.TokenPair{}, errors.Internal("Failed to mint tokens", err)
	}

	return u, tokens, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}
