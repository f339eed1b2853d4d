package services

import (
	"context"
	"time"

	"github.com/optaimi/pulse/internal/domain/settings"
	"github.com/optaimi/pulse/internal/pkg/errors"
	"github.com/optaimi/pulse/internal/pkg/logger"
)

// SettingsService manages per-user preferences
type SettingsService struct {
	repo   settings.Repository
	logger *logger.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(repo settings.Repository, log *logger.Logger) *SettingsService {
	return &SettingsService{repo: repo, logger: log}
}

// Get returns a user's settings, falling back to defaults when none are stored
func (s *SettingsService) Get(ctx context.Context, userID int64) (*settings.Settings, error) {
	stored, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return &settings.Settings{
			UserID:   userID,
			Currency: settings.DefaultCurrency,
		}, nil
	}
	return stored, nil
}

// Update validates and stores a user's settings
func (s *SettingsService) Update(ctx context.Context, userID int64, updated *settings.Settings) (*settings.Settings, error) {
	updated.UserID = userID
	if updated.Currency == "" {
		updated.Currency = settings.DefaultCurrency
	}

	if qh := updated.QuietHours; qh != nil {
		if qh.Start == "" && qh.End == "" {
			updated.QuietHours = nil
		} else {
			if _, err := time.Parse("15:04", qh.Start); err != nil {
				return nil, errors.BadRequest("Quiet hours start must be HH:MM")
			}
			if _, err := time.Parse("15:04", qh.End); err != nil {
				return nil, errors.BadRequest("Quiet hours end must be HH:MM")
			}
		}
	}

	if err := s.repo.Upsert(ctx, updated); err != nil {
		s.logger.ErrorWithErr(err, "Failed to save settings")
		return nil, err
	}

	s.logger.With("user_id", userID).Info("Settings updated")
	return updated, nil
}
