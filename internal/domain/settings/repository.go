package settings

import "context"

// Repository defines the interface for user settings data access
type Repository interface {
	// Get retrieves a user's settings, or nil when none are stored
	Get(ctx context.Context, userID int64) (*Settings, error)

	// Upsert creates or replaces a user's settings
	Upsert(ctx context.Context, s *Settings) error
}
