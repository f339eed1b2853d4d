package postgres

import (
	"context"
	"database/sql"

	"github.com/optaimi/pulse/internal/domain/settings"
	"github.com/optaimi/pulse/internal/pkg/errors"
)

// SettingsRepository implements settings.Repository
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB) settings.Repository {
	return &SettingsRepository{db: db}
}

// Get retrieves a user's settings, or nil when none are stored
func (r *SettingsRepository) Get(ctx context.Context, userID int64) (*settings.Settings, error) {
	query := `
		SELECT user_id, currency, quiet_hours_start, quiet_hours_end
		FROM user_settings
		WHERE user_id = $1
	`

	var s settings.Settings
	var quietStart, quietEnd sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&s.UserID, &s.Currency, &quietStart, &quietEnd,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get settings", err)
	}

	if quietStart.Valid || quietEnd.Valid {
		s.QuietHours = &settings.QuietHours{
			Start: quietStart.String,
			End:   quietEnd.String,
		}
	}

	return &s, nil
}

// Upsert creates or replaces a user's settings
func (r *SettingsRepository) Upsert(ctx context.Context, s *settings.Settings) error {
	query := `
		INSERT INTO user_settings (user_id, currency, quiet_hours_start, quiet_hours_end)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			currency = excluded.currency,
			quiet_hours_start = excluded.quiet_hours_start,
			quiet_hours_end = excluded.quiet_hours_end
	`

	var quietStart, quietEnd interface{}
	if s.QuietHours != nil {
		quietStart = s.QuietHours.Start
		quietEnd = s.QuietHours.End
	}

	if _, err := r.db.ExecContext(ctx, query, s.UserID, s.Currency, quietStart, quietEnd); err != nil {
		return errors.DatabaseError("Failed to save settings", err)
	}

	return nil
}
