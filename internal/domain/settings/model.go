package settings

// Settings are per-user preferences owned by the settings surface.
// The alert engine reads them for quiet hours and currency display.
type Settings struct {
	UserID     int64       `json:"user_id"`
	Currency   string      `json:"currency"`
	QuietHours *QuietHours `json:"quiet_hours,omitempty"`
}

// QuietHours is a local time-of-day window during which notifications are
// suppressed. Start and End are "HH:MM" strings as stored; validation is
// deliberately deferred to evaluation time, which fails open.
type QuietHours struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DefaultCurrency is used when a user has no stored settings
const DefaultCurrency = "GBP"
