package dto

// QuietHoursDTO is a local time-of-day suppression window
type QuietHoursDTO struct {
	Start string `json:"start" validate:"omitempty,len=5"`
	End   string `json:"end" validate:"omitempty,len=5"`
}

// UpdateSettingsRequest represents a settings update
type UpdateSettingsRequest struct {
	Currency   string         `json:"currency,omitempty" validate:"omitempty,len=3"`
	QuietHours *QuietHoursDTO `json:"quiet_hours,omitempty"`
}
