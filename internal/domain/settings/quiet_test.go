package settings

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 15, hour, minute, 0, 0, time.Local)
}

func atSec(hour, minute, second int) time.Time {
	return time.Date(2025, 6, 15, hour, minute, second, 0, time.Local)
}

func TestQuietHours_Contains(t *testing.T) {
	tests := []struct {
		name  string
		quiet *QuietHours
		now   time.Time
		want  bool
	}{
		{
			name:  "overnight window suppresses before midnight",
			quiet: &QuietHours{Start: "22:00", End: "06:00"},
			now:   at(23, 30),
			want:  true,
		},
		{
			name:  "overnight window suppresses after midnight",
			quiet: &QuietHours{Start: "22:00", End: "06:00"},
			now:   at(4, 0),
			want:  true,
		},
		{
			name:  "overnight window passes midday",
			quiet: &QuietHours{Start: "22:00", End: "06:00"},
			now:   at(12, 0),
			want:  false,
		},
		{
			name:  "same-day window interval is closed",
			quiet: &QuietHours{Start: "09:00", End: "17:00"},
			now:   at(17, 0),
			want:  true,
		},
		{
			name:  "same-day window passes outside",
			quiet: &QuietHours{Start: "09:00", End: "17:00"},
			now:   at(17, 1),
			want:  false,
		},
		{
			name:  "window end is exact to the second",
			quiet: &QuietHours{Start: "22:00", End: "06:00"},
			now:   atSec(6, 0, 0),
			want:  true,
		},
		{
			name:  "seconds past the end pass",
			quiet: &QuietHours{Start: "22:00", End: "06:00"},
			now:   atSec(6, 0, 59),
			want:  false,
		},
		{
			name:  "nil config never suppresses",
			quiet: nil,
			now:   at(23, 30),
			want:  false,
		},
		{
			name:  "missing end never suppresses",
			quiet: &QuietHours{Start: "22:00"},
			now:   at(23, 30),
			want:  false,
		},
		{
			name:  "unparsable start fails open",
			quiet: &QuietHours{Start: "25:99", End: "06:00"},
			now:   at(23, 30),
			want:  false,
		},
		{
			name:  "unparsable end fails open",
			quiet: &QuietHours{Start: "22:00", End: "soon"},
			now:   at(23, 30),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.quiet.Contains(tt.now); got != tt.want {
				t.Errorf("Contains(%s) = %v, want %v", tt.now.Format("15:04"), got, tt.want)
			}
		})
	}
}
