package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/domain/dispatch"
	"github.com/optaimi/pulse/internal/domain/settings"
	"github.com/optaimi/pulse/internal/testutil"
)

func TestCadenceGate_Passes(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		lastAt  time.Time
		cadence alert.Cadence
		want    bool
	}{
		{
			name:    "record inside window blocks",
			lastAt:  now.Add(-4 * time.Minute),
			cadence: alert.Cadence5m,
			want:    false,
		},
		{
			name:    "record outside window passes",
			lastAt:  now.Add(-6 * time.Minute),
			cadence: alert.Cadence5m,
			want:    true,
		},
		{
			name:    "unknown cadence defaults to an hour",
			lastAt:  now.Add(-45 * time.Minute),
			cadence: alert.Cadence("2h30m"),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := testutil.NewMockDispatchRepository()
			events.Records = append(events.Records, &dispatch.Record{
				UserID:  1,
				AlertID: 7,
				Status:  dispatch.StatusSent,
				SentAt:  tt.lastAt,
			})

			gate := NewCadenceGate(events)
			got, err := gate.Passes(context.Background(), 1, 7, tt.cadence, now)
			if err != nil {
				t.Fatalf("Passes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Passes() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCadenceGate_NoHistoryPasses(t *testing.T) {
	gate := NewCadenceGate(testutil.NewMockDispatchRepository())
	got, err := gate.Passes(context.Background(), 1, 7, alert.Cadence5m, time.Now())
	if err != nil {
		t.Fatalf("Passes() error = %v", err)
	}
	if !got {
		t.Error("Passes() = false, want true with no dispatch history")
	}
}

func TestCadenceGate_FailedSendConsumesCadence(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	events := testutil.NewMockDispatchRepository()
	events.Records = append(events.Records, &dispatch.Record{
		UserID:  1,
		AlertID: 7,
		Status:  dispatch.StatusFailed,
		SentAt:  now.Add(-2 * time.Minute),
	})

	gate := NewCadenceGate(events)
	got, err := gate.Passes(context.Background(), 1, 7, alert.Cadence5m, now)
	if err != nil {
		t.Fatalf("Passes() error = %v", err)
	}
	if got {
		t.Error("Passes() = true, want failed record to block re-notification")
	}
}

func TestQuietGate_IsQuiet(t *testing.T) {
	tests := []struct {
		name   string
		stored *settings.Settings
		now    time.Time
		want   bool
	}{
		{
			name:   "inside overnight window",
			stored: &settings.Settings{UserID: 1, QuietHours: &settings.QuietHours{Start: "22:00", End: "06:00"}},
			now:    time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC),
			want:   true,
		},
		{
			name:   "outside window",
			stored: &settings.Settings{UserID: 1, QuietHours: &settings.QuietHours{Start: "22:00", End: "06:00"}},
			now:    time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "no stored settings",
			stored: nil,
			now:    time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC),
			want:   false,
		},
		{
			name:   "partial config fails open",
			stored: &settings.Settings{UserID: 1, QuietHours: &settings.QuietHours{Start: "22:00"}},
			now:    time.Date(2025, 6, 15, 23, 30, 0, 0, time.UTC),
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewMockSettingsRepository()
			if tt.stored != nil {
				repo.Settings[tt.stored.UserID] = tt.stored
			}

			gate := NewQuietGate(repo)
			got, err := gate.IsQuiet(context.Background(), 1, tt.now)
			if err != nil {
				t.Fatalf("IsQuiet() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsQuiet() = %v, want %v", got, tt.want)
			}
		})
	}
}
