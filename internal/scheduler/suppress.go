package scheduler

import (
	"context"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/domain/dispatch"
	"github.com/optaimi/pulse/internal/domain/settings"
)

// Skip reasons reported in the run summary and logs
const (
	ReasonCadence    = "cadence"
	ReasonQuietHours = "quiet_hours"
)

// CadenceGate enforces the minimum interval between notifications for one
// rule. It reads the dispatch audit trail rather than any state on the rule:
// the latest record for (user, alert) is the source of truth, and a failed
// send consumes cadence the same as a successful one.
type CadenceGate struct {
	events dispatch.Repository
}

// NewCadenceGate creates a cadence gate over the dispatch audit trail
func NewCadenceGate(events dispatch.Repository) *CadenceGate {
	return &CadenceGate{events: events}
}

// Passes reports whether enough time has passed since the last notification
// for this rule. now is injected so the gate is deterministic under test.
func (g *CadenceGate) Passes(ctx context.Context, userID, alertID int64, cadence alert.Cadence, now time.Time) (bool, error) {
	since := now.Add(-cadence.Duration())
	rec, err := g.events.LatestSince(ctx, userID, alertID, since)
	if err != nil {
		return false, err
	}
	return rec == nil, nil
}

// QuietGate suppresses notifications inside a user's local quiet-hours
// window. Absent or malformed configuration never suppresses.
type QuietGate struct {
	settings settings.Repository
}

// NewQuietGate creates a quiet-hours gate over user settings
func NewQuietGate(repo settings.Repository) *QuietGate {
	return &QuietGate{settings: repo}
}

// IsQuiet reports whether now falls inside the user's quiet hours
func (g *QuietGate) IsQuiet(ctx context.Context, userID int64, now time.Time) (bool, error) {
	s, err := g.settings.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if s == nil {
		return false, nil
	}
	return s.QuietHours.Contains(now), nil
}
