package metric

import "time"

// Sample is one probe result for a single model. Optional measurements are
// pointers: a nil field means the probe did not produce that measurement.
// Error is set exactly when the probe itself failed.
type Sample struct {
	Timestamp time.Time `json:"ts"`
	Model     string    `json:"model"`
	LatencyS  *float64  `json:"latency_s,omitempty"`
	TPS       *float64  `json:"tps,omitempty"`
	CostUSD   *float64  `json:"cost_usd,omitempty"`
	InTokens  *int64    `json:"in_tokens,omitempty"`
	OutTokens *int64    `json:"out_tokens,omitempty"`
	Error     *string   `json:"error,omitempty"`
}

// Window is the evaluation lookback for metric reads
type Window string

const (
	Window24h Window = "24h"
	Window7d  Window = "7d"
)

// Normalize returns the window, defaulting to 24h for empty or unknown values
func (w Window) Normalize() Window {
	if w == Window7d {
		return Window7d
	}
	return Window24h
}

// Valid reports whether the window is a known value
func (w Window) Valid() bool {
	return w == Window24h || w == Window7d
}

// Start returns the lookback threshold for the window relative to now
func (w Window) Start(now time.Time) time.Time {
	if w.Normalize() == Window7d {
		return now.Add(-7 * 24 * time.Hour)
	}
	return now.Add(-24 * time.Hour)
}

// RecentLimit caps how many samples one evaluation reads
const RecentLimit = 100
