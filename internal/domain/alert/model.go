package alert

import (
	"strconv"
	"time"

	"github.com/optaimi/pulse/internal/domain/metric"
)

// Rule is a user-defined alert rule. Rules are created and edited through the
// API surface and read-only to the evaluation engine.
type Rule struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	Kind      Kind          `json:"type"`
	Model     string        `json:"model,omitempty"` // empty matches all models
	Threshold *string       `json:"threshold,omitempty"`
	Window    metric.Window `json:"window,omitempty"`
	Cadence   Cadence       `json:"cadence"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}

// Kind is a closed enum of alert kinds. Adding a kind requires extending
// Evaluate, Label and RequiresThreshold; Evaluate rejects unknown kinds.
type Kind string

const (
	KindLatency     Kind = "latency"
	KindTPSDrop     Kind = "tps_drop"
	KindCostPerMTok Kind = "cost_per_mtok"
	KindError       Kind = "error"
	KindDigest      Kind = "digest"
)

// Kinds lists every valid alert kind
func Kinds() []Kind {
	return []Kind{KindLatency, KindTPSDrop, KindCostPerMTok, KindError, KindDigest}
}

// Valid reports whether the kind is a known value
func (k Kind) Valid() bool {
	switch k {
	case KindLatency, KindTPSDrop, KindCostPerMTok, KindError, KindDigest:
		return true
	}
	return false
}

// Label returns the human-readable alert type label used in notifications
func (k Kind) Label() string {
	switch k {
	case KindLatency:
		return "High Latency"
	case KindTPSDrop:
		return "TPS Drop"
	case KindCostPerMTok:
		return "Cost per MTok"
	case KindError:
		return "Errors Detected"
	case KindDigest:
		return "Performance Digest"
	}
	return string(k)
}

// RequiresThreshold reports whether the kind needs a numeric threshold
func (k Kind) RequiresThreshold() bool {
	switch k {
	case KindLatency, KindTPSDrop, KindCostPerMTok:
		return true
	}
	return false
}

// Cadence is the minimum interval between notifications for one rule
type Cadence string

const (
	Cadence5m  Cadence = "5m"
	Cadence15m Cadence = "15m"
	Cadence1h  Cadence = "1h"
	Cadence4h  Cadence = "4h"
	Cadence12h Cadence = "12h"
	Cadence24h Cadence = "24h"
)

// Valid reports whether the cadence is a known value
func (c Cadence) Valid() bool {
	switch c {
	case Cadence5m, Cadence15m, Cadence1h, Cadence4h, Cadence12h, Cadence24h:
		return true
	}
	return false
}

// Minutes maps the cadence to its minute count. Unknown values fall back
// to 60 minutes rather than failing the rule.
func (c Cadence) Minutes() int {
	switch c {
	case Cadence5m:
		return 5
	case Cadence15m:
		return 15
	case Cadence1h:
		return 60
	case Cadence4h:
		return 240
	case Cadence12h:
		return 720
	case Cadence24h:
		return 1440
	}
	return 60
}

// Duration returns the cadence as a time.Duration
func (c Cadence) Duration() time.Duration {
	return time.Duration(c.Minutes()) * time.Minute
}

// ThresholdValue parses the rule threshold as a float. The raw decimal is
// kept as stored so a bad value surfaces at evaluation time as a per-rule
// error instead of poisoning the whole run at load time.
func (r *Rule) ThresholdValue() (float64, error) {
	if r.Threshold == nil {
		return 0, ErrThresholdMissing
	}
	v, err := strconv.ParseFloat(*r.Threshold, 64)
	if err != nil {
		return 0, ErrThresholdInvalid
	}
	return v, nil
}

// ModelLabel returns the model name for display, "All Models" when unset
func (r *Rule) ModelLabel() string {
	if r.Model == "" {
		return "All Models"
	}
	return r.Model
}

// TriggerResult is the evidence attached to a trigger decision
type TriggerResult struct {
	Triggered  bool   `json:"triggered"`
	Metric     string `json:"metric"`
	Value      string `json:"value"`
	Threshold  string `json:"threshold"`
	Comparison string `json:"comparison"`
}

// Filter contains rule listing options
type Filter struct {
	Kind       Kind
	Model      string
	ActiveOnly bool
}
