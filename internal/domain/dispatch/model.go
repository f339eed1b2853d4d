package dispatch

import (
	"encoding/json"
	"time"
)

// Delivery status of a notification attempt
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Record is one audit row for a notification attempt. Records are append-only
// and double as the state behind the cadence gate: the latest record for a
// (user, alert) pair is what "last notified" means. A failed send still
// produces a record and still consumes cadence.
type Record struct {
	ID      int64           `json:"id"`
	UserID  int64           `json:"user_id"`
	AlertID int64           `json:"alert_id"`
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	SentAt  time.Time       `json:"sent_at"`
}

// Payload is the structured evaluation evidence stored with each record
type Payload struct {
	AlertType  string      `json:"alert_type"`
	Model      string      `json:"model,omitempty"`
	Evaluation interface{} `json:"evaluation"`
	Timestamp  string      `json:"timestamp"`
}
