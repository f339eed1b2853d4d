package dispatch

import (
	"context"
	"time"
)

// Repository defines the interface for dispatch audit records.
// Rows are never updated or deleted.
type Repository interface {
	// Create appends one audit record
	Create(ctx context.Context, r *Record) error

	// LatestSince returns the most recent record for the (user, alert) pair
	// with sent_at >= since, or nil when there is none
	LatestSince(ctx context.Context, userID, alertID int64, since time.Time) (*Record, error)

	// ListByUser returns a user's records, newest first
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Record, error)
}
