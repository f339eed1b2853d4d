package metric

import (
	"context"
	"time"
)

// Repository defines the interface for metric sample data access.
// Samples are append-only: there is no update or delete.
type Repository interface {
	// Insert stores one probe result
	Insert(ctx context.Context, s *Sample) error

	// Recent returns up to limit samples newer than since, newest first.
	// An empty model matches all models.
	Recent(ctx context.Context, model string, since time.Time, limit int) ([]Sample, error)

	// Models returns the distinct model identifiers seen since the given time
	Models(ctx context.Context, since time.Time) ([]string, error)
}
