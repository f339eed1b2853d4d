package alert

import (
	"context"

	"github.com/optaimi/pulse/internal/domain/metric"
)

// Draft is a candidate rule definition that may not be persisted yet.
// It is what the ad-hoc test endpoint evaluates.
type Draft struct {
	Kind      Kind          `json:"type"`
	Model     string        `json:"model,omitempty"`
	Threshold *string       `json:"threshold,omitempty"`
	Window    metric.Window `json:"window,omitempty"`
}

// Service defines the interface for alert rule business logic
type Service interface {
	// Create validates and creates a rule
	Create(ctx context.Context, r *Rule) (int64, error)

	// GetByID retrieves a rule
	GetByID(ctx context.Context, userID int64, id int64) (*Rule, error)

	// Update applies partial updates to a rule
	Update(ctx context.Context, userID int64, id int64, updates map[string]interface{}) (*Rule, error)

	// Delete deletes a rule
	Delete(ctx context.Context, userID int64, id int64) error

	// List retrieves a user's rules
	List(ctx context.Context, userID int64, filter Filter) ([]*Rule, error)

	// Test evaluates a candidate rule against recent metrics without
	// dispatching or auditing anything
	Test(ctx context.Context, draft Draft) (*TriggerResult, error)
}
