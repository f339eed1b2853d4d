package alert

import "context"

// Repository defines the interface for alert rule data access
type Repository interface {
	// Create creates a new rule
	Create(ctx context.Context, r *Rule) (int64, error)

	// GetByID retrieves a rule owned by the given user
	GetByID(ctx context.Context, userID int64, id int64) (*Rule, error)

	// Update updates a rule
	Update(ctx context.Context, r *Rule) error

	// Delete deletes a rule
	Delete(ctx context.Context, userID int64, id int64) error

	// ListByUser retrieves a user's rules with filters
	ListByUser(ctx context.Context, userID int64, filter Filter) ([]*Rule, error)

	// ListActive retrieves every active rule across users, ordered by id
	ListActive(ctx context.Context) ([]*Rule, error)
}
