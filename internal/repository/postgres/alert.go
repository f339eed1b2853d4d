package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/pkg/errors"
)

// AlertRepository implements alert.Repository
type AlertRepository struct {
	db *sql.DB
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *sql.DB) alert.Repository {
	return &AlertRepository{db: db}
}

// Create creates a new rule
func (r *AlertRepository) Create(ctx context.Context, rule *alert.Rule) (int64, error) {
	query := `
		INSERT INTO alerts (user_id, type, model, threshold, "window", cadence, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		rule.UserID, rule.Kind, rule.Model, rule.Threshold, rule.Window, rule.Cadence, rule.Active,
	).Scan(&id)
	if err != nil {
		return 0, errors.DatabaseError("Failed to create alert", err)
	}
	rule.ID = id

	return id, nil
}

// GetByID retrieves a rule owned by the given user
func (r *AlertRepository) GetByID(ctx context.Context, userID int64, id int64) (*alert.Rule, error) {
	query := `
		SELECT id, user_id, type, model, threshold, "window", cadence, active, created_at
		FROM alerts
		WHERE id = $1 AND user_id = $2
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Alert")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get alert", err)
	}

	return rule, nil
}

// Update updates a rule
func (r *AlertRepository) Update(ctx context.Context, rule *alert.Rule) error {
	query := `
		UPDATE alerts
		SET type = $1, model = $2, threshold = $3, "window" = $4, cadence = $5, active = $6
		WHERE id = $7 AND user_id = $8
	`

	result, err := r.db.ExecContext(ctx, query,
		rule.Kind, rule.Model, rule.Threshold, rule.Window, rule.Cadence, rule.Active,
		rule.ID, rule.UserID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update alert", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to check update result", err)
	}
	if affected == 0 {
		return errors.NotFound("Alert")
	}

	return nil
}

// Delete deletes a rule
func (r *AlertRepository) Delete(ctx context.Context, userID int64, id int64) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM alerts WHERE id = $1 AND user_id = $2", id, userID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to delete alert", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to check delete result", err)
	}
	if affected == 0 {
		return errors.NotFound("Alert")
	}

	return nil
}

// ListByUser retrieves a user's rules with filters
func (r *AlertRepository) ListByUser(ctx context.Context, userID int64, filter alert.Filter) ([]*alert.Rule, error) {
	query := `
		SELECT id, user_id, type, model, threshold, "window", cadence, active, created_at
		FROM alerts
		WHERE user_id = $1
	`
	args := []interface{}{userID}

	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Model != "" {
		args = append(args, filter.Model)
		query += fmt.Sprintf(" AND model = $%d", len(args))
	}
	if filter.ActiveOnly {
		args = append(args, true)
		query += fmt.Sprintf(" AND active = $%d", len(args))
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list alerts", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

// ListActive retrieves every active rule across users, ordered by id
func (r *AlertRepository) ListActive(ctx context.Context) ([]*alert.Rule, error) {
	query := `
		SELECT id, user_id, type, model, threshold, "window", cadence, active, created_at
		FROM alerts
		WHERE active = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, true)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list active alerts", err)
	}
	defer rows.Close()

	return collectRules(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*alert.Rule, error) {
	var rule alert.Rule
	err := row.Scan(
		&rule.ID, &rule.UserID, &rule.Kind, &rule.Model, &rule.Threshold,
		&rule.Window, &rule.Cadence, &rule.Active, &rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

func collectRules(rows *sql.Rows) ([]*alert.Rule, error) {
	var rules []*alert.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan alert", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to read alerts", err)
	}
	return rules, nil
}
