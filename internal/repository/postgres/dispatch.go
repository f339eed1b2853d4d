package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/optaimi/pulse/internal/domain/dispatch"
	"github.com/optaimi/pulse/internal/pkg/errors"
)

// DispatchRepository implements dispatch.Repository
type DispatchRepository struct {
	db *sql.DB
}

// NewDispatchRepository creates a new dispatch repository
func NewDispatchRepository(db *sql.DB) dispatch.Repository {
	return &DispatchRepository{db: db}
}

// Create appends one audit record
func (r *DispatchRepository) Create(ctx context.Context, rec *dispatch.Record) error {
	query := `
		INSERT INTO email_events (user_id, alert_id, status, payload, sent_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var payload interface{}
	if len(rec.Payload) > 0 {
		payload = string(rec.Payload)
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		rec.UserID, rec.AlertID, rec.Status, payload, rec.SentAt,
	).Scan(&id)
	if err != nil {
		return errors.DatabaseError("Failed to record email event", err)
	}
	rec.ID = id

	return nil
}

// LatestSince returns the most recent record for the (user, alert) pair
// with sent_at >= since, or nil when there is none
func (r *DispatchRepository) LatestSince(ctx context.Context, userID, alertID int64, since time.Time) (*dispatch.Record, error) {
	query := `
		SELECT id, user_id, alert_id, status, payload, sent_at
		FROM email_events
		WHERE user_id = $1 AND alert_id = $2 AND sent_at >= $3
		ORDER BY sent_at DESC
		LIMIT 1
	`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, userID, alertID, since))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get latest email event", err)
	}

	return rec, nil
}

// ListByUser returns a user's records, newest first
func (r *DispatchRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*dispatch.Record, error) {
	query := `
		SELECT id, user_id, alert_id, status, payload, sent_at
		FROM email_events
		WHERE user_id = $1
		ORDER BY sent_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list email events", err)
	}
	defer rows.Close()

	var records []*dispatch.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan email event", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to read email events", err)
	}

	return records, nil
}

func scanRecord(row rowScanner) (*dispatch.Record, error) {
	var rec dispatch.Record
	var payload sql.NullString
	err := row.Scan(&rec.ID, &rec.UserID, &rec.AlertID, &rec.Status, &payload, &rec.SentAt)
	if err != nil {
		return nil, err
	}
	if payload.Valid {
		rec.Payload = []byte(payload.String)
	}
	return &rec, nil
}
