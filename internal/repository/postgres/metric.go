package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/pkg/errors"
)

// MetricRepository implements metric.Repository
type MetricRepository struct {
	db *sql.DB
}

// NewMetricRepository creates a new metric repository
func NewMetricRepository(db *sql.DB) metric.Repository {
	return &MetricRepository{db: db}
}

// Insert stores one probe result
func (r *MetricRepository) Insert(ctx context.Context, s *metric.Sample) error {
	query := `
		INSERT INTO results (ts, model, latency_s, tps, cost_usd, in_tokens, out_tokens, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.Timestamp, s.Model, s.LatencyS, s.TPS, s.CostUSD, s.InTokens, s.OutTokens, s.Error,
	)
	if err != nil {
		return errors.DatabaseError("Failed to insert result", err)
	}

	return nil
}

// Recent returns up to limit samples newer than since, newest first.
// An empty model matches all models.
func (r *MetricRepository) Recent(ctx context.Context, model string, since time.Time, limit int) ([]metric.Sample, error) {
	query := `
		SELECT ts, model, latency_s, tps, cost_usd, in_tokens, out_tokens, error
		FROM results
		WHERE ts >= $1
	`
	args := []interface{}{since}

	if model != "" {
		args = append(args, model)
		query += fmt.Sprintf(" AND model = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY ts DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to query results", err)
	}
	defer rows.Close()

	var samples []metric.Sample
	for rows.Next() {
		var s metric.Sample
		err := rows.Scan(
			&s.Timestamp, &s.Model, &s.LatencyS, &s.TPS, &s.CostUSD,
			&s.InTokens, &s.OutTokens, &s.Error,
		)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan result", err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to read results", err)
	}

	return samples, nil
}

// Models returns the distinct model identifiers seen since the given time
func (r *MetricRepository) Models(ctx context.Context, since time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT model
		FROM results
		WHERE ts >= $1
		ORDER BY model
	`

	rows, err := r.db.QueryContext(ctx, query, since)
	if err != nil {
		return nil, errors.DatabaseError("Failed to query models", err)
	}
	defer rows.Close()

	var models []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, errors.DatabaseError("Failed to scan model", err)
		}
		models = append(models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to read models", err)
	}

	return models, nil
}
