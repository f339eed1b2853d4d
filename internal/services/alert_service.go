package services

import (
	"context"
	"strconv"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/pkg/errors"
	"github.com/optaimi/pulse/internal/pkg/logger"
)

// AlertService implements alert.Service
type AlertService struct {
	repo    alert.Repository
	samples metric.Repository
	logger  *logger.Logger
	now     func() time.Time
}

// NewAlertService creates a new alert service
func NewAlertService(repo alert.Repository, samples metric.Repository, log *logger.Logger) alert.Service {
	return &AlertService{
		repo:    repo,
		samples: samples,
		logger:  log,
		now:     time.Now,
	}
}

// Create validates and creates a rule
func (s *AlertService) Create(ctx context.Context, r *alert.Rule) (int64, error) {
	r.Window = r.Window.Normalize()
	if r.Cadence == "" {
		r.Cadence = alert.Cadence1h
	}

	if err := validateRule(r.Kind, r.Threshold, r.Window, r.Cadence); err != nil {
		return 0, err
	}

	id, err := s.repo.Create(ctx, r)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to create alert")
		return 0, err
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_id": id,
		"user_id":  r.UserID,
		"type":     r.Kind,
		"model":    r.Model,
	}).Info("Alert created")

	return id, nil
}

// GetByID retrieves a rule
func (s *AlertService) GetByID(ctx context.Context, userID int64, id int64) (*alert.Rule, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// Update applies partial updates to a rule
func (s *AlertService) Update(ctx context.Context, userID int64, id int64, updates map[string]interface{}) (*alert.Rule, error) {
	r, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if typ, ok := updates["type"].(string); ok {
		r.Kind = alert.Kind(typ)
	}
	if model, ok := updates["model"].(string); ok {
		r.Model = model
	}
	if threshold, ok := updates["threshold"]; ok {
		switch v := threshold.(type) {
		case nil:
			r.Threshold = nil
		case string:
			r.Threshold = &v
		case float64:
			str := strconv.FormatFloat(v, 'f', -1, 64)
			r.Threshold = &str
		}
	}
	if window, ok := updates["window"].(string); ok {
		r.Window = metric.Window(window).Normalize()
	}
	if cadence, ok := updates["cadence"].(string); ok {
		r.Cadence = alert.Cadence(cadence)
	}
	if active, ok := updates["active"].(bool); ok {
		r.Active = active
	}

	if err := validateRule(r.Kind, r.Threshold, r.Window, r.Cadence); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, r); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update alert")
		return nil, err
	}

	return r, nil
}

// Delete deletes a rule
func (s *AlertService) Delete(ctx context.Context, userID int64, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"alert_id": id,
		"user_id":  userID,
	}).Info("Alert deleted")

	return nil
}

// List retrieves a user's rules
func (s *AlertService) List(ctx context.Context, userID int64, filter alert.Filter) ([]*alert.Rule, error) {
	return s.repo.ListByUser(ctx, userID, filter)
}

// Test evaluates a candidate rule against recent metrics without
// dispatching or auditing anything
func (s *AlertService) Test(ctx context.Context, draft alert.Draft) (*alert.TriggerResult, error) {
	r := &alert.Rule{
		Kind:      draft.Kind,
		Model:     draft.Model,
		Threshold: draft.Threshold,
		Window:    draft.Window.Normalize(),
		Cadence:   alert.Cadence1h,
	}

	if err := validateRule(r.Kind, r.Threshold, r.Window, r.Cadence); err != nil {
		return nil, err
	}

	samples, err := s.samples.Recent(ctx, r.Model, r.Window.Start(s.now()), metric.RecentLimit)
	if err != nil {
		return nil, err
	}

	result, err := alert.Evaluate(r, samples)
	if err != nil {
		return nil, errors.BadRequest(err.Error())
	}

	return result, nil
}

// validateRule rejects unknown enum values and missing or non-positive
// thresholds for the kinds that require one
func validateRule(kind alert.Kind, threshold *string, window metric.Window, cadence alert.Cadence) error {
	if !kind.Valid() {
		return errors.BadRequest("Unknown alert type: " + string(kind))
	}
	if !window.Valid() {
		return errors.BadRequest("Unknown window: " + string(window))
	}
	if !cadence.Valid() {
		return errors.BadRequest("Unknown cadence: " + string(cadence))
	}

	if kind.RequiresThreshold() {
		if threshold == nil || *threshold == "" {
			return errors.BadRequest("Threshold is required for " + string(kind) + " alerts")
		}
		v, err := strconv.ParseFloat(*threshold, 64)
		if err != nil {
			return errors.BadRequest("Threshold must be a number")
		}
		if v <= 0 {
			return errors.BadRequest("Threshold must be positive")
		}
	}

	return nil
}
