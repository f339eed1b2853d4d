package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/optaimi/pulse/internal/domain/alert"
	"github.com/optaimi/pulse/internal/domain/dispatch"
	"github.com/optaimi/pulse/internal/domain/metric"
	"github.com/optaimi/pulse/internal/domain/settings"
	"github.com/optaimi/pulse/internal/domain/user"
	"github.com/optaimi/pulse/internal/mailer"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/metrics"
)

// Summary is the per-run accounting reported after one evaluation pass
type Summary struct {
	Active         int `json:"active"`
	Evaluated      int `json:"evaluated"`
	Triggered      int `json:"triggered"`
	Sent           int `json:"sent"`
	Failed         int `json:"failed"`
	SkippedCadence int `json:"skipped_cadence"`
	SkippedQuiet   int `json:"skipped_quiet_hours"`
	Errors         int `json:"errors"`
}

// Runner performs one evaluation pass over all active alert rules. It holds
// no state between runs; the dispatch audit trail is the only persisted
// output. Rules are processed sequentially in id order so runs are
// reproducible, and every per-rule failure is contained to that rule.
type Runner struct {
	rules       alert.Repository
	users       user.Repository
	samples     metric.Repository
	events      dispatch.Repository
	cadenceGate *CadenceGate
	quietGate   *QuietGate
	mail        mailer.Mailer
	logger      *logger.Logger
	now         func() time.Time
	dashboard   string
}

// NewRunner wires a run loop over the given stores and mailer
func NewRunner(
	rules alert.Repository,
	users user.Repository,
	samples metric.Repository,
	events dispatch.Repository,
	sets settings.Repository,
	mail mailer.Mailer,
	log *logger.Logger,
	dashboardBaseURL string,
) *Runner {
	return &Runner{
		rules:       rules,
		users:       users,
		samples:     samples,
		events:      events,
		cadenceGate: NewCadenceGate(events),
		quietGate:   NewQuietGate(sets),
		mail:        mail,
		logger:      log,
		now:         time.Now,
		dashboard:   dashboardBaseURL,
	}
}

// WithClock overrides the runner's clock, for tests
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// Run executes one evaluation pass. Only a failure to load the rule set
// aborts the run; everything after that is contained per rule.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := r.now()
	defer func() { metrics.RecordSchedulerRun(time.Since(start)) }()

	var sum Summary

	rules, err := r.rules.ListActive(ctx)
	if err != nil {
		return sum, fmt.Errorf("failed to load active alerts: %w", err)
	}
	sum.Active = len(rules)

	r.logger.WithFields(map[string]interface{}{
		"active": len(rules),
	}).Info("Starting alert evaluation pass")

	for _, rule := range rules {
		if err := r.processRule(ctx, rule, &sum); err != nil {
			sum.Errors++
			r.logger.WithFields(map[string]interface{}{
				"alert_id": rule.ID,
				"user_id":  rule.UserID,
				"kind":     rule.Kind,
			}).ErrorWithErr(err, "Alert evaluation failed")
		}
	}

	r.logger.WithFields(map[string]interface{}{
		"active":           sum.Active,
		"evaluated":        sum.Evaluated,
		"triggered":        sum.Triggered,
		"sent":             sum.Sent,
		"failed":           sum.Failed,
		"skipped_cadence":  sum.SkippedCadence,
		"skipped_quiet":    sum.SkippedQuiet,
		"errors":           sum.Errors,
		"duration_seconds": time.Since(start).Seconds(),
	}).Info("Alert evaluation pass complete")

	return sum, nil
}

// processRule runs the full pipeline for one rule: suppression gates,
// metric fetch, evaluation, dispatch and audit. Returned errors are counted
// against this rule only.
func (r *Runner) processRule(ctx context.Context, rule *alert.Rule, sum *Summary) error {
	now := r.now()
	log := r.logger.WithFields(map[string]interface{}{
		"alert_id": rule.ID,
		"user_id":  rule.UserID,
		"kind":     rule.Kind,
	})

	passes, err := r.cadenceGate.Passes(ctx, rule.UserID, rule.ID, rule.Cadence, now)
	if err != nil {
		return fmt.Errorf("cadence check: %w", err)
	}
	if !passes {
		sum.SkippedCadence++
		metrics.RecordAlertSkipped(ReasonCadence)
		log.With("reason", ReasonCadence).Info("Alert skipped")
		return nil
	}

	quiet, err := r.quietGate.IsQuiet(ctx, rule.UserID, now)
	if err != nil {
		return fmt.Errorf("quiet hours check: %w", err)
	}
	if quiet {
		sum.SkippedQuiet++
		metrics.RecordAlertSkipped(ReasonQuietHours)
		log.With("reason", ReasonQuietHours).Info("Alert skipped")
		return nil
	}

	window := rule.Window.Normalize()
	samples, err := r.samples.Recent(ctx, rule.Model, window.Start(now), metric.RecentLimit)
	if err != nil {
		return fmt.Errorf("fetch metrics: %w", err)
	}

	sum.Evaluated++
	result, err := alert.Evaluate(rule, samples)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	if result == nil {
		log.Info("Alert not triggered")
		return nil
	}

	sum.Triggered++
	metrics.RecordAlertTriggered(string(rule.Kind))
	log.With("comparison", result.Comparison).Info("Alert triggered")

	owner, err := r.users.GetByID(ctx, rule.UserID)
	if err != nil {
		return fmt.Errorf("load owner: %w", err)
	}

	status := dispatch.StatusSent
	if err := r.dispatch(ctx, owner.Email, rule, result, now); err != nil {
		status = dispatch.StatusFailed
		sum.Failed++
		log.ErrorWithErr(err, "Notification send failed")
	} else {
		sum.Sent++
	}
	metrics.RecordEmail(status)

	// The audit record is written for both outcomes; losing it would let the
	// next run bypass cadence, so a write failure is this rule's error.
	if err := r.audit(ctx, rule, result, status, now); err != nil {
		return fmt.Errorf("record dispatch: %w", err)
	}

	return nil
}

// dispatch renders and sends the notification email
func (r *Runner) dispatch(ctx context.Context, to string, rule *alert.Rule, result *alert.TriggerResult, now time.Time) error {
	body, err := mailer.AlertBody(rule, result, now, r.dashboard)
	if err != nil {
		return err
	}
	return r.mail.Send(ctx, to, mailer.AlertSubject(rule), body)
}

// audit appends the dispatch record that feeds future cadence decisions
func (r *Runner) audit(ctx context.Context, rule *alert.Rule, result *alert.TriggerResult, status string, now time.Time) error {
	payload, err := json.Marshal(dispatch.Payload{
		AlertType:  string(rule.Kind),
		Model:      rule.Model,
		Evaluation: result,
		Timestamp:  now.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	return r.events.Create(ctx, &dispatch.Record{
		UserID:  rule.UserID,
		AlertID: rule.ID,
		Status:  status,
		Payload: payload,
		SentAt:  now,
	})
}
