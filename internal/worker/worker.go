// Package worker runs the in-process cron schedule: periodic provider probes
// and alert evaluation passes. It is optional; deployments driven by an
// external cron hit the scheduler CLI or the run endpoint instead.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/optaimi/pulse/internal/config"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/probe"
	"github.com/optaimi/pulse/internal/scheduler"
)

// Worker owns the cron entries for probes and alert evaluation
type Worker struct {
	cfg    config.SchedulerConfig
	runner *scheduler.Runner
	probes *probe.Set
	logger *logger.Logger

	mu        sync.Mutex
	cron      *cron.Cron
	isRunning bool
}

// New creates a worker over the given runner and probe set
func New(cfg config.SchedulerConfig, runner *scheduler.Runner, probes *probe.Set, log *logger.Logger) *Worker {
	return &Worker{
		cfg:    cfg,
		runner: runner,
		probes: probes,
		logger: log,
	}
}

// Start registers the cron entries and starts the schedule
func (w *Worker) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return fmt.Errorf("worker is already running")
	}

	w.cron = cron.New()

	if _, err := w.cron.AddFunc(w.cfg.AlertSchedule, w.runAlerts); err != nil {
		return fmt.Errorf("invalid alert schedule %q: %w", w.cfg.AlertSchedule, err)
	}
	if _, err := w.cron.AddFunc(w.cfg.ProbeSchedule, w.runProbes); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", w.cfg.ProbeSchedule, err)
	}

	w.cron.Start()
	w.isRunning = true

	w.logger.WithFields(map[string]interface{}{
		"alert_schedule": w.cfg.AlertSchedule,
		"probe_schedule": w.cfg.ProbeSchedule,
	}).Info("Scheduler worker started")

	return nil
}

// Stop halts the schedule and waits for running entries to finish
func (w *Worker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.isRunning {
		return
	}

	ctx := w.cron.Stop()
	<-ctx.Done()
	w.isRunning = false

	w.logger.Info("Scheduler worker stopped")
}

func (w *Worker) runAlerts() {
	sum, err := w.runner.Run(context.Background())
	if err != nil {
		w.logger.ErrorWithErr(err, "Scheduled alert evaluation failed")
		return
	}
	w.logger.WithFields(map[string]interface{}{
		"evaluated": sum.Evaluated,
		"sent":      sum.Sent,
		"errors":    sum.Errors,
	}).Info("Scheduled alert evaluation finished")
}

func (w *Worker) runProbes() {
	samples, failed := w.probes.Run(context.Background())
	w.logger.WithFields(map[string]interface{}{
		"probes":         len(samples),
		"storage_errors": failed,
	}).Info("Scheduled probe pass finished")
}
