package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/optaimi/pulse/internal/api/handlers"
	"github.com/optaimi/pulse/internal/api/router"
	"github.com/optaimi/pulse/internal/config"
	"github.com/optaimi/pulse/internal/fx"
	"github.com/optaimi/pulse/internal/mailer"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/pkg/validator"
	"github.com/optaimi/pulse/internal/probe"
	"github.com/optaimi/pulse/internal/repository/postgres"
	"github.com/optaimi/pulse/internal/scheduler"
	"github.com/optaimi/pulse/internal/services"
	"github.com/optaimi/pulse/internal/worker"
	"github.com/optaimi/pulse/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS(cfg.Database.Driver)); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	alertRepo := postgres.NewAlertRepository(db)
	metricRepo := postgres.NewMetricRepository(db)
	dispatchRepo := postgres.NewDispatchRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Engine components
	mail := mailer.NewBrevo(cfg.Email, log)
	runner := scheduler.NewRunner(
		alertRepo, userRepo, metricRepo, dispatchRepo, settingsRepo,
		mail, log, cfg.Scheduler.DashboardBaseURL,
	)
	probes := probe.NewSet(cfg.Probe, metricRepo, log)
	rates := fx.NewCache()

	// Services
	alertService := services.NewAlertService(alertRepo, metricRepo, log)
	metricService := services.NewMetricService(metricRepo, settingsRepo, rates, probes, log)
	settingsService := services.NewSettingsService(settingsRepo, log)
	userService := services.NewUserService(userRepo, cfg.Auth, log)

	// HTTP surface
	val := validator.New()
	h := &router.Handlers{
		Health:    handlers.NewHealthHandler(db, log),
		Auth:      handlers.NewAuthHandler(userService, cfg, log, val),
		Alert:     handlers.NewAlertHandler(alertService, log, val),
		Metric:    handlers.NewMetricHandler(metricService, log),
		Settings:  handlers.NewSettingsHandler(settingsService, log, val),
		Scheduler: handlers.NewSchedulerHandler(runner, cfg.Scheduler.CronToken, log),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Optional in-process cron
	var w *worker.Worker
	if cfg.Scheduler.Enabled {
		w = worker.New(cfg.Scheduler, runner, probes, log)
		if err := w.Start(); err != nil {
			log.Fatalf("Failed to start scheduler worker: %v", err)
		}
	}

	go func() {
		log.With("addr", srv.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	if w != nil {
		w.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.ErrorWithErr(err, "Forced shutdown")
	}

	log.Info("Server stopped")
}
