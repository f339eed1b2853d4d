// pulse-scheduler is the external-cron entrypoint: one alert evaluation
// pass or one probe pass per invocation, then exit. The alerts command
// requires the cron token so a misconfigured job fails before touching data.
package main

import (
	"context"
	"crypto/subtle"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/optaimi/pulse/internal/config"
	"github.com/optaimi/pulse/internal/mailer"
	"github.com/optaimi/pulse/internal/pkg/logger"
	"github.com/optaimi/pulse/internal/probe"
	"github.com/optaimi/pulse/internal/repository/postgres"
	"github.com/optaimi/pulse/internal/scheduler"
	"github.com/optaimi/pulse/migrations"
)

var cronToken string

var rootCmd = &cobra.Command{
	Use:   "pulse-scheduler",
	Short: "Run one scheduled pass of the Pulse monitoring engine",
	Long: `pulse-scheduler runs a single pass of either alert evaluation or
provider probes and exits. It is designed to be invoked by an external
cron service; the long-running API server carries its own in-process
schedule when SCHEDULER_ENABLED is set.`,
	SilenceUsage: true,
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate all active alert rules once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := load()
		if err != nil {
			return err
		}

		expected := viper.GetString("cron_token")
		if expected == "" {
			return fmt.Errorf("CRON_TOKEN is not configured")
		}
		if subtle.ConstantTimeCompare([]byte(cronToken), []byte(expected)) != 1 {
			return fmt.Errorf("cron token mismatch")
		}

		db, err := postgres.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if err := postgres.RunMigrations(db, migrations.GetFS(cfg.Database.Driver)); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		runner := scheduler.NewRunner(
			postgres.NewAlertRepository(db),
			postgres.NewUserRepository(db),
			postgres.NewMetricRepository(db),
			postgres.NewDispatchRepository(db),
			postgres.NewSettingsRepository(db),
			mailer.NewBrevo(cfg.Email, log),
			log,
			cfg.Scheduler.DashboardBaseURL,
		)

		sum, err := runner.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("evaluated %d of %d active rules: %d triggered, %d sent, %d failed, %d errors\n",
			sum.Evaluated, sum.Active, sum.Triggered, sum.Sent, sum.Failed, sum.Errors)
		if sum.SkippedCadence > 0 || sum.SkippedQuiet > 0 {
			fmt.Printf("skipped %d on cadence, %d in quiet hours\n", sum.SkippedCadence, sum.SkippedQuiet)
		}
		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe every configured LLM provider once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := load()
		if err != nil {
			return err
		}

		db, err := postgres.New(cfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer db.Close()

		if err := postgres.RunMigrations(db, migrations.GetFS(cfg.Database.Driver)); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		probes := probe.NewSet(cfg.Probe, postgres.NewMetricRepository(db), log)
		samples, failed := probes.Run(context.Background())

		ok := 0
		for _, s := range samples {
			if s.Error == nil {
				ok++
				continue
			}
			fmt.Printf("%s: %s\n", s.Model, *s.Error)
		}
		fmt.Printf("probed %d providers: %d ok, %d storage errors\n", len(samples), ok, failed)

		if ok == 0 && len(samples) > 0 {
			return fmt.Errorf("every probe failed")
		}
		return nil
	},
}

func load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}
	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return cfg, log, nil
}

func init() {
	viper.SetEnvPrefix("")
	viper.AutomaticEnv()
	_ = viper.BindEnv("cron_token", "CRON_TOKEN")

	alertsCmd.Flags().StringVar(&cronToken, "cron", "", "cron token matching CRON_TOKEN")
	_ = alertsCmd.MarkFlagRequired("cron")

	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
