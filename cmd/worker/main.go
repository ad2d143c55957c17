// Command worker runs the report queue and publishes the scheduled report
// until it receives SIGINT or SIGTERM.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/finance-copilot/internal/app"
	"github.com/dvloznov/finance-copilot/internal/config"
	"github.com/dvloznov/finance-copilot/internal/logger"
	"github.com/rs/zerolog"
)

const shutdownGrace = 30 * time.Second

func main() {
	envFile := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Worker stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(logger.WithContext(context.Background(), log), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialise services: %w", err)
	}
	// Workers outlive the signal context so queued jobs can finish during
	// the grace period.
	if err := a.StartJobs(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("start report workers: %w", err)
	}

	scheduler := app.NewScheduler(a)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	log.Info().
		Str("schedule", cfg.ReportSchedule).
		Str("report_type", cfg.ScheduledReportType).
		Msg("Worker running")

	<-ctx.Done()
	log.Info().Msg("Shutting down worker")

	graceCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	select {
	case <-scheduler.Stop().Done():
	case <-graceCtx.Done():
		log.Warn().Msg("Scheduled publish still running at shutdown")
	}
	if err := a.Close(graceCtx); err != nil {
		return fmt.Errorf("close services: %w", err)
	}
	log.Info().Msg("Worker exited")
	return nil
}
