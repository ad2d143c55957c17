package app

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/dvloznov/finance-copilot/internal/logger"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler publishes report jobs on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	app        *App
	schedule   string
	reportType string
	log        zerolog.Logger
}

// NewScheduler creates a scheduler for the configured report schedule.
func NewScheduler(a *App) *Scheduler {
	log := logger.Component(a.Log, "scheduler")
	cronLog := cronLogger{log: log}
	return &Scheduler{
		cron:       cron.New(cron.WithChain(cron.Recover(cronLog)), cron.WithLogger(cronLog)),
		app:        a,
		schedule:   a.Config.ReportSchedule,
		reportType: a.Config.ScheduledReportType,
		log:        log,
	}
}

// Start registers the report job and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.publishReport); err != nil {
		return fmt.Errorf("Start: schedule %q: %w", s.schedule, err)
	}
	s.log.Info().Str("schedule", s.schedule).Str("report_type", s.reportType).Msg("Scheduled report job")
	s.cron.Start()
	return nil
}

// Stop stops the scheduler; the returned context is done once running
// invocations finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// publishReport picks up state persisted by other processes before queueing
// the report. A failed reload falls back to the state already in memory.
func (s *Scheduler) publishReport() {
	ctx := context.Background()
	if err := s.app.Store.Reload(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to reload finance state, reporting from memory")
	}

	out, err := s.app.Dispatcher.Dispatch(ctx, intent.Intent{
		Kind:       intent.KindReport,
		ReportType: s.reportType,
	})
	if err != nil {
		s.log.Error().Err(err).Str("report_type", s.reportType).Msg("Failed to publish scheduled report")
		return
	}
	s.log.Info().Str("job_id", out.JobID).Str("report_type", s.reportType).Msg("Published scheduled report")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
