// Package app assembles the finance services from configuration. The CLI,
// the API server and the worker all start from New.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finance-copilot/internal/assistant"
	"github.com/dvloznov/finance-copilot/internal/config"
	"github.com/dvloznov/finance-copilot/internal/dispatch"
	"github.com/dvloznov/finance-copilot/internal/gcs"
	"github.com/dvloznov/finance-copilot/internal/jobs/inmemory"
	"github.com/dvloznov/finance-copilot/internal/logger"
	"github.com/dvloznov/finance-copilot/internal/money"
	"github.com/dvloznov/finance-copilot/internal/persistence"
	"github.com/dvloznov/finance-copilot/internal/report"
	"github.com/dvloznov/finance-copilot/internal/store"
	"github.com/rs/zerolog"
)

// jobBufferSize is how many report jobs can wait for a worker.
const jobBufferSize = 100

// App holds the wired services.
type App struct {
	Config config.Config
	Log    zerolog.Logger

	Store        *store.Store
	Money        *money.Service
	Reports      *report.Service
	Jobs         *inmemory.Store
	Queue        *inmemory.Queue
	Notices      *dispatch.NoticeLog
	Dispatcher   *dispatch.Dispatcher
	Assistant    *assistant.Assistant
	Conversation *assistant.Conversation

	gcs     *gcs.Client
	notify  dispatch.Notifier
	started bool
}

// Option customises New.
type Option func(*options)

type options struct {
	navigator dispatch.Navigator
	notifiers []dispatch.Notifier
	completer assistant.Completer
}

// WithNavigator routes invest and transfer actions to n.
func WithNavigator(n dispatch.Navigator) Option {
	return func(o *options) { o.navigator = n }
}

// WithNotifier also delivers notices to n, besides the in-memory log.
func WithNotifier(n dispatch.Notifier) Option {
	return func(o *options) { o.notifiers = append(o.notifiers, n) }
}

// WithCompleter overrides the remote assistant.
func WithCompleter(c assistant.Completer) Option {
	return func(o *options) { o.completer = c }
}

// New opens the persisted state and wires every service. Report workers are
// not running until StartJobs is called.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Log: log}

	if cfg.UsesGCS() {
		client, err := gcs.NewClient(ctx, cfg.GCPCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
		a.gcs = client
	}

	st, err := store.Open(ctx, a.persister(), store.WithLogger(log))
	if err != nil {
		a.closeGCS()
		return nil, fmt.Errorf("New: %w", err)
	}
	a.Store = st
	a.Money = money.NewService(st)
	a.Reports = report.NewService(st, a.reportOutput(), log)

	a.Jobs = inmemory.NewStore()
	a.Queue = inmemory.NewQueue(jobBufferSize, cfg.JobWorkers, a.Jobs)
	a.Notices = dispatch.NewNoticeLog(dispatch.DefaultNoticeCapacity)
	a.notify = a.notifier(o.notifiers)
	a.Dispatcher = dispatch.New(o.navigator, a.notify, a.Queue, log)

	completer := o.completer
	if completer == nil && cfg.GeminiAPIKey != "" {
		gc, err := assistant.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Warn().Err(err).Msg("Gemini client unavailable, assistant will use backup replies")
		} else {
			completer = gc
		}
	}
	if completer == nil {
		log.Info().Msg("No assistant API key configured, assistant will use backup replies")
	}
	a.Assistant = assistant.New(completer, st, assistant.Options{
		Timeout:     cfg.AssistantTimeout,
		MaxAttempts: cfg.AssistantMaxAttempts,
		BackoffBase: cfg.AssistantBackoffBase,
	}, log)
	a.Conversation = assistant.NewConversation(a.Assistant)

	return a, nil
}

func (a *App) persister() store.Persister {
	if a.Config.StateBackend == config.BackendGCS {
		return persistence.NewGCSBlob(a.gcs, a.Config.GCSBucket, a.Config.StateName)
	}
	return persistence.NewFileBlob(a.Config.StateDir, a.Config.StateName)
}

func (a *App) reportOutput() report.Output {
	if a.Config.ReportBackend == config.BackendGCS {
		return report.GCSOutput{
			Objects:  a.gcs,
			Bucket:   a.Config.GCSBucket,
			Prefix:   "reports",
			CacheDir: a.Config.ReportCacheDir,
		}
	}
	return report.FileOutput{CacheDir: a.Config.ReportCacheDir, StableDir: a.Config.ReportDir}
}

func (a *App) notifier(extra []dispatch.Notifier) dispatch.Notifier {
	if len(extra) == 0 {
		return a.Notices
	}
	return fanout(append([]dispatch.Notifier{a.Notices}, extra...))
}

// StartJobs starts the report workers.
func (a *App) StartJobs(ctx context.Context) error {
	handler := dispatch.NewReportJobHandler(a.Reports, a.notify, logger.Component(a.Log, "report-worker"))
	if err := a.Queue.Start(ctx, handler); err != nil {
		return fmt.Errorf("StartJobs: %w", err)
	}
	a.started = true
	a.Log.Info().Int("workers", a.Config.JobWorkers).Msg("Report workers started")
	return nil
}

// Close waits for queued reports, stops the workers and flushes the state.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.started {
		if err := a.Queue.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("wait for report jobs: %w", err))
		}
	}
	if err := a.Queue.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop report workers: %w", err))
	}
	if err := a.Store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("flush state: %w", err))
	}
	a.closeGCS()
	return errors.Join(errs...)
}

func (a *App) closeGCS() {
	if a.gcs != nil {
		if err := a.gcs.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("Failed to close storage client")
		}
	}
}

type fanout []dispatch.Notifier

func (f fanout) Notify(ctx context.Context, n dispatch.Notice) {
	for _, notifier := range f {
		notifier.Notify(ctx, n)
	}
}
