// Package dispatch turns intents recognised in assistant replies into app
// effects: navigation requests for money movements and asynchronous report
// generation.
package dispatch

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/dvloznov/finance-copilot/internal/jobs"
	"github.com/rs/zerolog"
)

// Screen paths the dispatcher navigates to.
const (
	PathPurchaseInvestment = "/purchase-investment"
	PathSendMoney          = "/send-money"
)

// Route is a navigation request with string parameters.
type Route struct {
	Path   string            `json:"path"`
	Params map[string]string `json:"params"`
}

// Navigator opens screens. The CLI prints the route, the API returns it to
// the app shell.
type Navigator interface {
	Navigate(ctx context.Context, r Route) error
}

// Outcome describes what Dispatch did.
type Outcome struct {
	Route *Route `json:"route,omitempty"`
	JobID string `json:"jobId,omitempty"`
}

// Dispatcher executes intents.
type Dispatcher struct {
	navigator Navigator
	notifier  Notifier
	publisher jobs.Publisher
	log       zerolog.Logger

	// MaxRetries is copied onto every published report job.
	MaxRetries int
}

// New returns a Dispatcher. navigator may be nil, in which case routes are
// only reported in the Outcome.
func New(navigator Navigator, notifier Notifier, publisher jobs.Publisher, log zerolog.Logger) *Dispatcher {
	if notifier == nil {
		notifier = discard{}
	}
	return &Dispatcher{
		navigator: navigator,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
	}
}

// Dispatch executes in. Report generation is not awaited; its result is
// announced through the Notifier once the job finishes.
func (d *Dispatcher) Dispatch(ctx context.Context, in intent.Intent) (Outcome, error) {
	switch in.Kind {
	case intent.KindInvest:
		return d.navigate(ctx, Route{
			Path: PathPurchaseInvestment,
			Params: map[string]string{
				"amount": in.Amount.String(),
				"target": in.Target,
			},
		})

	case intent.KindTransfer:
		return d.navigate(ctx, Route{
			Path: PathSendMoney,
			Params: map[string]string{
				"amount": in.Amount.String(),
				"from":   in.From,
				"to":     in.To,
			},
		})

	case intent.KindReport:
		return d.report(ctx, in.ReportType)

	default:
		return Outcome{}, fmt.Errorf("Dispatch: %w: %q", intent.ErrUnknownKind, in.Kind)
	}
}

func (d *Dispatcher) navigate(ctx context.Context, r Route) (Outcome, error) {
	d.log.Info().Str("path", r.Path).Interface("params", r.Params).Msg("Navigating")
	if d.navigator != nil {
		if err := d.navigator.Navigate(ctx, r); err != nil {
			return Outcome{}, fmt.Errorf("Dispatch: navigate to %s: %w", r.Path, err)
		}
	}
	return Outcome{Route: &r}, nil
}

func (d *Dispatcher) report(ctx context.Context, reportType string) (Outcome, error) {
	d.notifier.Notify(ctx, Notice{
		Title:   TitleGenerating,
		Message: fmt.Sprintf("Creating %s report. Please wait...", reportType),
	})

	job := &jobs.ReportJob{ReportType: reportType, MaxRetries: d.MaxRetries}
	if err := d.publisher.PublishReport(ctx, job); err != nil {
		d.log.Error().Err(err).Str("report_type", reportType).Msg("Failed to publish report job")
		d.notifier.Notify(ctx, failureNotice())
		return Outcome{}, fmt.Errorf("Dispatch: publish report job: %w", err)
	}

	d.log.Info().Str("job_id", job.JobID).Str("report_type", reportType).Msg("Report job published")
	return Outcome{JobID: job.JobID}, nil
}
