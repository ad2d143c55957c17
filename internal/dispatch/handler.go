package dispatch

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-copilot/internal/jobs"
	"github.com/rs/zerolog"
)

// ReportGenerator produces a report and returns where it was stored.
type ReportGenerator interface {
	Generate(ctx context.Context, reportType string) (string, error)
}

// NewReportJobHandler returns the job handler that generates reports for
// published ReportJobs and announces the result.
func NewReportJobHandler(gen ReportGenerator, notifier Notifier, log zerolog.Logger) jobs.Handler {
	if notifier == nil {
		notifier = discard{}
	}
	return func(ctx context.Context, rj *jobs.ReportJob) error {
		jobLog := log.With().Str("job_id", rj.JobID).Str("report_type", rj.ReportType).Logger()

		location, err := gen.Generate(ctx, rj.ReportType)
		if err != nil {
			jobLog.Error().Err(err).Int("attempt", rj.Attempt()).Msg("Report generation failed")
			if rj.LastAttempt() {
				n := failureNotice()
				n.JobID = rj.JobID
				notifier.Notify(ctx, n)
			}
			return err
		}

		rj.Location = location
		jobLog.Info().Str("location", location).Msg("Report job completed")
		notifier.Notify(ctx, Notice{
			Title:    TitleGenerated,
			Message:  fmt.Sprintf("Your %s report has been created successfully.", rj.ReportType),
			Actions:  []string{ActionViewShare, ActionClose},
			Location: location,
			JobID:    rj.JobID,
		})
		return nil
	}
}
