package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-copilot/internal/config"
	"github.com/dvloznov/finance-copilot/internal/dispatch"
	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/dvloznov/finance-copilot/internal/jobs"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	notices []dispatch.Notice
}

func (r *recordingNotifier) Notify(_ context.Context, n dispatch.Notice) {
	r.notices = append(r.notices, n)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		LogLevel:             "info",
		AssistantTimeout:     time.Second,
		AssistantMaxAttempts: 1,
		AssistantBackoffBase: time.Millisecond,
		StateBackend:         config.BackendFile,
		StateDir:             filepath.Join(dir, "data"),
		StateName:            "finance-storage",
		ReportBackend:        config.BackendFile,
		ReportDir:            filepath.Join(dir, "reports"),
		ReportCacheDir:       filepath.Join(dir, "cache"),
		ReportSchedule:       "0 8 1 * *",
		ScheduledReportType:  "Summary",
		JobWorkers:           1,
	}
}

func TestAppReportRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := testConfig(t)
	rec := &recordingNotifier{}
	a, err := New(ctx, cfg, zerolog.Nop(), WithNotifier(rec))
	require.NoError(t, err)
	require.NoError(t, a.StartJobs(ctx))

	a.Store.AddAccount(domain.Account{Name: "Everyday", Type: domain.AccountChecking, Balance: decimal.NewFromInt(1000)})
	a.Store.AddTransaction(domain.Transaction{Amount: decimal.NewFromInt(-30), Category: "Food", Date: "2024-05-01", Type: domain.TransactionExpense})

	out, err := a.Dispatcher.Dispatch(ctx, intent.Intent{Kind: intent.KindReport, ReportType: "Expense"})
	require.NoError(t, err)
	require.NoError(t, a.Queue.Wait(ctx))

	job, err := a.Jobs.GetJob(ctx, out.JobID)
	require.NoError(t, err)
	require.Equal(t, jobs.JobStatusCompleted, job.Status, job.Error)
	assert.Equal(t, cfg.ReportDir, filepath.Dir(job.Location))
	assert.True(t, strings.HasPrefix(filepath.Base(job.Location), "expense-report-"))

	html, err := os.ReadFile(job.Location)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Food")

	require.Len(t, rec.notices, 2)
	assert.Equal(t, dispatch.TitleGenerated, rec.notices[1].Title)
	assert.Len(t, a.Notices.Notices(), 2)

	require.NoError(t, a.Close(ctx))
	_, err = os.Stat(filepath.Join(cfg.StateDir, "finance-storage.json"))
	assert.NoError(t, err)
}

func TestAppRestoresState(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	id := a.Store.AddAccount(domain.Account{Name: "Rainy day", Type: domain.AccountSavings})
	require.NoError(t, a.Close(ctx))

	b, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close(ctx)

	acc, ok := b.Store.Account(id)
	require.True(t, ok)
	assert.Equal(t, "Rainy day", acc.Name)
}

func TestAppAssistantFallsBackWithoutKey(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close(ctx)

	reply, err := a.Assistant.Ask(ctx, "How should I budget?")
	require.NoError(t, err)
	assert.True(t, reply.Backup)
	assert.NotEmpty(t, reply.Text)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.ReportSchedule = "every tuesday"

	a, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Error(t, NewScheduler(a).Start())
}

func TestSchedulerPublishesReport(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := New(ctx, testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, a.StartJobs(ctx))
	defer a.Close(ctx)

	NewScheduler(a).publishReport()
	require.NoError(t, a.Queue.Wait(ctx))

	list, err := a.Jobs.ListJobs(ctx, jobs.JobFilter{ReportType: "Summary"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, jobs.JobStatusCompleted, list[0].Status)
}

func TestSchedulerReportsStateSavedElsewhere(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cfg := testConfig(t)
	cfg.ScheduledReportType = "Expense"

	worker, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, worker.StartJobs(ctx))
	defer worker.Close(ctx)

	cli, err := New(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	cli.Store.AddTransaction(domain.Transaction{Amount: decimal.NewFromInt(-42), Category: "Groceries", Date: "2024-05-03", Type: domain.TransactionExpense})
	require.NoError(t, cli.Close(ctx))

	NewScheduler(worker).publishReport()
	require.NoError(t, worker.Queue.Wait(ctx))

	list, err := worker.Jobs.ListJobs(ctx, jobs.JobFilter{ReportType: "Expense"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, jobs.JobStatusCompleted, list[0].Status, list[0].Error)

	html, err := os.ReadFile(list[0].Location)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Groceries")
	assert.Len(t, worker.Store.Transactions(), 1)
}
