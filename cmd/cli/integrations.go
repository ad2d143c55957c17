package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/dvloznov/finance-copilot/internal/app"
	infraBQ "github.com/dvloznov/finance-copilot/internal/infra/bigquery"
	"github.com/dvloznov/finance-copilot/internal/notionsync"
)

func runExportBigQuery(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("export-bigquery", flag.ExitOnError)
	summary := fs.Bool("summary", false, "Print spending by category for the last 30 days after the export")
	fs.Parse(args)

	cfg := a.Config
	if cfg.BigQueryProject == "" {
		return errors.New("BIGQUERY_PROJECT is required")
	}

	exporter, err := infraBQ.NewExporter(ctx, cfg.BigQueryProject, cfg.BigQueryDataset, cfg.BigQueryTable, a.Log)
	if err != nil {
		return err
	}
	defer exporter.Close()

	if err := exporter.EnsureTable(ctx); err != nil {
		return err
	}

	n, err := exporter.ExportTransactions(ctx, a.Store.Transactions())
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d transactions to %s.%s\n", n, cfg.BigQueryDataset, cfg.BigQueryTable)

	if !*summary {
		return nil
	}

	end := time.Now()
	totals, err := exporter.SpendingByCategory(ctx, end.AddDate(0, 0, -30), end)
	if err != nil {
		return err
	}
	fmt.Println("\n=== Spending by category (30 days) ===")
	for _, t := range totals {
		fmt.Printf("%-24s %10.2f  (%d)\n", t.Category, t.Total, t.Count)
	}
	return nil
}

func runSyncNotion(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("sync-notion", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Show what would change without writing to Notion")
	fs.Parse(args)

	cfg := a.Config
	if cfg.NotionToken == "" || cfg.NotionTransactionsDB == "" {
		return errors.New("NOTION_TOKEN and NOTION_TRANSACTIONS_DB are required")
	}

	client := notionsync.NewClient(cfg.NotionToken)

	res, err := notionsync.SyncTransactions(ctx, client, cfg.NotionTransactionsDB, a.Store.Transactions(), *dryRun)
	if err != nil {
		return err
	}
	printSyncResult("Transactions", res, *dryRun)

	if cfg.NotionAccountsDB == "" {
		return nil
	}
	res, err = notionsync.SyncAccounts(ctx, client, cfg.NotionAccountsDB, a.Store.Accounts(), *dryRun)
	if err != nil {
		return err
	}
	printSyncResult("Accounts", res, *dryRun)
	return nil
}

func printSyncResult(what string, res notionsync.Result, dryRun bool) {
	prefix := ""
	if dryRun {
		prefix = "[dry run] "
	}
	fmt.Printf("%s%s: %d created, %d updated, %d deleted, %d failed\n",
		prefix, what, res.Created, res.Updated, res.Deleted, res.Failed)
}
