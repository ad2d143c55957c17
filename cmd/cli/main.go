package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/finance-copilot/internal/app"
	"github.com/dvloznov/finance-copilot/internal/config"
	"github.com/dvloznov/finance-copilot/internal/dispatch"
	"github.com/dvloznov/finance-copilot/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd, ok := commands[os.Args[1]]
	if !ok {
		switch os.Args[1] {
		case "help", "-h", "--help":
			printUsage()
			return
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	ctx := logger.WithContext(context.Background(), log)
	a, err := app.New(ctx, cfg, log,
		app.WithNavigator(printNavigator{}),
		app.WithNotifier(printNotifier{}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start")
	}

	runErr := cmd.run(ctx, a, os.Args[2:])

	closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down cleanly")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Str("command", os.Args[1]).Msg("Command failed")
	}
}

type command struct {
	usage string
	run   func(ctx context.Context, a *app.App, args []string) error
}

var commands = map[string]command{
	"accounts":        {"List accounts and balances", runAccounts},
	"add-account":     {"Create an account", runAddAccount},
	"deposit":         {"Add money to an account", runDeposit},
	"send":            {"Send money from an account", runSend},
	"buy":             {"Purchase an investment", runBuy},
	"transactions":    {"List recent transactions", runTransactions},
	"budgets":         {"List budgets", runBudgets},
	"add-budget":      {"Create a budget", runAddBudget},
	"investments":     {"List investment holdings", runInvestments},
	"insights":        {"List insights", runInsights},
	"report":          {"Generate a report", runReport},
	"chat":            {"Talk to the assistant", runChat},
	"export-bigquery": {"Export transactions to BigQuery", runExportBigQuery},
	"sync-notion":     {"Sync transactions and accounts to Notion", runSyncNotion},
}

var commandOrder = []string{
	"accounts", "add-account", "deposit", "send", "buy", "transactions",
	"budgets", "add-budget", "investments", "insights", "report", "chat",
	"export-bigquery", "sync-notion",
}

func printUsage() {
	fmt.Println("Finance Copilot CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	for _, name := range commandOrder {
		fmt.Printf("  %-16s %s\n", name, commands[name].usage)
	}
	fmt.Printf("  %-16s %s\n", "help", "Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// printNavigator prints the screen an action would open.
type printNavigator struct{}

func (printNavigator) Navigate(_ context.Context, r dispatch.Route) error {
	fmt.Printf("-> %s", r.Path)
	for k, v := range r.Params {
		fmt.Printf(" %s=%s", k, v)
	}
	fmt.Println()
	return nil
}

// printNotifier prints notices as they arrive.
type printNotifier struct{}

func (printNotifier) Notify(_ context.Context, n dispatch.Notice) {
	fmt.Printf("[%s] %s\n", n.Title, n.Message)
	if n.Location != "" {
		fmt.Printf("  %s\n", n.Location)
	}
}
