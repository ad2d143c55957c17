package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dvloznov/finance-copilot/internal/app"
	"github.com/dvloznov/finance-copilot/internal/assistant"
	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/dvloznov/finance-copilot/internal/jobs"
)

func runReport(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	reportType := fs.String("type", "Summary", "Report type, e.g. Expense, Investment or Summary")
	fs.Parse(args)

	if err := a.StartJobs(ctx); err != nil {
		return err
	}

	out, err := a.Dispatcher.Dispatch(ctx, intent.Intent{Kind: intent.KindReport, ReportType: *reportType})
	if err != nil {
		return err
	}
	if err := a.Queue.Wait(ctx); err != nil {
		return err
	}

	job, err := a.Jobs.GetJob(ctx, out.JobID)
	if err != nil {
		return err
	}
	if job.Status == jobs.JobStatusFailed {
		return fmt.Errorf("report job %s failed: %s", job.JobID, job.Error)
	}
	return nil
}

func runChat(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	autoDispatch := fs.Bool("dispatch", false, "Run suggested actions without asking")
	fs.Parse(args)

	if err := a.StartJobs(ctx); err != nil {
		return err
	}

	fmt.Println(assistant.Greeting)
	fmt.Println("\nTry asking:")
	for _, s := range assistant.Suggestions {
		fmt.Printf("  - %s\n", s)
	}
	fmt.Println("\nType 'exit' to quit.")

	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")
		if !in.Scan() {
			break
		}
		text := strings.TrimSpace(in.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			break
		}

		msg, reply, err := a.Conversation.Send(ctx, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Assistant error: %v\n", err)
			continue
		}
		if reply.Backup {
			fmt.Println("(offline mode)")
		}
		fmt.Println(msg.Text)

		for _, action := range msg.Actions {
			if !*autoDispatch && !confirm(in, action.Label) {
				continue
			}
			if _, err := a.Dispatcher.Dispatch(ctx, action.Intent); err != nil {
				fmt.Fprintf(os.Stderr, "Action failed: %v\n", err)
			}
		}
	}

	return a.Queue.Wait(ctx)
}

func confirm(in *bufio.Scanner, label string) bool {
	fmt.Printf("%s? [y/N] ", label)
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}
