package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dvloznov/finance-copilot/internal/app"
	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/dvloznov/finance-copilot/internal/money"
	"github.com/shopspring/decimal"
)

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func runAccounts(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	fs.Parse(args)

	accounts := a.Store.Accounts()
	if len(accounts) == 0 {
		fmt.Println("No accounts yet. Create one with 'cli add-account'.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tBALANCE")
	for _, acc := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", acc.ID, acc.Name, acc.Type, acc.Balance.StringFixed(2))
	}
	w.Flush()

	fmt.Printf("\nTotal balance:     %s\n", domain.TotalBalance(accounts).StringFixed(2))
	fmt.Printf("Total liabilities: %s\n", domain.TotalLiabilities(accounts).StringFixed(2))
	return nil
}

func runAddAccount(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("add-account", flag.ExitOnError)
	name := fs.String("name", "", "Account name")
	kind := fs.String("type", string(domain.AccountChecking), "Account type: checking, savings, investment or credit")
	balance := fs.String("balance", "0", "Opening balance")
	currency := fs.String("currency", "USD", "Currency code")
	institution := fs.String("institution", "", "Bank or provider name")
	fs.Parse(args)

	if *name == "" {
		return errors.New("Usage: cli add-account -name NAME [-type TYPE] [-balance AMOUNT]")
	}
	opening, err := decimal.NewFromString(*balance)
	if err != nil {
		return fmt.Errorf("invalid balance %q: %w", *balance, err)
	}

	id := a.Store.AddAccount(domain.Account{
		Name:        *name,
		Type:        domain.AccountType(*kind),
		Balance:     opening,
		Currency:    *currency,
		Institution: *institution,
	})
	fmt.Printf("Created account %s (%s)\n", *name, id)
	return nil
}

func runDeposit(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("deposit", flag.ExitOnError)
	account := fs.String("account", "", "Account id or name")
	amount := fs.String("amount", "", "Amount to add, e.g. 250.00")
	method := fs.String("method", string(money.MethodBank), "Deposit method: bank, card or wallet")
	fs.Parse(args)

	if *account == "" || *amount == "" {
		return errors.New("Usage: cli deposit -account ACCOUNT -amount AMOUNT [-method METHOD]")
	}
	value, err := money.ParseAmount(*amount)
	if err != nil {
		return err
	}

	receipt, err := a.Money.Deposit(*account, value, money.DepositMethod(*method))
	if err != nil {
		return err
	}
	fmt.Printf("Deposited %s. New balance: %s\n", value.StringFixed(2), receipt.Balance.StringFixed(2))
	return nil
}

func runSend(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	account := fs.String("account", "", "Account id or name")
	amount := fs.String("amount", "", "Amount to send")
	to := fs.String("to", "", "Recipient name")
	fs.Parse(args)

	if *account == "" || *amount == "" {
		return errors.New("Usage: cli send -account ACCOUNT -amount AMOUNT [-to NAME]")
	}
	value, err := money.ParseAmount(*amount)
	if err != nil {
		return err
	}

	receipt, err := a.Money.Send(*account, value, *to)
	if err != nil {
		return err
	}
	fmt.Printf("Sent %s. New balance: %s\n", value.StringFixed(2), receipt.Balance.StringFixed(2))
	return nil
}

func runBuy(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("buy", flag.ExitOnError)
	account := fs.String("account", "", "Account id or name to pay from")
	name := fs.String("name", "", "Investment name")
	ticker := fs.String("ticker", "", "Ticker symbol")
	category := fs.String("category", "stocks", "Marketplace category")
	amount := fs.String("amount", "", "Amount to invest")
	price := fs.String("price", "", "Price per share (optional)")
	fs.Parse(args)

	if *account == "" || *name == "" || *amount == "" {
		return errors.New("Usage: cli buy -account ACCOUNT -name NAME -amount AMOUNT [-ticker T] [-price P]")
	}
	value, err := money.ParseAmount(*amount)
	if err != nil {
		return err
	}

	p := money.Purchase{
		AccountID: *account,
		Name:      *name,
		Ticker:    *ticker,
		Category:  *category,
		Amount:    value,
	}
	if *price != "" {
		pp, err := money.ParseAmount(*price)
		if err != nil {
			return err
		}
		p.Price = &pp
	}

	receipt, err := a.Money.PurchaseInvestment(p)
	if err != nil {
		return err
	}
	fmt.Printf("Bought %s for %s. New balance: %s\n", *name, value.StringFixed(2), receipt.Balance.StringFixed(2))
	return nil
}

func runTransactions(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Maximum number of transactions to show")
	fs.Parse(args)

	txs := a.Store.Transactions()
	if *limit > 0 && len(txs) > *limit {
		txs = txs[:*limit]
	}

	w := newTable()
	fmt.Fprintln(w, "DATE\tDESCRIPTION\tCATEGORY\tAMOUNT")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tx.Date, tx.Description, tx.Category, tx.Amount.StringFixed(2))
	}
	w.Flush()
	return nil
}

func runBudgets(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("budgets", flag.ExitOnError)
	fs.Parse(args)

	w := newTable()
	fmt.Fprintln(w, "CATEGORY\tPERIOD\tALLOCATED\tSPENT\tREMAINING")
	for _, b := range a.Store.Budgets() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", b.Category, b.Period,
			b.Allocated.StringFixed(2), b.Spent.StringFixed(2), b.Remaining().StringFixed(2))
	}
	w.Flush()
	return nil
}

func runAddBudget(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("add-budget", flag.ExitOnError)
	category := fs.String("category", "", "Spending category")
	allocated := fs.String("allocated", "", "Allocated amount")
	period := fs.String("period", string(domain.PeriodMonthly), "Period: daily, weekly or monthly")
	fs.Parse(args)

	if *category == "" || *allocated == "" {
		return errors.New("Usage: cli add-budget -category NAME -allocated AMOUNT [-period PERIOD]")
	}
	value, err := money.ParseAmount(*allocated)
	if err != nil {
		return err
	}

	id := a.Store.AddBudget(domain.Budget{
		Category:  *category,
		Allocated: value,
		Spent:     decimal.Zero,
		Period:    domain.BudgetPeriod(*period),
	})
	fmt.Printf("Created %s budget for %s (%s)\n", *period, *category, id)
	return nil
}

func runInvestments(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("investments", flag.ExitOnError)
	fs.Parse(args)

	investments := a.Store.Investments()
	w := newTable()
	fmt.Fprintln(w, "NAME\tTICKER\tTYPE\tVALUE\tGAIN/LOSS")
	for _, inv := range investments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", inv.Name, inv.Ticker, inv.Type,
			inv.Value.StringFixed(2), inv.GainLoss().StringFixed(2))
	}
	w.Flush()

	fmt.Printf("\nPortfolio value: %s\n", domain.TotalInvestmentValue(investments).StringFixed(2))
	return nil
}

func runInsights(ctx context.Context, a *app.App, args []string) error {
	fs := flag.NewFlagSet("insights", flag.ExitOnError)
	read := fs.String("read", "", "Mark the insight with this id as read")
	fs.Parse(args)

	if *read != "" {
		a.Store.MarkInsightAsRead(*read)
	}

	for _, in := range a.Store.Insights() {
		marker := "*"
		if in.Read {
			marker = " "
		}
		fmt.Printf("%s [%s] %s: %s (%s)\n", marker, in.Priority, in.Title, in.Description, in.ID)
	}
	return nil
}
