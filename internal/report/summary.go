package report

import (
	"slices"
	"time"

	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	recentExpenseCount = 10
	cashFlowWindow     = 30
	uncategorized      = "Uncategorized"
	otherAssetClass    = "Other"
)

var hundred = decimal.NewFromInt(100)

// CategoryTotal is one row of the expense breakdown.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal

	// Percent of total expenses; nil when the total is zero.
	Percent *decimal.Decimal
}

// ExpenseSummary backs the expense report.
type ExpenseSummary struct {
	Total      decimal.Decimal
	Count      int
	Categories []CategoryTotal
	Recent     []domain.Transaction
}

// SummarizeExpenses groups expense transactions by category.
func SummarizeExpenses(txs []domain.Transaction) ExpenseSummary {
	var (
		sum     ExpenseSummary
		byCat   = map[string]decimal.Decimal{}
		order   []string
		expense []domain.Transaction
	)

	for _, tx := range txs {
		if tx.Type != domain.TransactionExpense {
			continue
		}
		expense = append(expense, tx)

		amount := tx.Amount.Abs()
		sum.Total = sum.Total.Add(amount)

		cat := categoryName(tx.Category)
		if _, ok := byCat[cat]; !ok {
			order = append(order, cat)
		}
		byCat[cat] = byCat[cat].Add(amount)
	}
	sum.Count = len(expense)

	for _, cat := range order {
		row := CategoryTotal{Category: cat, Amount: byCat[cat]}
		row.Percent = percentOf(row.Amount, sum.Total)
		sum.Categories = append(sum.Categories, row)
	}
	slices.SortStableFunc(sum.Categories, func(a, b CategoryTotal) int {
		return b.Amount.Cmp(a.Amount)
	})

	sum.Recent = mostRecent(expense, recentExpenseCount)
	return sum
}

// HoldingSummary is one row of the investment report.
type HoldingSummary struct {
	Investment domain.Investment
	GainLoss   decimal.Decimal

	// GainPercent is nil when the cost basis is zero.
	GainPercent *decimal.Decimal

	// Price is the explicit price or value/shares; nil when neither is known.
	Price *decimal.Decimal
}

// InvestmentSummary backs the investment report.
type InvestmentSummary struct {
	TotalValue  decimal.Decimal
	TotalCost   decimal.Decimal
	GainLoss    decimal.Decimal
	GainPercent *decimal.Decimal
	Holdings    []HoldingSummary
}

// SummarizeInvestments computes portfolio totals. The cost basis of a
// holding is its initial value.
func SummarizeInvestments(investments []domain.Investment) InvestmentSummary {
	var sum InvestmentSummary

	for _, inv := range investments {
		sum.TotalValue = sum.TotalValue.Add(inv.Value)
		sum.TotalCost = sum.TotalCost.Add(inv.InitialValue)

		h := HoldingSummary{
			Investment: inv,
			GainLoss:   inv.GainLoss(),
			Price:      holdingPrice(inv),
		}
		h.GainPercent = percentOf(h.GainLoss, inv.InitialValue)
		sum.Holdings = append(sum.Holdings, h)
	}

	sum.GainLoss = sum.TotalValue.Sub(sum.TotalCost)
	sum.GainPercent = percentOf(sum.GainLoss, sum.TotalCost)

	slices.SortStableFunc(sum.Holdings, func(a, b HoldingSummary) int {
		return b.Investment.Value.Cmp(a.Investment.Value)
	})
	return sum
}

// AllocationRow is one asset class of the summary report.
type AllocationRow struct {
	AssetClass string
	Value      decimal.Decimal
	Percent    *decimal.Decimal
}

// FinancialSummary backs the summary report.
type FinancialSummary struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	NetWorth    decimal.Decimal

	Income   decimal.Decimal
	Expenses decimal.Decimal
	CashFlow decimal.Decimal

	Accounts        []domain.Account
	InvestmentValue decimal.Decimal
	Allocation      []AllocationRow
}

// SummarizeFinances computes net worth, recent cash flow and the investment
// allocation. Cash flow covers the first 30 transactions, which are the
// newest ones in store order.
func SummarizeFinances(accounts []domain.Account, txs []domain.Transaction, investments []domain.Investment) FinancialSummary {
	var sum FinancialSummary

	sum.Assets = domain.TotalBalance(accounts)
	sum.Liabilities = domain.TotalLiabilities(accounts)
	sum.NetWorth = sum.Assets.Sub(sum.Liabilities)

	window := txs
	if len(window) > cashFlowWindow {
		window = window[:cashFlowWindow]
	}
	sum.Income = domain.TotalIncome(window)
	sum.Expenses = domain.TotalExpenses(window)
	sum.CashFlow = sum.Income.Sub(sum.Expenses)

	sum.Accounts = slices.Clone(accounts)
	slices.SortStableFunc(sum.Accounts, func(a, b domain.Account) int {
		return b.Balance.Abs().Cmp(a.Balance.Abs())
	})

	sum.InvestmentValue = domain.TotalInvestmentValue(investments)

	byClass := map[string]decimal.Decimal{}
	var order []string
	for _, inv := range investments {
		class := AssetClassLabel(inv.Type)
		if _, ok := byClass[class]; !ok {
			order = append(order, class)
		}
		byClass[class] = byClass[class].Add(inv.Value)
	}
	for _, class := range order {
		sum.Allocation = append(sum.Allocation, AllocationRow{
			AssetClass: class,
			Value:      byClass[class],
			Percent:    percentOf(byClass[class], sum.InvestmentValue),
		})
	}
	slices.SortStableFunc(sum.Allocation, func(a, b AllocationRow) int {
		return b.Value.Cmp(a.Value)
	})
	return sum
}

// AssetClassLabel is the display name of an investment type.
func AssetClassLabel(t domain.InvestmentType) string {
	switch t {
	case domain.InvestmentStock:
		return "Stocks"
	case domain.InvestmentETF:
		return "ETFs"
	case domain.InvestmentCrypto:
		return "Crypto"
	case domain.InvestmentRoundUps:
		return "Round-ups"
	case domain.InvestmentMutualFunds:
		return "Mutual Funds"
	case domain.InvestmentIPOs:
		return "IPOs"
	default:
		return otherAssetClass
	}
}

func categoryName(c string) string {
	if c == "" {
		return uncategorized
	}
	return c
}

// percentOf returns part/total*100, or nil when total is zero.
func percentOf(part, total decimal.Decimal) *decimal.Decimal {
	if total.IsZero() {
		return nil
	}
	p := part.Div(total).Mul(hundred)
	return &p
}

func holdingPrice(inv domain.Investment) *decimal.Decimal {
	if inv.Price != nil {
		p := *inv.Price
		return &p
	}
	if inv.Shares != nil && !inv.Shares.IsZero() {
		p := inv.Value.Div(*inv.Shares)
		return &p
	}
	return nil
}

// mostRecent sorts by date descending and keeps n. Transactions whose date
// cannot be parsed sort last, keeping their relative order.
func mostRecent(txs []domain.Transaction, n int) []domain.Transaction {
	type dated struct {
		tx domain.Transaction
		at time.Time
		ok bool
	}
	rows := make([]dated, len(txs))
	for i, tx := range txs {
		at, ok := domain.ParseDate(tx.Date)
		rows[i] = dated{tx: tx, at: at, ok: ok}
	}
	slices.SortStableFunc(rows, func(a, b dated) int {
		switch {
		case a.ok && b.ok:
			return b.at.Compare(a.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		default:
			return 0
		}
	})

	if len(rows) > n {
		rows = rows[:n]
	}
	out := make([]domain.Transaction, len(rows))
	for i, r := range rows {
		out[i] = r.tx
	}
	return out
}
