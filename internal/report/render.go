package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/dvloznov/finance-copilot/internal/store"
)

// ErrMissingData is returned when the snapshot lacks a collection the
// reports depend on.
var ErrMissingData = errors.New("required financial data is missing")

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Generator renders reports to HTML.
type Generator struct {
	now func() time.Time
}

// NewGenerator returns a Generator stamping reports with the current time.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

type page struct {
	Title       string
	GeneratedOn string
	Kind        Kind
	Expense     *expenseView
	Investment  *investmentView
	Summary     *summaryView
}

type row map[string]string

type expenseView struct {
	Total      string
	Count      int
	Categories []row
	Recent     []row
}

type investmentView struct {
	TotalValue string
	TotalCost  string
	Gain       string
	GainTone   string
	Holdings   []row
}

type summaryView struct {
	NetWorth        string
	Assets          string
	Liabilities     string
	Income          string
	Expenses        string
	CashFlow        string
	CashFlowTone    string
	Accounts        []row
	InvestmentValue string
	Allocation      []row
}

// Render builds the complete HTML document for reportType.
func (g *Generator) Render(reportType string, snap store.Snapshot) ([]byte, error) {
	if snap.Accounts == nil || snap.Transactions == nil || snap.Investments == nil || snap.Forecast == nil {
		return nil, ErrMissingData
	}

	p := page{
		Title:       reportType + " Report",
		GeneratedOn: g.now().Format("January 2, 2006"),
		Kind:        ParseKind(reportType),
	}

	switch p.Kind {
	case KindExpense:
		p.Expense = expenseViewOf(SummarizeExpenses(snap.Transactions))
	case KindInvestment:
		p.Investment = investmentViewOf(SummarizeInvestments(snap.Investments))
	default:
		p.Summary = summaryViewOf(SummarizeFinances(snap.Accounts, snap.Transactions, snap.Investments))
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "report.html", p); err != nil {
		return nil, fmt.Errorf("Render: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func expenseViewOf(s ExpenseSummary) *expenseView {
	v := &expenseView{Total: Money(s.Total), Count: s.Count}
	for _, c := range s.Categories {
		v.Categories = append(v.Categories, row{
			"Category": c.Category,
			"Amount":   Money(c.Amount),
			"Percent":  shareText(c.Percent),
		})
	}
	for _, tx := range s.Recent {
		v.Recent = append(v.Recent, row{
			"Date":        displayDate(tx.Date),
			"Description": tx.Description,
			"Category":    categoryName(tx.Category),
			"Amount":      "-" + Money(tx.Amount.Abs()),
		})
	}
	return v
}

func investmentViewOf(s InvestmentSummary) *investmentView {
	v := &investmentView{
		TotalValue: Money(s.TotalValue),
		TotalCost:  Money(s.TotalCost),
		Gain:       GainText(s.GainLoss, s.GainPercent),
		GainTone:   toneOf(s.GainLoss),
	}
	for _, h := range s.Holdings {
		symbol := h.Investment.Ticker
		if symbol == "" {
			symbol = "-"
		}
		v.Holdings = append(v.Holdings, row{
			"Symbol": symbol,
			"Name":   h.Investment.Name,
			"Shares": optionalNumber(h.Investment.Shares),
			"Price":  optionalMoney(h.Price),
			"Value":  Money(h.Investment.Value),
			"Gain":   GainText(h.GainLoss, h.GainPercent),
			"Tone":   toneOf(h.GainLoss),
		})
	}
	return v
}

func summaryViewOf(s FinancialSummary) *summaryView {
	v := &summaryView{
		NetWorth:        Money(s.NetWorth),
		Assets:          Money(s.Assets),
		Liabilities:     Money(s.Liabilities),
		Income:          Money(s.Income),
		Expenses:        "-" + Money(s.Expenses),
		CashFlow:        SignedMoney(s.CashFlow),
		CashFlowTone:    toneOf(s.CashFlow),
		InvestmentValue: Money(s.InvestmentValue),
	}
	if s.NetWorth.IsNegative() {
		v.NetWorth = "-" + Money(s.NetWorth.Abs())
	}
	for _, a := range s.Accounts {
		balance, tone := Money(a.Balance.Abs()), "positive"
		if a.IsCredit() {
			balance, tone = "-"+balance, "negative"
		}
		v.Accounts = append(v.Accounts, row{
			"Name":    a.Name,
			"Type":    string(a.Type),
			"Balance": balance,
			"Tone":    tone,
		})
	}
	for _, r := range s.Allocation {
		v.Allocation = append(v.Allocation, row{
			"AssetClass": r.AssetClass,
			"Value":      Money(r.Value),
			"Percent":    shareText(r.Percent),
		})
	}
	return v
}

