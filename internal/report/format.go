package report

import (
	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/shopspring/decimal"
)

// Money renders d as $1234.56.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// SignedMoney renders d as +$12.00 or -$12.00.
func SignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + Money(d.Abs())
	}
	return "+" + Money(d)
}

// GainText renders a gain or loss with its percentage, e.g.
// "+$200.00 (+20.00%)". The percentage is omitted when unknown.
func GainText(amount decimal.Decimal, percent *decimal.Decimal) string {
	s := SignedMoney(amount)
	if percent == nil {
		return s
	}
	sign := "+"
	if percent.IsNegative() {
		sign = "-"
	}
	return s + " (" + sign + percent.Abs().StringFixed(2) + "%)"
}

func shareText(p *decimal.Decimal) string {
	if p == nil {
		return "-"
	}
	return p.StringFixed(1) + "%"
}

func optionalMoney(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return Money(*d)
}

func optionalNumber(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func displayDate(s string) string {
	if t, ok := domain.ParseDate(s); ok {
		return t.Format("Jan 2, 2006")
	}
	return s
}

func toneOf(d decimal.Decimal) string {
	if d.IsNegative() {
		return "negative"
	}
	return "positive"
}
