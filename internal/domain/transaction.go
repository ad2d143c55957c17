package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tags what kind of money movement a transaction records.
type TransactionType string

const (
	TransactionIncome     TransactionType = "income"
	TransactionExpense    TransactionType = "expense"
	TransactionTransfer   TransactionType = "transfer"
	TransactionInvestment TransactionType = "investment"
)

// Transaction represents one money movement recorded by the app.
// Transactions are a parallel log: they are never reconciled against
// account balances and do not have to sum to anything.
// Amount sign is a caller convention (expenses usually negative, income
// positive); nothing enforces it.
type Transaction struct {
	ID          string           `json:"id"`
	Amount      decimal.Decimal  `json:"amount"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        string           `json:"date"` // ISO-8601, stored as given
	Type        TransactionType  `json:"type"`
	Merchant    string           `json:"merchant,omitempty"`
	RoundUp     *decimal.Decimal `json:"roundUp,omitempty"`
}

// Time parses Date. Unparseable dates yield the zero time and false.
func (t Transaction) Time() (time.Time, bool) {
	return ParseDate(t.Date)
}

// TransactionPatch carries the fields of a partial transaction update.
type TransactionPatch struct {
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Date        *string          `json:"date,omitempty"`
	Type        *TransactionType `json:"type,omitempty"`
	Merchant    *string          `json:"merchant,omitempty"`
	RoundUp     *decimal.Decimal `json:"roundUp,omitempty"`
}

// Apply merges the patch into t.
func (p TransactionPatch) Apply(t *Transaction) {
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Merchant != nil {
		t.Merchant = *p.Merchant
	}
	if p.RoundUp != nil {
		r := *p.RoundUp
		t.RoundUp = &r
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate accepts the ISO-8601 shapes the app writes.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
