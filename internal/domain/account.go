package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType classifies a money container.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
	AccountCredit     AccountType = "credit"
)

// Account is a money container. Balance is the only source of truth for the
// account: no ledger of postings is kept and mutations overwrite it directly.
type Account struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        AccountType     `json:"type"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	LastFour    string          `json:"lastFour,omitempty"`
	Institution string          `json:"institution,omitempty"`
	Color       string          `json:"color,omitempty"`
}

// IsCredit reports whether the account is a liability.
func (a Account) IsCredit() bool {
	return a.Type == AccountCredit
}

// AccountPatch carries the fields of a partial account update.
// Nil fields are left untouched.
type AccountPatch struct {
	Name        *string          `json:"name,omitempty"`
	Type        *AccountType     `json:"type,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	LastFour    *string          `json:"lastFour,omitempty"`
	Institution *string          `json:"institution,omitempty"`
	Color       *string          `json:"color,omitempty"`
}

// Apply merges the patch into a.
func (p AccountPatch) Apply(a *Account) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Balance != nil {
		a.Balance = *p.Balance
	}
	if p.Currency != nil {
		a.Currency = *p.Currency
	}
	if p.LastFour != nil {
		a.LastFour = *p.LastFour
	}
	if p.Institution != nil {
		a.Institution = *p.Institution
	}
	if p.Color != nil {
		a.Color = *p.Color
	}
}
