package domain

import (
	"slices"

	"github.com/shopspring/decimal"
)

// BudgetPeriod is the cadence a budget envelope applies to.
type BudgetPeriod string

const (
	PeriodDaily   BudgetPeriod = "daily"
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
)

// Budget is a spending envelope. Spent is tracked on its own and is not
// derived from matching transactions.
type Budget struct {
	ID           string          `json:"id"`
	Category     string          `json:"category"`
	Allocated    decimal.Decimal `json:"allocated"`
	Spent        decimal.Decimal `json:"spent"`
	Period       BudgetPeriod    `json:"period"`
	Color        string          `json:"color,omitempty"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	Transactions []string        `json:"transactions"`
}

// Remaining is allocated minus spent. It can go negative.
func (b Budget) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Spent)
}

// Clone returns a copy that shares no memory with b.
func (b Budget) Clone() Budget {
	b.Transactions = slices.Clone(b.Transactions)
	return b
}

// BudgetPatch carries the fields of a partial budget update.
type BudgetPatch struct {
	Category     *string          `json:"category,omitempty"`
	Allocated    *decimal.Decimal `json:"allocated,omitempty"`
	Spent        *decimal.Decimal `json:"spent,omitempty"`
	Period       *BudgetPeriod    `json:"period,omitempty"`
	Color        *string          `json:"color,omitempty"`
	CreatedAt    *string          `json:"createdAt,omitempty"`
	Transactions []string         `json:"transactions,omitempty"`
}

// Apply merges the patch into b.
func (p BudgetPatch) Apply(b *Budget) {
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.Allocated != nil {
		b.Allocated = *p.Allocated
	}
	if p.Spent != nil {
		b.Spent = *p.Spent
	}
	if p.Period != nil {
		b.Period = *p.Period
	}
	if p.Color != nil {
		b.Color = *p.Color
	}
	if p.CreatedAt != nil {
		b.CreatedAt = *p.CreatedAt
	}
	if p.Transactions != nil {
		b.Transactions = slices.Clone(p.Transactions)
	}
}
