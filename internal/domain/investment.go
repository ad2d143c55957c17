package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentType is the asset class of a holding.
type InvestmentType string

const (
	InvestmentStock       InvestmentType = "stock"
	InvestmentETF         InvestmentType = "etf"
	InvestmentCrypto      InvestmentType = "crypto"
	InvestmentRoundUps    InvestmentType = "roundups"
	InvestmentMutualFunds InvestmentType = "mutualfunds"
	InvestmentIPOs        InvestmentType = "ipos"
)

// Investment is a holding. Growth is a percentage that callers keep in line
// with (Value-InitialValue)/InitialValue*100; the store never recomputes it.
type Investment struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Ticker       string           `json:"ticker,omitempty"`
	Value        decimal.Decimal  `json:"value"`
	InitialValue decimal.Decimal  `json:"initialValue"`
	Growth       decimal.Decimal  `json:"growth"`
	Type         InvestmentType   `json:"type"`
	LastUpdated  time.Time        `json:"lastUpdated"`
	Shares       *decimal.Decimal `json:"shares,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	PurchaseDate *time.Time       `json:"purchaseDate,omitempty"`
}

// GainLoss is Value minus InitialValue.
func (i Investment) GainLoss() decimal.Decimal {
	return i.Value.Sub(i.InitialValue)
}

// Clone returns a copy with its optional fields detached from i.
func (i Investment) Clone() Investment {
	i.Shares = cloneDecimal(i.Shares)
	i.Price = cloneDecimal(i.Price)
	if i.PurchaseDate != nil {
		t := *i.PurchaseDate
		i.PurchaseDate = &t
	}
	return i
}

// InvestmentPatch carries the fields of a partial investment update.
type InvestmentPatch struct {
	Name         *string          `json:"name,omitempty"`
	Ticker       *string          `json:"ticker,omitempty"`
	Value        *decimal.Decimal `json:"value,omitempty"`
	InitialValue *decimal.Decimal `json:"initialValue,omitempty"`
	Growth       *decimal.Decimal `json:"growth,omitempty"`
	Type         *InvestmentType  `json:"type,omitempty"`
	Shares       *decimal.Decimal `json:"shares,omitempty"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	PurchaseDate *time.Time       `json:"purchaseDate,omitempty"`
}

// Apply merges the patch into i. LastUpdated is owned by the store.
func (p InvestmentPatch) Apply(i *Investment) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Ticker != nil {
		i.Ticker = *p.Ticker
	}
	if p.Value != nil {
		i.Value = *p.Value
	}
	if p.InitialValue != nil {
		i.InitialValue = *p.InitialValue
	}
	if p.Growth != nil {
		i.Growth = *p.Growth
	}
	if p.Type != nil {
		i.Type = *p.Type
	}
	if p.Shares != nil {
		i.Shares = cloneDecimal(p.Shares)
	}
	if p.Price != nil {
		i.Price = cloneDecimal(p.Price)
	}
	if p.PurchaseDate != nil {
		t := *p.PurchaseDate
		i.PurchaseDate = &t
	}
}

// CalculateGrowth returns the percentage change from previous to current,
// or zero when previous is zero.
func CalculateGrowth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
