package domain

// CardType is debit or credit.
type CardType string

const (
	CardDebit  CardType = "debit"
	CardCredit CardType = "credit"
)

// Card is a payment card linked to an account.
type Card struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Type            CardType `json:"type"`
	LastFour        string   `json:"lastFour"`
	ExpiryMonth     int      `json:"expiryMonth"`
	ExpiryYear      int      `json:"expiryYear"`
	CardholderName  string   `json:"cardholderName"`
	LinkedAccountID string   `json:"linkedAccountId"`
	Design          string   `json:"design,omitempty"`
	IsDefault       bool     `json:"isDefault,omitempty"`
}

// CardPatch carries the fields of a partial card update.
type CardPatch struct {
	Name            *string   `json:"name,omitempty"`
	Type            *CardType `json:"type,omitempty"`
	LastFour        *string   `json:"lastFour,omitempty"`
	ExpiryMonth     *int      `json:"expiryMonth,omitempty"`
	ExpiryYear      *int      `json:"expiryYear,omitempty"`
	CardholderName  *string   `json:"cardholderName,omitempty"`
	LinkedAccountID *string   `json:"linkedAccountId,omitempty"`
	Design          *string   `json:"design,omitempty"`
	IsDefault       *bool     `json:"isDefault,omitempty"`
}

// Apply merges the patch into c.
func (p CardPatch) Apply(c *Card) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.LastFour != nil {
		c.LastFour = *p.LastFour
	}
	if p.ExpiryMonth != nil {
		c.ExpiryMonth = *p.ExpiryMonth
	}
	if p.ExpiryYear != nil {
		c.ExpiryYear = *p.ExpiryYear
	}
	if p.CardholderName != nil {
		c.CardholderName = *p.CardholderName
	}
	if p.LinkedAccountID != nil {
		c.LinkedAccountID = *p.LinkedAccountID
	}
	if p.Design != nil {
		c.Design = *p.Design
	}
	if p.IsDefault != nil {
		c.IsDefault = *p.IsDefault
	}
}
