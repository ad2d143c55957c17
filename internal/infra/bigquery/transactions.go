package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-copilot/internal/domain"
)

// TransactionRow is one exported app transaction.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	AccountCurrency string `bigquery:"currency"` // REQUIRED

	TransactionDate bigquery.NullDate `bigquery:"transaction_date"` // NULLABLE, unparsable dates are NULL
	RawDate         string            `bigquery:"raw_date"`         // REQUIRED, as stored in the app

	Amount    *big.Rat `bigquery:"amount"`     // REQUIRED NUMERIC, signed
	AbsAmount *big.Rat `bigquery:"abs_amount"` // REQUIRED NUMERIC
	Direction string   `bigquery:"direction"`  // DEBIT | CREDIT

	TransactionType string              `bigquery:"transaction_type"` // REQUIRED
	Description     string              `bigquery:"description"`      // REQUIRED
	CategoryName    bigquery.NullString `bigquery:"category_name"`    // NULLABLE
	Merchant        bigquery.NullString `bigquery:"merchant"`         // NULLABLE

	RoundUp *big.Rat `bigquery:"round_up"` // REQUIRED NUMERIC, zero when absent

	ExportedTS time.Time `bigquery:"exported_ts"` // REQUIRED
}

// ToRow maps an app transaction onto the export schema.
func ToRow(tx domain.Transaction, currency string, exportedAt time.Time) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   tx.ID,
		AccountCurrency: currency,
		RawDate:         tx.Date,
		Amount:          tx.Amount.Rat(),
		AbsAmount:       tx.Amount.Abs().Rat(),
		Direction:       "CREDIT",
		TransactionType: string(tx.Type),
		Description:     tx.Description,
		CategoryName:    nullString(tx.Category),
		Merchant:        nullString(tx.Merchant),
		RoundUp:         new(big.Rat),
		ExportedTS:      exportedAt.UTC(),
	}
	if tx.Amount.IsNegative() {
		row.Direction = "DEBIT"
	}
	if tx.RoundUp != nil {
		row.RoundUp = tx.RoundUp.Rat()
	}
	if t, ok := domain.ParseDate(tx.Date); ok {
		row.TransactionDate = bigquery.NullDate{Date: civil.DateOf(t), Valid: true}
	}
	return row
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
