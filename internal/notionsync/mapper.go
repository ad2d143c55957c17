package notionsync

import (
	"time"

	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/jomei/notionapi"
)

// Property names of the Notion databases.
const (
	PropTransactionID = "Transaction ID"
	PropAccountID     = "Account ID"
)

// TransactionToNotionProperties maps a transaction onto the Notion
// transactions database: Description (title), Transaction ID, Date, Amount,
// Currency, Type, Category, Merchant and Round-Up.
func TransactionToNotionProperties(tx domain.Transaction, currency string) notionapi.Properties {
	if currency == "" {
		currency = "USD"
	}
	amount, _ := tx.Amount.Float64()

	props := notionapi.Properties{
		"Description":     titleProperty(tx.Description),
		PropTransactionID: richTextProperty(tx.ID),
		"Amount":          notionapi.NumberProperty{Number: amount},
		"Currency":        notionapi.SelectProperty{Select: notionapi.Option{Name: currency}},
	}

	if t, ok := domain.ParseDate(tx.Date); ok {
		props["Date"] = dateProperty(t)
	}
	if tx.Type != "" {
		props["Type"] = notionapi.SelectProperty{Select: notionapi.Option{Name: string(tx.Type)}}
	}
	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{Select: notionapi.Option{Name: tx.Category}}
	}
	if tx.Merchant != "" {
		props["Merchant"] = richTextProperty(tx.Merchant)
	}
	if tx.RoundUp != nil {
		r, _ := tx.RoundUp.Float64()
		props["Round-Up"] = notionapi.NumberProperty{Number: r}
	}

	return props
}

// AccountToNotionProperties maps an account onto the Notion accounts
// database keyed by the Account ID title.
func AccountToNotionProperties(acc domain.Account) notionapi.Properties {
	balance, _ := acc.Balance.Float64()
	props := notionapi.Properties{
		PropAccountID: titleProperty(acc.ID),
		"Name":        richTextProperty(acc.Name),
		"Type":        notionapi.SelectProperty{Select: notionapi.Option{Name: string(acc.Type)}},
		"Balance":     notionapi.NumberProperty{Number: balance},
	}
	if acc.Currency != "" {
		props["Currency"] = notionapi.SelectProperty{Select: notionapi.Option{Name: acc.Currency}}
	}
	if acc.Institution != "" {
		props["Institution"] = richTextProperty(acc.Institution)
	}
	if acc.LastFour != "" {
		props["Last Four"] = richTextProperty(acc.LastFour)
	}
	return props
}

func titleProperty(s string) notionapi.TitleProperty {
	return notionapi.TitleProperty{Title: []notionapi.RichText{textOf(s)}}
}

func richTextProperty(s string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{RichText: []notionapi.RichText{textOf(s)}}
}

func textOf(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}

func dateProperty(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{Date: &notionapi.DateObject{Start: &d}}
}
