package domain

import "github.com/shopspring/decimal"

// TotalBalance sums the balances of all non-credit accounts.
func TotalBalance(accounts []Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if !a.IsCredit() {
			total = total.Add(a.Balance)
		}
	}
	return total
}

// TotalLiabilities sums the absolute balances of credit accounts.
func TotalLiabilities(accounts []Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		if a.IsCredit() {
			total = total.Add(a.Balance.Abs())
		}
	}
	return total
}

// TotalIncome sums income transaction amounts as recorded.
func TotalIncome(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == TransactionIncome {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TotalExpenses sums the absolute amounts of expense transactions.
func TotalExpenses(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == TransactionExpense {
			total = total.Add(t.Amount.Abs())
		}
	}
	return total
}

// TotalInvestmentValue sums current holding values.
func TotalInvestmentValue(investments []Investment) decimal.Decimal {
	total := decimal.Zero
	for _, i := range investments {
		total = total.Add(i.Value)
	}
	return total
}
