package store

import (
	"slices"

	"github.com/dvloznov/finance-copilot/internal/domain"
)

func indexByID[T any](items []T, id string, idOf func(T) string) int {
	return slices.IndexFunc(items, func(v T) bool { return idOf(v) == id })
}

func findByID[T any](items []T, id string, idOf func(T) string) (T, bool) {
	if i := indexByID(items, id, idOf); i >= 0 {
		return items[i], true
	}
	var zero T
	return zero, false
}

func removeByID[T any](items []T, id string, idOf func(T) string) []T {
	return slices.DeleteFunc(items, func(v T) bool { return idOf(v) == id })
}

func accountID(a domain.Account) string { return a.ID }
func transactionID(t domain.Transaction) string { return t.ID }
func investmentID(i domain.Investment) string { return i.ID }
func budgetID(b domain.Budget) string { return b.ID }
func cardID(c domain.Card) string { return c.ID }
func insightID(i domain.FinancialInsight) string { return i.ID }

// --- accounts ---

// AddAccount appends a and returns the id assigned to it. Any id set on a is
// replaced.
func (s *Store) AddAccount(a domain.Account) string {
	a.ID = s.newID()
	s.mutate(func(st *Snapshot) {
		st.Accounts = append(st.Accounts, a)
	})
	return a.ID
}

// UpdateAccount merges p into the account with the given id.
func (s *Store) UpdateAccount(id string, p domain.AccountPatch) {
	s.mutate(func(st *Snapshot) {
		if i := indexByID(st.Accounts, id, accountID); i >= 0 {
			p.Apply(&st.Accounts[i])
		}
	})
}

// DeleteAccount removes the account with the given id.
func (s *Store) DeleteAccount(id string) {
	s.mutate(func(st *Snapshot) {
		st.Accounts = removeByID(st.Accounts, id, accountID)
	})
}

// Accounts returns a copy of all accounts.
func (s *Store) Accounts() []domain.Account {
	var out []domain.Account
	s.view(func(st *Snapshot) { out = slices.Clone(st.Accounts) })
	return out
}

// Account looks up an account by id.
func (s *Store) Account(id string) (domain.Account, bool) {
	var (
		a  domain.Account
		ok bool
	)
	s.view(func(st *Snapshot) { a, ok = findByID(st.Accounts, id, accountID) })
	return a, ok
}

// --- transactions ---

// AddTransaction prepends t so the collection stays newest first, and
// returns its id.
func (s *Store) AddTransaction(t domain.Transaction) string {
	t = cloneTransactions([]domain.Transaction{t})[0]
	t.ID = s.newID()
	s.mutate(func(st *Snapshot) {
		st.Transactions = append([]domain.Transaction{t}, st.Transactions...)
	})
	return t.ID
}

// UpdateTransaction merges p into the transaction with the given id.
func (s *Store) UpdateTransaction(id string, p domain.TransactionPatch) {
	s.mutate(func(st *Snapshot) {
		if i := indexByID(st.Transactions, id, transactionID); i >= 0 {
			p.Apply(&st.Transactions[i])
		}
	})
}

// DeleteTransaction removes the transaction with the given id.
func (s *Store) DeleteTransaction(id string) {
	s.mutate(func(st *Snapshot) {
		st.Transactions = removeByID(st.Transactions, id, transactionID)
	})
}

// Transactions returns a copy of all transactions, newest first.
func (s *Store) Transactions() []domain.Transaction {
	var out []domain.Transaction
	s.view(func(st *Snapshot) { out = cloneTransactions(st.Transactions) })
	return out
}

// Transaction looks up a transaction by id.
func (s *Store) Transaction(id string) (domain.Transaction, bool) {
	var (
		t  domain.Transaction
		ok bool
	)
	s.view(func(st *Snapshot) { t, ok = findByID(st.Transactions, id, transactionID) })
	if ok && t.RoundUp != nil {
		r := *t.RoundUp
		t.RoundUp = &r
	}
	return t, ok
}

// --- investments ---

// AddInvestment appends inv, stamping LastUpdated, and returns its id.
func (s *Store) AddInvestment(inv domain.Investment) string {
	inv = inv.Clone()
	inv.ID = s.newID()
	inv.LastUpdated = s.now().UTC()
	s.mutate(func(st *Snapshot) {
		st.Investments = append(st.Investments, inv)
	})
	return inv.ID
}

// UpdateInvestment merges p into the investment and refreshes LastUpdated.
func (s *Store) UpdateInvestment(id string, p domain.InvestmentPatch) {
	s.mutate(func(st *Snapshot) {
		if i := indexByID(st.Investments, id, investmentID); i >= 0 {
			p.Apply(&st.Investments[i])
			st.Investments[i].LastUpdated = s.now().UTC()
		}
	})
}

// DeleteInvestment removes the investment with the given id.
func (s *Store) DeleteInvestment(id string) {
	s.mutate(func(st *Snapshot) {
		st.Investments = removeByID(st.Investments, id, investmentID)
	})
}

// Investments returns a copy of all holdings.
func (s *Store) Investments() []domain.Investment {
	var out []domain.Investment
	s.view(func(st *Snapshot) { out = mapClone(st.Investments, domain.Investment.Clone) })
	return out
}

// Investment looks up a holding by id.
func (s *Store) Investment(id string) (domain.Investment, bool) {
	var (
		inv domain.Investment
		ok  bool
	)
	s.view(func(st *Snapshot) { inv, ok = findByID(st.Investments, id, investmentID) })
	return inv.Clone(), ok
}

// --- budgets ---

// AddBudget appends b and returns its id. Spent is stored as given.
func (s *Store) AddBudget(b domain.Budget) string {
	b = b.Clone()
	b.ID = s.newID()
	s.mutate(func(st *Snapshot) {
		st.Budgets = append(st.Budgets, b)
	})
	return b.ID
}

// UpdateBudget merges p into the budget with the given id.
func (s *Store) UpdateBudget(id string, p domain.BudgetPatch) {
	s.mutate(func(st *Snapshot) {
		if i := indexByID(st.Budgets, id, budgetID); i >= 0 {
			p.Apply(&st.Budgets[i])
		}
	})
}

// DeleteBudget removes the budget with the given id.
func (s *Store) DeleteBudget(id string) {
	s.mutate(func(st *Snapshot) {
		st.Budgets = removeByID(st.Budgets, id, budgetID)
	})
}

// Budgets returns a copy of all budgets.
func (s *Store) Budgets() []domain.Budget {
	var out []domain.Budget
	s.view(func(st *Snapshot) { out = mapClone(st.Budgets, domain.Budget.Clone) })
	return out
}

// Budget looks up a budget by id.
func (s *Store) Budget(id string) (domain.Budget, bool) {
	var (
		b  domain.Budget
		ok bool
	)
	s.view(func(st *Snapshot) { b, ok = findByID(st.Budgets, id, budgetID) })
	return b.Clone(), ok
}

// --- cards ---

// AddCard appends c and returns its id.
func (s *Store) AddCard(c domain.Card) string {
	c.ID = s.newID()
	s.mutate(func(st *Snapshot) {
		st.Cards = append(st.Cards, c)
	})
	return c.ID
}

// UpdateCard merges p into the card with the given id.
func (s *Store) UpdateCard(id string, p domain.CardPatch) {
	s.mutate(func(st *Snapshot) {
		if i := indexByID(st.Cards, id, cardID); i >= 0 {
			p.Apply(&st.Cards[i])
		}
	})
}

// DeleteCard removes the card with the given id.
func (s *Store) DeleteCard(id string) {
	s.mutate(func(st *Snapshot) {
		st.Cards = removeByID(st.Cards, id, cardID)
	})
}

// Cards returns a copy of all cards.
func (s *Store) Cards() []domain.Card {
	var out []domain.Card
	s.view(func(st *Snapshot) { out = slices.Clone(st.Cards) })
	return out
}

// Card looks up a card by id.
func (s *Store) Card(id string) (domain.Card, bool) {
	var (
		c  domain.Card
		ok bool
	)
	s.view(func(st *Snapshot) { c, ok = findByID(st.Cards, id, cardID) })
	return c, ok
}

// --- insights, forecast, selection ---

// MarkInsightAsRead flips the read flag of one insight.
func (s *Store) MarkInsightAsRead(id string) {
	s.mutate(func(st *Snapshot) {
		if i := indexByID(st.Insights, id, insightID); i >= 0 {
			st.Insights[i].Read = true
		}
	})
}

// Insights returns a copy of all insights.
func (s *Store) Insights() []domain.FinancialInsight {
	var out []domain.FinancialInsight
	s.view(func(st *Snapshot) { out = slices.Clone(st.Insights) })
	return out
}

// Forecast returns a copy of the balance forecast series.
func (s *Store) Forecast() []domain.BalanceForecast {
	var out []domain.BalanceForecast
	s.view(func(st *Snapshot) { out = slices.Clone(st.Forecast) })
	return out
}

// ReplaceForecast installs a freshly generated forecast series.
func (s *Store) ReplaceForecast(points []domain.BalanceForecast) {
	points = slices.Clone(points)
	if points == nil {
		points = []domain.BalanceForecast{}
	}
	s.mutate(func(st *Snapshot) { st.Forecast = points })
}

// Selection is the UI selection state.
type Selection struct {
	AccountID string           `json:"selectedAccountId,omitempty"`
	TimeRange domain.TimeRange `json:"selectedTimeRange"`
	Year      int              `json:"selectedYear"`
}

// SetSelectedAccountID selects an account; an empty id clears the selection.
func (s *Store) SetSelectedAccountID(id string) {
	s.mutate(func(st *Snapshot) {
		if id == "" {
			st.SelectedAccountID = nil
			return
		}
		st.SelectedAccountID = &id
	})
}

// SetSelectedTimeRange sets the dashboard window.
func (s *Store) SetSelectedTimeRange(r domain.TimeRange) {
	s.mutate(func(st *Snapshot) { st.SelectedTimeRange = r })
}

// SetSelectedYear sets the selected year.
func (s *Store) SetSelectedYear(year int) {
	s.mutate(func(st *Snapshot) { st.SelectedYear = year })
}

// Selection returns the current UI selection.
func (s *Store) Selection() Selection {
	var sel Selection
	s.view(func(st *Snapshot) {
		if st.SelectedAccountID != nil {
			sel.AccountID = *st.SelectedAccountID
		}
		sel.TimeRange = st.SelectedTimeRange
		sel.Year = st.SelectedYear
	})
	return sel
}
