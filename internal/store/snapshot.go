package store

import (
	"context"
	"errors"
	"slices"

	"github.com/dvloznov/finance-copilot/internal/domain"
)

// ErrNoSnapshot is returned by a Persister when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no persisted snapshot")

// Snapshot is the serializable state of the store: every entity collection
// plus the UI selection scalars. JSON keys match the persisted blob layout.
type Snapshot struct {
	Transactions      []domain.Transaction      `json:"transactions"`
	Accounts          []domain.Account          `json:"accounts"`
	Budgets           []domain.Budget           `json:"budgets"`
	Investments       []domain.Investment       `json:"investments"`
	Cards             []domain.Card             `json:"cards"`
	Insights          []domain.FinancialInsight `json:"insights"`
	Forecast          []domain.BalanceForecast  `json:"forecast"`
	SelectedAccountID *string                   `json:"selectedAccountId"`
	SelectedTimeRange domain.TimeRange          `json:"selectedTimeRange"`
	SelectedYear      int                       `json:"selectedYear"`
}

// Persister saves and loads snapshots from durable storage.
type Persister interface {
	// Load returns the last saved snapshot or ErrNoSnapshot.
	Load(ctx context.Context) (Snapshot, error)

	// Save durably replaces the saved snapshot.
	Save(ctx context.Context, snap Snapshot) error
}

// Clone returns a deep copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Transactions:      cloneTransactions(s.Transactions),
		Accounts:          slices.Clone(s.Accounts),
		Budgets:           mapClone(s.Budgets, domain.Budget.Clone),
		Investments:       mapClone(s.Investments, domain.Investment.Clone),
		Cards:             slices.Clone(s.Cards),
		Insights:          slices.Clone(s.Insights),
		Forecast:          slices.Clone(s.Forecast),
		SelectedTimeRange: s.SelectedTimeRange,
		SelectedYear:      s.SelectedYear,
	}
	if s.SelectedAccountID != nil {
		id := *s.SelectedAccountID
		out.SelectedAccountID = &id
	}
	return out
}

// normalize replaces nil collections with empty ones so that a restored
// store never reports a collection as missing.
func (s *Snapshot) normalize() {
	if s.Transactions == nil {
		s.Transactions = []domain.Transaction{}
	}
	if s.Accounts == nil {
		s.Accounts = []domain.Account{}
	}
	if s.Budgets == nil {
		s.Budgets = []domain.Budget{}
	}
	if s.Investments == nil {
		s.Investments = []domain.Investment{}
	}
	if s.Cards == nil {
		s.Cards = []domain.Card{}
	}
	if s.Insights == nil {
		s.Insights = []domain.FinancialInsight{}
	}
	if s.Forecast == nil {
		s.Forecast = []domain.BalanceForecast{}
	}
	if s.SelectedTimeRange == "" {
		s.SelectedTimeRange = domain.RangeMonth
	}
}

func cloneTransactions(in []domain.Transaction) []domain.Transaction {
	if in == nil {
		return nil
	}
	out := make([]domain.Transaction, len(in))
	for i, t := range in {
		if t.RoundUp != nil {
			r := *t.RoundUp
			t.RoundUp = &r
		}
		out[i] = t
	}
	return out
}

func mapClone[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i, v := range in {
		out[i] = clone(v)
	}
	return out
}
