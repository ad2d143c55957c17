package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// memoryPersister records every saved snapshot.
type memoryPersister struct {
	mu      sync.Mutex
	saved   []Snapshot
	loadErr error
	initial *Snapshot
	saveErr error
}

func (m *memoryPersister) Load(ctx context.Context) (Snapshot, error) {
	if m.loadErr != nil {
		return Snapshot{}, m.loadErr
	}
	if m.initial == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return m.initial.Clone(), nil
}

func (m *memoryPersister) Save(ctx context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, snap.Clone())
	return nil
}

func (m *memoryPersister) setSaveErr(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

func (m *memoryPersister) last() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.saved) == 0 {
		return Snapshot{}, false
	}
	return m.saved[len(m.saved)-1], true
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestAddAndDeleteAccounts(t *testing.T) {
	s := New(WithIDGenerator(sequentialIDs()))

	id1 := s.AddAccount(domain.Account{Name: "Everyday", Type: domain.AccountChecking, Balance: decimal.NewFromInt(100)})
	id2 := s.AddAccount(domain.Account{ID: "ignored", Name: "Rainy day", Type: domain.AccountSavings})

	assert.Equal(t, "id-1", id1)
	assert.Equal(t, "id-2", id2)
	require.Len(t, s.Accounts(), 2)

	got, ok := s.Account(id2)
	require.True(t, ok)
	assert.Equal(t, "Rainy day", got.Name)

	s.DeleteAccount(id1)
	assert.Len(t, s.Accounts(), 1)

	s.DeleteAccount(id1)
	assert.Len(t, s.Accounts(), 1)

	_, ok = s.Account(id1)
	assert.False(t, ok)
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	s := New()
	s.AddBudget(domain.Budget{Category: "Food", Allocated: decimal.NewFromInt(300)})
	before := s.Snapshot()

	name := "renamed"
	s.UpdateAccount("missing", domain.AccountPatch{Name: &name})
	s.UpdateBudget("missing", domain.BudgetPatch{Category: &name})
	s.UpdateCard("missing", domain.CardPatch{Name: &name})
	s.DeleteInvestment("missing")
	s.MarkInsightAsRead("missing")

	if diff := cmp.Diff(before, s.Snapshot(), decimalComparer); diff != "" {
		t.Errorf("state changed (-before +after):\n%s", diff)
	}
}

func TestTransactionsArePrepended(t *testing.T) {
	s := New()
	first := s.AddTransaction(domain.Transaction{Description: "Coffee", Amount: decimal.NewFromInt(-4)})
	second := s.AddTransaction(domain.Transaction{Description: "Salary", Amount: decimal.NewFromInt(2500)})

	txs := s.Transactions()
	require.Len(t, txs, 2)
	assert.Equal(t, second, txs[0].ID)
	assert.Equal(t, first, txs[1].ID)
}

func TestTransactionRoundUpIsDetached(t *testing.T) {
	s := New()
	r := decimal.RequireFromString("0.25")
	id := s.AddTransaction(domain.Transaction{Description: "Lunch", RoundUp: &r})

	r = decimal.NewFromInt(9)
	got, ok := s.Transaction(id)
	require.True(t, ok)
	require.NotNil(t, got.RoundUp)
	assert.Equal(t, "0.25", got.RoundUp.String())
}

func TestUpdateTransactionMergesFields(t *testing.T) {
	s := New()
	id := s.AddTransaction(domain.Transaction{Description: "Cofee", Category: "Food", Amount: decimal.NewFromInt(-4)})

	desc := "Coffee"
	s.UpdateTransaction(id, domain.TransactionPatch{Description: &desc})

	got, _ := s.Transaction(id)
	assert.Equal(t, "Coffee", got.Description)
	assert.Equal(t, "Food", got.Category)
}

func TestInvestmentLastUpdatedIsStamped(t *testing.T) {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s := New(WithClock(func() time.Time { return clock }))

	id := s.AddInvestment(domain.Investment{Name: "Tech ETF", Type: domain.InvestmentETF, Value: decimal.NewFromInt(1000)})
	inv, ok := s.Investment(id)
	require.True(t, ok)
	assert.Equal(t, clock, inv.LastUpdated)

	clock = clock.Add(time.Hour)
	v := decimal.NewFromInt(1100)
	s.UpdateInvestment(id, domain.InvestmentPatch{Value: &v})

	inv, _ = s.Investment(id)
	assert.Equal(t, clock, inv.LastUpdated)
	assert.True(t, inv.Value.Equal(v))
}

func TestSelection(t *testing.T) {
	s := New()
	assert.Equal(t, domain.RangeMonth, s.Selection().TimeRange)
	assert.Equal(t, time.Now().Year(), s.Selection().Year)

	s.SetSelectedAccountID("acc-1")
	s.SetSelectedTimeRange(domain.RangeYear)
	s.SetSelectedYear(2022)
	assert.Equal(t, Selection{AccountID: "acc-1", TimeRange: domain.RangeYear, Year: 2022}, s.Selection())

	s.SetSelectedAccountID("")
	assert.Nil(t, s.Snapshot().SelectedAccountID)
}

func TestMarkInsightAsRead(t *testing.T) {
	s := New(WithInsights([]domain.FinancialInsight{{ID: "i1", Title: "Spending up"}}))
	s.MarkInsightAsRead("i1")
	assert.True(t, s.Insights()[0].Read)
}

func TestAutosaveAndRestore(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{}
	clock := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	s, err := Open(ctx, p, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	s.AddAccount(domain.Account{Name: "Everyday", Type: domain.AccountChecking, Balance: decimal.RequireFromString("1250.50")})
	s.AddInvestment(domain.Investment{Name: "BTC", Type: domain.InvestmentCrypto, Value: decimal.NewFromInt(500)})
	s.AddTransaction(domain.Transaction{Description: "Rent", Amount: decimal.NewFromInt(-900), Date: "not a date"})
	s.SetSelectedAccountID("x")
	require.NoError(t, s.Close(ctx))

	saved, ok := p.last()
	require.True(t, ok)
	if diff := cmp.Diff(s.Snapshot(), saved, decimalComparer); diff != "" {
		t.Fatalf("persisted snapshot differs (-want +got):\n%s", diff)
	}

	p.initial = &saved
	restored, err := Open(ctx, p)
	require.NoError(t, err)
	defer restored.Close(ctx)

	if diff := cmp.Diff(s.Snapshot(), restored.Snapshot(), decimalComparer); diff != "" {
		t.Errorf("restored state differs (-want +got):\n%s", diff)
	}
}

func TestFlushWritesLatestState(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{}
	s := New(WithPersister(p))
	defer s.Close(ctx)

	for i := 0; i < 50; i++ {
		s.AddCard(domain.Card{Name: fmt.Sprintf("card %d", i)})
	}
	require.NoError(t, s.Flush(ctx))

	saved, ok := p.last()
	require.True(t, ok)
	assert.Len(t, saved.Cards, 50)
}

func TestOpenWithoutSnapshotStartsEmpty(t *testing.T) {
	s, err := Open(context.Background(), &memoryPersister{})
	require.NoError(t, err)
	defer s.Close(context.Background())

	snap := s.Snapshot()
	assert.Empty(t, snap.Accounts)
	assert.NotNil(t, snap.Transactions)
}

func TestOpenPropagatesLoadError(t *testing.T) {
	_, err := Open(context.Background(), &memoryPersister{loadErr: errors.New("bucket unreachable")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unreachable")
}

func TestFailedSaveIsRetriedOnFlush(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{saveErr: errors.New("disk full")}
	s := New(WithPersister(p))
	defer s.Close(ctx)

	id := s.AddAccount(domain.Account{Name: "Everyday"})
	_, ok := s.Account(id)
	assert.True(t, ok)

	require.ErrorContains(t, s.Flush(ctx), "disk full")
	_, saved := p.last()
	assert.False(t, saved)

	p.setSaveErr(nil)
	require.NoError(t, s.Flush(ctx))

	snap, ok := p.last()
	require.True(t, ok)
	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, id, snap.Accounts[0].ID)
}

func TestCloseReportsUnsavedState(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{saveErr: errors.New("bucket unreachable")}
	s := New(WithPersister(p))

	s.AddBudget(domain.Budget{Category: "Food"})
	assert.ErrorContains(t, s.Close(ctx), "bucket unreachable")
}

func TestReloadPicksUpPersistedState(t *testing.T) {
	ctx := context.Background()
	p := &memoryPersister{}
	s := New(WithPersister(p))
	defer s.Close(ctx)

	local := s.AddAccount(domain.Account{Name: "Local"})

	other := New()
	other.AddAccount(domain.Account{ID: "ignored", Name: "From the API"})
	external := other.Snapshot()
	p.initial = &external

	require.NoError(t, s.Reload(ctx))

	if diff := cmp.Diff(external, s.Snapshot(), decimalComparer); diff != "" {
		t.Errorf("reloaded state differs (-want +got):\n%s", diff)
	}

	saved, ok := p.last()
	require.True(t, ok)
	require.Len(t, saved.Accounts, 1)
	assert.Equal(t, local, saved.Accounts[0].ID)
}

func TestReloadWithoutSnapshotKeepsState(t *testing.T) {
	ctx := context.Background()
	s := New(WithPersister(&memoryPersister{}))
	defer s.Close(ctx)

	s.AddAccount(domain.Account{Name: "Everyday"})
	require.NoError(t, s.Reload(ctx))
	assert.Len(t, s.Accounts(), 1)
}

func TestReloadPropagatesLoadError(t *testing.T) {
	s := New(WithPersister(&memoryPersister{loadErr: errors.New("permission denied")}))
	defer s.Close(context.Background())

	assert.ErrorContains(t, s.Reload(context.Background()), "permission denied")
}
