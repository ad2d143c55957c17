package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/dvloznov/finance-copilot/internal/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockCompleter is a mock implementation of Completer for testing.
type MockCompleter struct {
	CompleteFunc func(ctx context.Context, prompt string) (string, error)
	calls        int
	prompts      []string
}

func (m *MockCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt)
	}
	return "ok", nil
}

// httpStatusError carries an HTTP status like the remote client errors do.
type httpStatusError struct{ code int }

func (e httpStatusError) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e httpStatusError) StatusCode() int { return e.code }

type staticSource struct{ snap store.Snapshot }

func (s staticSource) Snapshot() store.Snapshot { return s.snap }

func newTestAssistant(c Completer, source SnapshotSource) (*Assistant, *[]time.Duration) {
	a := New(c, source, DefaultOptions(), zerolog.Nop())
	var delays []time.Duration
	a.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return a, &delays
}

func TestAsk_Success(t *testing.T) {
	mock := &MockCompleter{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		return "Great idea. [Invest $250 in Tech ETF]", nil
	}}
	a, _ := newTestAssistant(mock, nil)

	reply, err := a.Ask(context.Background(), "  Should I invest?  ")
	require.NoError(t, err)

	assert.False(t, reply.Backup)
	require.NotNil(t, reply.Intent)
	assert.Equal(t, intent.KindInvest, reply.Intent.Kind)
	assert.Equal(t, 1, mock.calls)
	assert.True(t, strings.HasSuffix(mock.prompts[0], "\nShould I invest?"))
}

func TestAsk_RetriesServiceUnavailable(t *testing.T) {
	mock := &MockCompleter{}
	mock.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		if mock.calls < 3 {
			return "", httpStatusError{code: 503}
		}
		return "Recovered", nil
	}
	a, delays := newTestAssistant(mock, nil)

	reply, err := a.Ask(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, "Recovered", reply.Text)
	assert.False(t, reply.Backup)
	assert.Equal(t, 3, mock.calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *delays)
}

func TestAsk_ExhaustedRetriesFallBack(t *testing.T) {
	mock := &MockCompleter{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		return "", fmt.Errorf("Complete: generate content: %w", httpStatusError{code: 503})
	}}
	a, delays := newTestAssistant(mock, nil)

	reply, err := a.Ask(context.Background(), "How is my budget?")
	require.NoError(t, err)

	assert.True(t, reply.Backup)
	assert.Equal(t, 3, mock.calls)
	assert.Len(t, *delays, 2)
	assert.Contains(t, reply.Text, "spending")
}

func TestAsk_NonTransientErrorIsNotRetried(t *testing.T) {
	mock := &MockCompleter{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		return "", httpStatusError{code: 400}
	}}
	a, delays := newTestAssistant(mock, nil)

	reply, err := a.Ask(context.Background(), "tell me about saving")
	require.NoError(t, err)

	assert.True(t, reply.Backup)
	assert.Equal(t, 1, mock.calls)
	assert.Empty(t, *delays)
	require.NotNil(t, reply.Intent)
	assert.Equal(t, intent.KindTransfer, reply.Intent.Kind)
}

func TestAsk_TimeoutFallsBack(t *testing.T) {
	mock := &MockCompleter{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	a := New(mock, nil, Options{Timeout: 10 * time.Millisecond, MaxAttempts: 3, BackoffBase: time.Millisecond}, zerolog.Nop())

	reply, err := a.Ask(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, reply.Backup)
	assert.Equal(t, 1, mock.calls)
}

func TestAsk_NilCompleterFallsBack(t *testing.T) {
	a := New(nil, nil, Options{}, zerolog.Nop())
	reply, err := a.Ask(context.Background(), "generate a summary")
	require.NoError(t, err)
	assert.True(t, reply.Backup)
	require.NotNil(t, reply.Intent)
	assert.Equal(t, intent.KindReport, reply.Intent.Kind)
}

func TestAsk_EmptyMessage(t *testing.T) {
	a, _ := newTestAssistant(&MockCompleter{}, nil)
	_, err := a.Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestBuildContext(t *testing.T) {
	snap := store.Snapshot{
		Accounts: []domain.Account{
			{Type: domain.AccountChecking, Balance: decimal.NewFromInt(1000)},
			{Type: domain.AccountCredit, Balance: decimal.NewFromInt(-200)},
		},
		Transactions: []domain.Transaction{
			{ID: "t1", Type: domain.TransactionIncome, Amount: decimal.NewFromInt(3000)},
			{ID: "t2", Type: domain.TransactionExpense, Amount: decimal.NewFromInt(-45)},
			{ID: "t3", Type: domain.TransactionExpense, Amount: decimal.NewFromInt(-5)},
			{ID: "t4", Type: domain.TransactionExpense, Amount: decimal.NewFromInt(-50)},
		},
		Investments: []domain.Investment{{Value: decimal.RequireFromString("1500.5")}},
	}

	ctx := BuildContext(snap)

	assert.Contains(t, ctx, "Total balance across accounts: $1000.00")
	assert.Contains(t, ctx, "Recent monthly income: $3000.00")
	assert.Contains(t, ctx, "Recent monthly expenses: $100.00")
	assert.Contains(t, ctx, "Total investments: $1500.50")
	assert.Contains(t, ctx, `"id":"t3"`)
	assert.NotContains(t, ctx, `"id":"t4"`)
}

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(httpStatusError{code: 503}))
	assert.True(t, isTransient(fmt.Errorf("wrapped: %w", httpStatusError{code: 503})))
	assert.False(t, isTransient(httpStatusError{code: 500}))
	assert.False(t, isTransient(errors.New("boom")))
	assert.False(t, isTransient(context.DeadlineExceeded))
}

func TestConversation(t *testing.T) {
	mock := &MockCompleter{CompleteFunc: func(ctx context.Context, prompt string) (string, error) {
		return "Sure. [Generate Expense Report]", nil
	}}
	a, _ := newTestAssistant(mock, staticSource{})
	conv := NewConversation(a)

	msg, _, err := conv.Send(context.Background(), "report please")
	require.NoError(t, err)
	require.Len(t, msg.Actions, 1)
	assert.Equal(t, "Generate Expense Report", msg.Actions[0].Label)

	msgs := conv.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, Greeting, msgs[0].Text)
	assert.Equal(t, SenderUser, msgs[1].Sender)
	assert.False(t, conv.BackupMode())
}

func TestConversationIsBounded(t *testing.T) {
	a, _ := newTestAssistant(&MockCompleter{}, nil)
	conv := NewConversation(a)

	for i := 0; i < 30; i++ {
		_, _, err := conv.Send(context.Background(), fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	msgs := conv.Messages()
	assert.Len(t, msgs, MaxMessages)
	assert.Equal(t, "ok", msgs[len(msgs)-1].Text)
	assert.Equal(t, "message 29", msgs[len(msgs)-2].Text)
}

func TestConversationRejectsEmptyMessage(t *testing.T) {
	conv := NewConversation(New(&MockCompleter{}, nil, Options{}, zerolog.Nop()))
	_, _, err := conv.Send(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, conv.Messages(), 1)
}
