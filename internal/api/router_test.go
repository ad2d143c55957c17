package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-copilot/internal/api/handlers"
	"github.com/dvloznov/finance-copilot/internal/assistant"
	"github.com/dvloznov/finance-copilot/internal/dispatch"
	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/dvloznov/finance-copilot/internal/intent"
	"github.com/dvloznov/finance-copilot/internal/jobs/inmemory"
	"github.com/dvloznov/finance-copilot/internal/money"
	"github.com/dvloznov/finance-copilot/internal/store"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockChat struct {
	SendFunc func(ctx context.Context, text string) (assistant.Message, assistant.Reply, error)
}

func (m *MockChat) Send(ctx context.Context, text string) (assistant.Message, assistant.Reply, error) {
	return m.SendFunc(ctx, text)
}

func (m *MockChat) Messages() []assistant.Message { return nil }

func (m *MockChat) BackupMode() bool { return false }

type MockGenerator struct {
	GenerateFunc func(ctx context.Context, reportType string) (string, error)
}

func (m *MockGenerator) Generate(ctx context.Context, reportType string) (string, error) {
	return m.GenerateFunc(ctx, reportType)
}

type testServer struct {
	handler http.Handler
	store   *store.Store
	queue   *inmemory.Queue
	jobs    *inmemory.Store
}

func newTestServer(t *testing.T, chat handlers.Chat) *testServer {
	t.Helper()
	log := zerolog.Nop()

	st := store.New()
	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(8, 1, jobStore)
	notices := dispatch.NewNoticeLog(0)

	gen := &MockGenerator{GenerateFunc: func(_ context.Context, reportType string) (string, error) {
		return "/reports/" + strings.ToLower(reportType) + "-report.html", nil
	}}
	require.NoError(t, queue.Start(context.Background(), dispatch.NewReportJobHandler(gen, notices, log)))
	t.Cleanup(func() { _ = queue.Stop(context.Background()) })

	dispatcher := dispatch.New(nil, notices, queue, log)
	if chat == nil {
		chat = &MockChat{}
	}

	h := NewRouter(Handlers{
		Entities:  handlers.NewEntitiesHandler(st, log),
		Money:     handlers.NewMoneyHandler(money.NewService(st), log),
		Assistant: handlers.NewAssistantHandler(chat, dispatcher, log),
		Reports:   handlers.NewReportsHandler(dispatcher, jobStore, notices, log),
	}, log)

	return &testServer{handler: h, store: st, queue: queue, jobs: jobStore}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestAccountsCRUD(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/accounts", `{"name":"Everyday","type":"checking","balance":"100.50","currency":"USD"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created domain.Account
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.ID)
	assert.True(t, created.Balance.Equal(decimal.RequireFromString("100.50")))

	rec = s.do(t, http.MethodPatch, "/api/accounts/"+created.ID, `{"name":"Daily"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated domain.Account
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Daily", updated.Name)
	assert.Equal(t, domain.AccountChecking, updated.Type)

	rec = s.do(t, http.MethodGet, "/api/accounts", "")
	var list struct {
		Accounts []domain.Account `json:"accounts"`
		Count    int              `json:"count"`
	}
	decodeBody(t, rec, &list)
	assert.Equal(t, 1, list.Count)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/api/accounts/missing", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/accounts/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/accounts/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/accounts/"+created.ID, "").Code)
}

func TestTransactionsLimit(t *testing.T) {
	s := newTestServer(t, nil)
	for _, d := range []string{"a", "b", "c"} {
		s.store.AddTransaction(domain.Transaction{Description: d})
	}

	rec := s.do(t, http.MethodGet, "/api/transactions?limit=2", "")
	var list struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Transactions, 2)
	assert.Equal(t, "c", list.Transactions[0].Description)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/transactions?limit=-1", "").Code)
}

func TestInvalidBody(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/budgets", `{"category":`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/budgets", "").Code)
}

func TestSelection(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPut, "/api/selection", `{"selectedTimeRange":"year","selectedYear":2023}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, store.Selection{TimeRange: domain.RangeYear, Year: 2023}, s.store.Selection())

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPut, "/api/selection", `{"selectedTimeRange":"decade"}`).Code)
}

func TestMarkInsightRead(t *testing.T) {
	s := newTestServer(t, nil)
	s.store.Restore(store.Snapshot{Insights: []domain.FinancialInsight{{ID: "i1", Title: "Spending up"}}})

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodPost, "/api/insights/i1/read", "").Code)
	assert.True(t, s.store.Insights()[0].Read)
}

func TestMoneyFlows(t *testing.T) {
	s := newTestServer(t, nil)
	id := s.store.AddAccount(domain.Account{Name: "Everyday", Balance: decimal.NewFromInt(100)})

	rec := s.do(t, http.MethodPost, "/api/money/deposit", `{"accountId":"`+id+`","amount":"50","method":"card"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"insufficient funds", `{"accountId":"` + id + `","amount":"500","recipient":"Alex"}`, http.StatusUnprocessableEntity},
		{"too many decimals", `{"accountId":"` + id + `","amount":"1.001","recipient":"Alex"}`, http.StatusBadRequest},
		{"unknown account", `{"accountId":"nope","amount":"1","recipient":"Alex"}`, http.StatusNotFound},
		{"ok", `{"accountId":"` + id + `","amount":"25","recipient":"Alex"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.do(t, http.MethodPost, "/api/money/send", tt.body).Code)
		})
	}

	acc, _ := s.store.Account(id)
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(125)))
}

func TestAssistantMessage(t *testing.T) {
	in := intent.Intent{Kind: intent.KindInvest, Amount: decimal.NewFromInt(250), Target: "Tech ETF"}
	chat := &MockChat{SendFunc: func(_ context.Context, text string) (assistant.Message, assistant.Reply, error) {
		if strings.TrimSpace(text) == "" {
			return assistant.Message{}, assistant.Reply{}, assistant.ErrEmptyMessage
		}
		reply := assistant.Reply{Text: "Sure. [Invest $250 in Tech ETF]", Intent: &in}
		return assistant.Message{ID: "m1", Text: reply.Text, Sender: assistant.SenderAssistant}, reply, nil
	}}
	s := newTestServer(t, chat)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/assistant/messages", `{"text":"  "}`).Code)

	rec := s.do(t, http.MethodPost, "/api/assistant/messages", `{"text":"invest for me","dispatch":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message assistant.Message `json:"message"`
		Outcome *dispatch.Outcome `json:"outcome"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "m1", resp.Message.ID)
	require.NotNil(t, resp.Outcome)
	require.NotNil(t, resp.Outcome.Route)
	assert.Equal(t, dispatch.PathPurchaseInvestment, resp.Outcome.Route.Path)
	assert.Equal(t, "Tech ETF", resp.Outcome.Route.Params["target"])
}

func TestRunAction_UnknownKind(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/assistant/actions", `{"kind":"dance"}`).Code)
}

func TestReports(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/api/reports", `{"type":"Expense"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	var created map[string]string
	decodeBody(t, rec, &created)
	jobID := created["job_id"]
	require.NotEmpty(t, jobID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.queue.Wait(ctx))

	rec = s.do(t, http.MethodGet, "/api/jobs/"+jobID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var job struct {
		Status   string `json:"status"`
		Location string `json:"location"`
	}
	decodeBody(t, rec, &job)
	assert.Equal(t, "completed", job.Status)
	assert.Equal(t, "/reports/expense-report.html", job.Location)

	rec = s.do(t, http.MethodGet, "/api/notices", "")
	var notices struct {
		Notices []dispatch.Notice `json:"notices"`
	}
	decodeBody(t, rec, &notices)
	require.Len(t, notices.Notices, 2)
	assert.Equal(t, dispatch.TitleGenerated, notices.Notices[1].Title)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/jobs/missing", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/jobs?status=completed", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/accounts", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:8081", rec.Header().Get("Access-Control-Allow-Origin"))
}
