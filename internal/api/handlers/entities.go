package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/finance-copilot/internal/api/middleware"
	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/dvloznov/finance-copilot/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// resource exposes one entity collection as list/get/create/patch/delete.
type resource[T any, P any] struct {
	name   string
	list   func() []T
	get    func(id string) (T, bool)
	add    func(T) string
	update func(id string, p P)
	remove func(id string)
	log    zerolog.Logger
}

func (res resource[T, P]) routes(r chi.Router) {
	r.Get("/", res.handleList)
	r.Post("/", res.handleCreate)
	r.Get("/{id}", res.handleGet)
	r.Patch("/{id}", res.handleUpdate)
	r.Delete("/{id}", res.handleDelete)
}

func (res resource[T, P]) handleList(w http.ResponseWriter, r *http.Request) {
	items := res.list()
	if limit, ok := queryInt(r, "limit"); !ok {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
		return
	} else if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	if items == nil {
		items = []T{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		res.name: items,
		"count":  len(items),
	})
}

func (res resource[T, P]) handleGet(w http.ResponseWriter, r *http.Request) {
	item, ok := res.get(chi.URLParam(r, "id"))
	if !ok {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, item)
}

func (res resource[T, P]) handleCreate(w http.ResponseWriter, r *http.Request) {
	var item T
	if !decodeJSON(w, r, &item) {
		return
	}
	id := res.add(item)
	created, _ := res.get(id)
	res.log.Info().Str("kind", res.name).Str("id", id).Msg("Entity created")
	middleware.WriteJSON(w, http.StatusCreated, created)
}

func (res resource[T, P]) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := res.get(id); !ok {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	var patch P
	if !decodeJSON(w, r, &patch) {
		return
	}
	res.update(id, patch)
	updated, _ := res.get(id)
	middleware.WriteJSON(w, http.StatusOK, updated)
}

func (res resource[T, P]) handleDelete(w http.ResponseWriter, r *http.Request) {
	res.remove(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// EntitiesHandler serves the finance store: entity CRUD, insights,
// forecast, selection and whole-state endpoints.
type EntitiesHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewEntitiesHandler creates a new entities handler.
func NewEntitiesHandler(s *store.Store, log zerolog.Logger) *EntitiesHandler {
	return &EntitiesHandler{store: s, log: log}
}

// Routes registers the store endpoints on r.
func (h *EntitiesHandler) Routes(r chi.Router) {
	s := h.store
	r.Route("/accounts", resource[domain.Account, domain.AccountPatch]{
		name: "accounts", list: s.Accounts, get: s.Account, add: s.AddAccount,
		update: s.UpdateAccount, remove: s.DeleteAccount, log: h.log,
	}.routes)
	r.Route("/transactions", resource[domain.Transaction, domain.TransactionPatch]{
		name: "transactions", list: s.Transactions, get: s.Transaction, add: s.AddTransaction,
		update: s.UpdateTransaction, remove: s.DeleteTransaction, log: h.log,
	}.routes)
	r.Route("/investments", resource[domain.Investment, domain.InvestmentPatch]{
		name: "investments", list: s.Investments, get: s.Investment, add: s.AddInvestment,
		update: s.UpdateInvestment, remove: s.DeleteInvestment, log: h.log,
	}.routes)
	r.Route("/budgets", resource[domain.Budget, domain.BudgetPatch]{
		name: "budgets", list: s.Budgets, get: s.Budget, add: s.AddBudget,
		update: s.UpdateBudget, remove: s.DeleteBudget, log: h.log,
	}.routes)
	r.Route("/cards", resource[domain.Card, domain.CardPatch]{
		name: "cards", list: s.Cards, get: s.Card, add: s.AddCard,
		update: s.UpdateCard, remove: s.DeleteCard, log: h.log,
	}.routes)

	r.Get("/insights", h.ListInsights)
	r.Post("/insights/{id}/read", h.MarkInsightRead)
	r.Get("/forecast", h.GetForecast)
	r.Get("/selection", h.GetSelection)
	r.Put("/selection", h.PutSelection)
	r.Get("/snapshot", h.GetSnapshot)
	r.Get("/summary", h.GetSummary)
}

// ListInsights handles GET /api/insights
func (h *EntitiesHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	insights := h.store.Insights()
	unread := 0
	for _, in := range insights {
		if !in.Read {
			unread++
		}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"insights": insights,
		"unread":   unread,
	})
}

// MarkInsightRead handles POST /api/insights/{id}/read
func (h *EntitiesHandler) MarkInsightRead(w http.ResponseWriter, r *http.Request) {
	h.store.MarkInsightAsRead(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// GetForecast handles GET /api/forecast
func (h *EntitiesHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"forecast": h.store.Forecast()})
}

// GetSelection handles GET /api/selection
func (h *EntitiesHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.store.Selection())
}

// PutSelection handles PUT /api/selection. Omitted fields are left alone.
func (h *EntitiesHandler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID *string           `json:"selectedAccountId"`
		TimeRange *domain.TimeRange `json:"selectedTimeRange"`
		Year      *int              `json:"selectedYear"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.TimeRange != nil {
		switch *req.TimeRange {
		case domain.RangeWeek, domain.RangeMonth, domain.RangeYear:
		default:
			middleware.WriteError(w, http.StatusBadRequest, "selectedTimeRange must be week, month or year")
			return
		}
	}

	if req.AccountID != nil {
		h.store.SetSelectedAccountID(*req.AccountID)
	}
	if req.TimeRange != nil {
		h.store.SetSelectedTimeRange(*req.TimeRange)
	}
	if req.Year != nil {
		h.store.SetSelectedYear(*req.Year)
	}
	middleware.WriteJSON(w, http.StatusOK, h.store.Selection())
}

// GetSnapshot handles GET /api/snapshot
func (h *EntitiesHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.store.Snapshot())
}

// GetSummary handles GET /api/summary
func (h *EntitiesHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"totalBalance":     domain.TotalBalance(snap.Accounts),
		"totalLiabilities": domain.TotalLiabilities(snap.Accounts),
		"totalIncome":      domain.TotalIncome(snap.Transactions),
		"totalExpenses":    domain.TotalExpenses(snap.Transactions),
		"investmentValue":  domain.TotalInvestmentValue(snap.Investments),
		"asOf":             time.Now().UTC().Format(time.RFC3339),
	})
}
