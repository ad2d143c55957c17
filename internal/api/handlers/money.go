package handlers

import (
	"errors"
	"net/http"

	"github.com/dvloznov/finance-copilot/internal/api/middleware"
	"github.com/dvloznov/finance-copilot/internal/money"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MoneyHandler serves the deposit, send and purchase flows.
type MoneyHandler struct {
	money *money.Service
	log   zerolog.Logger
}

// NewMoneyHandler creates a new money handler.
func NewMoneyHandler(svc *money.Service, log zerolog.Logger) *MoneyHandler {
	return &MoneyHandler{money: svc, log: log}
}

// Routes registers the money endpoints on r.
func (h *MoneyHandler) Routes(r chi.Router) {
	r.Post("/deposit", h.Deposit)
	r.Post("/send", h.Send)
	r.Post("/invest", h.PurchaseInvestment)
}

// Deposit handles POST /api/money/deposit
func (h *MoneyHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string              `json:"accountId"`
		Amount    decimal.Decimal     `json:"amount"`
		Method    money.DepositMethod `json:"method"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Method == "" {
		req.Method = money.MethodBank
	}

	receipt, err := h.money.Deposit(req.AccountID, req.Amount, req.Method)
	h.respond(w, "deposit", receipt, err)
}

// Send handles POST /api/money/send
func (h *MoneyHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string          `json:"accountId"`
		Amount    decimal.Decimal `json:"amount"`
		Recipient string          `json:"recipient"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := h.money.Send(req.AccountID, req.Amount, req.Recipient)
	h.respond(w, "send", receipt, err)
}

// PurchaseInvestment handles POST /api/money/invest
func (h *MoneyHandler) PurchaseInvestment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string           `json:"accountId"`
		Name      string           `json:"name"`
		Ticker    string           `json:"ticker"`
		Category  string           `json:"category"`
		Amount    decimal.Decimal  `json:"amount"`
		Price     *decimal.Decimal `json:"price"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	receipt, err := h.money.PurchaseInvestment(money.Purchase{
		AccountID: req.AccountID,
		Name:      req.Name,
		Ticker:    req.Ticker,
		Category:  req.Category,
		Amount:    req.Amount,
		Price:     req.Price,
	})
	h.respond(w, "invest", receipt, err)
}

func (h *MoneyHandler) respond(w http.ResponseWriter, flow string, receipt money.Receipt, err error) {
	if err == nil {
		h.log.Info().Str("flow", flow).Str("account_id", receipt.AccountID).Str("transaction_id", receipt.TransactionID).Msg("Money flow completed")
		middleware.WriteJSON(w, http.StatusOK, receipt)
		return
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, money.ErrAccountNotFound):
		status = http.StatusNotFound
	case errors.Is(err, money.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	}
	h.log.Warn().Err(err).Str("flow", flow).Msg("Money flow rejected")
	middleware.WriteError(w, status, err.Error())
}
