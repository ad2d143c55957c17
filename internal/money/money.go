// Package money implements the in-app money movements: deposits, payments
// to contacts and investment purchases. Unlike the store, these flows
// validate their input before touching any state.
package money

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidAmount is returned for non-positive amounts or amounts with
	// more than two decimal places.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientFunds is returned when the source account balance does
	// not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound is returned when no account matches.
	ErrAccountNotFound = errors.New("account not found")
)

// Ledger is the part of the finance store the flows mutate.
type Ledger interface {
	Account(id string) (domain.Account, bool)
	Accounts() []domain.Account
	UpdateAccount(id string, p domain.AccountPatch)
	AddTransaction(t domain.Transaction) string
	AddInvestment(inv domain.Investment) string
}

// DepositMethod is how money is added to an account.
type DepositMethod string

const (
	MethodBank   DepositMethod = "bank"
	MethodCard   DepositMethod = "card"
	MethodWallet DepositMethod = "wallet"
)

func (m DepositMethod) merchant() string {
	switch m {
	case MethodBank:
		return "Bank Transfer"
	case MethodCard:
		return "Card Deposit"
	default:
		return "Cash Deposit"
	}
}

// Receipt describes the effect of a completed flow.
type Receipt struct {
	TransactionID string          `json:"transactionId"`
	InvestmentID  string          `json:"investmentId,omitempty"`
	AccountID     string          `json:"accountId"`
	Balance       decimal.Decimal `json:"balance"`
}

// Service runs money flows against a Ledger. Flows are serialised so the
// balance read and write of one flow cannot interleave with another.
type Service struct {
	mu     sync.Mutex
	ledger Ledger
	now    func() time.Time
}

// NewService returns a Service operating on ledger.
func NewService(ledger Ledger) *Service {
	return &Service{ledger: ledger, now: time.Now}
}

// ParseAmount parses a user-entered amount such as "12.50" or "$12.50".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(d); err != nil {
		return decimal.Decimal{}, err
	}
	return d, nil
}

// ValidateAmount checks that d is positive with at most two decimals.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	if !d.Equal(d.Truncate(2)) {
		return fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	}
	return nil
}

// ResolveAccount finds an account by id, or else by case-insensitive name.
func (s *Service) ResolveAccount(nameOrID string) (domain.Account, error) {
	if acc, ok := s.ledger.Account(nameOrID); ok {
		return acc, nil
	}
	want := strings.TrimSpace(nameOrID)
	for _, acc := range s.ledger.Accounts() {
		if strings.EqualFold(acc.Name, want) {
			return acc, nil
		}
	}
	return domain.Account{}, fmt.Errorf("%w: %q", ErrAccountNotFound, nameOrID)
}

// Deposit adds amount to the account and records an income transaction.
func (s *Service) Deposit(accountID string, amount decimal.Decimal, method DepositMethod) (Receipt, error) {
	if err := ValidateAmount(amount); err != nil {
		return Receipt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.ResolveAccount(accountID)
	if err != nil {
		return Receipt{}, err
	}

	txID := s.ledger.AddTransaction(domain.Transaction{
		Amount:      amount,
		Description: "Added money via " + string(method),
		Category:    "deposit",
		Date:        s.timestamp(),
		Type:        domain.TransactionIncome,
		Merchant:    method.merchant(),
	})
	balance := acc.Balance.Add(amount)
	s.ledger.UpdateAccount(acc.ID, domain.AccountPatch{Balance: &balance})

	return Receipt{TransactionID: txID, AccountID: acc.ID, Balance: balance}, nil
}

// Send pays amount from the account to recipient.
func (s *Service) Send(accountID string, amount decimal.Decimal, recipient string) (Receipt, error) {
	if err := ValidateAmount(amount); err != nil {
		return Receipt{}, err
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		recipient = "Contact"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.ResolveAccount(accountID)
	if err != nil {
		return Receipt{}, err
	}
	if acc.Balance.LessThan(amount) {
		return Receipt{}, fmt.Errorf("%w in %s", ErrInsufficientFunds, acc.Name)
	}

	txID := s.ledger.AddTransaction(domain.Transaction{
		Amount:      amount.Neg(),
		Description: "Sent money to " + recipient,
		Category:    "transfer",
		Date:        s.timestamp(),
		Type:        domain.TransactionExpense,
		Merchant:    recipient,
	})
	balance := acc.Balance.Sub(amount)
	s.ledger.UpdateAccount(acc.ID, domain.AccountPatch{Balance: &balance})

	return Receipt{TransactionID: txID, AccountID: acc.ID, Balance: balance}, nil
}

// Purchase describes an investment purchase.
type Purchase struct {
	AccountID string
	Name      string
	Ticker    string

	// Category is the marketplace category, e.g. "stocks" or "mutual_funds".
	Category string

	Amount decimal.Decimal

	// Price per share; when set the number of shares is derived from it.
	Price *decimal.Decimal
}

// PurchaseInvestment buys a new holding with money from the account.
func (s *Service) PurchaseInvestment(p Purchase) (Receipt, error) {
	if err := ValidateAmount(p.Amount); err != nil {
		return Receipt{}, err
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Receipt{}, errors.New("investment name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.ResolveAccount(p.AccountID)
	if err != nil {
		return Receipt{}, err
	}
	if acc.Balance.LessThan(p.Amount) {
		return Receipt{}, fmt.Errorf("%w in %s: available balance $%s", ErrInsufficientFunds, acc.Name, acc.Balance.StringFixed(2))
	}

	now := s.now().UTC()
	inv := domain.Investment{
		Name:         name,
		Ticker:       p.Ticker,
		Value:        p.Amount,
		InitialValue: p.Amount,
		Growth:       decimal.Zero,
		Type:         TypeForCategory(p.Category),
		PurchaseDate: &now,
	}
	description := "Purchase of " + name
	if p.Price != nil && p.Price.IsPositive() {
		price := *p.Price
		shares := p.Amount.DivRound(price, 4)
		inv.Price = &price
		inv.Shares = &shares
		description = fmt.Sprintf("Purchase of %s shares of %s", shares.String(), name)
	}
	if p.Ticker != "" {
		description += " (" + p.Ticker + ")"
	}

	invID := s.ledger.AddInvestment(inv)
	balance := acc.Balance.Sub(p.Amount)
	s.ledger.UpdateAccount(acc.ID, domain.AccountPatch{Balance: &balance})
	txID := s.ledger.AddTransaction(domain.Transaction{
		Amount:      p.Amount.Neg(),
		Description: description,
		Category:    "Investment",
		Date:        now.Format(time.RFC3339),
		Type:        domain.TransactionExpense,
		Merchant:    name,
	})

	return Receipt{TransactionID: txID, InvestmentID: invID, AccountID: acc.ID, Balance: balance}, nil
}

// TypeForCategory maps a marketplace category onto an investment type.
// Unknown categories are treated as stocks.
func TypeForCategory(category string) domain.InvestmentType {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "etfs", "etf":
		return domain.InvestmentETF
	case "crypto":
		return domain.InvestmentCrypto
	case "mutual_funds", "mutualfunds":
		return domain.InvestmentMutualFunds
	case "ipos":
		return domain.InvestmentIPOs
	case "roundups":
		return domain.InvestmentRoundUps
	default:
		return domain.InvestmentStock
	}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}
