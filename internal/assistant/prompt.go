package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/dvloznov/finance-copilot/internal/store"
)

const recentTransactionCount = 3

const systemInstructions = `You are Wealthifyre AI, a highly disciplined personal financial copilot.
- Always respond in no more than three sentences total.
- If you must give a short list, use exactly three bullet points (no more).
- Never truncate yourself; be concise up front.
- Reference the user's actual data when available (e.g., "Last month you spent $500 on dining").
- Speak in a friendly, professional tone.
- Only expand beyond three sentences if the user explicitly says "More detail, please."

When you recommend one of the following actions, include it verbatim in square brackets so the app can offer a button:
- [Invest $<amount> in <target>]
- [Transfer $<amount> from <source account> to <destination account>]
- [Generate <Expense|Investment|Summary> Report]
Include at most one action per reply.`

// BuildContext renders the financial context block included in every prompt.
func BuildContext(snap store.Snapshot) string {
	recent := snap.Transactions
	if len(recent) > recentTransactionCount {
		recent = recent[:recentTransactionCount]
	}
	if recent == nil {
		recent = []domain.Transaction{}
	}
	recentJSON, err := json.Marshal(recent)
	if err != nil {
		recentJSON = []byte("[]")
	}

	var b strings.Builder
	b.WriteString("Financial context:\n")
	fmt.Fprintf(&b, "- Total balance across accounts: $%s\n", domain.TotalBalance(snap.Accounts).StringFixed(2))
	fmt.Fprintf(&b, "- Recent monthly income: $%s\n", domain.TotalIncome(snap.Transactions).StringFixed(2))
	fmt.Fprintf(&b, "- Recent monthly expenses: $%s\n", domain.TotalExpenses(snap.Transactions).StringFixed(2))
	fmt.Fprintf(&b, "- Total investments: $%s\n", domain.TotalInvestmentValue(snap.Investments).StringFixed(2))
	fmt.Fprintf(&b, "- Recent transactions: %s\n", recentJSON)
	return b.String()
}

// BuildPrompt joins the instructions, the context block and the user message.
func BuildPrompt(snap store.Snapshot, message string) string {
	return systemInstructions + "\n\n" + BuildContext(snap) + "\n" + message
}
