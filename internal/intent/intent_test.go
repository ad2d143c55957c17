package intent

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  Intent
		ok    bool
	}{
		{
			name:  "invest",
			reply: "Sounds like a plan. [Invest $250 in Tech ETF] Let me know!",
			want:  Intent{Kind: KindInvest, Amount: decimal.NewFromInt(250), Target: "Tech ETF"},
			ok:    true,
		},
		{
			name:  "invest lower case with cents",
			reply: "[invest $99.50 in bitcoin]",
			want:  Intent{Kind: KindInvest, Amount: decimal.RequireFromString("99.50"), Target: "bitcoin"},
			ok:    true,
		},
		{
			name:  "transfer",
			reply: "You could move some cash: [Transfer $500 from Checking to Savings]",
			want:  Intent{Kind: KindTransfer, Amount: decimal.NewFromInt(500), From: "Checking", To: "Savings"},
			ok:    true,
		},
		{
			name:  "transfer with multi word accounts",
			reply: "[Transfer $20 from Main Checking to Rainy Day Fund]",
			want:  Intent{Kind: KindTransfer, Amount: decimal.NewFromInt(20), From: "Main Checking", To: "Rainy Day Fund"},
			ok:    true,
		},
		{
			name:  "transfer source keeps inner to",
			reply: "[Transfer $5 from A to B to C]",
			want:  Intent{Kind: KindTransfer, Amount: decimal.NewFromInt(5), From: "A to B", To: "C"},
			ok:    true,
		},
		{
			name:  "report",
			reply: "I can put that together. [Generate Expense Report]",
			want:  Intent{Kind: KindReport, ReportType: "Expense"},
			ok:    true,
		},
		{
			name:  "pdf variant",
			reply: "[GENERATE Investment PDF]",
			want:  Intent{Kind: KindReport, ReportType: "Investment"},
			ok:    true,
		},
		{
			name:  "no command",
			reply: "Your spending looks healthy this month.",
			ok:    false,
		},
		{
			name:  "unbracketed command",
			reply: "Invest $250 in Tech ETF",
			ok:    false,
		},
		{
			name:  "malformed amount",
			reply: "[Invest $lots in Tech ETF]",
			ok:    false,
		},
		{
			name:  "malformed transfer amount",
			reply: "[Transfer $1,000 from Checking to Savings]",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.reply)
			require.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.want.Kind, got.Kind)
			assert.True(t, tt.want.Amount.Equal(got.Amount), "amount: want %s got %s", tt.want.Amount, got.Amount)
			assert.Equal(t, tt.want.Target, got.Target)
			assert.Equal(t, tt.want.From, got.From)
			assert.Equal(t, tt.want.To, got.To)
			assert.Equal(t, tt.want.ReportType, got.ReportType)
		})
	}
}

func TestParse_Precedence(t *testing.T) {
	reply := "First [Generate Expense Report], then maybe [Invest $100 in Index Fund]."

	got, ok := Parse(reply)
	require.True(t, ok)
	assert.Equal(t, KindInvest, got.Kind)
	assert.Equal(t, "Index Fund", got.Target)
}

func TestParse_TransferBeatsReport(t *testing.T) {
	got, ok := Parse("[Generate Summary Report] [Transfer $5 from A to B]")
	require.True(t, ok)
	assert.Equal(t, KindTransfer, got.Kind)
}

func TestParse_Structured(t *testing.T) {
	reply := "Here you go:\n```json\n{\"action\": \"transfer\", \"amount\": \"$75.25\", \"from\": \"Checking\", \"to\": \"Savings\"}\n```"

	got, ok := Parse(reply)
	require.True(t, ok)
	assert.Equal(t, KindTransfer, got.Kind)
	assert.Equal(t, "75.25", got.Amount.String())
	assert.Equal(t, "Checking", got.From)
	assert.Equal(t, "Savings", got.To)
}

func TestParse_StructuredBeatsBracketed(t *testing.T) {
	reply := "[Invest $100 in Index Fund]\n```json\n{\"action\":\"report\",\"reportType\":\"Expense\"}\n```"

	got, ok := Parse(reply)
	require.True(t, ok)
	assert.Equal(t, KindReport, got.Kind)
	assert.Equal(t, "Expense", got.ReportType)
}

func TestParse_StructuredNumberAmount(t *testing.T) {
	got, ok := Parse(`{"action":"invest","amount":300,"target":"S&P 500"}`)
	require.True(t, ok)
	assert.Equal(t, KindInvest, got.Kind)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(300)))
}

func TestParse_InvalidStructuredFallsBackToPatterns(t *testing.T) {
	reply := `{"action":"invest","amount":"lots"} but really [Generate Spending Report]`

	got, ok := Parse(reply)
	require.True(t, ok)
	assert.Equal(t, KindReport, got.Kind)
	assert.Equal(t, "Spending", got.ReportType)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Invest $250 in Tech ETF", Label(Intent{Kind: KindInvest, Amount: decimal.NewFromInt(250), Target: "Tech ETF"}))
	assert.Equal(t, "Transfer $12.5 from A to B", Label(Intent{Kind: KindTransfer, Amount: decimal.RequireFromString("12.5"), From: "A", To: "B"}))
	assert.Equal(t, "Generate Expense Report", Label(Intent{Kind: KindReport, ReportType: "Expense"}))
	assert.Empty(t, Label(Intent{}))
}
