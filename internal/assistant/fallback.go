package assistant

import "strings"

// fallbackRule maps message keywords to a canned reply.
type fallbackRule struct {
	keywords []string
	reply    string
}

var fallbackRules = []fallbackRule{
	{
		keywords: []string{"budget", "spending"},
		reply:    "Based on your recent spending patterns, your restaurant expenses have increased compared to last month and are running above your dining budget. Would you like some suggestions for reducing this spending?",
	},
	{
		keywords: []string{"invest", "stock", "market"},
		reply:    "Your portfolio is weighted mostly towards stocks with smaller bond and cash positions. Given your goals you might consider adding broad ETFs to diversify. [Invest $100 in Index Fund]",
	},
	{
		keywords: []string{"save", "saving"},
		reply:    "You're saving about 12% of your monthly income, which is a good start. Raising that to 18-20% would put a home purchase within reach in three years. [Transfer $200 from Checking to Savings]",
	},
	{
		keywords: []string{"debt", "loan", "credit"},
		reply:    "Paying more than the minimum on your credit card is the fastest way to cut interest costs. Doubling your monthly payment could halve the time to become debt-free. Would you like a repayment plan?",
	},
	{
		keywords: []string{"retirement", "401k", "ira"},
		reply:    "At your current contribution rate you're on track for a comfortable retirement, but a modest increase would let you reach your income goal sooner. Consider raising contributions or reviewing your investment mix.",
	},
	{
		keywords: []string{"report", "summary", "summarize"},
		reply:    "I can put together a summary of your accounts, cash flow and investments. [Generate Summary Report]",
	},
}

const defaultFallbackReply = "Thank you for your message. You're making good progress toward your goals and your investment allocation aligns well with your risk profile. I can help with budgeting, investment strategies, debt management or retirement planning."

// fallbackReply is the local canned reply used when the remote assistant is
// unavailable.
func fallbackReply(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.reply
			}
		}
	}
	return defaultFallbackReply
}
