// Package intent extracts actionable commands from free-text assistant
// replies.
//
// A reply may carry a structured JSON action block, which is preferred. When
// none is present the bracketed command forms are matched instead:
//
//	[Invest $<amount> in <target>]
//	[Transfer $<amount> from <source> to <destination>]
//	[Generate <type> Report]
//	[Generate <type> PDF]
//
// Matching is case insensitive and at most one intent is returned. When a
// reply holds several commands the first pattern in the order above wins,
// regardless of where each command appears in the text.
package intent

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind identifies the action an intent asks for.
type Kind string

const (
	KindInvest   Kind = "invest"
	KindTransfer Kind = "transfer"
	KindReport   Kind = "report"
)

// ErrUnknownKind is returned when an intent carries a kind nobody handles.
var ErrUnknownKind = errors.New("unknown intent kind")

// Intent is a typed command extracted from a reply.
type Intent struct {
	Kind       Kind            `json:"kind"`
	Amount     decimal.Decimal `json:"amount"`
	Target     string          `json:"target,omitempty"`
	From       string          `json:"from,omitempty"`
	To         string          `json:"to,omitempty"`
	ReportType string          `json:"reportType,omitempty"`
}

var (
	investPattern    = regexp.MustCompile(`(?i)\[Invest\s+\$(\d+(?:\.\d+)?)\s+in\s+([^\]]+)\]`)
	transferPattern  = regexp.MustCompile(`(?i)\[Transfer\s+\$(\d+(?:\.\d+)?)\s+from\s+([^\]]+)\s+to\s+([^\]]+)\]`)
	reportPattern    = regexp.MustCompile(`(?i)\[Generate\s+([^\]]+?)\s+Report\]`)
	reportPDFPattern = regexp.MustCompile(`(?i)\[Generate\s+([^\]]+?)\s+PDF\]`)
)

// Parse returns the intent carried by reply, if any.
func Parse(reply string) (Intent, bool) {
	if in, ok := parseStructured(reply); ok {
		return in, true
	}

	if m := investPattern.FindStringSubmatch(reply); m != nil {
		if amount, err := decimal.NewFromString(m[1]); err == nil {
			return Intent{Kind: KindInvest, Amount: amount, Target: strings.TrimSpace(m[2])}, true
		}
	}
	if m := transferPattern.FindStringSubmatch(reply); m != nil {
		if amount, err := decimal.NewFromString(m[1]); err == nil {
			return Intent{
				Kind:   KindTransfer,
				Amount: amount,
				From:   strings.TrimSpace(m[2]),
				To:     strings.TrimSpace(m[3]),
			}, true
		}
	}
	for _, p := range []*regexp.Regexp{reportPattern, reportPDFPattern} {
		if m := p.FindStringSubmatch(reply); m != nil {
			return Intent{Kind: KindReport, ReportType: strings.TrimSpace(m[1])}, true
		}
	}
	return Intent{}, false
}

// Label renders the caption of the button offering the intent.
func Label(in Intent) string {
	switch in.Kind {
	case KindInvest:
		return "Invest $" + in.Amount.String() + " in " + in.Target
	case KindTransfer:
		return "Transfer $" + in.Amount.String() + " from " + in.From + " to " + in.To
	case KindReport:
		return "Generate " + in.ReportType + " Report"
	default:
		return ""
	}
}

// structuredAction is the JSON form a model may emit instead of a bracketed
// command.
type structuredAction struct {
	Action     string          `json:"action"`
	Amount     json.RawMessage `json:"amount"`
	Target     string          `json:"target"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	ReportType string          `json:"reportType"`
}

func parseStructured(reply string) (Intent, bool) {
	block, ok := extractJSONObject(reply)
	if !ok {
		return Intent{}, false
	}

	var a structuredAction
	if err := json.Unmarshal([]byte(block), &a); err != nil {
		return Intent{}, false
	}

	switch Kind(strings.ToLower(strings.TrimSpace(a.Action))) {
	case KindInvest:
		amount, ok := parseAmount(a.Amount)
		if !ok || strings.TrimSpace(a.Target) == "" {
			return Intent{}, false
		}
		return Intent{Kind: KindInvest, Amount: amount, Target: strings.TrimSpace(a.Target)}, true
	case KindTransfer:
		amount, ok := parseAmount(a.Amount)
		if !ok || strings.TrimSpace(a.From) == "" || strings.TrimSpace(a.To) == "" {
			return Intent{}, false
		}
		return Intent{Kind: KindTransfer, Amount: amount, From: strings.TrimSpace(a.From), To: strings.TrimSpace(a.To)}, true
	case KindReport:
		if strings.TrimSpace(a.ReportType) == "" {
			return Intent{}, false
		}
		return Intent{Kind: KindReport, ReportType: strings.TrimSpace(a.ReportType)}, true
	default:
		return Intent{}, false
	}
}

// parseAmount accepts a JSON number or a numeric string, optionally prefixed
// with "$". Negative amounts are rejected.
func parseAmount(raw json.RawMessage) (decimal.Decimal, bool) {
	if len(raw) == 0 {
		return decimal.Decimal{}, false
	}
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return decimal.Decimal{}, false
		}
		s = strings.TrimPrefix(strings.TrimSpace(str), "$")
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// extractJSONObject finds a JSON object in reply, unwrapping ```json fences
// when present. Only the span from the first '{' to the last '}' is kept.
func extractJSONObject(reply string) (string, bool) {
	s := strings.TrimSpace(reply)

	if start := strings.Index(s, "```"); start != -1 {
		rest := s[start+3:]
		if nl := strings.Index(rest, "\n"); nl != -1 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end != -1 {
			s = strings.TrimSpace(rest[:end])
		}
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
