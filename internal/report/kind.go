package report

import (
	"regexp"
	"strings"
	"time"
)

// Kind selects the report layout.
type Kind string

const (
	KindExpense    Kind = "expense"
	KindInvestment Kind = "investment"
	KindSummary    Kind = "summary"
)

// ParseKind maps a free-text report type onto a layout. Unknown types get
// the summary layout.
func ParseKind(reportType string) Kind {
	switch strings.ToLower(strings.TrimSpace(reportType)) {
	case "expense", "expenses", "spending":
		return KindExpense
	case "investment", "investments", "portfolio":
		return KindInvestment
	default:
		return KindSummary
	}
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	unsafeChar = regexp.MustCompile(`[^a-z0-9-]`)
)

// Slug lowercases reportType and joins its words with dashes so it can be
// used in a file name.
func Slug(reportType string) string {
	s := strings.ToLower(strings.TrimSpace(reportType))
	s = whitespace.ReplaceAllString(s, "-")
	s = unsafeChar.ReplaceAllString(s, "")
	s = strings.Trim(s, "-")
	if s == "" {
		return string(KindSummary)
	}
	return s
}

// FileName is the stable name of a report generated on date:
// <slug>-report-<YYYY-MM-DD>.html
func FileName(reportType string, date time.Time) string {
	return Slug(reportType) + "-report-" + date.Format("2006-01-02") + ".html"
}
