package domain

import "github.com/shopspring/decimal"

// InsightType tags a notification-like insight.
type InsightType string

const (
	InsightTip         InsightType = "tip"
	InsightAlert       InsightType = "alert"
	InsightAchievement InsightType = "achievement"
)

// Priority of an insight.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// FinancialInsight is only ever mutated by marking it read.
type FinancialInsight struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Type        InsightType `json:"type"`
	Priority    Priority    `json:"priority"`
	Date        string      `json:"date"`
	Read        bool        `json:"read"`
}

// BalanceForecast is a projected balance used for charting.
type BalanceForecast struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// TimeRange is the dashboard's selected window.
type TimeRange string

const (
	RangeWeek  TimeRange = "week"
	RangeMonth TimeRange = "month"
	RangeYear  TimeRange = "year"
)
