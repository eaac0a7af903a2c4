package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodSummary holds the top-level totals for one date window.
// Inflow - Outflow = Net holds exactly in decimal arithmetic.
type PeriodSummary struct {
	Inflow  decimal.Decimal
	Outflow decimal.Decimal // absolute value of all negative amounts
	Net     decimal.Decimal
	Count   int
}

// GroupTotal is one named bucket of a breakdown with its absolute sum.
type GroupTotal struct {
	Name  string
	Total decimal.Decimal
	Count int
}

// MonthFlow holds inflow/outflow/net for one calendar month.
type MonthFlow struct {
	Month   time.Time
	Inflow  decimal.Decimal
	Outflow decimal.Decimal
	Net     decimal.Decimal
	Count   int
}

// NetWorthPoint is the reconstructed position at the end of one month.
// Assets and Debt are both non-negative; NetWorth = Assets - Debt.
type NetWorthPoint struct {
	Month    time.Time
	Assets   decimal.Decimal
	Debt     decimal.Decimal
	NetWorth decimal.Decimal
}

// CategoryPace pairs a category's period spend with its budget pace report.
type CategoryPace struct {
	Category string
	Report   PaceReport
}
