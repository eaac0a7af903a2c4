// Package model defines domain types for the cashburn ledger and its derived metrics.
package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind discriminates ordinary cash flow from balance-moving entries.
// Transfers and adjustments change account balances but are not income or
// spending.
type TransactionKind string

const (
	KindStandard   TransactionKind = "standard"
	KindTransfer   TransactionKind = "transfer"
	KindAdjustment TransactionKind = "adjustment"
)

// Transaction is one ledger entry. Amount is signed: positive is inflow,
// negative is outflow. Aggregation treats transactions as read-only.
type Transaction struct {
	ID       string
	Date     time.Time
	Payee    string
	Amount   decimal.Decimal
	Kind     TransactionKind
	Category string // empty means uncategorized
	Account  string // empty means unassigned
}

// AccountType tags which side of the balance sheet an account sits on.
type AccountType string

const (
	AccountAsset AccountType = "asset"
	AccountDebt  AccountType = "debt"
)

// Account is a balance-bearing bucket. TrackingOnly accounts are excluded
// from net-worth math entirely.
type Account struct {
	Name         string
	Type         AccountType
	Balance      decimal.Decimal
	TrackingOnly bool
}

// CategoryGroup places a category on the income or expense side.
type CategoryGroup string

const (
	GroupExpense  CategoryGroup = "expense"
	GroupIncome   CategoryGroup = "income"
	GroupTransfer CategoryGroup = "transfer"
)

// Category names a spending bucket and its assigned monthly budget.
// A zero budget means no budget is set.
type Category struct {
	Name   string
	Group  CategoryGroup
	Budget decimal.Decimal
}

// MonthlyAccountTotal is the precomputed net transaction sum for one account
// in one complete month. Summing an account's entries and adding the net of
// transactions after the latest covered month must equal its live balance.
type MonthlyAccountTotal struct {
	Account string
	Month   time.Time // first of month, UTC
	Net     decimal.Decimal
}

// Snapshot is one read-only pass of ledger state handed to the aggregator.
// The aggregator never mutates it.
type Snapshot struct {
	Transactions  []Transaction
	Accounts      []Account
	Categories    []Category
	MonthlyTotals []MonthlyAccountTotal
}

// MonthOf normalizes t to the first instant of its calendar month in UTC.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NormalizePayee collapses runs of whitespace and trims the ends so the same
// payee spelled with stray spacing groups together.
func NormalizePayee(p string) string {
	return strings.Join(strings.Fields(p), " ")
}
