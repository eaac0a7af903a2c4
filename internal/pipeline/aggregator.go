// Package pipeline orchestrates ledger import and metric aggregation.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cashburn/internal/model"
)

// UncategorizedLabel is the breakdown bucket for transactions without a
// category reference.
const UncategorizedLabel = "Uncategorized"

// UnknownPayeeLabel is the breakdown bucket for transactions with an empty
// payee.
const UnknownPayeeLabel = "Unknown"

// AggregatePeriod computes inflow/outflow/net totals from transactions,
// filtered to dates within the given window. Empty input yields zeros.
func AggregatePeriod(txns []model.Transaction, since, until time.Time) model.PeriodSummary {
	filtered := FilterByDate(txns, since, until)

	summary := model.PeriodSummary{
		Inflow:  decimal.Zero,
		Outflow: decimal.Zero,
		Net:     decimal.Zero,
	}

	for _, t := range filtered {
		summary.Count++
		if t.Amount.IsNegative() {
			summary.Outflow = summary.Outflow.Add(t.Amount.Neg())
		} else {
			summary.Inflow = summary.Inflow.Add(t.Amount)
		}
	}

	summary.Net = summary.Inflow.Sub(summary.Outflow)
	return summary
}

// SavingsRate returns the percentage of inflow kept, (inflow-outflow)/inflow.
// Zero when there is no inflow.
func SavingsRate(s model.PeriodSummary) float64 {
	if !s.Inflow.IsPositive() {
		return 0
	}
	return s.Net.Div(s.Inflow).InexactFloat64() * 100
}

type groupAcc struct {
	display string
	total   decimal.Decimal
	count   int
}

// AggregateCategories computes per-category spend from the outflow side of
// the window. Transactions without a category fall back to Uncategorized.
// Groups are ordered by descending total, ties by name.
func AggregateCategories(txns []model.Transaction, since, until time.Time) []model.GroupTotal {
	filtered := FilterByDate(txns, since, until)

	groups := make(map[string]*groupAcc)
	for _, t := range filtered {
		if !t.Amount.IsNegative() {
			continue
		}
		name := t.Category
		if name == "" {
			name = UncategorizedLabel
		}
		g, ok := groups[name]
		if !ok {
			g = &groupAcc{display: name, total: decimal.Zero}
			groups[name] = g
		}
		g.total = g.total.Add(t.Amount.Neg())
		g.count++
	}

	return flattenGroups(groups)
}

// AggregatePayees computes per-payee spend from the outflow side of the
// window. Payees are grouped under their normalized text with a case-folded
// key; the first-seen spelling is displayed. Empty payees group under
// Unknown.
func AggregatePayees(txns []model.Transaction, since, until time.Time) []model.GroupTotal {
	filtered := FilterByDate(txns, since, until)

	groups := make(map[string]*groupAcc)
	for _, t := range filtered {
		if !t.Amount.IsNegative() {
			continue
		}
		display := model.NormalizePayee(t.Payee)
		if display == "" {
			display = UnknownPayeeLabel
		}
		key := strings.ToLower(display)
		g, ok := groups[key]
		if !ok {
			g = &groupAcc{display: display, total: decimal.Zero}
			groups[key] = g
		}
		g.total = g.total.Add(t.Amount.Neg())
		g.count++
	}

	return flattenGroups(groups)
}

// flattenGroups converts the accumulator map to a sorted slice. Output order
// never depends on map iteration: descending total, then name ascending.
func flattenGroups(groups map[string]*groupAcc) []model.GroupTotal {
	out := make([]model.GroupTotal, 0, len(groups))
	for _, g := range groups {
		out = append(out, model.GroupTotal{Name: g.display, Total: g.total, Count: g.count})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Total.Equal(out[j].Total) {
			return out[i].Total.GreaterThan(out[j].Total)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// AggregateMonths computes per-month inflow/outflow/net, oldest first.
// Months inside the window with no transactions appear as zero rows so
// trends show gaps instead of skipping them.
func AggregateMonths(txns []model.Transaction, since, until time.Time) []model.MonthFlow {
	filtered := FilterByDate(txns, since, until)

	monthMap := make(map[string]*model.MonthFlow)
	get := func(m time.Time) *model.MonthFlow {
		key := m.Format("2006-01")
		mf, ok := monthMap[key]
		if !ok {
			mf = &model.MonthFlow{Month: m, Inflow: decimal.Zero, Outflow: decimal.Zero, Net: decimal.Zero}
			monthMap[key] = mf
		}
		return mf
	}

	for _, t := range filtered {
		mf := get(model.MonthOf(t.Date))
		mf.Count++
		if t.Amount.IsNegative() {
			mf.Outflow = mf.Outflow.Add(t.Amount.Neg())
		} else {
			mf.Inflow = mf.Inflow.Add(t.Amount)
		}
	}

	// Fill every month in the covered span so the series has no holes.
	first, last := monthSpan(filtered, since, until)
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		get(m)
	}

	months := make([]model.MonthFlow, 0, len(monthMap))
	for _, mf := range monthMap {
		mf.Net = mf.Inflow.Sub(mf.Outflow)
		months = append(months, *mf)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month.Before(months[j].Month)
	})

	return months
}

// monthSpan picks the first and last month to fill: window bounds when set,
// otherwise the observed transaction range.
func monthSpan(txns []model.Transaction, since, until time.Time) (time.Time, time.Time) {
	var first, last time.Time
	if !since.IsZero() {
		first = model.MonthOf(since)
	}
	if !until.IsZero() {
		// until is exclusive; a bound on the first of a month ends the span
		// at the month before.
		last = model.MonthOf(until.Add(-time.Nanosecond))
	}
	for _, t := range txns {
		m := model.MonthOf(t.Date)
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}
	if first.IsZero() || last.IsZero() || last.Before(first) {
		return time.Time{}, time.Time{}.AddDate(-1, 0, 0) // empty loop range
	}
	return first, last
}

// FilterByDate returns transactions whose date falls within [since, until).
// A zero bound is open on that side.
func FilterByDate(txns []model.Transaction, since, until time.Time) []model.Transaction {
	if since.IsZero() && until.IsZero() {
		return txns
	}

	var result []model.Transaction
	for _, t := range txns {
		if t.Date.IsZero() {
			continue
		}
		if !since.IsZero() && t.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !t.Date.Before(until) {
			continue
		}
		result = append(result, t)
	}
	return result
}

// FilterByKind returns transactions of the given kind. Empty kind matches
// everything.
func FilterByKind(txns []model.Transaction, kind model.TransactionKind) []model.Transaction {
	if kind == "" {
		return txns
	}
	var result []model.Transaction
	for _, t := range txns {
		if t.Kind == kind {
			result = append(result, t)
		}
	}
	return result
}

// FilterByAccount returns transactions matching the account substring.
func FilterByAccount(txns []model.Transaction, account string) []model.Transaction {
	if account == "" {
		return txns
	}
	var result []model.Transaction
	for _, t := range txns {
		if containsIgnoreCase(t.Account, account) {
			result = append(result, t)
		}
	}
	return result
}

// FilterByCategory returns transactions matching the category substring.
func FilterByCategory(txns []model.Transaction, category string) []model.Transaction {
	if category == "" {
		return txns
	}
	var result []model.Transaction
	for _, t := range txns {
		if containsIgnoreCase(t.Category, category) {
			result = append(result, t)
		}
	}
	return result
}

// FilterUncategorized returns transactions with no category reference.
func FilterUncategorized(txns []model.Transaction) []model.Transaction {
	var result []model.Transaction
	for _, t := range txns {
		if t.Category == "" {
			result = append(result, t)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
