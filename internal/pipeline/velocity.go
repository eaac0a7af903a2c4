package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"cashburn/internal/model"
)

// MonthPeriod returns the calendar-month budget period containing now as a
// half-open [start, end) pair of first-of-month instants.
func MonthPeriod(now time.Time) (time.Time, time.Time) {
	start := model.MonthOf(now)
	return start, start.AddDate(0, 1, 0)
}

// ProjectPace computes the spending-velocity report for one budget period:
// elapsed/remaining days, actual and target daily rates, the velocity ratio,
// its status classification, and a linear end-of-period projection.
//
// Precedence of the degenerate cases: a non-positive budget is always
// no-budget; an empty, inverted, or not-yet-elapsed period is
// insufficient-data; a positive budget with nothing spent is no-spending.
// None of them divide by zero.
func ProjectPace(start, end time.Time, spent, budget decimal.Decimal, now time.Time, th model.PaceThresholds) model.PaceReport {
	r := model.PaceReport{
		PeriodStart:    start,
		PeriodEnd:      end,
		Budget:         budget,
		Spent:          spent,
		DailyActual:    decimal.Zero,
		DailyTarget:    decimal.Zero,
		Projected:      decimal.Zero,
		ProjectedDelta: decimal.Zero,
	}

	r.PeriodDays = daysBetween(start, end)
	if r.PeriodDays < 0 {
		r.PeriodDays = 0
	}

	elapsed := daysBetween(start, now)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > r.PeriodDays {
		elapsed = r.PeriodDays
	}
	r.DaysElapsed = elapsed
	r.DaysRemaining = r.PeriodDays - elapsed

	if !budget.IsPositive() {
		r.Status = model.PaceNoBudget
		return r
	}
	if r.PeriodDays == 0 || elapsed == 0 {
		r.Status = model.PaceInsufficient
		return r
	}

	periodDays := decimal.NewFromInt(int64(r.PeriodDays))
	elapsedDays := decimal.NewFromInt(int64(elapsed))

	r.DailyTarget = budget.Div(periodDays)

	if spent.Sign() <= 0 {
		r.Status = model.PaceNoSpending
		r.ProjectedDelta = r.Projected.Sub(budget)
		return r
	}

	r.DailyActual = spent.Div(elapsedDays)
	r.Projected = spent.Mul(periodDays).Div(elapsedDays)
	r.ProjectedDelta = r.Projected.Sub(budget)

	// ratio = dailyActual / dailyTarget, computed as one division so the
	// intermediate rates' rounding never shifts a boundary case.
	r.Ratio = spent.Mul(periodDays).Div(budget.Mul(elapsedDays)).InexactFloat64()
	r.Status = classifyRatio(r.Ratio, th)

	return r
}

func classifyRatio(ratio float64, th model.PaceThresholds) model.PaceStatus {
	switch {
	case ratio < th.Under:
		return model.PaceUnder
	case ratio <= th.Over:
		return model.PaceOn
	case ratio <= th.Critical:
		return model.PaceSlightlyOver
	default:
		return model.PaceOver
	}
}

// CategoryPaces runs the projector per category over its own assigned
// budget, skipping categories with no budget. Input transactions should
// already be standard-kind; spend per category comes from the outflow side.
// Output order follows the breakdown ordering: descending spend, ties by
// name.
func CategoryPaces(txns []model.Transaction, categories []model.Category, start, end, now time.Time, th model.PaceThresholds) []model.CategoryPace {
	budgets := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		if c.Budget.IsPositive() {
			budgets[c.Name] = c.Budget
		}
	}
	if len(budgets) == 0 {
		return nil
	}

	spent := AggregateCategories(txns, start, end)

	paces := make([]model.CategoryPace, 0, len(budgets))
	seen := make(map[string]bool, len(budgets))
	for _, g := range spent {
		budget, ok := budgets[g.Name]
		if !ok {
			continue
		}
		seen[g.Name] = true
		paces = append(paces, model.CategoryPace{
			Category: g.Name,
			Report:   ProjectPace(start, end, g.Total, budget, now, th),
		})
	}

	// Budgeted categories with no spend this period still get a row.
	rest := make([]model.CategoryPace, 0)
	for _, c := range categories {
		if !c.Budget.IsPositive() || seen[c.Name] {
			continue
		}
		rest = append(rest, model.CategoryPace{
			Category: c.Name,
			Report:   ProjectPace(start, end, decimal.Zero, c.Budget, now, th),
		})
	}
	sortCategoryPaces(rest)
	return append(paces, rest...)
}

func sortCategoryPaces(paces []model.CategoryPace) {
	sort.Slice(paces, func(i, j int) bool {
		return paces[i].Category < paces[j].Category
	})
}

// daysBetween counts whole days from a to b using calendar dates, so time
// zones and partial days never skew the count. Negative when b precedes a.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}
