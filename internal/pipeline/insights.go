package pipeline

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"cashburn/internal/model"
)

// MaxInsights caps the ranked list.
const MaxInsights = 4

// Heuristic thresholds. Fixed rule constants, not configuration: the rules
// are worthless if they drift per machine.
var (
	uncategorizedFloor = decimal.NewFromInt(25)
	uncategorizedShare = 0.10
	largeTxnShare      = 0.40
	lowSavingsCeiling  = 10.0
)

// InsightInput bundles the already-aggregated period data the heuristics
// read. BuildInsights never reaches back to the ledger.
type InsightInput struct {
	Summary      model.PeriodSummary
	Categories   []model.GroupTotal  // descending spend, from AggregateCategories
	Budgets      []model.Category    // assigned budgets for the period
	Pace         model.PaceReport    // overall budget pace, zero Budget when unset
	Transactions []model.Transaction // standard kind, current period, ledger order
}

// BuildInsights evaluates the heuristic rules in a fixed order and returns
// at most MaxInsights of them ranked by severity (alert > warning > info),
// ties kept in rule order. Identical inputs produce identical output; no
// step depends on map iteration.
func BuildInsights(in InsightInput) []model.Insight {
	var out []model.Insight

	if ins, ok := ruleOverspend(in); ok {
		out = append(out, ins)
	}
	if ins, ok := ruleCategoryOverBudget(in); ok {
		out = append(out, ins)
	}
	if ins, ok := ruleOverPace(in); ok {
		out = append(out, ins)
	}
	if ins, ok := ruleUncategorized(in); ok {
		out = append(out, ins)
	}
	if ins, ok := ruleLowSavings(in); ok {
		out = append(out, ins)
	}
	if ins, ok := ruleLargeTransaction(in); ok {
		out = append(out, ins)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity > out[j].Severity
	})

	if len(out) > MaxInsights {
		out = out[:MaxInsights]
	}
	return out
}

// ruleOverspend: the period's outflow exceeded its inflow.
func ruleOverspend(in InsightInput) (model.Insight, bool) {
	if !in.Summary.Net.IsNegative() || !in.Summary.Outflow.IsPositive() {
		return model.Insight{}, false
	}
	return model.Insight{
		Severity: model.SeverityAlert,
		Message: fmt.Sprintf("Spending exceeded income by %s this period",
			in.Summary.Net.Neg().StringFixed(2)),
		Action: model.ActionReviewSpending,
	}, true
}

// ruleCategoryOverBudget: the worst budget overshoot among assigned
// categories. Spend order breaks ties, so the output is stable.
func ruleCategoryOverBudget(in InsightInput) (model.Insight, bool) {
	budgets := make(map[string]decimal.Decimal, len(in.Budgets))
	for _, c := range in.Budgets {
		if c.Budget.IsPositive() {
			budgets[c.Name] = c.Budget
		}
	}

	var (
		worst     model.GroupTotal
		worstOver decimal.Decimal
		found     bool
	)
	for _, g := range in.Categories {
		budget, ok := budgets[g.Name]
		if !ok {
			continue
		}
		over := g.Total.Sub(budget)
		if !over.IsPositive() {
			continue
		}
		if !found || over.GreaterThan(worstOver) {
			worst, worstOver, found = g, over, true
		}
	}
	if !found {
		return model.Insight{}, false
	}
	budget := budgets[worst.Name]
	return model.Insight{
		Severity: model.SeverityWarning,
		Message: fmt.Sprintf("%s is over budget by %s (spent %s of %s)",
			worst.Name, worstOver.StringFixed(2),
			worst.Total.StringFixed(2), budget.StringFixed(2)),
		Action: model.ActionAdjustBudget,
		Target: worst.Name,
	}, true
}

// ruleOverPace: the overall budget is on course to overshoot.
func ruleOverPace(in InsightInput) (model.Insight, bool) {
	if in.Pace.Status != model.PaceOver {
		return model.Insight{}, false
	}
	return model.Insight{
		Severity: model.SeverityWarning,
		Message: fmt.Sprintf("On pace to exceed the budget by %s (projected %s of %s)",
			in.Pace.ProjectedDelta.StringFixed(2),
			in.Pace.Projected.StringFixed(2), in.Pace.Budget.StringFixed(2)),
		Action: model.ActionReviewSpending,
	}, true
}

// ruleUncategorized: enough spending has no category to distort the
// breakdowns. Triggers on both an absolute floor and a share of outflow.
func ruleUncategorized(in InsightInput) (model.Insight, bool) {
	var uncat model.GroupTotal
	for _, g := range in.Categories {
		if g.Name == UncategorizedLabel {
			uncat = g
			break
		}
	}
	if uncat.Total.LessThan(uncategorizedFloor) || !in.Summary.Outflow.IsPositive() {
		return model.Insight{}, false
	}
	share := uncat.Total.Div(in.Summary.Outflow).InexactFloat64()
	if share < uncategorizedShare {
		return model.Insight{}, false
	}
	return model.Insight{
		Severity: model.SeverityWarning,
		Message: fmt.Sprintf("%s of spending across %d transactions is uncategorized",
			uncat.Total.StringFixed(2), uncat.Count),
		Action: model.ActionEditRules,
	}, true
}

// ruleLowSavings: income arrived but almost none of it was kept.
func ruleLowSavings(in InsightInput) (model.Insight, bool) {
	if !in.Summary.Inflow.IsPositive() {
		return model.Insight{}, false
	}
	rate := SavingsRate(in.Summary)
	if rate < 0 || rate >= lowSavingsCeiling {
		return model.Insight{}, false
	}
	return model.Insight{
		Severity: model.SeverityInfo,
		Message:  fmt.Sprintf("Savings rate is low at %.1f%% of income", rate),
	}, true
}

// ruleLargeTransaction: one purchase dominated the period's outflow. The
// first strictly-largest in ledger order wins, keeping the pick stable.
func ruleLargeTransaction(in InsightInput) (model.Insight, bool) {
	if !in.Summary.Outflow.IsPositive() || in.Summary.Count < 2 {
		return model.Insight{}, false
	}
	var (
		largest model.Transaction
		found   bool
	)
	for _, t := range in.Transactions {
		if !t.Amount.IsNegative() {
			continue
		}
		if !found || t.Amount.Neg().GreaterThan(largest.Amount.Neg()) {
			largest, found = t, true
		}
	}
	if !found {
		return model.Insight{}, false
	}
	share := largest.Amount.Neg().Div(in.Summary.Outflow).InexactFloat64()
	if share < largeTxnShare {
		return model.Insight{}, false
	}
	payee := model.NormalizePayee(largest.Payee)
	if payee == "" {
		payee = UnknownPayeeLabel
	}
	return model.Insight{
		Severity: model.SeverityInfo,
		Message: fmt.Sprintf("A single transaction at %s was %.0f%% of this period's spending",
			payee, share*100),
		Target: payee,
	}, true
}
