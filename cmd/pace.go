package cmd

import (
	"fmt"
	"strings"
	"time"

	"cashburn/internal/cli"
	"cashburn/internal/model"
	"cashburn/internal/pipeline"

	"github.com/hako/durafmt"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var paceCmd = &cobra.Command{
	Use:   "pace",
	Short: "Spending velocity for the current month",
	Long:  "Project this month's spending against the budget. Use --category for a single category's pace.",
	RunE:  runPace,
}

func init() {
	rootCmd.AddCommand(paceCmd)
}

func runPace(_ *cobra.Command, _ []string) error {
	snap, _, until, err := loadSnapshot()
	if err != nil {
		return err
	}

	standard := pipeline.FilterByKind(applyFilters(snap.Transactions), model.KindStandard)
	start, end := pipeline.MonthPeriod(until)
	spent := pipeline.AggregatePeriod(standard, start, end).Outflow

	var budget decimal.Decimal
	label := "Overall"
	if flagCategory != "" {
		label = flagCategory
		if c, ok := findCategory(snap.Categories, flagCategory); ok {
			label = c.Name
			budget = c.Budget
		}
	} else if b, ok := cfg.MonthlyBudget(); ok {
		budget = b
	}

	report := pipeline.ProjectPace(start, end, spent, budget, until, cfg.Thresholds())

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("PACE  %s", cli.FormatMonth(start))))
	fmt.Println()

	remaining := humanizeDays(report.DaysRemaining)

	rows := [][]string{
		{"Scope", label},
		{"Days elapsed", fmt.Sprintf("%d of %d", report.DaysElapsed, report.PeriodDays)},
		{"Remaining", remaining},
		{"---"},
		{"Spent", cli.FormatMoney(report.Spent)},
	}

	if report.Budget.IsPositive() {
		rows = append(rows,
			[]string{"Budget", cli.FormatMoney(report.Budget)},
			[]string{"Daily target", cli.FormatMoney(report.DailyTarget)},
			[]string{"Daily actual", cli.FormatMoney(report.DailyActual)},
			[]string{"---"},
			[]string{"Pace", fmt.Sprintf("%s  %s", cli.FormatRatio(report.Ratio), paceWord(report.Status))},
			[]string{"Projected", cli.FormatMoney(report.Projected)},
		)
		delta := cli.FormatSignedMoney(report.ProjectedDelta)
		if report.ProjectedDelta.IsPositive() {
			delta = cli.Bad(delta) + "  over"
		} else {
			delta = cli.Good(delta) + "  under"
		}
		rows = append(rows, []string{"vs budget", delta})
	} else {
		// The no-budget report leaves the rates zeroed.
		daily := decimal.Zero
		if report.DaysElapsed > 0 {
			daily = report.Spent.Div(decimal.NewFromInt(int64(report.DaysElapsed)))
		}
		rows = append(rows,
			[]string{"Daily actual", cli.FormatMoney(daily)},
			[]string{"Budget", cli.Muted("not set")},
		)
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if report.Budget.IsPositive() {
		frac := report.Spent.Div(report.Budget).InexactFloat64()
		fmt.Printf("  Used  %s  %.0f%%\n\n", cli.RenderUtilizationBar(frac, cli.TermWidth()/3), frac*100)
	}

	if !report.Budget.IsPositive() && flagCategory == "" {
		fmt.Println("  Set a monthly budget with `cashburn setup` to unlock projections.")
		fmt.Println()
	}

	return nil
}

// findCategory matches a category by case-folded substring, the same
// matching the transaction filters use.
func findCategory(categories []model.Category, needle string) (model.Category, bool) {
	n := strings.ToLower(needle)
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c.Name), n) {
			return c, true
		}
	}
	return model.Category{}, false
}

// humanizeDays renders a remaining-day count as readable text.
func humanizeDays(days int) string {
	if days <= 0 {
		return "last day"
	}
	d := time.Duration(days) * 24 * time.Hour
	return durafmt.Parse(d).LimitFirstN(2).String()
}
