package cmd

import (
	"fmt"
	"time"

	"cashburn/internal/cli"
	"cashburn/internal/model"
	"cashburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Spending by category with budget utilization",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	snap, since, until, err := loadSnapshot()
	if err != nil {
		return err
	}

	filtered := applyFilters(snap.Transactions)
	standard := pipeline.FilterByKind(filtered, model.KindStandard)
	categories := pipeline.AggregateCategories(standard, since, until)

	if len(categories) == 0 {
		fmt.Println("\n  No spending in the selected window.")
		return nil
	}

	summary := pipeline.AggregatePeriod(standard, since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CATEGORIES  %s", periodLabel())))
	fmt.Println()

	rows := make([][]string, 0, len(categories)+2)
	maxTotal := categories[0].Total.InexactFloat64()
	barWidth := cli.BarWidth()
	for _, g := range categories {
		share := ""
		if summary.Outflow.IsPositive() {
			share = fmt.Sprintf("%.1f%%", g.Total.Div(summary.Outflow).InexactFloat64()*100)
		}
		rows = append(rows, []string{
			cli.Truncate(g.Name, 24),
			cli.FormatMoney(g.Total),
			cli.FormatNumber(int64(g.Count)),
			share,
			cli.RenderHorizontalBar(g.Total.InexactFloat64(), maxTotal, barWidth),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", cli.FormatMoney(summary.Outflow), cli.FormatNumber(int64(summary.Count)), "", ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Spending",
		Headers: []string{"Category", "Spent", "Txns", "Share", ""},
		Rows:    rows,
	}))

	printBudgetTable(snap, standard, until)

	return nil
}

// printBudgetTable renders this month's budgeted categories with
// utilization bars and pace status.
func printBudgetTable(snap model.Snapshot, standard []model.Transaction, now time.Time) {
	start, end := pipeline.MonthPeriod(now)
	paces := pipeline.CategoryPaces(standard, snap.Categories, start, end, now, cfg.Thresholds())
	if len(paces) == 0 {
		return
	}

	rows := make([][]string, 0, len(paces))
	for _, p := range paces {
		frac := 0.0
		if p.Report.Budget.IsPositive() {
			frac = p.Report.Spent.Div(p.Report.Budget).InexactFloat64()
		}
		rows = append(rows, []string{
			cli.Truncate(p.Category, 24),
			cli.FormatMoney(p.Report.Spent),
			cli.FormatMoney(p.Report.Budget),
			cli.RenderUtilizationBar(frac, 12),
			fmt.Sprintf("%.0f%%", frac*100),
			paceWord(p.Report.Status),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Budgets  This month",
		Headers: []string{"Category", "Spent", "Budget", "", "Used", "Pace"},
		Rows:    rows,
	}))
}

// paceWord styles a pace status for table cells.
func paceWord(s model.PaceStatus) string {
	switch s {
	case model.PaceUnder:
		return cli.Good("under")
	case model.PaceOn:
		return cli.Good("on pace")
	case model.PaceSlightlyOver:
		return cli.Warn("ahead")
	case model.PaceOver:
		return cli.Bad("over")
	case model.PaceNoSpending:
		return cli.Muted("no spending")
	case model.PaceInsufficient:
		return cli.Muted("too early")
	default:
		return cli.Muted(string(s))
	}
}
