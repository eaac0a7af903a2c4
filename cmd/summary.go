package cmd

import (
	"fmt"
	"time"

	"cashburn/internal/cli"
	"cashburn/internal/model"
	"cashburn/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Period totals, trend, and top spending",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

// topN caps the category and payee tables on the summary screen.
const topN = 5

func runSummary(_ *cobra.Command, _ []string) error {
	snap, since, until, err := loadSnapshot()
	if err != nil {
		return err
	}

	if len(snap.Transactions) == 0 {
		fmt.Println("\n  No transactions in the ledger yet.")
		fmt.Println("  Run `cashburn import <dir>` or `cashburn add` to get started.")
		return nil
	}

	filtered := applyFilters(snap.Transactions)
	standard := pipeline.FilterByKind(filtered, model.KindStandard)
	summary := pipeline.AggregatePeriod(standard, since, until)

	if summary.Count == 0 {
		fmt.Println("\n  No transactions match the selected window and filters.")
		return nil
	}

	months := pipeline.AggregateMonths(standard, since, until)
	categories := pipeline.AggregateCategories(standard, since, until)
	payees := pipeline.AggregatePayees(standard, since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("CASHBURN  %s", periodLabel())))
	fmt.Println()

	rows := [][]string{
		{"Income", cli.FormatMoney(summary.Inflow)},
		{"Spending", cli.FormatMoney(summary.Outflow)},
		{"Net", cli.FormatSignedMoney(summary.Net)},
		{"---"},
		{"Transactions", cli.FormatNumber(int64(summary.Count))},
		{"Savings rate", fmt.Sprintf("%.1f%%", pipeline.SavingsRate(summary))},
	}
	if len(months) > 0 {
		avg := summary.Outflow.Div(decimal.NewFromInt(int64(len(months))))
		rows = append(rows, []string{"Avg monthly spend", cli.FormatMoney(avg)})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(months) > 1 {
		nets := make([]float64, len(months))
		for i, m := range months {
			nets[i] = m.Net.InexactFloat64()
		}
		fmt.Printf("  Net by month  %s  %s to %s\n\n",
			cli.RenderSparkline(nets),
			cli.FormatMonth(months[0].Month),
			cli.FormatMonth(months[len(months)-1].Month))
	}

	printGroupTable("Top Categories", "Category", topCategoryRows(categories, summary.Outflow))
	printGroupTable("Top Payees", "Payee", topPayeeRows(payees))

	printInsights(snap, standard, summary, categories, until)

	return nil
}

// topCategoryRows builds the summary's category rows with share bars.
func topCategoryRows(categories []model.GroupTotal, outflow decimal.Decimal) [][]string {
	n := len(categories)
	if n > topN {
		n = topN
	}
	if n == 0 {
		return nil
	}

	maxTotal := categories[0].Total.InexactFloat64()
	barWidth := cli.BarWidth()
	rows := make([][]string, 0, n)
	for _, g := range categories[:n] {
		share := ""
		if outflow.IsPositive() {
			share = fmt.Sprintf("%.1f%%", g.Total.Div(outflow).InexactFloat64()*100)
		}
		rows = append(rows, []string{
			cli.Truncate(g.Name, 24),
			cli.FormatMoney(g.Total),
			share,
			cli.RenderHorizontalBar(g.Total.InexactFloat64(), maxTotal, barWidth),
		})
	}
	return rows
}

func topPayeeRows(payees []model.GroupTotal) [][]string {
	n := len(payees)
	if n > topN {
		n = topN
	}
	if n == 0 {
		return nil
	}

	rows := make([][]string, 0, n)
	for _, g := range payees[:n] {
		rows = append(rows, []string{
			cli.Truncate(g.Name, 24),
			cli.FormatNumber(int64(g.Count)),
			cli.FormatMoney(g.Total),
		})
	}
	return rows
}

func printGroupTable(title, label string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	headers := []string{label, "Spent", "Share", ""}
	if len(rows[0]) == 3 {
		headers = []string{label, "Count", "Spent"}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   title,
		Headers: headers,
		Rows:    rows,
	}))
}

// windowInsights evaluates the heuristic observations for the current
// window.
func windowInsights(snap model.Snapshot, standard []model.Transaction, summary model.PeriodSummary, categories []model.GroupTotal, now time.Time) []model.Insight {
	return pipeline.BuildInsights(pipeline.InsightInput{
		Summary:      summary,
		Categories:   categories,
		Budgets:      snap.Categories,
		Pace:         overallPace(standard, now),
		Transactions: standard,
	})
}

func printInsights(snap model.Snapshot, standard []model.Transaction, summary model.PeriodSummary, categories []model.GroupTotal, now time.Time) {
	insights := windowInsights(snap, standard, summary, categories, now)
	if len(insights) == 0 {
		return
	}

	fmt.Println("  Insights")
	for _, ins := range insights {
		fmt.Printf("  %s %s\n", insightMarker(ins.Severity), ins.Message)
	}
	fmt.Println()
}

func insightMarker(s model.InsightSeverity) string {
	switch s {
	case model.SeverityAlert:
		return cli.Bad("!")
	case model.SeverityWarning:
		return cli.Warn("!")
	default:
		return "-"
	}
}

// overallPace projects the current calendar month's spend against the
// configured total budget. Zero-budget reports classify as no-budget.
func overallPace(txns []model.Transaction, now time.Time) model.PaceReport {
	budget, _ := cfg.MonthlyBudget()
	start, end := pipeline.MonthPeriod(now)
	spent := pipeline.AggregatePeriod(txns, start, end).Outflow
	return pipeline.ProjectPace(start, end, spent, budget, now, cfg.Thresholds())
}
