package cmd

import (
	"fmt"

	"cashburn/internal/cli"
	"cashburn/internal/model"
	"cashburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagUncategorized bool

var payeesCmd = &cobra.Command{
	Use:   "payees",
	Short: "Spending by payee",
	RunE:  runPayees,
}

func init() {
	payeesCmd.Flags().BoolVar(&flagUncategorized, "uncategorized", false, "Only payees with uncategorized spending")
	rootCmd.AddCommand(payeesCmd)
}

func runPayees(_ *cobra.Command, _ []string) error {
	snap, since, until, err := loadSnapshot()
	if err != nil {
		return err
	}

	filtered := applyFilters(snap.Transactions)
	standard := pipeline.FilterByKind(filtered, model.KindStandard)

	title := fmt.Sprintf("PAYEES  %s", periodLabel())
	if flagUncategorized {
		standard = pipeline.FilterUncategorized(standard)
		title = fmt.Sprintf("UNCATEGORIZED  %s", periodLabel())
	}

	payees := pipeline.AggregatePayees(standard, since, until)
	if len(payees) == 0 {
		if flagUncategorized {
			fmt.Println("\n  Everything is categorized. Nice.")
		} else {
			fmt.Println("\n  No spending in the selected window.")
		}
		return nil
	}

	summary := pipeline.AggregatePeriod(standard, since, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := make([][]string, 0, len(payees)+2)
	maxTotal := payees[0].Total.InexactFloat64()
	barWidth := cli.BarWidth()
	for _, g := range payees {
		rows = append(rows, []string{
			cli.Truncate(g.Name, 28),
			cli.FormatNumber(int64(g.Count)),
			cli.FormatMoney(g.Total),
			cli.RenderHorizontalBar(g.Total.InexactFloat64(), maxTotal, barWidth),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", cli.FormatNumber(int64(summary.Count)), cli.FormatMoney(summary.Outflow), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Payee", "Txns", "Spent", ""},
		Rows:    rows,
	}))

	if flagUncategorized {
		fmt.Println("  Categorize with `cashburn rule <payee> <category>`.")
		fmt.Println()
	}

	return nil
}
