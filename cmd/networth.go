package cmd

import (
	"fmt"

	"cashburn/internal/cli"
	"cashburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var networthCmd = &cobra.Command{
	Use:   "networth",
	Short: "Reconstructed month-end net worth",
	RunE:  runNetworth,
}

func init() {
	rootCmd.AddCommand(networthCmd)
}

func runNetworth(_ *cobra.Command, _ []string) error {
	snap, _, until, err := loadSnapshot()
	if err != nil {
		return err
	}

	if len(snap.Accounts) == 0 {
		fmt.Println("\n  No accounts yet. Import statements first.")
		return nil
	}

	points := pipeline.ReconstructNetWorth(snap.Accounts, snap.MonthlyTotals, flagMonths, until)
	if len(points) == 0 {
		fmt.Println("\n  Not enough history to reconstruct net worth.")
		return nil
	}
	deltas := pipeline.NetWorthDeltas(points)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("NET WORTH  %s", periodLabel())))
	fmt.Println()

	rows := make([][]string, 0, len(points))
	for i, pt := range points {
		delta := ""
		if i > 0 {
			d := deltas[i-1]
			delta = cli.FormatSignedMoney(d)
			if d.IsNegative() {
				delta = cli.Bad(delta)
			} else if d.IsPositive() {
				delta = cli.Good(delta)
			}
		}
		rows = append(rows, []string{
			cli.FormatMonth(pt.Month),
			cli.FormatMoney(pt.Assets),
			cli.FormatMoney(pt.Debt),
			cli.FormatMoney(pt.NetWorth),
			delta,
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Assets", "Debt", "Net Worth", "Change"},
		Rows:    rows,
	}))

	if len(points) > 1 {
		nets := make([]float64, len(points))
		for i, pt := range points {
			nets[i] = pt.NetWorth.InexactFloat64()
		}
		first := points[0].NetWorth
		last := points[len(points)-1].NetWorth
		fmt.Printf("  Trend  %s  %s over %d months\n\n",
			cli.RenderSparkline(nets),
			cli.FormatSignedMoney(last.Sub(first)),
			len(points),
		)
	}

	return nil
}
