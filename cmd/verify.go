package cmd

import (
	"fmt"

	"cashburn/internal/cli"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check ledger consistency",
	Long: "Rebuild the monthly totals index and check that each account's balance\n" +
		"equals the sum of its transactions. Exits nonzero when they disagree.",
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(_ *cobra.Command, _ []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	if err := ledger.RefreshMonthlyTotals(); err != nil {
		return err
	}

	drifts, err := ledger.VerifyMonthlyTotals()
	if err != nil {
		return err
	}

	count, err := ledger.TransactionCount()
	if err != nil {
		return err
	}

	if len(drifts) == 0 {
		fmt.Printf("  OK: %s transactions, balances and monthly totals agree\n",
			cli.FormatNumber(int64(count)))
		return nil
	}

	fmt.Println()
	rows := make([][]string, 0, len(drifts))
	for _, d := range drifts {
		rows = append(rows, []string{
			cli.Truncate(d.Account, 28),
			cli.FormatMoney(d.Balance),
			cli.FormatMoney(d.Summed),
			cli.Bad(cli.FormatSignedMoney(d.Diff)),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Balance Drift",
		Headers: []string{"Account", "Balance", "Transactions", "Drift"},
		Rows:    rows,
	}))
	fmt.Println("  A drifted balance usually means rows were edited outside cashburn.")
	fmt.Println("  Record a correction with `cashburn add <drift> <note> --adjustment -a <account>`.")
	fmt.Println()

	return fmt.Errorf("%d account(s) drifted", len(drifts))
}
