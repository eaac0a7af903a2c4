package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cashburn/internal/cli"
	"cashburn/internal/model"

	"github.com/alfredxing/calc/compute"
	"github.com/google/uuid"
	date "github.com/joyt/godate"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	flagAddDate       string
	flagAddInflow     bool
	flagAddTransfer   bool
	flagAddAdjustment bool
)

var addCmd = &cobra.Command{
	Use:   "add <amount> <payee>...",
	Short: "Record a transaction by hand",
	Long: "Record one transaction. The amount may be an arithmetic expression\n" +
		"(\"12.50*3\", \"89.99/2\") and is recorded as spending unless --inflow is set.\n" +
		"Use -c and -a to assign a category and account.",
	Args: cobra.MinimumNArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddDate, "date", "", "Transaction date (default today)")
	addCmd.Flags().BoolVar(&flagAddInflow, "inflow", false, "Record as money in")
	addCmd.Flags().BoolVar(&flagAddTransfer, "transfer", false, "Mark as a transfer between accounts")
	addCmd.Flags().BoolVar(&flagAddAdjustment, "adjustment", false, "Mark as a balance adjustment")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	if flagAddTransfer && flagAddAdjustment {
		return errors.New("--transfer and --adjustment are mutually exclusive")
	}

	value, err := compute.Evaluate(args[0])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[0], err)
	}
	amount := decimal.NewFromFloat(value).Round(2).Abs()
	if amount.IsZero() {
		return errors.New("amount must be nonzero")
	}
	if !flagAddInflow {
		amount = amount.Neg()
	}

	when := time.Now().UTC()
	if flagAddDate != "" {
		when, err = date.Parse(flagAddDate)
		if err != nil {
			return fmt.Errorf("date %q: %w", flagAddDate, err)
		}
	}
	day := time.Date(when.Year(), when.Month(), when.Day(), 0, 0, 0, 0, time.UTC)

	kind := model.KindStandard
	switch {
	case flagAddTransfer:
		kind = model.KindTransfer
	case flagAddAdjustment:
		kind = model.KindAdjustment
	}

	txn := model.Transaction{
		ID:       uuid.New().String(),
		Date:     day,
		Amount:   amount,
		Payee:    model.NormalizePayee(strings.Join(args[1:], " ")),
		Category: flagCategory,
		Account:  flagAccount,
		Kind:     kind,
	}

	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	if _, err := ledger.InsertTransactions([]model.Transaction{txn}); err != nil {
		return err
	}
	if err := ledger.RefreshMonthlyTotals(); err != nil {
		return err
	}

	what := "spent"
	if flagAddInflow {
		what = "received"
	}
	if kind != model.KindStandard {
		what = string(kind)
	}
	fmt.Printf("  Recorded %s %s at %s on %s\n",
		what,
		cli.FormatMoney(amount.Abs()),
		txn.Payee,
		cli.FormatDate(day),
	)
	return nil
}
