package cmd

import (
	"errors"
	"fmt"

	"cashburn/internal/cli"
	"cashburn/internal/store"

	"github.com/alfredxing/calc/compute"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget [category] [amount]",
	Short: "Assign monthly category budgets",
	Long: "With no arguments, list the assigned budgets. With a category and an\n" +
		"amount, set that category's monthly budget; an amount of 0 clears it.",
	Args: cobra.RangeArgs(0, 2),
	RunE: runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, args []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	if len(args) == 0 {
		return listBudgets(ledger)
	}
	if len(args) == 1 {
		return errors.New("need an amount: cashburn budget <category> <amount>")
	}

	value, err := compute.Evaluate(args[1])
	if err != nil {
		return fmt.Errorf("amount %q: %w", args[1], err)
	}
	budget := decimal.NewFromFloat(value).Round(2)
	if budget.IsNegative() {
		return errors.New("budget cannot be negative")
	}

	if err := ledger.SetBudget(args[0], budget); err != nil {
		return err
	}

	if budget.IsZero() {
		fmt.Printf("  %s: budget cleared\n", args[0])
	} else {
		fmt.Printf("  %s: %s per month\n", args[0], cli.FormatMoney(budget))
	}
	return nil
}

func listBudgets(ledger *store.Ledger) error {
	categories, err := ledger.ListCategories()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(categories))
	total := decimal.Zero
	for _, c := range categories {
		if !c.Budget.IsPositive() {
			continue
		}
		rows = append(rows, []string{c.Name, string(c.Group), cli.FormatMoney(c.Budget)})
		total = total.Add(c.Budget)
	}

	if len(rows) == 0 {
		fmt.Println("\n  No category budgets yet. Set one with `cashburn budget <category> <amount>`.")
		if b, ok := cfg.MonthlyBudget(); ok {
			fmt.Printf("  Overall monthly budget: %s\n", cli.FormatMoney(b))
		}
		return nil
	}

	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"TOTAL", "", cli.FormatMoney(total)})

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly Budgets",
		Headers: []string{"Category", "Group", "Budget"},
		Rows:    rows,
	}))

	if b, ok := cfg.MonthlyBudget(); ok {
		fmt.Printf("  Overall monthly budget: %s\n\n", cli.FormatMoney(b))
	}

	return nil
}
