package cmd

import (
	"fmt"
	"sort"

	"cashburn/internal/cli"

	"github.com/spf13/cobra"
)

var ruleCmd = &cobra.Command{
	Use:   "rule <payee> <category>",
	Short: "Categorize a payee, now and for future imports",
	Long: "Map a payee to a category. The rule wins over the classifier on every\n" +
		"future import, and uncategorized history for the payee is updated right away.",
	Args: cobra.ExactArgs(2),
	RunE: runRule,
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all payee rules",
	RunE:  runRuleList,
}

func init() {
	ruleCmd.AddCommand(ruleListCmd)
	rootCmd.AddCommand(ruleCmd)
}

func runRule(_ *cobra.Command, args []string) error {
	payee, category := args[0], args[1]

	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	if err := ledger.PutRule(payee, category); err != nil {
		return err
	}

	changed, err := ledger.ApplyRule(payee, category)
	if err != nil {
		return err
	}

	fmt.Printf("  %s -> %s", payee, category)
	if changed > 0 {
		fmt.Printf(" (%d past transactions categorized)", changed)
	}
	fmt.Println()
	return nil
}

func runRuleList(_ *cobra.Command, _ []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	rules, err := ledger.Rules()
	if err != nil {
		return err
	}
	if len(rules) == 0 {
		fmt.Println("\n  No rules yet. Add one with `cashburn rule <payee> <category>`.")
		return nil
	}

	payees := make([]string, 0, len(rules))
	for p := range rules {
		payees = append(payees, p)
	}
	sort.Strings(payees)

	rows := make([][]string, 0, len(payees))
	for _, p := range payees {
		rows = append(rows, []string{p, rules[p]})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Payee Rules",
		Headers: []string{"Payee", "Category"},
		Rows:    rows,
	}))

	return nil
}
