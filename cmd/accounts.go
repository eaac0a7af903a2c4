package cmd

import (
	"fmt"

	"cashburn/internal/cli"
	"cashburn/internal/model"
	"cashburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagAccountType     string
	flagAccountTracking bool
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Account balances and live net worth",
	RunE:  runAccounts,
}

var accountsSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Change an account's type or tracking flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountsSet,
}

func init() {
	accountsSetCmd.Flags().StringVar(&flagAccountType, "type", "", "Account type: asset or debt")
	accountsSetCmd.Flags().BoolVar(&flagAccountTracking, "tracking", false, "Exclude from net worth (tracking only)")
	accountsCmd.AddCommand(accountsSetCmd)
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(_ *cobra.Command, _ []string) error {
	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	accounts, err := ledger.ListAccounts()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("\n  No accounts yet. Import statements or `cashburn add` first.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("ACCOUNTS"))
	fmt.Println()

	rows := make([][]string, 0, len(accounts)+2)
	for _, a := range accounts {
		balance := cli.FormatMoney(a.Balance)
		if a.Balance.IsNegative() {
			balance = cli.Bad(balance)
		}
		note := ""
		if a.TrackingOnly {
			note = cli.Muted("tracking only")
		}
		rows = append(rows, []string{
			cli.Truncate(a.Name, 28),
			string(a.Type),
			balance,
			note,
		})
	}

	live := pipeline.LiveNetWorth(accounts)
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"NET WORTH", "", cli.FormatMoney(live.NetWorth), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Account", "Type", "Balance", ""},
		Rows:    rows,
	}))

	fmt.Printf("  Assets %s, debt %s across %d accounts\n\n",
		cli.FormatMoney(live.Assets),
		cli.FormatMoney(live.Debt),
		len(accounts),
	)

	return nil
}

func runAccountsSet(cmd *cobra.Command, args []string) error {
	name := args[0]

	if flagAccountType != "" &&
		flagAccountType != string(model.AccountAsset) &&
		flagAccountType != string(model.AccountDebt) {
		return fmt.Errorf("unknown account type %q (want asset or debt)", flagAccountType)
	}

	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	accounts, err := ledger.ListAccounts()
	if err != nil {
		return err
	}

	account := model.Account{Name: name}
	for _, a := range accounts {
		if a.Name == name {
			account = a
			break
		}
	}

	if flagAccountType != "" {
		account.Type = model.AccountType(flagAccountType)
	}
	if account.Type == "" {
		account.Type = model.AccountAsset
	}
	if cmd.Flags().Changed("tracking") {
		account.TrackingOnly = flagAccountTracking
	}

	if err := ledger.UpsertAccount(account); err != nil {
		return err
	}

	fmt.Printf("  %s: type %s", account.Name, account.Type)
	if account.TrackingOnly {
		fmt.Print(", tracking only")
	}
	fmt.Println()
	return nil
}
