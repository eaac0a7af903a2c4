// Package cmd implements the cashburn CLI commands.
package cmd

import (
	"fmt"
	"os"

	"cashburn/internal/cli"
	"cashburn/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// envVars are the override variables config.Load honors, in display order.
var envVars = []string{
	"CASHBURN_MONTHS",
	"CASHBURN_DATA_DIR",
	"CASHBURN_DB",
	"CASHBURN_BUDGET",
	"CASHBURN_PACE_UNDER",
	"CASHBURN_PACE_OVER",
	"CASHBURN_PACE_CRITICAL",
	"CASHBURN_IMPORT_DIR",
	"CASHBURN_IMPORT_NEGATE",
	"CASHBURN_TG_TOKEN",
	"CASHBURN_TG_CHAT",
}

func runConfig(_ *cobra.Command, _ []string) error {
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [general]")
	fmt.Printf("    Default months: %d\n", cfg.General.DefaultMonths)
	fmt.Printf("    Database:       %s\n", cfg.DBPath())
	if cfg.General.DataDir != "" {
		fmt.Printf("    Data dir:       %s\n", cfg.General.DataDir)
	}
	fmt.Println()

	fmt.Println("  [budget]")
	if b, ok := cfg.MonthlyBudget(); ok {
		fmt.Printf("    Monthly total: %s\n", cli.FormatMoney(b))
	} else {
		fmt.Println("    Monthly total: not set")
	}
	fmt.Println()

	fmt.Println("  [pace]")
	fmt.Printf("    Under / over / critical: %.2f / %.2f / %.2f\n",
		cfg.Pace.UnderRatio, cfg.Pace.OverRatio, cfg.Pace.CriticalRatio)
	fmt.Println()

	fmt.Println("  [import]")
	if cfg.Import.Dir != "" {
		fmt.Printf("    Directory: %s\n", cfg.Import.Dir)
	} else {
		fmt.Println("    Directory: not set")
	}
	fmt.Printf("    Negate:    %v\n", cfg.Import.Negate)
	if cfg.Import.Account != "" {
		fmt.Printf("    Account:   %s\n", cfg.Import.Account)
	}
	fmt.Println()

	fmt.Println("  [telegram]")
	if cfg.Telegram.Token != "" {
		fmt.Printf("    Token:   %s\n", maskToken(cfg.Telegram.Token))
		fmt.Printf("    Chat id: %d\n", cfg.Telegram.ChatID)
	} else {
		fmt.Println("    Not configured")
	}
	fmt.Println()

	overrides := false
	for _, name := range envVars {
		if v, ok := os.LookupEnv(name); ok {
			if !overrides {
				fmt.Println("  Environment overrides:")
				overrides = true
			}
			if name == "CASHBURN_TG_TOKEN" {
				v = maskToken(v)
			}
			fmt.Printf("    %s=%s\n", name, v)
		}
	}
	if overrides {
		fmt.Println()
	}

	fmt.Println("  Run `cashburn setup` to reconfigure.")
	return nil
}
