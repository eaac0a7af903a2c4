package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cashburn/internal/config"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Start from whatever is already configured.
	wiz, _ := config.Load()

	fmt.Println()
	fmt.Println("  Welcome to cashburn!")
	fmt.Println()

	// 1. Import directory
	fmt.Println("  1. Statement directory")
	fmt.Println("     Where your bank's CSV exports live. Subdirectories name accounts.")
	if wiz.Import.Dir != "" {
		fmt.Printf("     Current: %s\n", wiz.Import.Dir)
	}
	fmt.Print("     > ")
	dir, _ := reader.ReadString('\n')
	if dir = strings.TrimSpace(dir); dir != "" {
		wiz.Import.Dir = dir
	}
	fmt.Println()

	// 2. Default time range
	fmt.Println("  2. Default report window")
	fmt.Println("     (1) 3 months")
	fmt.Println("     (2) 6 months [default]")
	fmt.Println("     (3) 12 months")
	fmt.Print("     > ")
	choice, _ := reader.ReadString('\n')
	switch strings.TrimSpace(choice) {
	case "1":
		wiz.General.DefaultMonths = 3
	case "3":
		wiz.General.DefaultMonths = 12
	default:
		wiz.General.DefaultMonths = 6
	}
	fmt.Println()

	// 3. Monthly budget
	fmt.Println("  3. Monthly spending budget")
	fmt.Println("     Powers pace projections. Leave empty to skip.")
	if wiz.Budget.MonthlyTotal != "" {
		fmt.Printf("     Current: %s\n", wiz.Budget.MonthlyTotal)
	}
	fmt.Print("     > ")
	budget, _ := reader.ReadString('\n')
	if budget = strings.TrimSpace(budget); budget != "" {
		d, err := decimal.NewFromString(budget)
		if err != nil || d.IsNegative() {
			fmt.Println("     Not a valid amount, keeping the old value.")
		} else {
			wiz.Budget.MonthlyTotal = d.String()
		}
	}
	fmt.Println()

	// 4. Telegram (optional)
	fmt.Println("  4. Telegram digests (optional)")
	fmt.Println("     Bot token from @BotFather; leave empty to skip.")
	if wiz.Telegram.Token != "" {
		fmt.Printf("     Current: %s\n", maskToken(wiz.Telegram.Token))
	}
	fmt.Print("     > ")
	token, _ := reader.ReadString('\n')
	if token = strings.TrimSpace(token); token != "" {
		wiz.Telegram.Token = token
	}
	if wiz.Telegram.Token != "" {
		fmt.Println("     Chat id (from @userinfobot):")
		fmt.Print("     > ")
		chat, _ := reader.ReadString('\n')
		if chat = strings.TrimSpace(chat); chat != "" {
			id, err := strconv.ParseInt(chat, 10, 64)
			if err != nil {
				fmt.Println("     Not a number, keeping the old value.")
			} else {
				wiz.Telegram.ChatID = id
			}
		}
	}

	if err := wiz.Validate(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	if err := config.Save(wiz); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	if wiz.Import.Dir != "" {
		fmt.Printf("  Next: cashburn import %s\n", wiz.Import.Dir)
	}
	fmt.Println("  Run `cashburn setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func maskToken(token string) string {
	if len(token) > 12 {
		return token[:6] + "..." + token[len(token)-4:]
	}
	if len(token) > 4 {
		return token[:4] + "..."
	}
	return "****"
}
