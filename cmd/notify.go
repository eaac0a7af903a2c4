package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"cashburn/internal/model"
	"cashburn/internal/notify"
	"cashburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send the period summary to Telegram",
	RunE:  runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(_ *cobra.Command, _ []string) error {
	notifier := notify.New(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if !notifier.Configured() {
		fmt.Println()
		fmt.Println("  Telegram is not configured.")
		fmt.Println()
		fmt.Println("  To set it up:")
		fmt.Println("    1. Message @BotFather on Telegram and create a bot (you get a token)")
		fmt.Println("    2. Message @userinfobot to find your chat id")
		fmt.Println("    3. Run `cashburn setup`, or set CASHBURN_TG_TOKEN and CASHBURN_TG_CHAT")
		fmt.Println()
		return nil
	}

	snap, since, until, err := loadSnapshot()
	if err != nil {
		return err
	}

	standard := pipeline.FilterByKind(applyFilters(snap.Transactions), model.KindStandard)
	summary := pipeline.AggregatePeriod(standard, since, until)
	categories := pipeline.AggregateCategories(standard, since, until)
	insights := windowInsights(snap, standard, summary, categories, until)

	var pace *model.PaceReport
	if _, ok := cfg.MonthlyBudget(); ok {
		p := overallPace(standard, until)
		pace = &p
	}

	title := fmt.Sprintf("cashburn: %s", periodLabel())
	text := notify.Digest(title, summary, pace, insights)

	if !flagQuiet {
		fmt.Fprintln(os.Stderr, "  Sending digest...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := notifier.Send(ctx, text); err != nil {
		return err
	}

	fmt.Printf("  Sent %s digest to chat %d\n", periodLabel(), cfg.Telegram.ChatID)
	return nil
}
