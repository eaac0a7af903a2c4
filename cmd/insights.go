package cmd

import (
	"fmt"

	"cashburn/internal/cli"
	"cashburn/internal/model"
	"cashburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Heuristic observations about the current window",
	RunE:  runInsights,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}

func runInsights(_ *cobra.Command, _ []string) error {
	snap, since, until, err := loadSnapshot()
	if err != nil {
		return err
	}

	standard := pipeline.FilterByKind(applyFilters(snap.Transactions), model.KindStandard)
	summary := pipeline.AggregatePeriod(standard, since, until)
	categories := pipeline.AggregateCategories(standard, since, until)

	insights := windowInsights(snap, standard, summary, categories, until)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("INSIGHTS  %s", periodLabel())))
	fmt.Println()

	if len(insights) == 0 {
		fmt.Println("  Nothing stands out. Spending looks steady.")
		fmt.Println()
		return nil
	}

	for _, ins := range insights {
		fmt.Printf("  %s %s\n", insightMarker(ins.Severity), ins.Message)
		if ins.Action != model.ActionNone {
			fmt.Printf("    %s\n", cli.Muted(actionHint(ins)))
		}
	}
	fmt.Println()

	return nil
}

// actionHint turns an insight's suggested action into a runnable command.
func actionHint(ins model.Insight) string {
	switch ins.Action {
	case model.ActionReviewSpending:
		target := ""
		if ins.Target != "" {
			target = fmt.Sprintf(" -c %q", ins.Target)
		}
		return fmt.Sprintf("try: cashburn categories%s", target)
	case model.ActionAdjustBudget:
		if ins.Target != "" {
			return fmt.Sprintf("try: cashburn budget %q <amount>", ins.Target)
		}
		return "try: cashburn setup"
	case model.ActionEditRules:
		return "try: cashburn payees --uncategorized"
	default:
		return ""
	}
}
