package cmd

import (
	"fmt"
	"os"
	"time"

	"cashburn/internal/config"
	"cashburn/internal/model"
	"cashburn/internal/pipeline"
	"cashburn/internal/store"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagMonths   int
	flagAccount  string
	flagCategory string
	flagDB       string
	flagQuiet    bool
	flagVerbose  bool
	flagNoColor  bool
)

// cfg is the resolved configuration, loaded once before any command runs.
var cfg config.Config

var rootCmd = &cobra.Command{
	Use:               "cashburn",
	Short:             "Personal finance metrics CLI",
	Long:              "Track spending, budget pace, and net worth from your bank's CSV exports.",
	RunE:              runSummary,
	PersistentPreRunE: initRuntime,
	SilenceUsage:      true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	cc.Init(&cc.Config{
		RootCmd:  rootCmd,
		Headings: cc.HiCyan + cc.Bold,
		Commands: cc.HiYellow + cc.Bold,
		ExecName: cc.Bold,
		Flags:    cc.Bold,
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagMonths, "months", "n", 0, "Time window in months (default from config)")
	rootCmd.PersistentFlags().StringVarP(&flagAccount, "account", "a", "", "Filter to account (substring match)")
	rootCmd.PersistentFlags().StringVarP(&flagCategory, "category", "c", "", "Filter to category (substring match)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Ledger database path")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
}

// initRuntime resolves configuration, logging, and color before any
// command body runs.
func initRuntime(_ *cobra.Command, _ []string) error {
	switch {
	case flagVerbose:
		logrus.SetLevel(logrus.DebugLevel)
	case flagQuiet:
		logrus.SetLevel(logrus.ErrorLevel)
	default:
		logrus.SetLevel(logrus.WarnLevel)
	}

	// lipgloss picks up NO_COLOR on first render.
	if flagNoColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		_ = os.Setenv("NO_COLOR", "1")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if flagMonths <= 0 {
		flagMonths = cfg.General.DefaultMonths
	}
	return nil
}

// openLedger opens the SQLite ledger at the configured path.
func openLedger() (*store.Ledger, error) {
	path := flagDB
	if path == "" {
		path = cfg.DBPath()
	}
	return store.Open(path)
}

// window returns the half-open report window covering the last N calendar
// months: the first instant of the oldest month up to now.
func window() (time.Time, time.Time) {
	now := time.Now().UTC()
	since := model.MonthOf(now).AddDate(0, -(flagMonths - 1), 0)
	return since, now
}

// loadSnapshot is the shared data loading path used by the report
// commands: open the ledger, fetch the window, close.
func loadSnapshot() (model.Snapshot, time.Time, time.Time, error) {
	since, until := window()

	ledger, err := openLedger()
	if err != nil {
		return model.Snapshot{}, since, until, err
	}
	defer func() { _ = ledger.Close() }()

	snap, err := ledger.LoadSnapshot(since, until)
	if err != nil {
		return model.Snapshot{}, since, until, err
	}
	return snap, since, until, nil
}

// applyFilters narrows transactions by the persistent account and
// category flags. The date window is already applied by the store.
func applyFilters(txns []model.Transaction) []model.Transaction {
	if flagAccount != "" {
		txns = pipeline.FilterByAccount(txns, flagAccount)
	}
	if flagCategory != "" {
		txns = pipeline.FilterByCategory(txns, flagCategory)
	}
	return txns
}

// periodLabel names the report window for table titles.
func periodLabel() string {
	if flagMonths == 1 {
		return "This month"
	}
	return fmt.Sprintf("Last %dmo", flagMonths)
}
