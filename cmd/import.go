package cmd

import (
	"errors"
	"fmt"
	"os"

	"cashburn/internal/cli"
	"cashburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	flagImportForce  bool
	flagImportNegate bool
)

var importCmd = &cobra.Command{
	Use:   "import [dir|file]",
	Short: "Import CSV bank statements",
	Long: "Scan a directory (or a single CSV file) for bank statement exports and load them\n" +
		"into the ledger. Unchanged files are skipped; re-imports never duplicate rows.",
	Args: cobra.MaximumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportForce, "force", false, "Re-parse files even when unchanged")
	importCmd.Flags().BoolVar(&flagImportNegate, "negate", false, "Flip amount signs (for exports that list spending as positive)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	dir := cfg.Import.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no import path: pass one or set import.dir in the config")
	}

	negate := cfg.Import.Negate
	if cmd.Flags().Changed("negate") {
		negate = flagImportNegate
	}

	ledger, err := openLedger()
	if err != nil {
		return err
	}
	defer func() { _ = ledger.Close() }()

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
	}

	result, err := pipeline.ImportDir(ledger, dir, pipeline.ImportOptions{
		Negate:  negate,
		Account: flagAccount,
		Force:   flagImportForce,
	}, progressFn)
	if err != nil {
		return err
	}

	if result.TotalFiles == 0 {
		fmt.Printf("\n  No CSV files found under %s\n", dir)
		return nil
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "\r  Parsed %d files (%d unchanged, %d failed)    \n",
			result.ParsedFiles, result.SkippedFiles, result.FileErrors)
	}

	fmt.Println()
	fmt.Printf("  Imported     %s new transactions\n", cli.FormatNumber(int64(result.Inserted)))
	if result.Duplicates > 0 {
		fmt.Printf("  Deduplicated %s already in the ledger\n", cli.FormatNumber(int64(result.Duplicates)))
	}
	if result.Categorized > 0 {
		fmt.Printf("  Categorized  %s by rules and history\n", cli.FormatNumber(int64(result.Categorized)))
	}
	if result.SkippedRows > 0 {
		fmt.Printf("  Skipped      %s malformed rows\n", cli.FormatNumber(int64(result.SkippedRows)))
	}
	fmt.Printf("  Accounts     %d\n", result.AccountCount)
	fmt.Println()

	for _, ferr := range result.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", ferr)
	}

	return nil
}
