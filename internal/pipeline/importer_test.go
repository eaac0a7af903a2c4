package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cashburn/internal/store"
)

func importFixture(t *testing.T) (*store.Ledger, string) {
	t.Helper()
	dir := t.TempDir()
	ledger, err := store.Open(filepath.Join(dir, "ledger.db"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = ledger.Close() })

	importDir := filepath.Join(dir, "import")
	if err := os.MkdirAll(filepath.Join(importDir, "checking"), 0o750); err != nil {
		t.Fatal(err)
	}
	return ledger, importDir
}

func writeCSV(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestImportDir_FirstRun(t *testing.T) {
	ledger, importDir := importFixture(t)

	writeCSV(t, filepath.Join(importDir, "checking", "2025-06.csv"),
		"Date,Description,Amount\n"+
			"2025-06-01,ACME Payroll,1000.00\n"+
			"2025-06-03,Grocer,-54.20\n")

	var last int
	result, err := ImportDir(ledger, importDir, ImportOptions{}, func(current, total int) {
		last = current
		if total != 1 {
			t.Errorf("progress total = %d, want 1", total)
		}
	})
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}

	if result.ParsedFiles != 1 || result.Inserted != 2 {
		t.Fatalf("parsed/inserted = %d/%d, want 1/2", result.ParsedFiles, result.Inserted)
	}
	if last != 1 {
		t.Errorf("final progress = %d, want 1", last)
	}

	accounts, err := ledger.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Name != "checking" {
		t.Fatalf("accounts = %+v, want one named checking", accounts)
	}

	// The monthly totals index refreshes inside the import run.
	totals, err := ledger.MonthlyTotals()
	if err != nil {
		t.Fatalf("MonthlyTotals: %v", err)
	}
	if len(totals) != 1 {
		t.Fatalf("monthly totals = %d, want 1", len(totals))
	}
}

func TestImportDir_SkipsUnchanged(t *testing.T) {
	ledger, importDir := importFixture(t)

	writeCSV(t, filepath.Join(importDir, "checking", "2025-06.csv"),
		"Date,Description,Amount\n2025-06-03,Grocer,-54.20\n")

	if _, err := ImportDir(ledger, importDir, ImportOptions{}, nil); err != nil {
		t.Fatalf("first ImportDir: %v", err)
	}

	result, err := ImportDir(ledger, importDir, ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("second ImportDir: %v", err)
	}
	if result.SkippedFiles != 1 || result.ParsedFiles != 0 || result.Inserted != 0 {
		t.Fatalf("skipped/parsed/inserted = %d/%d/%d, want 1/0/0",
			result.SkippedFiles, result.ParsedFiles, result.Inserted)
	}
}

func TestImportDir_ForceDeduplicates(t *testing.T) {
	ledger, importDir := importFixture(t)

	writeCSV(t, filepath.Join(importDir, "checking", "2025-06.csv"),
		"Date,Description,Amount\n2025-06-03,Grocer,-54.20\n")

	if _, err := ImportDir(ledger, importDir, ImportOptions{}, nil); err != nil {
		t.Fatalf("first ImportDir: %v", err)
	}

	result, err := ImportDir(ledger, importDir, ImportOptions{Force: true}, nil)
	if err != nil {
		t.Fatalf("forced ImportDir: %v", err)
	}
	if result.ParsedFiles != 1 {
		t.Fatalf("parsed = %d, want 1 under force", result.ParsedFiles)
	}
	if result.Inserted != 0 || result.Duplicates != 1 {
		t.Fatalf("inserted/duplicates = %d/%d, want 0/1", result.Inserted, result.Duplicates)
	}

	count, err := ledger.TransactionCount()
	if err != nil {
		t.Fatalf("TransactionCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("TransactionCount = %d, want 1", count)
	}
}

func TestImportDir_BadFileDoesNotAbort(t *testing.T) {
	ledger, importDir := importFixture(t)

	writeCSV(t, filepath.Join(importDir, "checking", "2025-06.csv"),
		"Date,Description,Amount\n2025-06-03,Grocer,-54.20\n")
	writeCSV(t, filepath.Join(importDir, "broken.csv"), "no,header,here\n1,2,3\n")

	result, err := ImportDir(ledger, importDir, ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if result.FileErrors != 1 {
		t.Fatalf("FileErrors = %d, want 1", result.FileErrors)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %d, want 1", len(result.Errors))
	}
	if result.Inserted != 1 {
		t.Fatalf("Inserted = %d, want 1 from the good file", result.Inserted)
	}

	// Broken files stay out of the journal so a fixed export reimports.
	journal, err := ledger.ImportedFiles()
	if err != nil {
		t.Fatalf("ImportedFiles: %v", err)
	}
	if len(journal) != 1 {
		t.Fatalf("journal entries = %d, want 1", len(journal))
	}
}

func TestImportDir_RulesCategorize(t *testing.T) {
	ledger, importDir := importFixture(t)

	if err := ledger.PutRule("Grocer", "Groceries"); err != nil {
		t.Fatalf("PutRule: %v", err)
	}
	writeCSV(t, filepath.Join(importDir, "checking", "2025-06.csv"),
		"Date,Description,Amount\n2025-06-03,Grocer,-54.20\n")

	result, err := ImportDir(ledger, importDir, ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if result.Categorized != 1 {
		t.Fatalf("Categorized = %d, want 1", result.Categorized)
	}

	txns, err := ledger.ListTransactions(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if txns[0].Category != "Groceries" {
		t.Fatalf("Category = %q, want Groceries", txns[0].Category)
	}
}

func TestImportDir_AccountOverride(t *testing.T) {
	ledger, importDir := importFixture(t)

	writeCSV(t, filepath.Join(importDir, "checking", "2025-06.csv"),
		"Date,Description,Amount\n2025-06-03,Grocer,-54.20\n")

	if _, err := ImportDir(ledger, importDir, ImportOptions{Account: "joint"}, nil); err != nil {
		t.Fatalf("ImportDir: %v", err)
	}

	txns, err := ledger.ListTransactions(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if txns[0].Account != "joint" {
		t.Fatalf("Account = %q, want joint", txns[0].Account)
	}
}

func TestImportDir_NegateFlipsSigns(t *testing.T) {
	ledger, importDir := importFixture(t)

	writeCSV(t, filepath.Join(importDir, "checking", "2025-06.csv"),
		"Date,Description,Amount\n2025-06-03,Grocer,54.20\n")

	if _, err := ImportDir(ledger, importDir, ImportOptions{Negate: true}, nil); err != nil {
		t.Fatalf("ImportDir: %v", err)
	}

	txns, err := ledger.ListTransactions(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if !txns[0].Amount.IsNegative() {
		t.Fatalf("Amount = %s, want negative after negate", txns[0].Amount)
	}
}

func TestImportDir_EmptyDir(t *testing.T) {
	ledger, _ := importFixture(t)

	result, err := ImportDir(ledger, filepath.Join(t.TempDir(), "absent"), ImportOptions{}, nil)
	if err != nil {
		t.Fatalf("ImportDir: %v", err)
	}
	if result.TotalFiles != 0 || result.Inserted != 0 {
		t.Fatalf("result = %+v, want all zero", result)
	}

	count, err := ledger.TransactionCount()
	if err != nil {
		t.Fatalf("TransactionCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("TransactionCount = %d, want 0", count)
	}
}
