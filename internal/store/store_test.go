package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cashburn/internal/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func txn(id, date, amount, payee, category, account string) model.Transaction {
	d, _ := time.Parse("2006-01-02", date)
	return model.Transaction{
		ID:       id,
		Date:     d,
		Payee:    payee,
		Amount:   dec(amount),
		Kind:     model.KindStandard,
		Category: category,
		Account:  account,
	}
}

func TestInsertTransactionsDedup(t *testing.T) {
	l := openTestLedger(t)

	batch := []model.Transaction{
		txn("t1", "2025-06-01", "1000", "Employer", "Salary", "checking"),
		txn("t2", "2025-06-03", "-200", "Grocer", "Groceries", "checking"),
	}
	n, err := l.InsertTransactions(batch)
	if err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}

	// Re-running the same batch must be a no-op, balances included.
	n, err = l.InsertTransactions(batch)
	if err != nil {
		t.Fatalf("InsertTransactions (repeat): %v", err)
	}
	if n != 0 {
		t.Fatalf("inserted on repeat = %d, want 0", n)
	}

	count, err := l.TransactionCount()
	if err != nil {
		t.Fatalf("TransactionCount: %v", err)
	}
	if count != 2 {
		t.Fatalf("TransactionCount = %d, want 2", count)
	}

	accounts, err := l.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d, want 1", len(accounts))
	}
	if !accounts[0].Balance.Equal(dec("800")) {
		t.Fatalf("balance = %s, want 800", accounts[0].Balance)
	}
	if accounts[0].Type != model.AccountAsset {
		t.Fatalf("auto-created account type = %s, want asset", accounts[0].Type)
	}
}

func TestInsertTransactionsMovesExistingBalance(t *testing.T) {
	l := openTestLedger(t)

	if err := l.UpsertAccount(model.Account{Name: "card", Type: model.AccountDebt, Balance: dec("-50")}); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}
	if _, err := l.InsertTransactions([]model.Transaction{
		txn("t1", "2025-06-05", "-19.99", "Streaming", "Fun", "card"),
	}); err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}

	accounts, err := l.ListAccounts()
	if err != nil {
		t.Fatalf("ListAccounts: %v", err)
	}
	if !accounts[0].Balance.Equal(dec("-69.99")) {
		t.Fatalf("balance = %s, want -69.99", accounts[0].Balance)
	}
	if accounts[0].Type != model.AccountDebt {
		t.Fatalf("type = %s, want debt after balance update", accounts[0].Type)
	}
}

func TestListTransactionsWindow(t *testing.T) {
	l := openTestLedger(t)

	if _, err := l.InsertTransactions([]model.Transaction{
		txn("t1", "2025-05-31", "-10", "A", "", "checking"),
		txn("t2", "2025-06-01", "-20", "B", "", "checking"),
		txn("t3", "2025-06-30", "-30", "C", "", "checking"),
		txn("t4", "2025-07-01", "-40", "D", "", "checking"),
	}); err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}

	since, _ := time.Parse("2006-01-02", "2025-06-01")
	until, _ := time.Parse("2006-01-02", "2025-07-01")
	got, err := l.ListTransactions(since, until)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("window rows = %d, want 2", len(got))
	}
	if got[0].ID != "t2" || got[1].ID != "t3" {
		t.Fatalf("window IDs = [%s, %s], want [t2, t3]", got[0].ID, got[1].ID)
	}

	all, err := l.ListTransactions(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListTransactions (open): %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("open rows = %d, want 4", len(all))
	}
}

func TestListTransactionsNullColumns(t *testing.T) {
	l := openTestLedger(t)

	if _, err := l.InsertTransactions([]model.Transaction{
		txn("t1", "2025-06-01", "-5", "Kiosk", "", ""),
	}); err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}

	got, err := l.ListTransactions(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if got[0].Category != "" || got[0].Account != "" {
		t.Fatalf("empty fields round-tripped as %q/%q, want empty", got[0].Category, got[0].Account)
	}
}

func TestRefreshAndVerifyMonthlyTotals(t *testing.T) {
	l := openTestLedger(t)

	if _, err := l.InsertTransactions([]model.Transaction{
		txn("t1", "2025-05-10", "1000", "Employer", "Salary", "checking"),
		txn("t2", "2025-05-20", "-300", "Grocer", "Groceries", "checking"),
		txn("t3", "2025-06-02", "-0.10", "Bank", "Fees", "checking"),
		txn("t4", "2025-06-15", "-0.20", "Bank", "Fees", "checking"),
	}); err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}
	if err := l.RefreshMonthlyTotals(); err != nil {
		t.Fatalf("RefreshMonthlyTotals: %v", err)
	}

	totals, err := l.MonthlyTotals()
	if err != nil {
		t.Fatalf("MonthlyTotals: %v", err)
	}
	if len(totals) != 2 {
		t.Fatalf("totals rows = %d, want 2", len(totals))
	}
	if !totals[0].Net.Equal(dec("700")) {
		t.Fatalf("May net = %s, want 700", totals[0].Net)
	}
	// 0.1 + 0.2 is the classic float trap; stored decimals must not fall in.
	if !totals[1].Net.Equal(dec("-0.3")) {
		t.Fatalf("June net = %s, want -0.3", totals[1].Net)
	}

	drifts, err := l.VerifyMonthlyTotals()
	if err != nil {
		t.Fatalf("VerifyMonthlyTotals: %v", err)
	}
	if len(drifts) != 0 {
		t.Fatalf("drifts = %d, want 0: %+v", len(drifts), drifts)
	}

	// A hand-set balance with no matching transaction must surface as drift.
	if err := l.UpsertAccount(model.Account{Name: "checking", Balance: dec("1000")}); err != nil {
		t.Fatalf("UpsertAccount: %v", err)
	}
	drifts, err = l.VerifyMonthlyTotals()
	if err != nil {
		t.Fatalf("VerifyMonthlyTotals: %v", err)
	}
	if len(drifts) != 1 {
		t.Fatalf("drifts = %d, want 1", len(drifts))
	}
	if !drifts[0].Diff.Equal(dec("300.3")) {
		t.Fatalf("drift diff = %s, want 300.3", drifts[0].Diff)
	}
}

func TestSetBudgetKeepsGroup(t *testing.T) {
	l := openTestLedger(t)

	if err := l.UpsertCategory(model.Category{Name: "Groceries", Group: model.GroupExpense, Budget: dec("200")}); err != nil {
		t.Fatalf("UpsertCategory: %v", err)
	}
	if err := l.SetBudget("Groceries", dec("350")); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if err := l.SetBudget("Travel", dec("100")); err != nil {
		t.Fatalf("SetBudget (new): %v", err)
	}

	categories, err := l.ListCategories()
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(categories))
	}
	if !categories[0].Budget.Equal(dec("350")) || categories[0].Group != model.GroupExpense {
		t.Fatalf("Groceries = %s/%s, want 350/expense", categories[0].Budget, categories[0].Group)
	}
	if categories[1].Name != "Travel" || categories[1].Group != model.GroupExpense {
		t.Fatalf("new category = %s/%s, want Travel/expense", categories[1].Name, categories[1].Group)
	}
}

func TestRulesApplyToUncategorizedOnly(t *testing.T) {
	l := openTestLedger(t)

	// Payees are normalized by the import and add paths before they reach
	// the store; the rule match only needs to fold case.
	if _, err := l.InsertTransactions([]model.Transaction{
		txn("t1", "2025-06-01", "-25", "WHOLE FOODS", "", "checking"),
		txn("t2", "2025-06-02", "-30", "whole foods", "", "checking"),
		txn("t3", "2025-06-03", "-35", "Whole Foods", "Fun", "checking"),
	}); err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}

	if err := l.PutRule("Whole  Foods", "Groceries"); err != nil {
		t.Fatalf("PutRule: %v", err)
	}
	rules, err := l.Rules()
	if err != nil {
		t.Fatalf("Rules: %v", err)
	}
	if rules["whole foods"] != "Groceries" {
		t.Fatalf("rule key missing, got %v", rules)
	}

	changed, err := l.ApplyRule("whole foods", "Groceries")
	if err != nil {
		t.Fatalf("ApplyRule: %v", err)
	}
	if changed != 2 {
		t.Fatalf("changed = %d, want 2", changed)
	}

	got, _ := l.ListTransactions(time.Time{}, time.Time{})
	if got[0].Category != "Groceries" || got[1].Category != "Groceries" {
		t.Fatalf("categories after rule = %q/%q, want Groceries", got[0].Category, got[1].Category)
	}
	if got[2].Category != "Fun" {
		t.Fatalf("already-categorized row became %q, want Fun", got[2].Category)
	}
}

func TestImportFileJournal(t *testing.T) {
	l := openTestLedger(t)

	if err := l.RecordImportFile("/tmp/a.csv", 123, 456); err != nil {
		t.Fatalf("RecordImportFile: %v", err)
	}
	files, err := l.ImportedFiles()
	if err != nil {
		t.Fatalf("ImportedFiles: %v", err)
	}
	fi, ok := files["/tmp/a.csv"]
	if !ok {
		t.Fatal("recorded file missing from journal")
	}
	if fi.MtimeNs != 123 || fi.SizeBytes != 456 {
		t.Fatalf("journal entry = %+v, want {123 456}", fi)
	}

	if err := l.ForgetImportFile("/tmp/a.csv"); err != nil {
		t.Fatalf("ForgetImportFile: %v", err)
	}
	files, _ = l.ImportedFiles()
	if len(files) != 0 {
		t.Fatalf("journal entries = %d after forget, want 0", len(files))
	}
}

func TestLoadSnapshot(t *testing.T) {
	l := openTestLedger(t)

	if _, err := l.InsertTransactions([]model.Transaction{
		txn("t1", "2025-06-01", "500", "Employer", "Salary", "checking"),
	}); err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}
	if err := l.UpsertCategory(model.Category{Name: "Salary", Group: model.GroupIncome}); err != nil {
		t.Fatalf("UpsertCategory: %v", err)
	}
	if err := l.RefreshMonthlyTotals(); err != nil {
		t.Fatalf("RefreshMonthlyTotals: %v", err)
	}

	snap, err := l.LoadSnapshot(time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(snap.Transactions) != 1 || len(snap.Accounts) != 1 || len(snap.Categories) != 1 || len(snap.MonthlyTotals) != 1 {
		t.Fatalf("snapshot sizes = %d/%d/%d/%d, want 1/1/1/1",
			len(snap.Transactions), len(snap.Accounts), len(snap.Categories), len(snap.MonthlyTotals))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	l1, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := l1.InsertTransactions([]model.Transaction{
		txn("t1", "2025-06-01", "-5", "Kiosk", "", "cash"),
	}); err != nil {
		t.Fatalf("InsertTransactions: %v", err)
	}
	if err := l1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	l2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = l2.Close() }()

	count, err := l2.TransactionCount()
	if err != nil {
		t.Fatalf("TransactionCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("count after reopen = %d, want 1", count)
	}
}
