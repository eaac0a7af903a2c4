// Package store provides the SQLite ledger backing the aggregator.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"cashburn/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

var log = logrus.WithField("component", "store")

// Ledger is the SQLite-backed transaction store. Money persists as exact
// decimal strings; every sum happens in Go so no value ever passes through
// a binary float.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Ledger, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the ledger database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// migrate rebuilds the derived tables when the schema version moved. User
// tables are never dropped.
func (l *Ledger) migrate() error {
	var current string
	err := l.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading schema version: %w", err)
	}

	want := strconv.Itoa(schemaVersion)
	if current == want {
		return nil
	}
	if current != "" {
		log.WithFields(logrus.Fields{"from": current, "to": want}).Debug("rebuilding derived tables")
		if _, err := l.db.Exec(dropDerivedSQL); err != nil {
			return fmt.Errorf("dropping derived tables: %w", err)
		}
		if _, err := l.db.Exec(schemaSQL); err != nil {
			return fmt.Errorf("recreating schema: %w", err)
		}
	}
	if _, err := l.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, want); err != nil {
		return fmt.Errorf("writing schema version: %w", err)
	}
	return nil
}

// InsertTransactions stores the batch, skipping IDs already present, and
// moves the named accounts' balances by the amounts actually inserted.
// Accounts referenced for the first time are created as asset accounts.
// Returns the number of rows inserted; the remainder were duplicates.
func (l *Ledger) InsertTransactions(txns []model.Transaction) (int, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	tx, err := l.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO transactions
		(id, date, payee, amount, kind, category, account, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := 0
	deltas := make(map[string]decimal.Decimal)

	for _, t := range txns {
		kind := t.Kind
		if kind == "" {
			kind = model.KindStandard
		}
		res, err := stmt.Exec(
			t.ID, t.Date.Format("2006-01-02"), t.Payee, t.Amount.String(),
			string(kind), nullIfEmpty(t.Category), nullIfEmpty(t.Account), now,
		)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			continue // duplicate ID
		}
		inserted++
		if t.Account != "" {
			deltas[t.Account] = deltas[t.Account].Add(t.Amount)
		}
	}

	if err := applyBalanceDeltas(tx, deltas); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func applyBalanceDeltas(tx *sql.Tx, deltas map[string]decimal.Decimal) error {
	for name, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		var balStr string
		err := tx.QueryRow(`SELECT balance FROM accounts WHERE name = ?`, name).Scan(&balStr)
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := tx.Exec(`INSERT INTO accounts (name, type, balance) VALUES (?, 'asset', ?)`,
				name, delta.String()); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		bal, err := decimal.NewFromString(balStr)
		if err != nil {
			return fmt.Errorf("account %s has balance %q: %w", name, balStr, err)
		}
		if _, err := tx.Exec(`UPDATE accounts SET balance = ? WHERE name = ?`,
			bal.Add(delta).String(), name); err != nil {
			return err
		}
	}
	return nil
}

// UpsertAccount creates or replaces an account row.
func (l *Ledger) UpsertAccount(a model.Account) error {
	typ := a.Type
	if typ == "" {
		typ = model.AccountAsset
	}
	tracking := 0
	if a.TrackingOnly {
		tracking = 1
	}
	_, err := l.db.Exec(`INSERT OR REPLACE INTO accounts (name, type, balance, tracking_only)
		VALUES (?, ?, ?, ?)`, a.Name, string(typ), a.Balance.String(), tracking)
	return err
}

// UpsertCategory creates or replaces a category row.
func (l *Ledger) UpsertCategory(c model.Category) error {
	grp := c.Group
	if grp == "" {
		grp = model.GroupExpense
	}
	_, err := l.db.Exec(`INSERT OR REPLACE INTO categories (name, grp, budget)
		VALUES (?, ?, ?)`, c.Name, string(grp), c.Budget.String())
	return err
}

// SetBudget assigns a category's monthly budget, creating the category if
// needed and keeping its group otherwise.
func (l *Ledger) SetBudget(name string, budget decimal.Decimal) error {
	_, err := l.db.Exec(`INSERT INTO categories (name, budget) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET budget = excluded.budget`, name, budget.String())
	return err
}

// ListTransactions returns transactions with dates in [since, until),
// ordered by date then ID. Zero bounds are open.
func (l *Ledger) ListTransactions(since, until time.Time) ([]model.Transaction, error) {
	q := `SELECT id, date, payee, amount, kind, category, account FROM transactions`
	var conds []string
	var args []any
	if !since.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, since.Format("2006-01-02"))
	}
	if !until.IsZero() {
		conds = append(conds, "date < ?")
		args = append(args, until.Format("2006-01-02"))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY date, id"

	rows, err := l.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var (
			t                 model.Transaction
			dateStr, amtStr   string
			kindStr           string
			category, account sql.NullString
		)
		if err := rows.Scan(&t.ID, &dateStr, &t.Payee, &amtStr, &kindStr, &category, &account); err != nil {
			return nil, err
		}
		t.Date, _ = time.Parse("2006-01-02", dateStr)
		t.Amount, err = decimal.NewFromString(amtStr)
		if err != nil {
			return nil, fmt.Errorf("transaction %s has amount %q: %w", t.ID, amtStr, err)
		}
		t.Kind = model.TransactionKind(kindStr)
		t.Category = category.String
		t.Account = account.String
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// ListAccounts returns all accounts ordered by name.
func (l *Ledger) ListAccounts() ([]model.Account, error) {
	rows, err := l.db.Query(`SELECT name, type, balance, tracking_only FROM accounts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var (
			a        model.Account
			typStr   string
			balStr   string
			tracking int
		)
		if err := rows.Scan(&a.Name, &typStr, &balStr, &tracking); err != nil {
			return nil, err
		}
		a.Type = model.AccountType(typStr)
		a.TrackingOnly = tracking != 0
		a.Balance, err = decimal.NewFromString(balStr)
		if err != nil {
			return nil, fmt.Errorf("account %s has balance %q: %w", a.Name, balStr, err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ListCategories returns all categories ordered by name.
func (l *Ledger) ListCategories() ([]model.Category, error) {
	rows, err := l.db.Query(`SELECT name, grp, budget FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var (
			c         model.Category
			grpStr    string
			budgetStr string
		)
		if err := rows.Scan(&c.Name, &grpStr, &budgetStr); err != nil {
			return nil, err
		}
		c.Group = model.CategoryGroup(grpStr)
		c.Budget, err = decimal.NewFromString(budgetStr)
		if err != nil {
			return nil, fmt.Errorf("category %s has budget %q: %w", c.Name, budgetStr, err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// MonthlyTotals returns the whole index ordered by account then month.
func (l *Ledger) MonthlyTotals() ([]model.MonthlyAccountTotal, error) {
	rows, err := l.db.Query(`SELECT account, month, net FROM monthly_account_totals ORDER BY account, month`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var totals []model.MonthlyAccountTotal
	for rows.Next() {
		var (
			mt               model.MonthlyAccountTotal
			monthStr, netStr string
		)
		if err := rows.Scan(&mt.Account, &monthStr, &netStr); err != nil {
			return nil, err
		}
		mt.Month, _ = time.Parse("2006-01", monthStr)
		mt.Net, err = decimal.NewFromString(netStr)
		if err != nil {
			return nil, fmt.Errorf("monthly total %s/%s has net %q: %w", mt.Account, monthStr, netStr, err)
		}
		totals = append(totals, mt)
	}
	return totals, rows.Err()
}

// RefreshMonthlyTotals recomputes the per-account month sums from the
// transaction table, current partial month included. Sums are decimal in
// Go; SQLite's SUM would coerce the stored strings into binary floats.
func (l *Ledger) RefreshMonthlyTotals() error {
	rows, err := l.db.Query(`SELECT account, substr(date, 1, 7), amount FROM transactions
		WHERE account IS NOT NULL`)
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	type key struct{ account, month string }
	sums := make(map[key]decimal.Decimal)
	for rows.Next() {
		var acct, month, amtStr string
		if err := rows.Scan(&acct, &month, &amtStr); err != nil {
			return err
		}
		amt, err := decimal.NewFromString(amtStr)
		if err != nil {
			return fmt.Errorf("amount %q under account %s: %w", amtStr, acct, err)
		}
		k := key{acct, month}
		sums[k] = sums[k].Add(amt)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM monthly_account_totals`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO monthly_account_totals (account, month, net) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for k, net := range sums {
		if _, err := stmt.Exec(k.account, k.month, net.String()); err != nil {
			return err
		}
	}

	log.WithField("months", len(sums)).Debug("monthly totals refreshed")
	return tx.Commit()
}

// Drift is one account whose live balance disagrees with its summed
// monthly totals. Hand-set balances with no matching adjustment
// transaction show up here.
type Drift struct {
	Account string
	Balance decimal.Decimal // live
	Summed  decimal.Decimal // from the monthly totals index
	Diff    decimal.Decimal // Balance - Summed
}

// VerifyMonthlyTotals checks every account's live balance against the sum
// of its monthly totals and returns the accounts that drift.
func (l *Ledger) VerifyMonthlyTotals() ([]Drift, error) {
	accounts, err := l.ListAccounts()
	if err != nil {
		return nil, err
	}
	totals, err := l.MonthlyTotals()
	if err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal, len(accounts))
	for _, mt := range totals {
		sums[mt.Account] = sums[mt.Account].Add(mt.Net)
	}

	var drifts []Drift
	for _, a := range accounts {
		diff := a.Balance.Sub(sums[a.Name])
		if !diff.IsZero() {
			drifts = append(drifts, Drift{
				Account: a.Name,
				Balance: a.Balance,
				Summed:  sums[a.Name],
				Diff:    diff,
			})
		}
	}
	return drifts, nil
}

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// ImportedFiles returns a map of file_path to FileInfo for every file the
// importer has recorded.
func (l *Ledger) ImportedFiles() (map[string]FileInfo, error) {
	rows, err := l.db.Query(`SELECT file_path, mtime_ns, size_bytes FROM import_files`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// RecordImportFile marks a file as imported at its current mtime and size.
func (l *Ledger) RecordImportFile(path string, mtimeNs, sizeBytes int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := l.db.Exec(`INSERT OR REPLACE INTO import_files (file_path, mtime_ns, size_bytes, imported_at)
		VALUES (?, ?, ?, ?)`, path, mtimeNs, sizeBytes, now)
	return err
}

// ForgetImportFile drops a file's journal entry so the next import rereads it.
func (l *Ledger) ForgetImportFile(path string) error {
	_, err := l.db.Exec(`DELETE FROM import_files WHERE file_path = ?`, path)
	return err
}

// PutRule stores a payee-to-category rule keyed on the case-folded
// normalized payee.
func (l *Ledger) PutRule(payee, category string) error {
	key := strings.ToLower(model.NormalizePayee(payee))
	if key == "" {
		return errors.New("empty payee")
	}
	_, err := l.db.Exec(`INSERT OR REPLACE INTO payee_rules (payee, category) VALUES (?, ?)`,
		key, category)
	return err
}

// Rules returns all payee rules keyed by case-folded payee.
func (l *Ledger) Rules() (map[string]string, error) {
	rows, err := l.db.Query(`SELECT payee, category FROM payee_rules`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	rules := make(map[string]string)
	for rows.Next() {
		var payee, category string
		if err := rows.Scan(&payee, &category); err != nil {
			return nil, err
		}
		rules[payee] = category
	}
	return rules, rows.Err()
}

// ApplyRule recategorizes uncategorized transactions whose payee matches
// and returns how many rows changed.
func (l *Ledger) ApplyRule(payee, category string) (int64, error) {
	key := strings.ToLower(model.NormalizePayee(payee))
	res, err := l.db.Exec(`UPDATE transactions SET category = ?
		WHERE (category IS NULL OR category = '') AND lower(payee) = ?`, category, key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TransactionCount returns the number of stored transactions.
func (l *Ledger) TransactionCount() (int, error) {
	var count int
	err := l.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&count)
	return count, err
}

// LoadSnapshot bundles the window's transactions with all accounts,
// categories, and monthly totals for one aggregation pass.
func (l *Ledger) LoadSnapshot(since, until time.Time) (model.Snapshot, error) {
	var snap model.Snapshot
	var err error
	if snap.Transactions, err = l.ListTransactions(since, until); err != nil {
		return snap, fmt.Errorf("loading transactions: %w", err)
	}
	if snap.Accounts, err = l.ListAccounts(); err != nil {
		return snap, fmt.Errorf("loading accounts: %w", err)
	}
	if snap.Categories, err = l.ListCategories(); err != nil {
		return snap, fmt.Errorf("loading categories: %w", err)
	}
	if snap.MonthlyTotals, err = l.MonthlyTotals(); err != nil {
		return snap, fmt.Errorf("loading monthly totals: %w", err)
	}
	return snap, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
