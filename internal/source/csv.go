// Package source discovers and parses CSV bank statement exports.
package source

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"time"

	date "github.com/joyt/godate"
	"github.com/shopspring/decimal"

	"cashburn/internal/model"
)

// headerScanLimit caps how many leading rows are searched for the header.
// Some banks emit preamble (account numbers, balances) before it.
const headerScanLimit = 10

// ParseResult holds the output of parsing a single statement file.
type ParseResult struct {
	File         DiscoveredFile
	Transactions []model.Transaction
	SkippedRows  int // data rows that would not parse
	Err          error
}

// ParseOptions adjust how statement rows become transactions.
type ParseOptions struct {
	// Negate flips every amount's sign, for banks that report spending
	// as positive numbers.
	Negate bool
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// columns maps the statement's layout once the header row is found.
type columns struct {
	date     int
	payee    int
	amount   int
	credit   int
	debit    int
	category int
}

// ParseFile reads a CSV statement and produces transactions with stable IDs.
// Reimporting the same file yields the same IDs, so inserts deduplicate.
func ParseFile(df DiscoveredFile, opts ParseOptions) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true
	if opts.Comma != 0 {
		r.Comma = opts.Comma
	}

	records, err := r.ReadAll()
	if err != nil {
		return ParseResult{File: df, Err: err}
	}

	headerIdx, cols, err := findHeader(records)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}

	var (
		txns    []model.Transaction
		skipped int
		layout  string // cached; a statement uses one date layout throughout
	)
	seen := make(map[string]int)

	for _, record := range records[headerIdx+1:] {
		if len(record) <= cols.date || len(record) <= cols.payee {
			skipped++
			continue
		}

		when, err := parseRowDate(strings.TrimSpace(record[cols.date]), &layout)
		if err != nil {
			skipped++
			continue
		}

		amount, ok := rowAmount(record, cols)
		if !ok {
			skipped++
			continue
		}
		if opts.Negate {
			amount = amount.Neg()
		}

		payee := model.NormalizePayee(record[cols.payee])
		t := model.Transaction{
			Date:    when,
			Payee:   payee,
			Amount:  amount,
			Kind:    detectKind(payee),
			Account: df.Account,
		}
		if cols.category >= 0 && len(record) > cols.category {
			t.Category = strings.TrimSpace(record[cols.category])
		}

		// Genuine duplicate rows get distinct IDs via the occurrence count.
		key := when.Format("2006-01-02") + "|" + payee + "|" + amount.String()
		n := seen[key]
		seen[key] = n + 1
		t.ID = stableID(df.Account, key, n)

		txns = append(txns, t)
	}

	return ParseResult{File: df, Transactions: txns, SkippedRows: skipped}
}

// findHeader locates the header row within the leading rows and maps its
// columns. A row qualifies once it names both a date and a payee column.
func findHeader(records [][]string) (int, columns, error) {
	limit := len(records)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		cols, ok := mapColumns(records[i])
		if !ok {
			continue
		}
		if cols.amount < 0 && cols.credit < 0 && cols.debit < 0 {
			return 0, columns{}, ErrNoAmountColumn
		}
		return i, cols, nil
	}
	return 0, columns{}, ErrNoHeader
}

// mapColumns matches header names by case-folded substring, the way bank
// exports vary: "Transaction Date", "Posted Date", "Debit Amount".
// Credit and debit are checked before amount so "Credit Amount" lands on
// the credit column.
func mapColumns(record []string) (columns, bool) {
	cols := columns{date: -1, payee: -1, amount: -1, credit: -1, debit: -1, category: -1}
	for i, field := range record {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(field, "\ufeff")))
		switch {
		case name == "":
		case cols.date < 0 && strings.Contains(name, "date"):
			cols.date = i
		case cols.credit < 0 && strings.Contains(name, "credit"):
			cols.credit = i
		case cols.debit < 0 && strings.Contains(name, "debit"):
			cols.debit = i
		case cols.amount < 0 && (strings.Contains(name, "amount") || name == "value"):
			cols.amount = i
		case cols.payee < 0 && (strings.Contains(name, "payee") || strings.Contains(name, "description") ||
			strings.Contains(name, "merchant") || strings.Contains(name, "narrative") || name == "name"):
			cols.payee = i
		case cols.category < 0 && strings.Contains(name, "category"):
			cols.category = i
		}
	}
	return cols, cols.date >= 0 && cols.payee >= 0
}

// parseRowDate parses with the cached layout first, falling back to layout
// detection. The fallback usually runs once per file.
func parseRowDate(s string, layout *string) (time.Time, error) {
	if *layout != "" {
		if t, err := time.Parse(*layout, s); err == nil {
			return t, nil
		}
	}
	t, detected, err := date.ParseAndGetLayout(s)
	if err != nil {
		return time.Time{}, err
	}
	*layout = detected
	return t, nil
}

// rowAmount resolves the row's signed amount. Split credit/debit columns
// combine as credit minus debit.
func rowAmount(record []string, cols columns) (decimal.Decimal, bool) {
	if cols.amount >= 0 && cols.amount < len(record) {
		d, err := parseAmount(record[cols.amount])
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}

	var total decimal.Decimal
	found := false
	if cols.credit >= 0 && cols.credit < len(record) {
		if d, err := parseAmount(record[cols.credit]); err == nil {
			total = total.Add(d.Abs())
			found = true
		}
	}
	if cols.debit >= 0 && cols.debit < len(record) {
		if d, err := parseAmount(record[cols.debit]); err == nil {
			total = total.Sub(d.Abs())
			found = true
		}
	}
	return total, found
}

// parseAmount converts a statement cell to a decimal. Currency symbols and
// thousands separators are stripped; accounting parentheses mean negative.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 2 {
		s = "-" + s[1:len(s)-1]
	}

	// A lone comma with exactly two trailing digits is a decimal comma,
	// not a thousands separator.
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		if i := strings.IndexByte(s, ','); len(s)-i == 3 {
			s = s[:i] + "." + s[i+1:]
		}
	}

	var b strings.Builder
	for _, r := range s {
		switch r {
		case '$', '€', '£', ',', ' ':
		default:
			b.WriteRune(r)
		}
	}
	return decimal.NewFromString(b.String())
}

// detectKind flags transfers between own accounts so aggregation can skip
// them. Matching is deliberately narrow; a false transfer hides real
// spending.
func detectKind(payee string) model.TransactionKind {
	p := strings.ToLower(payee)
	if strings.Contains(p, "transfer") || strings.Contains(p, "xfer") {
		return model.KindTransfer
	}
	return model.KindStandard
}

// stableID derives a deterministic transaction ID from the row's content,
// with n distinguishing duplicate rows within one file.
func stableID(account, key string, n int) string {
	sum := sha256.Sum256([]byte(account + "|" + key + "|" + strconv.Itoa(n)))
	return hex.EncodeToString(sum[:8])
}
