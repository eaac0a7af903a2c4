package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"cashburn/internal/classify"
	"cashburn/internal/model"
	"cashburn/internal/source"
	"cashburn/internal/store"
)

// ImportResult holds the output of one import run.
type ImportResult struct {
	TotalFiles   int
	ParsedFiles  int
	SkippedFiles int // unchanged since the last run
	FileErrors   int
	SkippedRows  int
	Inserted     int
	Duplicates   int
	Categorized  int // filled in by rules or the classifier
	AccountCount int
	Errors       []error // per-file failures, import keeps going
}

// ImportOptions adjust a directory import.
type ImportOptions struct {
	Negate  bool   // statements report spending as positive
	Account string // force every file onto this account
	Force   bool   // reparse files the journal says are unchanged
}

// ProgressFunc is called during imports to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// ImportDir discovers CSV statements under dir, parses the ones the import
// journal has not seen at their current mtime and size, categorizes new
// rows, and inserts them. Row IDs are content-derived, so overlapping
// exports deduplicate instead of double counting.
func ImportDir(ledger *store.Ledger, dir string, opts ImportOptions, progressFn ProgressFunc) (*ImportResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &ImportResult{
		TotalFiles:   len(files),
		AccountCount: source.CountAccounts(files),
	}
	if len(files) == 0 {
		return result, nil
	}

	journal, err := ledger.ImportedFiles()
	if err != nil {
		return nil, fmt.Errorf("reading import journal: %w", err)
	}

	var toParse []source.DiscoveredFile
	for _, f := range files {
		if opts.Account != "" {
			f.Account = opts.Account
		}
		seen, ok := journal[f.Path]
		if !opts.Force && ok && seen.MtimeNs == f.MtimeNs && seen.SizeBytes == f.SizeBytes {
			result.SkippedFiles++
			continue
		}
		toParse = append(toParse, f)
	}
	if len(toParse) == 0 {
		return result, nil
	}

	parseOpts := source.ParseOptions{Negate: opts.Negate}

	// Parallel parsing with a bounded worker pool.
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(toParse) {
		numWorkers = len(toParse)
	}

	work := make(chan int, len(toParse))
	results := make([]source.ParseResult, len(toParse))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range toParse {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(toParse[idx], parseOpts)
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n)+result.SkippedFiles, result.TotalFiles)
				}
			}
		}()
	}

	wg.Wait()

	var batch []model.Transaction
	var parsedFiles []source.DiscoveredFile
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", pr.File.Path, pr.Err))
			continue
		}
		result.ParsedFiles++
		result.SkippedRows += pr.SkippedRows
		batch = append(batch, pr.Transactions...)
		parsedFiles = append(parsedFiles, pr.File)
	}

	if len(batch) > 0 {
		// Train on what the ledger already knows, then fill the new rows.
		existing, err := ledger.ListTransactions(time.Time{}, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("loading ledger for training: %w", err)
		}
		rules, err := ledger.Rules()
		if err != nil {
			return nil, fmt.Errorf("loading payee rules: %w", err)
		}
		result.Categorized = classify.Train(existing, rules).Apply(batch)

		inserted, err := ledger.InsertTransactions(batch)
		if err != nil {
			return nil, fmt.Errorf("inserting transactions: %w", err)
		}
		result.Inserted = inserted
		result.Duplicates = len(batch) - inserted
	}

	for _, f := range parsedFiles {
		if err := ledger.RecordImportFile(f.Path, f.MtimeNs, f.SizeBytes); err != nil {
			return nil, fmt.Errorf("recording %s: %w", f.Path, err)
		}
	}

	if result.Inserted > 0 {
		if err := ledger.RefreshMonthlyTotals(); err != nil {
			return nil, fmt.Errorf("refreshing monthly totals: %w", err)
		}
	}

	return result, nil
}
