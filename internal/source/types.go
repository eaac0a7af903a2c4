package source

import "errors"

// Sentinel parse errors. A file failing with one of these is reported and
// skipped; the rest of the import run keeps going.
var (
	ErrNoHeader       = errors.New("no header row recognized")
	ErrNoAmountColumn = errors.New("no amount column recognized")
)

// DiscoveredFile represents a CSV statement found during directory scanning.
type DiscoveredFile struct {
	Path      string
	Account   string // derived from the subdirectory or file name
	MtimeNs   int64
	SizeBytes int64
}
