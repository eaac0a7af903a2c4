package source

import (
	"os"
	"path/filepath"
	"strings"
)

// ScanDir walks the import directory and discovers CSV statement files.
// Files nested in a subdirectory take their account name from it; top-level
// files derive one from the file name. A path to a single CSV file is
// treated as a one-file scan.
func ScanDir(importDir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(importDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(importDir), ".csv") {
			return nil, nil
		}
		return []DiscoveredFile{{
			Path:      importDir,
			Account:   deriveAccountName(info.Name()),
			MtimeNs:   info.ModTime().UnixNano(),
			SizeBytes: info.Size(),
		}}, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(importDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if strings.HasPrefix(d.Name(), ".") && path != importDir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}

		df := DiscoveredFile{Path: path}

		rel, _ := filepath.Rel(importDir, path)
		parts := strings.Split(rel, string(filepath.Separator))
		if len(parts) >= 2 {
			df.Account = parts[0]
		} else {
			df.Account = deriveAccountName(d.Name())
		}

		if fi, err := d.Info(); err == nil {
			df.MtimeNs = fi.ModTime().UnixNano()
			df.SizeBytes = fi.Size()
		}

		files = append(files, df)
		return nil
	})

	return files, err
}

// deriveAccountName turns a statement file name into an account name.
// Banks tend to suffix exports with dates and filler words:
//
//	"chase-checking-2025-06.csv" -> "chase-checking"
//	"Visa1234_Activity.csv"      -> "Visa1234"
//
// Trailing all-digit and filler tokens are dropped, never the whole name.
func deriveAccountName(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	if len(parts) == 0 {
		return base
	}

	filler := map[string]bool{
		"statement": true, "statements": true, "export": true,
		"activity": true, "transactions": true, "history": true,
	}

	end := len(parts)
	for end > 1 {
		p := strings.ToLower(parts[end-1])
		if !filler[p] && !isAllDigits(p) {
			break
		}
		end--
	}

	return strings.Join(parts[:end], "-")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// CountAccounts returns the number of unique accounts in a set of discovered files.
func CountAccounts(files []DiscoveredFile) int {
	seen := make(map[string]struct{})
	for _, f := range files {
		seen[f.Account] = struct{}{}
	}
	return len(seen)
}
