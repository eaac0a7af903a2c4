// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with thousands separators and two decimal
// places. e.g., 1234.5 -> "1,234.50"
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	whole, frac, _ := strings.Cut(s, ".")
	out := groupDigits(whole) + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatSignedMoney formats an amount with an explicit sign, for deltas.
// e.g., 120 -> "+120.00", -54.2 -> "-54.20"
func FormatSignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	return groupDigits(strconv.FormatInt(n, 10))
}

func groupDigits(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatPercent formats a 0-1 fraction as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatRatio formats a pace ratio. e.g., 1.2 -> "1.20x"
func FormatRatio(f float64) string {
	return fmt.Sprintf("%.2fx", f)
}

// Truncate shortens a label to maxLen runes with an ellipsis.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}

// FormatMonth formats a month label. e.g., "Jun 2025"
func FormatMonth(t time.Time) string {
	return t.Format("Jan 2006")
}

// FormatDate formats a calendar date.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
