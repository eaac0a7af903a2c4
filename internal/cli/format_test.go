package cli

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"small", "42", "42.00"},
		{"thousands", "1234.5", "1,234.50"},
		{"millions", "1234567.89", "1,234,567.89"},
		{"negative", "-1234.5", "-1,234.50"},
		{"zero", "0", "0.00"},
		{"rounds half up", "9.995", "10.00"},
		{"sub-cent", "0.005", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatMoney(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("FormatMoney(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatSignedMoney(t *testing.T) {
	if got := FormatSignedMoney(decimal.RequireFromString("120")); got != "+120.00" {
		t.Errorf("FormatSignedMoney(120) = %q, want %q", got, "+120.00")
	}
	if got := FormatSignedMoney(decimal.RequireFromString("-54.2")); got != "-54.20" {
		t.Errorf("FormatSignedMoney(-54.2) = %q, want %q", got, "-54.20")
	}
	if got := FormatSignedMoney(decimal.Zero); got != "+0.00" {
		t.Errorf("FormatSignedMoney(0) = %q, want %q", got, "+0.00")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}

	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.325); got != "32.5%" {
		t.Errorf("FormatPercent(0.325) = %q, want %q", got, "32.5%")
	}
	if got := FormatPercent(-0.08); got != "-8.0%" {
		t.Errorf("FormatPercent(-0.08) = %q, want %q", got, "-8.0%")
	}
}

func TestFormatRatio(t *testing.T) {
	if got := FormatRatio(1.2); got != "1.20x" {
		t.Errorf("FormatRatio(1.2) = %q, want %q", got, "1.20x")
	}
}

func TestFormatMonth(t *testing.T) {
	m := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	if got := FormatMonth(m); got != "Jun 2025" {
		t.Errorf("FormatMonth = %q, want %q", got, "Jun 2025")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a rather long payee name", 10, "a rather …"},
		{"héllo wörld", 8, "héllo w…"},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
