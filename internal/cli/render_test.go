package cli

import (
	"strings"
	"testing"
)

func TestRenderSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   string
	}{
		{"empty", nil, ""},
		{"ramp", []float64{0, 1, 2, 3, 4, 5, 6, 7}, "▁▂▃▄▅▆▇█"},
		{"flat zero", []float64{0, 0, 0}, "▁▁▁"},
		{"flat nonzero", []float64{5, 5, 5}, "███"},
		{"negative swing", []float64{-100, 0, 100}, "▁▄█"},
		{"all negative", []float64{-300, -100}, "▁█"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderSparkline(tt.values); got != tt.want {
				t.Errorf("RenderSparkline(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

// countRune counts occurrences ignoring any ANSI styling around them.
func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

func TestRenderUtilizationBar(t *testing.T) {
	tests := []struct {
		name       string
		frac       float64
		width      int
		wantFilled int
	}{
		{"empty", 0, 20, 0},
		{"half", 0.5, 20, 10},
		{"full", 1, 20, 20},
		{"over budget clamps", 1.8, 20, 20},
		{"tiny spend shows one cell", 0.001, 20, 1},
		{"zero width", 0.5, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderUtilizationBar(tt.frac, tt.width)
			if tt.wantFilled < 0 {
				if got != "" {
					t.Fatalf("RenderUtilizationBar = %q, want empty", got)
				}
				return
			}
			if filled := countRune(got, '█'); filled != tt.wantFilled {
				t.Errorf("filled cells = %d, want %d", filled, tt.wantFilled)
			}
			if total := countRune(got, '█') + countRune(got, '░'); total != tt.width {
				t.Errorf("total cells = %d, want %d", total, tt.width)
			}
		})
	}
}

func TestRenderHorizontalBar(t *testing.T) {
	if got := RenderHorizontalBar(50, 100, 30); countRune(got, '█') != 15 {
		t.Errorf("half bar = %d cells, want 15", countRune(got, '█'))
	}
	if got := RenderHorizontalBar(1, 10000, 30); countRune(got, '█') != 1 {
		t.Errorf("tiny bar = %d cells, want 1", countRune(got, '█'))
	}
	if got := RenderHorizontalBar(10, 0, 30); got != "" {
		t.Errorf("zero max = %q, want empty", got)
	}
}

func TestRenderProgressBar(t *testing.T) {
	out := RenderProgressBar(3, 12, 10)
	if !strings.Contains(out, "3/12") {
		t.Errorf("progress bar missing count: %q", out)
	}
	if got := countRune(out, '█') + countRune(out, '░'); got != 10 {
		t.Errorf("bar width = %d, want 10", got)
	}
	if out := RenderProgressBar(1, 0, 10); out != "" {
		t.Errorf("zero total = %q, want empty", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Spending",
		Headers: []string{"Category", "Amount"},
		Rows: [][]string{
			{"Groceries", "412.30"},
			{"---"},
			{"Total", "412.30"},
		},
	})

	for _, want := range []string{"Spending", "Category", "Groceries", "Total"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q", want)
		}
	}
	// Title rule, header rule, separator row, bottom rule.
	if got := strings.Count(out, "├"); got != 2 {
		t.Errorf("separator rules = %d, want 2", got)
	}
}

func TestTermWidthClamped(t *testing.T) {
	w := TermWidth()
	if w < 60 || w > 120 {
		t.Errorf("TermWidth = %d, want within [60, 120]", w)
	}
}

func TestBarWidthScales(t *testing.T) {
	w := BarWidth()
	if w < 12 || w > 24 {
		t.Errorf("BarWidth = %d, want within [12, 24]", w)
	}
}
