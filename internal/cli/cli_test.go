package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/theirongolddev/subcal/internal/model"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{12.5, "12.5"},
		{12.345, "12.35"},
		{0.125, "0.13"},
		{15.49, "15.49"},
		{1234.5, "1,234.5"},
		{1234567.891, "1,234,567.89"},
		{-42.1, "-42.1"},
		{-0.001, "0"},
		{math.NaN(), "-"},
		{math.Inf(1), "-"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Fatalf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTotalsInline(t *testing.T) {
	tests := []struct {
		name string
		in   model.CurrencyBucket
		want string
	}{
		{"empty", model.CurrencyBucket{}, ""},
		{"single", model.CurrencyBucket{"USD": 10.5}, "10.5"},
		{"multi", model.CurrencyBucket{"USD": 10, "EUR": 5, "GBP": 1}, "EUR 5.00 +2"},
	}
	for _, tt := range tests {
		if got := FormatTotalsInline(tt.in); got != tt.want {
			t.Fatalf("%s: FormatTotalsInline = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormatTotalsTitle(t *testing.T) {
	if got := FormatTotalsTitle(model.CurrencyBucket{}); got != "" {
		t.Fatalf("FormatTotalsTitle(empty) = %q, want empty", got)
	}

	got := FormatTotalsTitle(model.CurrencyBucket{"USD": 10.5, "XYZ": 5})
	parts := strings.Split(got, " / ")
	if len(parts) != 2 {
		t.Fatalf("FormatTotalsTitle = %q, want two parts", got)
	}
	if !strings.HasSuffix(parts[0], "10.5") || parts[1] != "XYZ5" {
		t.Fatalf("FormatTotalsTitle = %q", got)
	}
}

func TestFormatTotalsList(t *testing.T) {
	if got := FormatTotalsList(nil); got != "-" {
		t.Fatalf("FormatTotalsList(nil) = %q, want -", got)
	}
	if got := FormatTotalsList(model.CurrencyBucket{"USD": 3, "EUR": 2.5}); got != "EUR 2.5 / USD 3" {
		t.Fatalf("FormatTotalsList = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -12345: "-12,345"}
	for in, want := range tests {
		if got := FormatNumber(in); got != want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", in, got, want)
		}
	}
}

func sampleTable() Table {
	return Table{
		Title:   "Subscriptions",
		Headers: []string{"Name", "Price"},
		Rows: [][]string{
			{"Netflix", "15.49"},
			{"---"},
			{"Spotify", "10.99"},
		},
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(sampleTable())
	for _, want := range []string{"Subscriptions", "Netflix", "Spotify", "15.49", "╭", "╯"} {
		if !strings.Contains(out, want) {
			t.Fatalf("RenderTable output missing %q:\n%s", want, out)
		}
	}
	if RenderTable(Table{}) != "" {
		t.Fatal("empty table should render nothing")
	}
}

func TestRenderTableFormat(t *testing.T) {
	csv, err := RenderTableFormat(sampleTable(), "csv")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(csv, "Name,Price") || !strings.Contains(csv, "Netflix,15.49") || strings.Contains(csv, "---") {
		t.Fatalf("csv = %q", csv)
	}

	md, err := RenderTableFormat(sampleTable(), "Markdown")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "| Netflix |") {
		t.Fatalf("markdown = %q", md)
	}

	if _, err := RenderTableFormat(sampleTable(), "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline([]float64{0, 5, 10}); got != "▁▄█" {
		t.Fatalf("RenderSparkline = %q, want %q", got, "▁▄█")
	}
	if got := RenderSparkline([]float64{0, 0}); got != "▁▁" {
		t.Fatalf("RenderSparkline(zeros) = %q", got)
	}
}
