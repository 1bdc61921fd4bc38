package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/subcal/internal/config"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/source"
)

func BenchmarkLoadFiles(b *testing.B) {
	dir := b.TempDir()
	for f := 0; f < 8; f++ {
		var recs []string
		for i := 0; i < 250; i++ {
			recs = append(recs, record(fmt.Sprintf("f%d-%d", f, i), "Sub", "USD"))
		}
		path := filepath.Join(dir, fmt.Sprintf("subs-%d.json", f))
		writeFile(b, path, "["+strings.Join(recs, ",")+"]")
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := LoadFiles([]string{dir}, source.Options{}, nil)
		if err != nil {
			b.Fatal(err)
		}
		if len(res.Subscriptions) != 2000 {
			b.Fatalf("loaded %d subscriptions", len(res.Subscriptions))
		}
	}
}

func BenchmarkSummarize(b *testing.B) {
	set := sampleSet()
	for len(set) < 5000 {
		set = append(set, sampleSet()...)
	}
	today := dayindex.FromParts(2025, 5, 1)
	rates := config.RatesConfig{}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Summarize(set, today, rates)
	}
}
