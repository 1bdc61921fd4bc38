package charges

import (
	"sync"
	"testing"

	"github.com/theirongolddev/subcal/internal/model"
)

func TestMemo(t *testing.T) {
	m := &Memo{Aggregator: &Aggregator{}, MaxEntries: 2}
	subs := []model.Subscription{sub("s", 30, model.CycleMonthly, day(2025, 1, 1))}

	first := m.Aggregate(1, subs, day(2025, 1, 1), day(2025, 1, 31))
	second := m.Aggregate(1, subs, day(2025, 1, 1), day(2025, 1, 31))
	if first != second {
		t.Fatal("same key should return the cached totals")
	}
	if hits, misses := m.Stats(); hits != 1 || misses != 1 {
		t.Fatalf("Stats = %d hits, %d misses; want 1, 1", hits, misses)
	}

	// A new version evicts the old one.
	third := m.Aggregate(2, subs, day(2025, 1, 1), day(2025, 1, 31))
	if third == first {
		t.Fatal("new version should recompute")
	}
	m.Aggregate(1, subs, day(2025, 1, 1), day(2025, 1, 31))
	if _, misses := m.Stats(); misses != 3 {
		t.Fatalf("misses = %d, want 3", misses)
	}
}

func TestMemo_Concurrent(t *testing.T) {
	m := &Memo{Aggregator: &Aggregator{}}
	subs := []model.Subscription{sub("s", 30, model.CycleMonthly, day(2025, 1, 1))}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v int64) {
			defer wg.Done()
			got := m.Aggregate(v%2, subs, day(2025, 1, 1), day(2025, 1, 31))
			if !approx(got.Month(2025, 0)["USD"], 30) {
				t.Errorf("month = %v, want 30", got.Month(2025, 0)["USD"])
			}
		}(int64(i))
	}
	wg.Wait()
}
