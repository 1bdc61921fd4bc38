package charges

import (
	"sync"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

// DefaultMemoEntries bounds how many ranges a Memo keeps per version.
const DefaultMemoEntries = 16

type memoKey struct {
	version    int64
	start, end dayindex.Day
}

// Memo caches Aggregate results by (version, rangeStart, rangeEnd). The
// caller bumps version whenever the subscription list changes. Cached Totals
// are shared between callers and must be treated as read-only.
type Memo struct {
	Aggregator *Aggregator
	MaxEntries int

	mu      sync.Mutex
	entries map[memoKey]*Totals
	order   []memoKey
	hits    int
	misses  int
}

// Aggregate returns cached totals or computes and stores them.
func (m *Memo) Aggregate(version int64, subs []model.Subscription, start, end dayindex.Day) *Totals {
	key := memoKey{version, start, end}

	m.mu.Lock()
	if t, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return t
	}
	m.misses++
	m.mu.Unlock()

	t := m.Aggregator.Aggregate(subs, start, end)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[memoKey]*Totals)
	}
	if _, ok := m.entries[key]; !ok {
		m.order = append(m.order, key)
	}
	m.entries[key] = t
	// Entries from older versions can never hit again.
	for len(m.order) > 0 && (len(m.order) > m.limit() || m.order[0].version < version) {
		delete(m.entries, m.order[0])
		m.order = m.order[1:]
	}
	return t
}

func (m *Memo) limit() int {
	if m.MaxEntries <= 0 {
		return DefaultMemoEntries
	}
	return m.MaxEntries
}

// Stats returns hit and miss counts.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Reset drops every cached entry.
func (m *Memo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
	m.order = nil
}
