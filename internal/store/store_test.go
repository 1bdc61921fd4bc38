package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "subcal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testSub(id, name string, price float64) model.Subscription {
	return model.Subscription{
		ID:        id,
		Name:      name,
		Price:     price,
		Currency:  "USD",
		Cycle:     model.CycleMonthly,
		StartDay:  dayindex.FromParts(2025, 0, 15),
		Color:     "#b3e2cd",
		CreatedAt: time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestUpsertListOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.Upsert(ctx, testSub("a", "Alpha", 5)))
	require.NoError(t, s.Upsert(ctx, testSub("b", "Beta", 7)))
	require.NoError(t, s.Upsert(ctx, testSub("c", "Gamma", 9)))

	// Editing a keeps it first.
	edited := testSub("a", "Alpha Plus", 6)
	edited.EndDay = model.DayPtr(dayindex.FromParts(2025, 11, 31))
	require.NoError(t, s.Upsert(ctx, edited))

	subs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{subs[0].ID, subs[1].ID, subs[2].ID})
	assert.Equal(t, "Alpha Plus", subs[0].Name)
	assert.Equal(t, 6.0, subs[0].Price)
	require.NotNil(t, subs[0].EndDay)
	assert.Equal(t, "2025-12-31", subs[0].EndDay.ISO())
	assert.Nil(t, subs[1].EndDay)
	assert.True(t, subs[1].CreatedAt.Equal(testSub("b", "", 0).CreatedAt))
	assert.Equal(t, model.CycleMonthly, subs[2].Cycle)
}

func TestGetAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Upsert(ctx, testSub("a", "Alpha", 5)))

	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
	assert.Equal(t, dayindex.FromParts(2025, 0, 15), got.StartDay)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "a"))
	assert.ErrorIs(t, s.Delete(ctx, "a"), ErrNotFound)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVersionBumpsOnWrites(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	v0, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v0)

	require.NoError(t, s.Upsert(ctx, testSub("a", "Alpha", 5)))
	v1, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Greater(t, v1, v0)

	require.NoError(t, s.ReplaceAll(ctx, []model.Subscription{testSub("x", "X", 1)}))
	v2, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Greater(t, v2, v1)

	// A failed delete does not count as a write.
	_ = s.Delete(ctx, "nope")
	v3, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v2, v3)

	// Preferences are not part of the subscription set.
	require.NoError(t, s.SetSortMode(ctx, "name"))
	v4, err := s.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, v2, v4)
}

func TestReplaceAll(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Upsert(ctx, testSub("old", "Old", 1)))

	require.NoError(t, s.ReplaceAll(ctx, []model.Subscription{
		testSub("z", "Zulu", 3),
		testSub("y", "Yankee", 2),
	}))

	subs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "z", subs[0].ID)
	assert.Equal(t, "y", subs[1].ID)
}

func TestReplaceAllRollsBack(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.Upsert(ctx, testSub("keep", "Keep", 1)))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	assert.Error(t, s.ReplaceAll(canceled, []model.Subscription{testSub("new", "New", 2)}))

	subs, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "keep", subs[0].ID)
}

func TestPreferences(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.Preferences(ctx, DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), p)

	require.NoError(t, s.SetCurrency(ctx, " eur "))
	require.NoError(t, s.SetCurrency(ctx, "EURO"))
	require.NoError(t, s.SetSortMode(ctx, "  Name "))
	require.NoError(t, s.SetFlag(ctx, PrefMonthHighlight, false))
	assert.Error(t, s.SetFlag(ctx, "font-size", true))

	p, err = s.Preferences(ctx, DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "name", p.SortMode)
	assert.True(t, p.TodayHighlight)
	assert.False(t, p.MonthHighlight)
}

func TestPreferencesIgnoreMalformed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.setPref(ctx, PrefCurrency, "dollars"))
	require.NoError(t, s.setPref(ctx, PrefSortMode, strings.Repeat("x", 61)))
	require.NoError(t, s.setPref(ctx, PrefYearHighlight, "maybe"))
	require.NoError(t, s.setPref(ctx, PrefTodayHighlight, " OFF "))

	p, err := s.Preferences(ctx, DefaultPreferences())
	require.NoError(t, err)
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, "next-charge", p.SortMode)
	assert.True(t, p.YearHighlight)
	assert.False(t, p.TodayHighlight)
}

func TestParseFlag(t *testing.T) {
	tests := []struct {
		in       string
		want, ok bool
	}{
		{"1", true, true},
		{"Yes", true, true},
		{"on", true, true},
		{"TRUE", true, true},
		{"0", false, true},
		{"no", false, true},
		{"off", false, true},
		{"false", false, true},
		{"", false, false},
		{"2", false, false},
	}
	for _, tt := range tests {
		got, ok := ParseFlag(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("ParseFlag(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
