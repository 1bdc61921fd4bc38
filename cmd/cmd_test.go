package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/theirongolddev/subcal/internal/config"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/source"
	"github.com/theirongolddev/subcal/internal/store"
)

func TestNowFuncPinsToday(t *testing.T) {
	flagToday = "2025-03-10"
	defer func() { flagToday = "" }()

	now, err := nowFunc()
	if err != nil {
		t.Fatalf("nowFunc: %v", err)
	}
	if got, want := dayindex.Today(now()), dayindex.FromParts(2025, 2, 10); got != want {
		t.Fatalf("today = %s, want %s", got, want)
	}

	flagToday = "2025-02-30"
	if _, err := nowFunc(); err == nil {
		t.Fatal("expected error for an invalid date")
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", "x", "--detach=true"})
	if want := []string{"serve", "--addr", "x"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("args = %v, want %v", got, want)
	}
}

func TestSetConfigKey(t *testing.T) {
	cfg := config.DefaultConfig()
	tests := []struct {
		key, value string
		wantErr    bool
	}{
		{"zoom.initial_width", "6", false},
		{"range.min_year", "1990", false},
		{"general.sort_mode", "PRICE-DESC", false},
		{"appearance.theme", "tokyo-night", false},
		{"appearance.theme", "neon", true},
		{"zoom.step", "fast", true},
		{"nope.key", "1", true},
	}
	for _, tt := range tests {
		err := setConfigKey(&cfg, tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Fatalf("setConfigKey(%s, %s) err = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
		}
	}
	if cfg.Zoom.InitialWidth != 6 || cfg.Range.MinYear != 1990 || cfg.General.SortMode != "price-desc" {
		t.Fatalf("cfg = %+v %+v %+v", cfg.Zoom, cfg.Range, cfg.General)
	}
}

func TestIsCurrencyCode(t *testing.T) {
	for code, want := range map[string]bool{"USD": true, "usd": false, "US": false, "EURO": false} {
		if got := isCurrencyCode(code); got != want {
			t.Fatalf("isCurrencyCode(%q) = %v, want %v", code, got, want)
		}
	}
}

func TestCommandsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	db := filepath.Join(dir, "subs.db")
	run := func(args ...string) error {
		rootCmd.SetArgs(append([]string{"--db", db, "--today", "2025-03-10", "--quiet"}, args...))
		return rootCmd.Execute()
	}

	if err := run("add", "--name", "Netflix", "--price", "15.49", "--currency", "usd",
		"--cycle", "monthly", "--start", "2025-01-31"); err != nil {
		t.Fatalf("add: %v", err)
	}

	st, err := store.Open(db)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	subs, err := st.List(context.Background())
	_ = st.Close()
	if err != nil || len(subs) != 1 {
		t.Fatalf("List = %d, %v; want 1", len(subs), err)
	}
	sub := subs[0]
	if sub.Currency != "USD" || sub.Price != 15.49 {
		t.Fatalf("stored = %+v", sub)
	}

	for _, args := range [][]string{
		{"list", "--format", "csv"},
		{"schedule", shortID(sub.ID)},
		{"totals", "--by", "month"},
		{"select", "month:2025-03", "--width", "4"},
		{"summary"},
		{"costs"},
	} {
		if err := run(args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	if err := run("edit", shortID(sub.ID), "--price", "17.99"); err != nil {
		t.Fatalf("edit: %v", err)
	}

	for _, args := range [][]string{
		{"config", "pref", "sort-mode", "price-desc"},
		{"config", "pref", "month-highlight", "off"},
	} {
		if err := run(args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}
	if err := run("config", "pref", "sort-mode", "sideways"); err == nil {
		t.Fatal("config pref sort-mode sideways: want an error")
	}
	st, err = store.Open(db)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	prefs, err := st.Preferences(context.Background(), store.DefaultPreferences())
	_ = st.Close()
	if err != nil {
		t.Fatalf("Preferences: %v", err)
	}
	if prefs.SortMode != "price-desc" || prefs.MonthHighlight || !prefs.YearHighlight {
		t.Fatalf("Preferences = %+v, want price-desc with month highlight off", prefs)
	}

	err = run("add", "--name", "Broken", "--price", "abc")
	var ve *source.ValidationError
	if !errors.As(err, &ve) || ve.Field != "price" {
		t.Fatalf("add err = %v, want a price validation error", err)
	}

	if err := run("remove", sub.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := run("remove", sub.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second remove err = %v, want ErrNotFound", err)
	}
}
