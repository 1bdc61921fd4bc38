package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Preference keys.
const (
	PrefCurrency       = "last-currency"
	PrefSortMode       = "sort-mode"
	PrefTodayHighlight = "today-highlight"
	PrefMonthHighlight = "month-highlight"
	PrefYearHighlight  = "year-highlight"
)

const maxSortModeLen = 60

var currencyCodeRE = regexp.MustCompile(`^[A-Z]{3}$`)

// Preferences are the remembered UI choices.
type Preferences struct {
	Currency       string
	SortMode       string
	TodayHighlight bool
	MonthHighlight bool
	YearHighlight  bool
}

// DefaultPreferences returns the values used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{
		Currency:       "USD",
		SortMode:       "next-charge",
		TodayHighlight: true,
		MonthHighlight: true,
		YearHighlight:  true,
	}
}

func (s *Store) pref(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return v, true, nil
}

func (s *Store) setPref(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("saving preference %s: %w", key, err)
	}
	return nil
}

// Preferences reads stored preferences. Unreadable or malformed values fall
// back to fallback field by field.
func (s *Store) Preferences(ctx context.Context, fallback Preferences) (Preferences, error) {
	p := fallback

	if v, ok, err := s.pref(ctx, PrefCurrency); err != nil {
		return fallback, err
	} else if ok {
		if code := strings.ToUpper(strings.TrimSpace(v)); currencyCodeRE.MatchString(code) {
			p.Currency = code
		}
	}

	if v, ok, err := s.pref(ctx, PrefSortMode); err != nil {
		return fallback, err
	} else if ok {
		if mode := normalizeSortMode(v); mode != "" && len(mode) <= maxSortModeLen {
			p.SortMode = mode
		}
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{PrefTodayHighlight, &p.TodayHighlight},
		{PrefMonthHighlight, &p.MonthHighlight},
		{PrefYearHighlight, &p.YearHighlight},
	}
	for _, f := range flags {
		v, ok, err := s.pref(ctx, f.key)
		if err != nil {
			return fallback, err
		}
		if !ok {
			continue
		}
		if b, valid := ParseFlag(v); valid {
			*f.dst = b
		}
	}
	return p, nil
}

// SetCurrency remembers the last used currency. Codes that are not three
// letters are ignored.
func (s *Store) SetCurrency(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !currencyCodeRE.MatchString(code) {
		return nil
	}
	return s.setPref(ctx, PrefCurrency, code)
}

// SetSortMode remembers the list sort mode. Empty or overlong values are
// ignored.
func (s *Store) SetSortMode(ctx context.Context, mode string) error {
	mode = normalizeSortMode(mode)
	if mode == "" || len(mode) > maxSortModeLen {
		return nil
	}
	return s.setPref(ctx, PrefSortMode, mode)
}

// SetFlag stores one of the highlight flags.
func (s *Store) SetFlag(ctx context.Context, key string, on bool) error {
	switch key {
	case PrefTodayHighlight, PrefMonthHighlight, PrefYearHighlight:
	default:
		return fmt.Errorf("unknown preference flag %q", key)
	}
	v := "0"
	if on {
		v = "1"
	}
	return s.setPref(ctx, key, v)
}

// ParseFlag reads a lenient boolean: 1/true/on/yes or 0/false/off/no.
func ParseFlag(v string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true, true
	case "0", "false", "off", "no":
		return false, true
	}
	return false, false
}

func normalizeSortMode(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
