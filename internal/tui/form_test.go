package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/subcal/internal/source"
)

func TestNewSubscriptionFormDefaultsCycle(t *testing.T) {
	in := &source.Input{}
	if NewSubscriptionForm(in, nil, source.Options{}) == nil {
		t.Fatal("form is nil")
	}
	if in.Cycle != "monthly" {
		t.Fatalf("Cycle = %q, want monthly", in.Cycle)
	}
}

func TestWithPlaceholders(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) }
	opts := source.Options{Now: now}

	got := withPlaceholders(source.Input{Name: "Gym"}, opts)
	if got.Name != "Gym" || got.Price != "0" || got.Currency != "USD" || got.StartDate != "2025-06-01" {
		t.Fatalf("withPlaceholders = %+v", got)
	}
	if _, err := source.Normalize(got, nil, opts); err != nil {
		t.Fatalf("placeholders should normalize, got %v", err)
	}

	// A bad price still fails on price even though later fields are blank.
	probe := withPlaceholders(source.Input{Name: "Gym", Price: "abc"}, opts)
	_, err := source.Normalize(probe, nil, opts)
	var ve *source.ValidationError
	if !errors.As(err, &ve) || ve.Field != "price" {
		t.Fatalf("err = %v, want price rejection", err)
	}
}
