package tui

import (
	"errors"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/source"
)

// NewSubscriptionForm builds a form editing in. Each field is checked with
// the same rules Normalize applies, so a completed form always normalizes.
// existing is the record being edited, or nil.
func NewSubscriptionForm(in *source.Input, existing *model.Subscription, opts source.Options) *huh.Form {
	check := func(field string, set func(*source.Input, string)) func(string) error {
		return func(v string) error {
			probe := withPlaceholders(*in, opts)
			set(&probe, v)
			_, err := source.Normalize(probe, existing, opts)
			var ve *source.ValidationError
			if errors.As(err, &ve) && ve.Field == field {
				return errors.New(ve.Reason)
			}
			return nil
		}
	}

	cycles := make([]huh.Option[string], 0, len(model.Cycles))
	for _, c := range model.Cycles {
		cycles = append(cycles, huh.NewOption(string(c), string(c)))
	}
	if in.Cycle == "" {
		in.Cycle = string(model.CycleMonthly)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&in.Name).
				Validate(check("name", func(p *source.Input, v string) { p.Name = v })),
			huh.NewInput().
				Title("Price").
				Placeholder("9.99").
				Value(&in.Price).
				Validate(check("price", func(p *source.Input, v string) { p.Price = v })),
			huh.NewInput().
				Title("Currency").
				Placeholder("USD").
				CharLimit(3).
				Value(&in.Currency).
				Validate(check("currency", func(p *source.Input, v string) { p.Currency = v })),
			huh.NewSelect[string]().
				Title("Billing cycle").
				Options(cycles...).
				Value(&in.Cycle),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Start date").
				Description("First billing day, YYYY-MM-DD").
				Value(&in.StartDate).
				Validate(check("start_date", func(p *source.Input, v string) { p.StartDate = v })),
			huh.NewInput().
				Title("End date").
				Description("Optional, YYYY-MM-DD").
				Value(&in.EndDate).
				Validate(check("end_date", func(p *source.Input, v string) { p.EndDate = v })),
			huh.NewInput().
				Title("Link").
				Value(&in.Link),
		),
	).WithShowHelp(true)
}

// withPlaceholders fills the required fields the user has not reached yet,
// so a probe fails only on the field under validation.
func withPlaceholders(in source.Input, opts source.Options) source.Input {
	if in.Name == "" {
		in.Name = "-"
	}
	if in.Price == "" {
		in.Price = "0"
	}
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if in.Cycle == "" {
		in.Cycle = string(model.CycleMonthly)
	}
	if in.StartDate == "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		bounds := opts.Bounds
		if bounds == (dayindex.Range{}) {
			bounds = dayindex.DefaultRange()
		}
		in.StartDate = bounds.Clamp(dayindex.Today(now())).ISO()
	}
	return in
}
