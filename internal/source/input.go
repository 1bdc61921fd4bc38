// Package source validates subscription input typed by a user or read from a
// file and turns it into model.Subscription values.
package source

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
)

// DefaultColor is assigned when a subscription has no color.
const DefaultColor = "#b3e2cd"

var currencyRE = regexp.MustCompile(`^[A-Z]{3}$`)

// Input is the raw, untrusted form of a subscription.
type Input struct {
	ID        string
	Name      string
	Price     string
	Currency  string
	Cycle     string
	StartDate string
	EndDate   string
	Color     string
	Link      string
	CreatedAt string // RFC 3339; empty keeps the existing value or uses now
}

// Options controls normalization.
type Options struct {
	Bounds dayindex.Range
	Now    func() time.Time
	NewID  func() string
}

func (o Options) withDefaults() Options {
	if o.Bounds == (dayindex.Range{}) {
		o.Bounds = dayindex.DefaultRange()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

// Normalize validates in and returns the subscription it describes. existing
// is the record being edited, or nil for a new one; its ID, color and
// creation time carry over when in leaves them empty.
func Normalize(in Input, existing *model.Subscription, opts Options) (model.Subscription, error) {
	opts = opts.withDefaults()

	name := strings.TrimSpace(in.Name)
	priceText := strings.TrimSpace(in.Price)
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	cycleText := strings.TrimSpace(in.Cycle)

	if name == "" {
		return model.Subscription{}, reject("name", "is required")
	}
	if priceText == "" {
		return model.Subscription{}, reject("price", "is required")
	}
	if currency == "" {
		return model.Subscription{}, reject("currency", "is required")
	}
	if cycleText == "" {
		return model.Subscription{}, reject("cycle", "is required")
	}

	price, err := strconv.ParseFloat(priceText, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return model.Subscription{}, reject("price", "must be a number >= 0, got %q", priceText)
	}
	if !currencyRE.MatchString(currency) {
		return model.Subscription{}, reject("currency", "must be a 3-letter code, got %q", in.Currency)
	}
	cycle, err := model.ParseCycle(cycleText)
	if err != nil {
		return model.Subscription{}, reject("cycle", "must be weekly, monthly or yearly, got %q", cycleText)
	}

	start, err := parseDay("start_date", in.StartDate, opts.Bounds)
	if err != nil {
		return model.Subscription{}, err
	}
	var end *dayindex.Day
	if text := strings.TrimSpace(in.EndDate); text != "" {
		d, err := parseDay("end_date", text, opts.Bounds)
		if err != nil {
			return model.Subscription{}, err
		}
		if d < start {
			return model.Subscription{}, reject("end_date", "%s is before start date %s", d, start)
		}
		end = &d
	}

	sub := model.Subscription{
		ID:       strings.TrimSpace(in.ID),
		Name:     name,
		Price:    price,
		Currency: currency,
		Cycle:    cycle,
		StartDay: start,
		EndDay:   end,
		Color:    strings.TrimSpace(in.Color),
		Link:     strings.TrimSpace(in.Link),
	}
	if existing != nil {
		if sub.ID == "" {
			sub.ID = existing.ID
		}
		if sub.Color == "" {
			sub.Color = existing.Color
		}
		sub.CreatedAt = existing.CreatedAt
	}
	if sub.ID == "" {
		sub.ID = opts.NewID()
	}
	if sub.Color == "" {
		sub.Color = DefaultColor
	}
	if sub.CreatedAt.IsZero() {
		if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(in.CreatedAt)); err == nil {
			sub.CreatedAt = ts.UTC()
		} else {
			sub.CreatedAt = opts.Now().UTC()
		}
	}
	return sub, nil
}

func parseDay(field, text string, bounds dayindex.Range) (dayindex.Day, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, reject(field, "is required")
	}
	d, ok := dayindex.ParseISO(text)
	if !ok {
		return 0, reject(field, "must be a YYYY-MM-DD date, got %q", text)
	}
	if !bounds.Contains(d) {
		return 0, reject(field, "must be between %d and %d", bounds.MinYear(), bounds.MaxYear())
	}
	return d, nil
}

// InputFrom converts a subscription back to its raw form, for editing.
func InputFrom(s model.Subscription) Input {
	in := Input{
		ID:        s.ID,
		Name:      s.Name,
		Price:     strconv.FormatFloat(s.Price, 'f', -1, 64),
		Currency:  s.Currency,
		Cycle:     string(s.Cycle),
		StartDate: s.StartDay.ISO(),
		Color:     s.Color,
		Link:      s.Link,
	}
	if s.EndDay != nil {
		in.EndDate = s.EndDay.ISO()
	}
	if !s.CreatedAt.IsZero() {
		in.CreatedAt = s.CreatedAt.UTC().Format(time.RFC3339)
	}
	return in
}
