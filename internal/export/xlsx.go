package export

import (
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/subcal/internal/charges"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/schedule"
)

// Sheet names in the workbook.
const (
	SheetSubscriptions = "Subscriptions"
	SheetMonthly       = "Monthly"
)

// Report is everything an export can contain. Rows are written in order, so
// callers sort them first.
type Report struct {
	Rows        []schedule.Row
	Totals      *charges.Totals // optional; fills the Monthly sheet
	GeneratedAt time.Time
}

// Subscriptions returns the subscriptions of the report rows.
func (r Report) Subscriptions() []model.Subscription {
	subs := make([]model.Subscription, len(r.Rows))
	for i, row := range r.Rows {
		subs[i] = row.Sub
	}
	return subs
}

var subscriptionHeader = []any{
	"Name", "Price", "Currency", "Cycle", "Start", "End", "Previous charge", "Next charge", "Link", "ID",
}

// WriteXLSX writes the report as a workbook at path.
func WriteXLSX(path string, r Report) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// WriteXLSXTo writes the report workbook to w.
func WriteXLSXTo(w io.Writer, r Report) error {
	f, err := buildWorkbook(r)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.Write(w)
}

func buildWorkbook(r Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSubscriptions); err != nil {
		_ = f.Close()
		return nil, err
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := writeSubscriptions(f, r.Rows, header); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("writing %s sheet: %w", SheetSubscriptions, err)
	}
	if r.Totals != nil {
		if _, err := f.NewSheet(SheetMonthly); err != nil {
			_ = f.Close()
			return nil, err
		}
		if err := writeMonthly(f, r.Totals, header); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("writing %s sheet: %w", SheetMonthly, err)
		}
	}
	return f, nil
}

func optionalDay(d *dayindex.Day) any {
	if d == nil {
		return ""
	}
	return d.ISO()
}

func writeSubscriptions(f *excelize.File, rows []schedule.Row, header int) error {
	sheet := SheetSubscriptions
	if err := f.SetSheetRow(sheet, "A1", &subscriptionHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
		return err
	}

	for i, row := range rows {
		s := row.Sub
		values := []any{
			s.Name, s.Price, s.Currency, string(s.Cycle), s.StartDay.ISO(), optionalDay(s.EndDay),
			optionalDay(row.Prev), optionalDay(row.Next), s.Link, s.ID,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	return f.SetColWidth(sheet, "E", "H", 14)
}

func writeMonthly(f *excelize.File, t *charges.Totals, header int) error {
	sheet := SheetMonthly

	codeSet := make(map[string]struct{})
	for _, b := range t.Months {
		for code := range b {
			codeSet[code] = struct{}{}
		}
	}
	codes := make([]string, 0, len(codeSet))
	for code := range codeSet {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	head := make([]any, 0, len(codes)+1)
	head = append(head, "Month")
	for _, c := range codes {
		head = append(head, c)
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
		return err
	}

	first := dayindex.MonthKey(t.Start.Parts())
	last := dayindex.MonthKey(t.End.Parts())
	rowNum := 2
	for key := first; key <= last; key++ {
		year, month := dayindex.MonthKeyParts(key)
		b := t.Months[key]
		values := make([]any, 0, len(codes)+1)
		values = append(values, fmt.Sprintf("%04d-%02d", year, month+1))
		for _, c := range codes {
			if v, ok := b[c]; ok {
				values = append(values, roundCents(v))
			} else {
				values = append(values, 0)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		rowNum++
	}
	return nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
