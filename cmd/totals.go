package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subcal/internal/charges"
	"github.com/theirongolddev/subcal/internal/cli"
	"github.com/theirongolddev/subcal/internal/daemon"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/selection"
)

var (
	flagTotalsStart  string
	flagTotalsEnd    string
	flagTotalsBy     string
	flagTotalsFormat string
)

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Prorated totals per day, month or year",
	Args:  cobra.NoArgs,
	RunE:  runTotals,
}

func init() {
	totalsCmd.Flags().StringVar(&flagTotalsStart, "start", "", "First day, YYYY-MM-DD (default: January 1 this year)")
	totalsCmd.Flags().StringVar(&flagTotalsEnd, "end", "", "Last day, YYYY-MM-DD (default: December 31 this year)")
	totalsCmd.Flags().StringVar(&flagTotalsBy, "by", "month", "Bucket size: day, month or year")
	totalsCmd.Flags().StringVar(&flagTotalsFormat, "format", cli.FormatTable, "Output format: table, csv, markdown or html")
	rootCmd.AddCommand(totalsCmd)
}

// parseDayFlag parses an optional date flag, clamped to bounds.
func parseDayFlag(name, text string, fallback dayindex.Day, bounds dayindex.Range) (dayindex.Day, error) {
	if text == "" {
		return fallback, nil
	}
	d, ok := dayindex.ParseISO(text)
	if !ok {
		return 0, fmt.Errorf("--%s must be a YYYY-MM-DD date, got %q", name, text)
	}
	return bounds.Clamp(d), nil
}

func runTotals(cmd *cobra.Command, _ []string) error {
	switch flagTotalsBy {
	case "day", "month", "year":
	default:
		return fmt.Errorf("--by must be day, month or year, got %q", flagTotalsBy)
	}

	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	bounds := s.cfg.Bounds()
	year := s.today().Parts().Year
	start, err := parseDayFlag("start", flagTotalsStart, dayindex.FromParts(year, 0, 1), bounds)
	if err != nil {
		return err
	}
	end, err := parseDayFlag("end", flagTotalsEnd, dayindex.FromParts(year, 11, 31), bounds)
	if err != nil {
		return err
	}
	if end < start {
		return fmt.Errorf("--end %s is before --start %s", end, start)
	}

	subs, _, err := s.snapshot(cmd.Context())
	if err != nil {
		return err
	}
	agg := &charges.Aggregator{Logger: s.log}
	totals := agg.Aggregate(subs, start, end)
	buckets := daemon.Buckets(totals, flagTotalsBy)

	grand := model.CurrencyBucket{}
	for _, b := range totals.Years {
		grand.Merge(b)
	}

	table := cli.Table{
		Title:   fmt.Sprintf("Totals by %s · %s to %s", flagTotalsBy, start, end),
		Headers: []string{"Period", "Start", "End", "Total"},
	}
	for _, b := range buckets {
		table.Rows = append(table.Rows, []string{b.Key, b.Start, b.End, cli.FormatTotalsList(b.Totals)})
	}
	table.Rows = append(table.Rows, []string{"---"})
	table.Rows = append(table.Rows, []string{"TOTAL", start.ISO(), end.ISO(), cli.FormatTotalsList(grand)})

	out, err := cli.RenderTableFormat(table, flagTotalsFormat)
	if err != nil {
		return err
	}
	fmt.Print(out)

	if flagTotalsFormat == cli.FormatTable && len(buckets) > 1 {
		for _, code := range grand.Codes() {
			values := make([]float64, len(buckets))
			for i, b := range buckets {
				values[i] = b.Totals[code]
			}
			fmt.Printf("  %s %s\n", code, cli.RenderSparkline(values))
		}
		fmt.Println()
	}
	if totals.Skipped > 0 {
		fmt.Println(cli.RenderMuted(fmt.Sprintf("  %d subscriptions skipped because of bad data", totals.Skipped)))
	}
	return nil
}

var flagSelectWidth float64

var selectCmd = &cobra.Command{
	Use:   "select <kind:date>...",
	Short: "Combined total of day, month and year selections",
	Long: "Toggle selections the way the timeline does and print their combined total.\n" +
		"Each argument is kind:date, e.g. month:2025-03, day:2025-04-02 or year:2026.\n" +
		"Zoomed out past a kind's ticks (--width), a pick is promoted to the next\n" +
		"coarser kind, and overlapping picks replace each other.",
	Args: cobra.MinimumNArgs(1),
	RunE: runSelect,
}

func init() {
	selectCmd.Flags().Float64Var(&flagSelectWidth, "width", 0, "Zoom level in pixels per day (default from config)")
	rootCmd.AddCommand(selectCmd)
}

func runSelect(cmd *cobra.Command, args []string) error {
	if flagSelectWidth < 0 {
		return fmt.Errorf("--width must be positive, got %v", flagSelectWidth)
	}
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.engine(cmd.Context(), flagSelectWidth)
	if err != nil {
		return err
	}
	for _, arg := range args {
		kind, day, err := selection.ParseSpec(arg)
		if err != nil {
			return err
		}
		res := e.Toggle(kind, day)
		if effective := e.Selection().EffectiveKind(kind); effective != kind {
			progress("  %s: %s ticks are hidden at this zoom, selecting the %s\n", arg, kind, effective)
		}
		if res.Removed {
			progress("  %s: toggled off\n", arg)
		}
		if res.Dropped > 0 {
			progress("  %s: replaced %d overlapping selections\n", arg, res.Dropped)
		}
	}

	info, ok := e.SelectionTotals()
	if !ok {
		fmt.Println("\n  Nothing selected.")
		return nil
	}

	labels := make([]string, 0, len(info.Spans))
	days := 0
	for _, sp := range info.Spans {
		label := sp.Label
		if label == "" {
			label = sp.String()
		}
		labels = append(labels, label)
		days += sp.Len()
	}
	title := info.Label
	if title == "" {
		title = fmt.Sprintf("%d spans", len(info.Spans))
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Selection · " + title,
		Headers: []string{"Field", "Value"},
		Rows: [][]string{
			{"Kind", info.Kind},
			{"Starts", info.Start.ISO()},
			{"Spans", strings.Join(labels, ", ")},
			{"Days", cli.FormatNumber(int64(days))},
			{"Zoom", fmt.Sprintf("%g px/day", e.Viewport().DayWidth)},
			{"---"},
			{"Total", cli.FormatTotalsList(info.Total)},
		},
	}))
	return nil
}
