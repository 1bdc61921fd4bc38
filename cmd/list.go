package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subcal/internal/cli"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/schedule"
)

var (
	flagListSort   string
	flagListFormat string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscriptions with their previous and next charge",
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringVar(&flagListSort, "sort", "", "Sort mode (default: remembered preference)")
	listCmd.Flags().StringVar(&flagListFormat, "format", cli.FormatTable, "Output format: table, csv, markdown or html")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	modeText := flagListSort
	if modeText == "" {
		prefs, err := s.preferences(ctx)
		if err != nil {
			return err
		}
		modeText = prefs.SortMode
	}
	mode, err := schedule.ParseSortMode(modeText)
	if err != nil {
		return err
	}

	subs, _, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	if len(subs) == 0 && flagListFormat == cli.FormatTable {
		fmt.Println("\n  No subscriptions yet.")
		return nil
	}

	today := s.today()
	rows := schedule.Sort(subs, mode, today)
	table := cli.Table{
		Title:   fmt.Sprintf("Subscriptions · %s", mode),
		Headers: []string{"Name", "Price", "Cycle", "Start", "End", "Previous", "Next", "ID"},
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Sub.Name,
			formatPrice(r.Sub),
			string(r.Sub.Cycle),
			r.Sub.StartDay.ISO(),
			isoOrDash(r.Sub.EndDay),
			isoOrDash(r.Prev),
			isoOrDash(r.Next),
			shortID(r.Sub.ID),
		})
	}

	out, err := cli.RenderTableFormat(table, flagListFormat)
	if err != nil {
		return err
	}
	if flagListFormat == cli.FormatTable {
		fmt.Println()
	}
	fmt.Print(out)
	return nil
}

func isoOrDash(d *dayindex.Day) string {
	if d == nil {
		return "-"
	}
	return d.ISO()
}

// shortID returns the first block of a UUID, enough to address a
// subscription on the command line.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatPrice renders a price with its currency symbol and cycle suffix.
// e.g., 9.99 USD monthly -> "$9.99/mo"
func formatPrice(s model.Subscription) string {
	return cli.CurrencySymbol(s.Currency) + cli.FormatMoney(s.Price) + cli.FormatCycle(s.Cycle)
}
