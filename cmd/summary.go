package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subcal/internal/cli"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Overview of subscriptions and run-rate costs",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.engine(cmd.Context(), 0)
	if err != nil {
		return err
	}
	subs := e.Subscriptions()
	if len(subs) == 0 {
		fmt.Println("\n  No subscriptions yet.")
		fmt.Println("  Add one with `subcal add` or load a file with `subcal import`.")
		return nil
	}

	today := e.Today()
	sum := pipeline.Summarize(subs, today, s.cfg.Rates)

	fmt.Println()
	fmt.Println(cli.RenderTitle("SUBSCRIPTIONS  " + today.ISO()))
	fmt.Println()

	rows := [][]string{
		{"Subscriptions", cli.FormatNumber(int64(sum.Total))},
		{"Active", cli.FormatNumber(int64(sum.Active))},
		{"Upcoming", cli.FormatNumber(int64(sum.Upcoming))},
		{"Ended", cli.FormatNumber(int64(sum.Ended))},
		{"---"},
		{"Weekly", cli.FormatNumber(int64(sum.ByCycle[model.CycleWeekly]))},
		{"Monthly", cli.FormatNumber(int64(sum.ByCycle[model.CycleMonthly]))},
		{"Yearly", cli.FormatNumber(int64(sum.ByCycle[model.CycleYearly]))},
		{"---"},
		{"Run rate /mo", cli.FormatTotalsList(sum.Monthly)},
		{"Run rate /yr", cli.FormatTotalsList(sum.Yearly)},
		{"Run rate /mo (USD)", "$" + cli.FormatMoney(sum.MonthlyUSD)},
		{"---"},
		{"This month", cli.FormatTotalsList(e.CurrentMonthTotal())},
		{"This year", cli.FormatTotalsList(e.CurrentYearTotal())},
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	if len(sum.MissingRates) > 0 {
		fmt.Fprintf(os.Stderr, "\n  %s\n", cli.RenderWarning(
			"no exchange rate for "+strings.Join(sum.MissingRates, ", ")+"; add them under [rates.usd] in the config"))
	}
	if skipped := e.Totals().Skipped; skipped > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d subscriptions were skipped because of bad data\n", skipped)
	}
	return nil
}
