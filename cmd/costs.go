package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subcal/internal/cli"
	"github.com/theirongolddev/subcal/internal/pipeline"
)

var costsCmd = &cobra.Command{
	Use:   "costs",
	Short: "Run-rate breakdown by currency",
	RunE:  runCosts,
}

func init() {
	rootCmd.AddCommand(costsCmd)
}

func runCosts(cmd *cobra.Command, _ []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	subs, _, err := s.snapshot(cmd.Context())
	if err != nil {
		return err
	}
	today := s.today()
	rows := pipeline.CostBreakdown(subs, today, s.cfg.Rates)
	if len(rows) == 0 {
		fmt.Println("\n  No active subscriptions.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("COST BREAKDOWN  " + today.ISO()))
	fmt.Println()

	var peak, totalUSD float64
	for _, r := range rows {
		peak = max(peak, r.MonthlyUSD)
		totalUSD += r.MonthlyUSD
	}

	tableRows := make([][]string, 0, len(rows)+2)
	for _, r := range rows {
		usd, share := "-", "-"
		if r.HasRate {
			usd = "$" + cli.FormatMoney(r.MonthlyUSD)
			share = cli.FormatPercent(r.Share)
		}
		tableRows = append(tableRows, []string{
			r.Currency,
			cli.FormatNumber(int64(r.Subscriptions)),
			cli.CurrencySymbol(r.Currency) + cli.FormatMoney(r.Monthly),
			cli.CurrencySymbol(r.Currency) + cli.FormatMoney(r.Yearly),
			usd,
			share,
		})
	}
	tableRows = append(tableRows, []string{"---"})
	tableRows = append(tableRows, []string{"TOTAL", "", "", "", "$" + cli.FormatMoney(totalUSD), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "By Currency",
		Headers: []string{"Currency", "Subs", "Monthly", "Yearly", "Monthly USD", "Share"},
		Rows:    tableRows,
	}))

	if peak > 0 {
		for _, r := range rows {
			if !r.HasRate {
				continue
			}
			fmt.Printf("%s  %s\n", cli.RenderHorizontalBar(fmt.Sprintf("%-4s", r.Currency), r.MonthlyUSD, peak, 30),
				cli.RenderMoney("$"+cli.FormatMoney(r.MonthlyUSD)))
		}
		fmt.Println()
	}
	return nil
}
