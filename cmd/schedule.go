package cmd

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subcal/internal/charges"
	"github.com/theirongolddev/subcal/internal/cli"
	"github.com/theirongolddev/subcal/internal/schedule"
)

var flagScheduleCount int

var scheduleCmd = &cobra.Command{
	Use:   "schedule <id>",
	Short: "Previous, next and upcoming charges of a subscription",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().IntVarP(&flagScheduleCount, "count", "n", 6, "Upcoming charges to list")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	sub, err := resolveSubscription(cmd.Context(), s.store, args[0])
	if err != nil {
		return err
	}
	today := s.today()
	ch := schedule.Compute(sub, today)

	rows := [][]string{
		{"Price", formatPrice(sub)},
		{"Start", sub.StartDay.ISO()},
		{"End", isoOrDash(sub.EndDay)},
		{"Previous charge", isoOrDash(ch.Prev)},
		{"Next charge", isoOrDash(ch.Next)},
	}
	if m := charges.EstimateMonthly(sub); !math.IsNaN(m) {
		rows = append(rows, []string{"Monthly estimate", cli.CurrencySymbol(sub.Currency) + cli.FormatMoney(m)})
	}

	if ch.Next != nil && flagScheduleCount > 0 {
		agg := &charges.Aggregator{Logger: s.log}
		upcoming := agg.ChargeDays(sub, *ch.Next, s.cfg.Bounds().Max)
		if len(upcoming) > flagScheduleCount {
			upcoming = upcoming[:flagScheduleCount]
		}
		rows = append(rows, []string{"---"})
		for i, d := range upcoming {
			label := ""
			if i == 0 {
				label = "Upcoming"
			}
			rows = append(rows, []string{label, fmt.Sprintf("%s %s", d.ISO(), d.Time().Weekday().String()[:3])})
		}
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   sub.Name,
		Headers: []string{"Field", "Value"},
		Rows:    rows,
	}))
	if sub.Link != "" {
		fmt.Printf("  %s\n\n", cli.RenderMuted(sub.Link))
	}
	return nil
}
