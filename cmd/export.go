package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subcal/internal/export"
	"github.com/theirongolddev/subcal/internal/schedule"
)

var flagExportSort string

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write subscriptions to a .json, .yaml or .xlsx file",
	Long: "Write subscriptions to a file whose extension picks the format. JSON and\n" +
		"YAML round-trip through import; .xlsx adds charge dates and monthly totals.",
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportSort, "sort", string(schedule.SortStartAsc), "Row order")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := export.FormatFor(path); err != nil {
		return err
	}
	mode, err := schedule.ParseSortMode(flagExportSort)
	if err != nil {
		return err
	}

	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	e, err := s.engine(cmd.Context(), 0)
	if err != nil {
		return err
	}
	report := export.Report{
		Rows:        e.Schedule(mode),
		Totals:      e.Totals(),
		GeneratedAt: s.now(),
	}
	if err := export.WriteFile(path, report); err != nil {
		return err
	}
	fmt.Printf("  Wrote %d subscriptions to %s\n", len(report.Rows), path)
	return nil
}
