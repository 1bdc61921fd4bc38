package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/subcal/internal/cli"
	"github.com/theirongolddev/subcal/internal/pipeline"
)

var (
	flagImportMerge  bool
	flagImportDryRun bool
)

var importCmd = &cobra.Command{
	Use:   "import <file or dir>...",
	Short: "Load subscriptions from JSON or YAML files into the store",
	Long: "Load subscriptions from JSON or YAML files. Directories are scanned for\n" +
		"*.json, *.yaml and *.yml files. By default the stored set is replaced;\n" +
		"--merge keeps it and updates records with matching IDs.",
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportMerge, "merge", false, "Merge into the stored set instead of replacing it")
	importCmd.Flags().BoolVar(&flagImportDryRun, "dry-run", false, "Validate the files without writing")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	progress("  Scanning files...\n")
	result, err := pipeline.LoadFiles(args, s.inputOptions(), func(current, total int) {
		progress("\r  Parsing %s", cli.RenderProgressBar(current, total, 20))
	})
	if err != nil {
		return err
	}
	if result.TotalFiles > 0 {
		progress("\r  Parsed %d of %d files: %d subscriptions    \n",
			result.ParsedFiles, result.TotalFiles, len(result.Subscriptions))
	}

	for _, ferr := range result.FileErrors {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderError(ferr.Error()))
	}
	for _, rej := range result.Rejected {
		fmt.Fprintf(os.Stderr, "  %s\n", cli.RenderWarning("skipped "+rej.Error()))
		s.log.Debug("record rejected", zap.String("path", rej.Path), zap.Error(rej))
	}

	if result.TotalFiles == 0 {
		return errors.New("no .json, .yaml or .yml files found")
	}
	if flagImportDryRun {
		fmt.Printf("  %d valid, %d rejected (dry run, nothing written)\n",
			len(result.Subscriptions), len(result.Rejected))
		return nil
	}

	mode := pipeline.ImportReplace
	if flagImportMerge {
		mode = pipeline.ImportMerge
	}
	stats, err := pipeline.Import(cmd.Context(), s.store, result.Subscriptions, mode)
	if err != nil {
		return err
	}

	fmt.Printf("  Imported: %d added, %d updated, %d removed\n", stats.Added, stats.Updated, stats.Removed)
	if n := len(result.Rejected); n > 0 {
		fmt.Printf("  %d records rejected\n", n)
	}
	return nil
}
