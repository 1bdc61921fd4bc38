package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/subcal/internal/config"
	"github.com/theirongolddev/subcal/internal/schedule"
	"github.com/theirongolddev/subcal/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

var zoomChoices = []float64{2, 4, 8, 16}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	themes := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themes = append(themes, huh.NewOption(th.Name, th.Name))
	}
	modes := make([]huh.Option[string], 0, len(schedule.SortModes))
	for _, m := range schedule.SortModes {
		modes = append(modes, huh.NewOption(string(m), string(m)))
	}
	zooms := make([]huh.Option[string], 0, len(zoomChoices))
	for _, z := range zoomChoices {
		v := strconv.FormatFloat(z, 'f', -1, 64)
		zooms = append(zooms, huh.NewOption(v+" px/day", v))
	}

	currency := cfg.General.DefaultCurrency
	sortMode := cfg.General.SortMode
	themeName := cfg.Appearance.Theme
	zoom := strconv.FormatFloat(cfg.Zoom.InitialWidth, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to subcal!").
				Description(fmt.Sprintf("Settings are saved to %s.", configPath())),
			huh.NewInput().
				Title("Default currency").
				Description("Used to prefill new subscriptions").
				CharLimit(3).
				Value(&currency).
				Validate(func(v string) error {
					if !isCurrencyCode(strings.ToUpper(strings.TrimSpace(v))) {
						return errors.New("must be a 3-letter code")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Sort subscriptions by").
				Options(modes...).
				Value(&sortMode),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Initial zoom").
				Options(zooms...).
				Value(&zoom),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&themeName),
		),
	).WithShowHelp(true)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return fmt.Errorf("setup form: %w", err)
	}

	cfg.General.DefaultCurrency = strings.ToUpper(strings.TrimSpace(currency))
	cfg.General.SortMode = sortMode
	cfg.Appearance.Theme = themeName
	if w, err := strconv.ParseFloat(zoom, 64); err == nil {
		cfg.Zoom.InitialWidth = w
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTo(configPath(), cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\n  Saved to %s\n", configPath())
	fmt.Println("  Run `subcal add` to add a subscription, or `subcal tui` for the timeline.")
	return nil
}

func isCurrencyCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
