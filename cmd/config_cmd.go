package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/subcal/internal/config"
	"github.com/theirongolddev/subcal/internal/schedule"
	"github.com/theirongolddev/subcal/internal/store"
	"github.com/theirongolddev/subcal/internal/tui/theme"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration and stored preferences",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a config file setting, e.g. `config set zoom.initial_width 6`",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configPrefCmd = &cobra.Command{
	Use:   "pref <key> <value>",
	Short: "Change a stored preference: currency, sort-mode or a *-highlight flag",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigPref,
}

func init() {
	configCmd.AddCommand(configSetCmd, configPrefCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()
	cfg := s.cfg

	fmt.Printf("  Config file: %s\n", configPath())
	if config.Exists() || flagConfig != "" {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Database:          %s\n", cfg.DBPath())
	fmt.Printf("    Default currency:  %s\n", cfg.General.DefaultCurrency)
	fmt.Printf("    Sort mode:         %s\n", cfg.General.SortMode)
	fmt.Println()

	fmt.Println("  [Range]")
	fmt.Printf("    Years:             %d..%d\n", cfg.Range.MinYear, cfg.Range.MaxYear)
	fmt.Println()

	fmt.Println("  [Zoom]")
	fmt.Printf("    Initial width:     %g px/day\n", cfg.Zoom.InitialWidth)
	fmt.Printf("    Limits:            %g..%g (step %g, button %g)\n",
		cfg.Zoom.MinWidth, cfg.Zoom.MaxWidth, cfg.Zoom.Step, cfg.Zoom.ButtonStep)
	fmt.Printf("    Day ticks from:    %g px/day\n", cfg.LOD.DayTicksAt)
	fmt.Printf("    Month ticks from:  %g px/day\n", cfg.LOD.MonthTicksAt)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:           %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval:     %ds\n", cfg.Daemon.PollIntervalSec)
	fmt.Printf("    Events buffer:     %d\n", cfg.Daemon.EventsBuffer)
	fmt.Printf("    Log level:         %s\n", cfg.Daemon.LogLevel)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	if len(cfg.Rates.USD) > 0 {
		fmt.Println("  [Rates] (per 1 USD)")
		codes := make([]string, 0, len(cfg.Rates.USD))
		for code := range cfg.Rates.USD {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Printf("    %s: %g\n", code, cfg.Rates.USD[code])
		}
		fmt.Println()
	}

	prefs, err := s.preferences(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Println("  [Preferences] (stored in the database)")
	fmt.Printf("    currency:          %s\n", prefs.Currency)
	fmt.Printf("    sort-mode:         %s\n", prefs.SortMode)
	fmt.Printf("    today-highlight:   %v\n", prefs.TodayHighlight)
	fmt.Printf("    month-highlight:   %v\n", prefs.MonthHighlight)
	fmt.Printf("    year-highlight:    %v\n", prefs.YearHighlight)
	fmt.Println()

	fmt.Println("  Run `subcal setup` to reconfigure.")
	return nil
}

// configKeys lists the settings `config set` accepts.
var configKeys = []string{
	"general.db_path", "general.default_currency", "general.sort_mode",
	"range.min_year", "range.max_year",
	"zoom.initial_width", "zoom.min_width", "zoom.max_width", "zoom.step", "zoom.button_step",
	"lod.day_ticks_at", "lod.month_ticks_at",
	"daemon.addr", "daemon.poll_interval_sec", "daemon.events_buffer", "daemon.log_level",
	"appearance.theme",
}

// setConfigKey parses v into the setting named by the dotted TOML key.
func setConfigKey(c *config.Config, key, v string) error {
	var err error
	switch key {
	case "general.db_path":
		c.General.DBPath = v
	case "general.default_currency":
		c.General.DefaultCurrency = strings.ToUpper(v)
	case "general.sort_mode":
		var mode schedule.SortMode
		mode, err = schedule.ParseSortMode(v)
		c.General.SortMode = string(mode)
	case "range.min_year":
		c.Range.MinYear, err = parseInt(v)
	case "range.max_year":
		c.Range.MaxYear, err = parseInt(v)
	case "zoom.initial_width":
		c.Zoom.InitialWidth, err = parseFloat(v)
	case "zoom.min_width":
		c.Zoom.MinWidth, err = parseFloat(v)
	case "zoom.max_width":
		c.Zoom.MaxWidth, err = parseFloat(v)
	case "zoom.step":
		c.Zoom.Step, err = parseFloat(v)
	case "zoom.button_step":
		c.Zoom.ButtonStep, err = parseFloat(v)
	case "lod.day_ticks_at":
		c.LOD.DayTicksAt, err = parseFloat(v)
	case "lod.month_ticks_at":
		c.LOD.MonthTicksAt, err = parseFloat(v)
	case "daemon.addr":
		c.Daemon.Addr = v
	case "daemon.poll_interval_sec":
		c.Daemon.PollIntervalSec, err = parseInt(v)
	case "daemon.events_buffer":
		c.Daemon.EventsBuffer, err = parseInt(v)
	case "daemon.log_level":
		c.Daemon.LogLevel = v
	case "appearance.theme":
		if theme.ByName(v).Name != v {
			return fmt.Errorf("unknown theme %q (want %s)", v, strings.Join(theme.Names(), ", "))
		}
		c.Appearance.Theme = v
	default:
		return fmt.Errorf("unknown key %q (known: %s)", key, strings.Join(configKeys, ", "))
	}
	return err
}

func parseInt(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("want an integer, got %q", v)
	}
	return n, nil
}

func parseFloat(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("want a number, got %q", v)
	}
	return f, nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := strings.ToLower(args[0]), strings.TrimSpace(args[1])

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setConfigKey(&cfg, key, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTo(configPath(), cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("  %s = %s\n", key, value)
	return nil
}

func runConfigPref(cmd *cobra.Command, args []string) error {
	key, value := strings.ToLower(args[0]), strings.TrimSpace(args[1])

	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	switch key {
	case "currency", store.PrefCurrency:
		err = s.store.SetCurrency(ctx, strings.ToUpper(value))
	case store.PrefSortMode:
		var mode schedule.SortMode
		if mode, err = schedule.ParseSortMode(value); err == nil {
			err = s.store.SetSortMode(ctx, string(mode))
		}
	case store.PrefTodayHighlight, store.PrefMonthHighlight, store.PrefYearHighlight:
		on, valid := store.ParseFlag(value)
		if !valid {
			return fmt.Errorf("%s: want on or off, got %q", key, value)
		}
		err = s.store.SetFlag(ctx, key, on)
	default:
		return errors.New("unknown preference " + strconv.Quote(key) +
			" (want currency, sort-mode, today-highlight, month-highlight or year-highlight)")
	}
	if err != nil {
		return err
	}
	fmt.Printf("  %s = %s\n", key, value)
	return nil
}
