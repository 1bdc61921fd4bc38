package cmd

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/subcal/internal/schedule"
	"github.com/theirongolddev/subcal/internal/timeline"
	"github.com/theirongolddev/subcal/internal/tui"
	"github.com/theirongolddev/subcal/internal/tui/theme"
)

var (
	flagTUIRefresh  time.Duration
	flagTUIReadOnly bool
	flagTUITheme    string
	flagTUICurrency string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive timeline",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().DurationVar(&flagTUIRefresh, "refresh", 2*time.Second, "Reload when the store changes, checked at this interval (0 disables)")
	tuiCmd.Flags().BoolVar(&flagTUIReadOnly, "read-only", false, "Disable the add form")
	tuiCmd.Flags().StringVar(&flagTUITheme, "theme", "", "Color theme (default from config): "+strings.Join(theme.Names(), ", "))
	tuiCmd.Flags().StringVar(&flagTUICurrency, "currency", "", "Chart currency (default: the largest this year)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	s, err := openSession("console")
	if err != nil {
		return err
	}
	defer s.Close()

	// The alt screen owns the terminal; only a log file may receive output.
	if flagLogFile == "" {
		s.log = zap.NewNop()
	}

	prefs, err := s.preferences(cmd.Context())
	if err != nil {
		return err
	}
	mode, err := schedule.ParseSortMode(prefs.SortMode)
	if err != nil {
		mode = schedule.SortNextCharge
	}

	name := s.cfg.Appearance.Theme
	if flagTUITheme != "" {
		name = flagTUITheme
	}
	theme.SetActive(name)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	opts := tui.Options{
		Source: s.store,
		Timeline: timeline.Options{
			Viewport:     s.cfg.ViewportOptions(),
			InitialWidth: s.cfg.Zoom.InitialWidth,
			Today:        s.today(),
			Logger:       s.log,
		},
		SortMode: mode,
		Highlights: tui.Highlights{
			Today: prefs.TodayHighlight,
			Month: prefs.MonthHighlight,
			Year:  prefs.YearHighlight,
		},
		Currency: strings.ToUpper(flagTUICurrency),
		Refresh:  flagTUIRefresh,
		Input:    s.inputOptions(),
		Logger:   s.log,
	}
	if !flagTUIReadOnly {
		opts.Writer = s.store
	}

	s.log.Info("starting timeline", zap.String("theme", theme.Active.Name), zap.String("sort", string(mode)))
	return tui.Run(opts)
}
