// Package cmd implements the subcal CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/subcal/internal/config"
	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/logging"
	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/source"
	"github.com/theirongolddev/subcal/internal/store"
	"github.com/theirongolddev/subcal/internal/timeline"
)

var (
	flagDB       string
	flagToday    string
	flagQuiet    bool
	flagLogLevel string
	flagConfig   string
	flagLogFile  string
)

var rootCmd = &cobra.Command{
	Use:           "subcal",
	Short:         "Subscription calendar and timeline",
	Long:          "Track recurring subscriptions, see when they bill and what each day, month or year costs.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Subscription database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Treat this YYYY-MM-DD date as today")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress and log output")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default "+config.ConfigPath()+")")
}

func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	return config.ConfigPath()
}

func loadConfig() (config.Config, error) {
	return config.LoadFrom(configPath())
}

// newLogger builds the command logger. format is console or json.
func newLogger(format, level string) (*zap.Logger, error) {
	return logging.New(logging.Config{Level: level, Format: format, Quiet: flagQuiet, Output: flagLogFile})
}

// nowFunc returns the clock every command uses. --today pins it to local
// noon of the given date so the local calendar day is exactly that date.
func nowFunc() (func() time.Time, error) {
	if flagToday == "" {
		return time.Now, nil
	}
	d, ok := dayindex.ParseISO(flagToday)
	if !ok {
		return nil, fmt.Errorf("--today must be a YYYY-MM-DD date, got %q", flagToday)
	}
	p := d.Parts()
	pinned := time.Date(p.Year, time.Month(p.Month+1), p.Day, 12, 0, 0, 0, time.Local)
	return func() time.Time { return pinned }, nil
}

// session bundles what most commands need: configuration, a logger, the
// store and the clock.
type session struct {
	cfg   config.Config
	log   *zap.Logger
	store *store.Store
	now   func() time.Time
}

func openSession(logFormat string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	now, err := nowFunc()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(logFormat, flagLogLevel)
	if err != nil {
		return nil, err
	}

	path := flagDB
	if path == "" {
		path = cfg.DBPath()
	}
	st, err := store.Open(path)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	log.Debug("store opened", zap.String("path", path))
	return &session{cfg: cfg, log: log, store: st, now: now}, nil
}

func (s *session) Close() {
	_ = s.store.Close()
	_ = s.log.Sync()
}

func (s *session) today() dayindex.Day {
	return s.cfg.Bounds().Clamp(dayindex.Today(s.now()))
}

func (s *session) inputOptions() source.Options {
	return source.Options{Bounds: s.cfg.Bounds(), Now: s.now}
}

// snapshot reads the subscriptions together with the version they belong
// to. The version is read on both sides of the list so a concurrent write
// is retried instead of mislabeled.
func (s *session) snapshot(ctx context.Context) ([]model.Subscription, int64, error) {
	for attempt := 0; attempt < 3; attempt++ {
		before, err := s.store.Version(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("reading store version: %w", err)
		}
		subs, err := s.store.List(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("listing subscriptions: %w", err)
		}
		after, err := s.store.Version(ctx)
		if err != nil {
			return nil, 0, fmt.Errorf("reading store version: %w", err)
		}
		if before == after {
			return subs, after, nil
		}
	}
	return nil, 0, fmt.Errorf("subscriptions kept changing while reading")
}

// engine returns a timeline engine loaded with the current snapshot.
func (s *session) engine(ctx context.Context, width float64) (*timeline.Engine, error) {
	subs, version, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if width <= 0 {
		width = s.cfg.Zoom.InitialWidth
	}
	e := timeline.New(timeline.Options{
		Viewport:     s.cfg.ViewportOptions(),
		InitialWidth: width,
		Today:        s.today(),
		Logger:       s.log,
	})
	e.SetSubscriptions(subs, version)
	return e, nil
}

// progress prints a status line to stderr unless --quiet is set.
func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// preferences reads the stored UI preferences, with the config file
// supplying the defaults.
func (s *session) preferences(ctx context.Context) (store.Preferences, error) {
	fallback := store.DefaultPreferences()
	if s.cfg.General.DefaultCurrency != "" {
		fallback.Currency = s.cfg.General.DefaultCurrency
	}
	if s.cfg.General.SortMode != "" {
		fallback.SortMode = s.cfg.General.SortMode
	}
	return s.store.Preferences(ctx, fallback)
}
