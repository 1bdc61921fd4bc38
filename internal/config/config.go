// Package config loads and saves the subcal TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/subcal/internal/dayindex"
	"github.com/theirongolddev/subcal/internal/viewport"
)

// Config holds all subcal configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Range      RangeConfig      `toml:"range"`
	Zoom       ZoomConfig       `toml:"zoom"`
	LOD        LODConfig        `toml:"lod"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
	Rates      RatesConfig      `toml:"rates"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DBPath          string `toml:"db_path,omitempty"`
	DefaultCurrency string `toml:"default_currency"`
	SortMode        string `toml:"sort_mode"`
}

// RangeConfig bounds the supported calendar years.
type RangeConfig struct {
	MinYear int `toml:"min_year"`
	MaxYear int `toml:"max_year"`
}

// ZoomConfig holds day width limits in pixels per day.
type ZoomConfig struct {
	InitialWidth float64 `toml:"initial_width"`
	MinWidth     float64 `toml:"min_width"`
	MaxWidth     float64 `toml:"max_width"`
	Step         float64 `toml:"step"`
	ButtonStep   float64 `toml:"button_step"`
}

// LODConfig holds the tick visibility thresholds.
type LODConfig struct {
	DayTicksAt   float64 `toml:"day_ticks_at"`
	MonthTicksAt float64 `toml:"month_ticks_at"`
}

// DaemonConfig holds HTTP service settings.
type DaemonConfig struct {
	Addr            string `toml:"addr"`
	PollIntervalSec int    `toml:"poll_interval_sec"`
	EventsBuffer    int    `toml:"events_buffer"`
	LogLevel        string `toml:"log_level"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	vp := viewport.DefaultOptions()
	return Config{
		General: GeneralConfig{
			DefaultCurrency: "USD",
			SortMode:        "next-charge",
		},
		Range: RangeConfig{
			MinYear: dayindex.DefaultMinYear,
			MaxYear: dayindex.DefaultMaxYear,
		},
		Zoom: ZoomConfig{
			InitialWidth: 4,
			MinWidth:     vp.MinWidth,
			MaxWidth:     vp.MaxWidth,
			Step:         vp.Step,
			ButtonStep:   vp.ButtonStep,
		},
		LOD: LODConfig{
			DayTicksAt:   vp.DayTicksAt,
			MonthTicksAt: vp.MonthTicksAt,
		},
		Daemon: DaemonConfig{
			Addr:            "127.0.0.1:8787",
			PollIntervalSec: 5,
			EventsBuffer:    200,
			LogLevel:        "info",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Validate rejects settings the engine cannot work with.
func (c Config) Validate() error {
	if c.Range.MinYear > c.Range.MaxYear {
		return fmt.Errorf("range: min_year %d is after max_year %d", c.Range.MinYear, c.Range.MaxYear)
	}
	if c.Zoom.MinWidth <= 0 || c.Zoom.MaxWidth < c.Zoom.MinWidth {
		return fmt.Errorf("zoom: invalid width limits %.4g..%.4g", c.Zoom.MinWidth, c.Zoom.MaxWidth)
	}
	if c.Zoom.Step <= 0 {
		return fmt.Errorf("zoom: step must be positive")
	}
	if c.Daemon.PollIntervalSec < 0 || c.Daemon.EventsBuffer < 0 {
		return fmt.Errorf("daemon: poll_interval_sec and events_buffer must not be negative")
	}
	return c.Rates.validate()
}

// Bounds returns the supported day range.
func (c Config) Bounds() dayindex.Range {
	return dayindex.YearRange(c.Range.MinYear, c.Range.MaxYear)
}

// ViewportOptions converts the zoom and LOD sections into viewport options.
// Zero values fall back to the viewport defaults.
func (c Config) ViewportOptions() viewport.Options {
	opts := viewport.DefaultOptions()
	opts.MinWidth = c.Zoom.MinWidth
	opts.MaxWidth = c.Zoom.MaxWidth
	opts.Step = c.Zoom.Step
	opts.ButtonStep = c.Zoom.ButtonStep
	opts.DayTicksAt = c.LOD.DayTicksAt
	opts.MonthTicksAt = c.LOD.MonthTicksAt
	opts.Bounds = c.Bounds()
	return opts
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "subcal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "subcal")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory for the database.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "subcal")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "subcal")
}

// DBPath returns the configured database path or the default one.
func (c Config) DBPath() string {
	if c.General.DBPath != "" {
		return c.General.DBPath
	}
	return filepath.Join(DataDir(), "subcal.db")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads a config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-chosen config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}
