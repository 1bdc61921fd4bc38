// Package logging builds the zap loggers used by subcal.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures a logger.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	Quiet  bool   // discard everything
	Output string // file path; empty writes to stderr
}

// New builds a logger writing to stderr, or to cfg.Output, so command output
// on stdout stays clean.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.Quiet {
		return zap.NewNop(), nil
	}

	var zapCfg zap.Config
	if normalizeFormat(cfg.Format) == "json" {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "ts"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.DisableStacktrace = true
	}
	out := "stderr"
	if cfg.Output != "" {
		out = cfg.Output
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zapCfg.OutputPaths = []string{out}
	zapCfg.ErrorOutputPaths = []string{out}

	level := strings.TrimSpace(cfg.Level)
	if level == "" {
		level = "warn"
	}
	if err := zapCfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return zapCfg.Build()
}

func normalizeFormat(format string) string {
	if strings.ToLower(strings.TrimSpace(format)) == "json" {
		return "json"
	}
	return "console"
}

// OrNop returns log, or a no-op logger when log is nil.
func OrNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
