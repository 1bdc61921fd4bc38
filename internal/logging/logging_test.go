package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("debug level should be enabled")
	}

	log, err = New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatal("default level should hide info")
	}

	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}

	quiet, _ := New(Config{Quiet: true, Level: "debug"})
	if quiet.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatal("quiet logger should discard everything")
	}
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subcal.log")
	log, err := New(Config{Level: "info", Output: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hello from the test")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Fatalf("log file = %q, want the message", data)
	}
}
