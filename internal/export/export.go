// Package export writes subscription sets and their totals to files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/subcal/internal/source"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// FormatFor picks a format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export extension %q (want .json, .yaml, .yml or .xlsx)", filepath.Ext(path))
	}
}

// WriteJSON writes p as indented JSON.
func WriteJSON(w io.Writer, p source.Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// WriteYAML writes p as YAML.
func WriteYAML(w io.Writer, p source.Payload) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile writes the report to path in the format its extension names.
// JSON and YAML carry only the subscription payload.
func WriteFile(path string, r Report) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	if format == FormatXLSX {
		return WriteXLSX(path, r)
	}

	f, err := os.Create(path) //nolint:gosec // user-chosen export path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	p := source.NewPayload(r.Subscriptions(), r.GeneratedAt)
	if format == FormatYAML {
		err = WriteYAML(f, p)
	} else {
		err = WriteJSON(f, p)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
