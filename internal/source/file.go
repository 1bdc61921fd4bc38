package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/subcal/internal/model"
)

// RecordError reports one rejected record without failing the whole file.
type RecordError struct {
	Index int
	ID    string
	Err   error
}

func (e RecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (%s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

// LoadResult holds the valid subscriptions of a file and the rejected ones.
type LoadResult struct {
	Path          string
	Subscriptions []model.Subscription
	Positions     []int // record index of each entry in Subscriptions
	Errors        []RecordError
}

// Decode picks a decoder by file extension: .yaml/.yml, otherwise JSON.
func Decode(path string, data []byte) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

// ParseFile reads and validates a subscriptions file. A malformed file is an
// error; a malformed record is only reported in LoadResult.Errors.
func ParseFile(path string, opts Options) (*LoadResult, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-chosen import path
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	records, err := Decode(path, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res := Validate(records, opts)
	res.Path = path
	return res, nil
}

// Validate normalizes records, rejecting invalid ones and repeated IDs.
func Validate(records []Record, opts Options) *LoadResult {
	res := &LoadResult{}
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		sub, err := Normalize(r.Input(), nil, opts)
		if err == nil {
			if _, dup := seen[sub.ID]; dup {
				err = reject("id", "duplicate id %q", sub.ID)
			}
		}
		if err != nil {
			res.Errors = append(res.Errors, RecordError{Index: i, ID: strings.TrimSpace(r.ID), Err: err})
			continue
		}
		seen[sub.ID] = struct{}{}
		res.Subscriptions = append(res.Subscriptions, sub)
		res.Positions = append(res.Positions, i)
	}
	return res
}
