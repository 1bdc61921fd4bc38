package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/subcal/internal/model"
)

// ErrNothingToImport is returned when an import carries no valid records.
var ErrNothingToImport = errors.New("no valid subscriptions to import")

// ImportMode selects how imported subscriptions combine with stored ones.
type ImportMode int

const (
	// ImportReplace discards the stored set.
	ImportReplace ImportMode = iota
	// ImportMerge keeps stored subscriptions, replacing those with a
	// matching ID in place and appending the rest.
	ImportMerge
)

// Repository is the part of the store an import writes through.
type Repository interface {
	List(ctx context.Context) ([]model.Subscription, error)
	ReplaceAll(ctx context.Context, subs []model.Subscription) error
}

// ImportStats counts what an import changed.
type ImportStats struct {
	Added   int
	Updated int
	Removed int
}

// Import writes subs to repo in a single ReplaceAll call.
func Import(ctx context.Context, repo Repository, subs []model.Subscription, mode ImportMode) (ImportStats, error) {
	if len(subs) == 0 {
		return ImportStats{}, ErrNothingToImport
	}

	existing, err := repo.List(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("reading stored subscriptions: %w", err)
	}

	merged, stats := mergeSubscriptions(existing, subs, mode)
	if err := repo.ReplaceAll(ctx, merged); err != nil {
		return ImportStats{}, fmt.Errorf("writing subscriptions: %w", err)
	}
	return stats, nil
}

func mergeSubscriptions(existing, incoming []model.Subscription, mode ImportMode) ([]model.Subscription, ImportStats) {
	var stats ImportStats

	stored := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		stored[s.ID] = struct{}{}
	}
	byID := make(map[string]model.Subscription, len(incoming))
	for _, s := range incoming {
		byID[s.ID] = s
	}

	if mode == ImportReplace {
		for _, s := range incoming {
			if _, ok := stored[s.ID]; ok {
				stats.Updated++
			} else {
				stats.Added++
			}
		}
		stats.Removed = len(existing) - stats.Updated
		return incoming, stats
	}

	out := make([]model.Subscription, 0, len(existing)+len(incoming))
	for _, s := range existing {
		if repl, ok := byID[s.ID]; ok {
			out = append(out, repl)
			stats.Updated++
			continue
		}
		out = append(out, s)
	}
	for _, s := range incoming {
		if _, ok := stored[s.ID]; !ok {
			out = append(out, s)
			stats.Added++
		}
	}
	return out, stats
}
