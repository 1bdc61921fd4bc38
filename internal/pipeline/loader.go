// Package pipeline loads subscription files, applies them to the store and
// builds overview figures from a subscription set.
package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/subcal/internal/model"
	"github.com/theirongolddev/subcal/internal/source"
)

// LoadResult holds the output of loading one or more subscription files.
type LoadResult struct {
	Subscriptions []model.Subscription
	Rejected      []Rejection
	TotalFiles    int
	ParsedFiles   int
	FileErrors    []error
}

// Rejection is a record that failed validation, with the file it came from.
type Rejection struct {
	Path string
	source.RecordError
}

func (r Rejection) Error() string {
	return r.Path + ": " + r.RecordError.Error()
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// ScanPaths expands directories into the .json, .yaml and .yml files they
// contain. Plain file arguments are kept as given. The result is sorted within
// each directory and deduplicated.
func ScanPaths(paths []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".json", ".yaml", ".yml":
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

// LoadFiles parses every file under paths with a bounded worker pool.
// Subscriptions keep file order, then record order. When two files share an
// ID the first one wins and the later record is rejected.
func LoadFiles(paths []string, opts source.Options, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := ScanPaths(paths)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	type parsed struct {
		res *source.LoadResult
		err error
	}

	work := make(chan int, len(files))
	results := make([]parsed, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				res, err := source.ParseFile(files[idx], opts)
				results[idx] = parsed{res: res, err: err}
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()

	seen := make(map[string]struct{})
	for i, pr := range results {
		if pr.err != nil {
			result.FileErrors = append(result.FileErrors, pr.err)
			continue
		}
		result.ParsedFiles++
		for _, re := range pr.res.Errors {
			result.Rejected = append(result.Rejected, Rejection{Path: files[i], RecordError: re})
		}
		for j, sub := range pr.res.Subscriptions {
			if _, dup := seen[sub.ID]; dup {
				result.Rejected = append(result.Rejected, Rejection{
					Path: files[i],
					RecordError: source.RecordError{
						Index: pr.res.Positions[j],
						ID:    sub.ID,
						Err:   &source.ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate id %q from an earlier file", sub.ID)},
					},
				})
				continue
			}
			seen[sub.ID] = struct{}{}
			result.Subscriptions = append(result.Subscriptions, sub)
		}
	}

	return result, nil
}
