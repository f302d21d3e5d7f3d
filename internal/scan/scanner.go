// Package scan enumerates files on the local filesystem and prepares the
// descriptors consumed by the similarity engine.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"filedupfinder/internal/fileutil"
	"filedupfinder/internal/hash"
	"filedupfinder/internal/models"
)

// FilterOptions controls which files a scan considers.
type FilterOptions struct {
	ExcludeShortcuts  bool
	ExcludeHidden     bool
	ExcludeSystem     bool
	MinSizeKB         int64
	MaxSizeKB         int64 // 0 means no upper bound
	IncludeSubfolders bool
}

// DefaultFilterOptions returns the standard scan filters: skip shortcuts,
// hidden and system files, recurse into subfolders, no size bounds.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		ExcludeShortcuts:  true,
		ExcludeHidden:     true,
		ExcludeSystem:     true,
		IncludeSubfolders: true,
	}
}

// Scanner walks folders and computes file fingerprints and metadata
type Scanner struct {
	filters    FilterOptions
	workers    int
	progressFn func(scanned, total int, current string)
}

// Option configures a Scanner
type Option func(*Scanner)

// WithWorkers sets the number of parallel workers
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithFilters sets the scan filter options
func WithFilters(f FilterOptions) Option {
	return func(s *Scanner) {
		s.filters = f
	}
}

// WithProgress sets a progress callback
func WithProgress(fn func(scanned, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// NewScanner creates a new Scanner
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		filters: DefaultFilterOptions(),
		workers: 8,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanFolder walks a folder and returns descriptors for every file that
// passes the filters. Files that cannot be hashed are kept with an empty
// content hash rather than dropped; they are excluded from exact grouping
// downstream but still participate in similarity scoring.
func (s *Scanner) ScanFolder(folder string) ([]*models.FileInfo, error) {
	candidates, err := s.collect(folder)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Workers fill in the stubs in place so the returned slice keeps
	// walk order; clustering depends on a stable input order.
	var (
		scanned int64
		total   = len(candidates)
	)

	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, info := range candidates {
		g.Go(func() error {
			if h, err := hash.ComputeFileHash(info.Path); err == nil {
				info.ContentHash = h
			}
			hash.FileMetadata(info)
			info.Score = hash.CalculateScore(info)

			n := atomic.AddInt64(&scanned, 1)
			if s.progressFn != nil {
				s.progressFn(int(n), total, info.Path)
			}
			return nil
		})
	}

	g.Wait()

	return candidates, nil
}

// collect walks the folder applying filters and returns stubs with stat
// info filled in. Walk errors on individual entries are skipped.
func (s *Scanner) collect(folder string) ([]*models.FileInfo, error) {
	var candidates []*models.FileInfo

	err := filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if info.IsDir() {
			if !s.filters.IncludeSubfolders && path != folder {
				return filepath.SkipDir
			}
			return nil
		}

		name := info.Name()
		if s.filters.ExcludeShortcuts && fileutil.IsShortcut(path, name) {
			return nil
		}
		if s.filters.ExcludeHidden && fileutil.IsHidden(path, name) {
			return nil
		}
		if s.filters.ExcludeSystem && fileutil.IsSystemFile(path, name) {
			return nil
		}

		sizeKB := info.Size() / 1024
		if sizeKB < s.filters.MinSizeKB {
			return nil
		}
		if s.filters.MaxSizeKB > 0 && sizeKB > s.filters.MaxSizeKB {
			return nil
		}

		candidates = append(candidates, &models.FileInfo{
			Path:     path,
			FileSize: info.Size(),
			ModTime:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk folder: %w", err)
	}

	return candidates, nil
}

// ScanFolders scans multiple folders
func (s *Scanner) ScanFolders(folders []string) ([]*models.FileInfo, error) {
	var allResults []*models.FileInfo
	for _, folder := range folders {
		results, err := s.ScanFolder(folder)
		if err != nil {
			return nil, err
		}
		allResults = append(allResults, results...)
	}
	return allResults, nil
}
