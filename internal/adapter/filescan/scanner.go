// Package filescan discovers landslide-risk record files on disk and hands
// them to the pipeline as raw records. It implements pipeline.BatchExtractor.
package filescan

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mizulab/dosha-risk-etl/internal/domain"
)

// Scanner walks an ordered list of directories looking for record files.
// Directories are scanned in the order given, callers supply them
// chronologically, and file names within one directory are sorted, so
// records reach the store in observation order. Files whose names carry no
// parseable timestamp are skipped with a log line, never surfaced as decode
// errors.
//
// A file is handed out at most once until its record's Commit runs; rescans
// in watch mode then ignore it for good. File contents are read eagerly, so
// the pipeline owns a plain byte buffer per record.
type Scanner struct {
	dirs   []string
	prefix string
	logger *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{} // handed out, commit pending
	done     map[string]struct{} // committed
}

// New creates a Scanner over the given directories. prefix is the fixed
// file-name header that precedes the observation timestamp.
func New(dirs []string, prefix string, logger *slog.Logger) *Scanner {
	return &Scanner{
		dirs:     dirs,
		prefix:   prefix,
		logger:   logger,
		inflight: make(map[string]struct{}),
		done:     make(map[string]struct{}),
	}
}

// ExtractBatch returns up to batchSize new raw records. An empty batch means
// no unseen files are currently on disk; in watch mode the pipeline polls
// again later.
func (s *Scanner) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawRecord, error) {
	paths, err := s.pendingPaths(batchSize)
	if err != nil {
		return nil, err
	}

	records := make([]domain.RawRecord, 0, len(paths))
	for _, p := range paths {
		if ctx.Err() != nil {
			s.release(paths)
			return nil, ctx.Err()
		}

		observed, err := domain.ParseObservationTime(filepath.Base(p), s.prefix)
		if err != nil {
			// Unparseable names are foreign files, not corrupt records.
			s.logger.Debug("skipping file without record timestamp", "path", p, "error", err)
			s.markDone(p)
			continue
		}

		data, err := os.ReadFile(p)
		if err != nil {
			s.release(paths)
			return nil, fmt.Errorf("read record file %s: %w", p, err)
		}

		path := p
		records = append(records, domain.RawRecord{
			Path:     path,
			Data:     data,
			Observed: observed,
			Commit: func(context.Context) error {
				s.markDone(path)
				return nil
			},
		})
	}
	return records, nil
}

// pendingPaths walks the directories and reserves up to limit paths that have
// not been handed out yet.
func (s *Scanner) pendingPaths(limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, dir := range s.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("scan directory %s: %w", dir, err)
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			p := filepath.Join(dir, name)
			if _, ok := s.done[p]; ok {
				continue
			}
			if _, ok := s.inflight[p]; ok {
				continue
			}
			s.inflight[p] = struct{}{}
			out = append(out, p)
			if len(out) == limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *Scanner) markDone(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, path)
	s.done[path] = struct{}{}
}

// release returns reserved paths to the pool, so an aborted batch can be
// re-extracted.
func (s *Scanner) release(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.inflight, p)
	}
}
