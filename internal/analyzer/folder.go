package analyzer

import (
	"log/slog"
	"os"
	"sort"
	"time"

	"apexlens/internal/config"
	lenserr "apexlens/internal/errors"
	"apexlens/internal/grouping"
	"apexlens/internal/metadata"
	"apexlens/internal/paths"
	"apexlens/internal/storage"
	"apexlens/internal/trace"
)

// FolderResult is the outcome of scanning a folder of debug logs.
type FolderResult struct {
	Folder    string                       `json:"folder"`
	Scanned   int                          `json:"scanned"`
	CacheHits int                          `json:"cacheHits"`
	Skipped   int                          `json:"skipped"`
	Traces    []*metadata.Metadata         `json:"traces"`
	Groups    []*grouping.TransactionGroup `json:"groups,omitempty"`

	// ContextCounts is the execution-context distribution across traces.
	ContextCounts map[metadata.ExecutionContext]int `json:"contextCounts,omitempty"`
}

// FolderScanner walks a folder of debug logs, extracts per-file metadata
// through the bounded window scanner, and correlates the results into
// transaction groups. A scan cache keyed by mtime and size avoids
// re-reading unchanged files.
type FolderScanner struct {
	cfg     *config.Config
	scanner *metadata.Scanner
	cache   *storage.ScanCache
	logger  *slog.Logger
}

// NewFolderScanner builds a folder scanner from configuration. The cache
// may be nil when caching is disabled.
func NewFolderScanner(cfg *config.Config, cache *storage.ScanCache, logger *slog.Logger) (*FolderScanner, error) {
	scanner := metadata.NewScanner()
	if cfg.Scanner.ObjectsFile != "" {
		table, err := metadata.LoadPrefixTable(cfg.Scanner.ObjectsFile)
		if err != nil {
			return nil, lenserr.New(lenserr.ConfigInvalid, "failed to load object prefix table", err)
		}
		scanner = metadata.NewScannerWithPrefixes(table)
	}
	return &FolderScanner{
		cfg:     cfg,
		scanner: scanner,
		cache:   cache,
		logger:  logger,
	}, nil
}

// Scan processes every candidate trace file under folder.
func (fs *FolderScanner) Scan(folder string) (*FolderResult, error) {
	candidates, err := trace.ListCandidates(folder)
	if err != nil {
		return nil, lenserr.New(lenserr.FolderUnreadable, "failed to list trace files", err)
	}

	result := &FolderResult{Folder: folder}
	livePaths := make(map[string]bool, len(candidates))

	for _, path := range candidates {
		canonical, err := paths.CanonicalizePath(path, folder)
		if err != nil {
			canonical = path
		}
		livePaths[canonical] = true

		info, err := os.Stat(path)
		if err != nil {
			fs.logger.Warn("skipping unreadable trace", "path", path, "error", err)
			result.Skipped++
			continue
		}

		if fs.cache != nil {
			cached, err := fs.cache.Get(canonical, info.ModTime(), info.Size())
			if err != nil {
				fs.logger.Warn("scan cache lookup failed", "path", canonical, "error", err)
			} else if cached != nil {
				result.CacheHits++
				result.Traces = append(result.Traces, cached)
				continue
			}
		}

		head, tail, err := trace.ReadWindow(path, fs.cfg.Scanner.HeadLines, fs.cfg.Scanner.TailLines)
		if err != nil {
			fs.logger.Warn("skipping unreadable trace", "path", path, "error", err)
			result.Skipped++
			continue
		}

		md := fs.scanner.Scan(canonical, metadata.Window{Head: head, Tail: tail}, info.ModTime())
		result.Scanned++
		result.Traces = append(result.Traces, md)

		if fs.cache != nil {
			if err := fs.cache.Put(canonical, info.ModTime(), info.Size(), md); err != nil {
				fs.logger.Warn("scan cache write failed", "path", canonical, "error", err)
			}
		}
	}

	if fs.cache != nil {
		if pruned, err := fs.cache.Prune(livePaths); err != nil {
			fs.logger.Warn("scan cache prune failed", "error", err)
		} else if pruned > 0 {
			fs.logger.Debug("pruned stale cache entries", "count", pruned)
		}
	}

	sort.Slice(result.Traces, func(i, j int) bool {
		return result.Traces[i].Timestamp.Before(result.Traces[j].Timestamp)
	})

	if len(result.Traces) > 0 {
		result.ContextCounts = make(map[metadata.ExecutionContext]int)
		for _, md := range result.Traces {
			result.ContextCounts[md.Context]++
		}
	}

	window := time.Duration(fs.cfg.Grouping.WindowSeconds) * time.Second
	result.Groups = grouping.NewGrouper(window).Group(result.Traces)

	fs.logger.Info("folder scan complete",
		"folder", folder,
		"traces", len(result.Traces),
		"scanned", result.Scanned,
		"cacheHits", result.CacheHits,
		"groups", len(result.Groups))

	return result, nil
}
