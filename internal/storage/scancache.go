package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"apexlens/internal/metadata"
)

// ScanCache stores per-file scan results keyed by canonical path.
// An entry is valid only while the file's mtime and size are unchanged.
type ScanCache struct {
	db *DB
}

// NewScanCache creates a scan cache over an open database
func NewScanCache(db *DB) *ScanCache {
	return &ScanCache{db: db}
}

// Get returns the cached metadata for a file, or nil when the entry is
// missing or stale.
func (c *ScanCache) Get(path string, mtime time.Time, size int64) (*metadata.Metadata, error) {
	var (
		cachedMtime int64
		cachedSize  int64
		blob        string
	)
	err := c.db.conn.QueryRow(
		`SELECT mtime_unix, size_bytes, metadata FROM scan_cache WHERE path = ?`, path,
	).Scan(&cachedMtime, &cachedSize, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan cache: %w", err)
	}

	if cachedMtime != mtime.Unix() || cachedSize != size {
		return nil, nil
	}

	var md metadata.Metadata
	if err := json.Unmarshal([]byte(blob), &md); err != nil {
		// Corrupt entry, treat as a miss
		c.db.logger.Warn("discarding corrupt scan cache entry", "path", path)
		return nil, nil
	}
	return &md, nil
}

// Put stores scan metadata for a file
func (c *ScanCache) Put(path string, mtime time.Time, size int64, md *metadata.Metadata) error {
	blob, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	_, err = c.db.conn.Exec(
		`INSERT INTO scan_cache (path, mtime_unix, size_bytes, metadata, scanned_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
		   mtime_unix = excluded.mtime_unix,
		   size_bytes = excluded.size_bytes,
		   metadata   = excluded.metadata,
		   scanned_at = excluded.scanned_at`,
		path, mtime.Unix(), size, string(blob), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to write scan cache: %w", err)
	}
	return nil
}

// Prune removes entries for paths no longer present in the folder
func (c *ScanCache) Prune(livePaths map[string]bool) (int, error) {
	rows, err := c.db.conn.Query(`SELECT path FROM scan_cache`)
	if err != nil {
		return 0, fmt.Errorf("failed to list scan cache: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return 0, err
		}
		if !livePaths[path] {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	pruned := 0
	err = c.db.WithTx(func(tx *sql.Tx) error {
		for _, path := range stale {
			if _, err := tx.Exec(`DELETE FROM scan_cache WHERE path = ?`, path); err != nil {
				return err
			}
			pruned++
		}
		return nil
	})
	return pruned, err
}

// Count returns the number of cached entries
func (c *ScanCache) Count() (int, error) {
	var n int
	err := c.db.conn.QueryRow(`SELECT COUNT(*) FROM scan_cache`).Scan(&n)
	return n, err
}
