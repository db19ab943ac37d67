package storage

// schemaSQL creates the scan cache tables. CREATE IF NOT EXISTS keeps it
// safe to run on every open.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS scan_cache (
    path        TEXT PRIMARY KEY,
    mtime_unix  INTEGER NOT NULL,
    size_bytes  INTEGER NOT NULL,
    metadata    TEXT NOT NULL,
    scanned_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scan_cache_scanned_at ON scan_cache(scanned_at);
`

func (db *DB) initializeSchema() error {
	_, err := db.conn.Exec(schemaSQL)
	return err
}
