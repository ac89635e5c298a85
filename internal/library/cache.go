package library

import (
	"database/sql"
	"log/slog"
	"os"
)

// MetaCache stores parsed camera file metadata in SQLite so scans don't
// re-read unchanged files.
type MetaCache struct {
	db *sql.DB
}

// NewMetaCache creates a cache backed by the given database.
func NewMetaCache(db *sql.DB) *MetaCache {
	return &MetaCache{db: db}
}

// Get retrieves cached metadata for the given file path and modification
// time. Returns false if not cached or the file has changed since.
func (c *MetaCache) Get(path string, modTime int64) (keyframes int, duration float64, ok bool) {
	err := c.db.QueryRow(
		`SELECT keyframes, duration FROM path_meta WHERE path = ? AND mod_time = ?`,
		path, modTime,
	).Scan(&keyframes, &duration)
	if err != nil {
		return 0, 0, false
	}
	return keyframes, duration, true
}

// Set stores metadata for the given file path and modification time.
func (c *MetaCache) Set(path string, modTime int64, keyframes int, duration float64) error {
	_, err := c.db.Exec(
		`INSERT INTO path_meta (path, keyframes, duration, mod_time) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET keyframes = excluded.keyframes,
		 duration = excluded.duration, mod_time = excluded.mod_time`,
		path, keyframes, duration, modTime,
	)
	return err
}

// Cleanup removes cache entries whose files no longer exist on disk.
func (c *MetaCache) Cleanup() {
	rows, err := c.db.Query(`SELECT path FROM path_meta`)
	if err != nil {
		slog.Warn("path meta cleanup: query failed", "error", err)
		return
	}
	defer rows.Close()

	var toDelete []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			toDelete = append(toDelete, path)
		}
	}
	if err := rows.Err(); err != nil {
		slog.Warn("path meta cleanup: rows iteration error", "error", err)
	}

	for _, path := range toDelete {
		if _, err := c.db.Exec(`DELETE FROM path_meta WHERE path = ?`, path); err != nil {
			slog.Warn("path meta cleanup: delete failed", "path", path, "error", err)
		}
	}

	if len(toDelete) > 0 {
		slog.Info("path meta cleanup", "removed", len(toDelete))
	}
}
