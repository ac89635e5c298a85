package db

import "database/sql"

// ensureSchema creates the initial database tables and seeds defaults.
func ensureSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS config (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	-- Default config values (inserted only if not present)
	INSERT OR IGNORE INTO config (key, value) VALUES ('paths_dir', './camera-paths');
	INSERT OR IGNORE INTO config (key, value) VALUES ('autosave', '0');

	-- Cached metadata for camera path files (avoids re-parsing on scan)
	CREATE TABLE IF NOT EXISTS path_meta (
		path       TEXT PRIMARY KEY,   -- absolute file path
		keyframes  INTEGER NOT NULL,   -- keyframe count
		duration   REAL NOT NULL,      -- timestamp span in seconds
		mod_time   INTEGER NOT NULL,   -- file modification time (Unix seconds)
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Named transform pipelines
	CREATE TABLE IF NOT EXISTS presets (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,                -- e.g. "Mirror Blue Half"
		ops        TEXT NOT NULL,                -- JSON array of pipeline steps
		enabled    INTEGER NOT NULL DEFAULT 1,   -- 1 = shown in the editor
		is_seed    INTEGER NOT NULL DEFAULT 0,   -- 1 = built-in (cannot be deleted)
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return err
	}
	return seedPresets(db)
}

// seedPresets inserts the built-in presets once. Seeds are identified by
// name so a user rename doesn't resurrect them on restart.
func seedPresets(db *sql.DB) error {
	seeds := []struct {
		name string
		ops  string
	}{
		{"Mirror Field", `[{"op":"mirror","axis":"x","args":{"flipYaw":1}}]`},
		{"Half Speed", `[{"op":"speed","args":{"multiplier":0.5}}]`},
		{"Reverse", `[{"op":"reverse"}]`},
		{"Cinematic FOV", `[{"op":"fov-set","args":{"value":90}},{"op":"smooth","args":{"window":5}}]`},
	}
	for _, s := range seeds {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM presets WHERE name = ? AND is_seed = 1`, s.name).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		if _, err := db.Exec(
			`INSERT INTO presets (name, ops, enabled, is_seed) VALUES (?, ?, 1, 1)`,
			s.name, s.ops,
		); err != nil {
			return err
		}
	}
	return nil
}
