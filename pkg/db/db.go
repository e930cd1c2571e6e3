package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register driver
)

// DB wraps the sql.DB connection.
type DB struct {
	*sql.DB
}

// Init opens the database and runs migrations.
func Init(path string) (*DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	d := &DB{db}
	// Enforce single connection to avoid SQLITE_BUSY errors during concurrent writes
	db.SetMaxOpenConns(1)

	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return d, nil
}

func (d *DB) migrate() error {
	// AUTOINCREMENT keeps ids strictly increasing and never reused, which point ordering
	// and backtrack path identity rely on.
	queries := []string{
		`CREATE TABLE IF NOT EXISTS paths (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT,
			line_style TEXT,
			point_style TEXT,
			color INTEGER,
			visible BOOLEAN DEFAULT 1,
			temporary BOOLEAN DEFAULT 0,
			distance REAL DEFAULT 0,
			num_points INTEGER DEFAULT 0,
			start_time INTEGER,
			end_time INTEGER,
			north REAL,
			east REAL,
			south REAL,
			west REAL
		);`,
		`CREATE TABLE IF NOT EXISTS path_points (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path_id INTEGER NOT NULL,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			elevation REAL,
			time INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_path_points_path ON path_points(path_id);`,
		`CREATE INDEX IF NOT EXISTS idx_path_points_time ON path_points(time);`,
		`CREATE TABLE IF NOT EXISTS pressures (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pressure REAL NOT NULL,
			altitude REAL NOT NULL,
			temperature REAL NOT NULL,
			time INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_pressures_time ON pressures(time);`,
		`CREATE TABLE IF NOT EXISTS persistent_state (
			key TEXT PRIMARY KEY,
			value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}

	for _, q := range queries {
		if _, err := d.Exec(q); err != nil {
			return fmt.Errorf("exec error: %w query: %s", err, q)
		}
	}

	return nil
}
