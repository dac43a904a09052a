package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"eve-atlas/internal/logger"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql *sql.DB
}

func dbPath() string {
	// Prefer working directory so the DB is stable across go run / go build.
	// Fall back to executable directory for deployed builds.
	if wd, err := os.Getwd(); err == nil {
		return filepath.Join(wd, "atlas.db")
	}
	exe, _ := os.Executable()
	return filepath.Join(filepath.Dir(exe), "atlas.db")
}

// Open opens (or creates) the SQLite database at path and runs migrations.
// An empty path uses atlas.db in the working directory.
func Open(path string) (*DB, error) {
	if path == "" {
		path = dbPath()
	}
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Try to read current version
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS settings (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			);

			CREATE TABLE IF NOT EXISTS avoid_systems (
				system_id INTEGER PRIMARY KEY,
				name      TEXT NOT NULL,
				added_at  TEXT NOT NULL
			);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		d.sql.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (1)")
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS ansiblex_edges (
				id       INTEGER PRIMARY KEY AUTOINCREMENT,
				from_id  INTEGER NOT NULL,
				to_id    INTEGER NOT NULL,
				added_at TEXT NOT NULL,
				UNIQUE (from_id, to_id)
			);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		d.sql.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (2)")
		logger.Info("DB", "Applied migration v2 (ansiblex edges)")
	}

	return nil
}
