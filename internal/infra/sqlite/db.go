// Package sqlite provides the opt-in durable journal for dopamind.
// Uses WAL mode for concurrent reads and crash-safe writes. When the
// journal is enabled every history entry and analytics record is
// appended here and replayed into memory at startup.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// FileName is the journal database inside the data directory.
const FileName = "journal.db"

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal at dir/journal.db.
// Enables WAL mode and a 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, FileName)
	dsn := "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db, path: dbPath}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Per-user reward history, capped per (user_id, reward_key) on insert
		`CREATE TABLE IF NOT EXISTS reward_history (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL,
			reward_key TEXT NOT NULL,
			intensity  REAL NOT NULL,
			confidence REAL NOT NULL,
			ts         INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_user_key ON reward_history(user_id, reward_key, id)`,

		// Process-wide analytics log, never trimmed
		`CREATE TABLE IF NOT EXISTS emotion_log (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id    TEXT NOT NULL UNIQUE,
			emotion     TEXT NOT NULL,
			intensity   REAL NOT NULL,
			confidence  REAL NOT NULL,
			reward_type TEXT NOT NULL,
			ts          INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_emotion_ts ON emotion_log(ts)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
