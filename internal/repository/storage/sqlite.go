package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// import the pure Go SQLite driver to register it with the database/sql package.
	_ "modernc.org/sqlite"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS archived_games (
	id          TEXT PRIMARY KEY,
	room_name   TEXT NOT NULL DEFAULT '',
	players     TEXT NOT NULL,
	scores      TEXT NOT NULL,
	winner      INTEGER NOT NULL,
	turns       INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	snapshot    BLOB
);
CREATE INDEX IF NOT EXISTS archived_games_finished_at ON archived_games (finished_at);
`

// NewSQLite opens the archive database. ":memory:" keeps it in process, which tests rely on.
func NewSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("can't create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	// a single connection keeps an in-memory database alive and serializes writers
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	if _, err = conn.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("can't enable WAL: %w", err)
	}

	if _, err = conn.ExecContext(ctx, archiveSchema); err != nil {
		return nil, fmt.Errorf("can't create table: %w", err)
	}

	return conn, nil
}
