// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// The data model is three flat documents with upsert semantics — a single
// embedded database file covers it with zero infrastructure. We use
// modernc.org/sqlite (a pure-Go translation of SQLite) rather than
// mattn/go-sqlite3 so there's no CGo and cross-compilation stays painless.
//
// Free-form document fields (portfolio sections and theme) are stored as
// JSON in TEXT columns; everything else is a plain column.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and hands out the typed repositories
// that share it. The server owns its lifecycle: New opens it, Close
// releases the file lock on shutdown.
//
// One repo type per table rather than every method on DB: the developer
// and portfolio repositories both want an Upsert and a GetByUsername, and
// a single receiver can't carry both pairs.
type DB struct {
	conn *sql.DB
}

// Developers returns the developer repository backed by this database.
func (db *DB) Developers() *DeveloperRepo {
	return &DeveloperRepo{conn: db.conn}
}

// Sessions returns the session repository backed by this database.
func (db *DB) Sessions() *SessionRepo {
	return &SessionRepo{conn: db.conn}
}

// Portfolios returns the portfolio repository backed by this database.
func (db *DB) Portfolios() *PortfolioRepo {
	return &PortfolioRepo{conn: db.conn}
}

// New opens the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database in tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open only creates the pool — Ping forces a real connection so a
	// bad path or permission problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — necessary for a
	// web server where the login flow writes three rows back-to-back.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable. The status endpoint uses it.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the three document tables. CREATE TABLE IF NOT EXISTS is
// idempotent, so this is safe to run on every startup.
//
// There are no foreign keys between the tables on purpose: the login flow
// performs three independent upserts, and a session or portfolio row is
// allowed to outlive a developer row briefly without breaking anything.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS developers (
			username         TEXT PRIMARY KEY,
			name             TEXT NOT NULL DEFAULT '',
			email            TEXT NOT NULL DEFAULT '',
			avatar_url       TEXT NOT NULL DEFAULT '',
			bio              TEXT NOT NULL DEFAULT '',
			company          TEXT NOT NULL DEFAULT '',
			location         TEXT NOT NULL DEFAULT '',
			blog             TEXT NOT NULL DEFAULT '',
			twitter_username TEXT NOT NULL DEFAULT '',
			html_url         TEXT NOT NULL DEFAULT '',
			public_repos     INTEGER NOT NULL DEFAULT 0,
			created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating developers table: %w", err)
	}

	// username is UNIQUE, not the primary key: lookups come in by token,
	// while the one-session-per-username rule is enforced by the constraint.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			token      TEXT PRIMARY KEY,
			username   TEXT NOT NULL UNIQUE,
			expires_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
	`)
	if err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS portfolios (
			username    TEXT PRIMARY KEY,
			headline    TEXT NOT NULL DEFAULT '',
			subheadline TEXT NOT NULL DEFAULT '',
			sections    TEXT NOT NULL DEFAULT '[]',
			theme       TEXT NOT NULL DEFAULT '{}',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating portfolios table: %w", err)
	}

	return nil
}
