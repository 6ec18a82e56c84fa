// Package sqlite implements the repository interfaces on SQLite.
//
// WHY modernc.org/sqlite?
// It's a pure-Go translation of the SQLite C sources — no CGo, no C
// toolchain, painless cross-compilation. The driver registers itself
// with database/sql under the name "sqlite" via its init function,
// which is what the blank import below triggers.
//
// The database is an embedded single file (or ":memory:" for tests),
// which fits this service: one process and a modest write rate.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB pool. The per-entity stores (Users, OTPs,
// Accounts) share it and implement the repository interfaces. The
// server owns the lifecycle: New opens and migrates, Close releases
// the file lock on shutdown.
type DB struct {
	conn *sql.DB
}

// New opens the database at dbPath, applies pragmas, and bootstraps the
// schema. Use ":memory:" for a throwaway in-process database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection, ever. SQLite allows a single writer anyway, so a
	// wider pool only buys SQLITE_BUSY errors under concurrent writes —
	// and with ":memory:" each pooled connection would get its own
	// private database. Request goroutines serialize on this
	// connection; at this service's write rate that is not a
	// bottleneck.
	conn.SetMaxOpenConns(1)

	// Force an actual connection now so a bad path fails at startup,
	// not on the first request.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL keeps commits cheap for a write-then-read workload and is
	// the sensible default for file-backed databases. A no-op for
	// ":memory:".
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; accounts reference
	// users and services, so turn them on.
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

// migrate bootstraps the schema. CREATE TABLE IF NOT EXISTS keeps this
// idempotent; a migration tool would take over if the schema ever needs
// versioned changes.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			phone         TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	// otps deliberately has NO uniqueness across (email, code): one row
	// per send, several outstanding codes per email may coexist.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS otps (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL,
			code       TEXT NOT NULL,
			used       INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_otps_email ON otps(email);
	`)
	if err != nil {
		return fmt.Errorf("creating otps table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS services (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS accounts (
			id                  TEXT PRIMARY KEY,
			user_id             TEXT NOT NULL REFERENCES users(id),
			service_id          TEXT NOT NULL REFERENCES services(id),
			provider_account_id TEXT NOT NULL,
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(user_id, service_id)
		);
		CREATE INDEX IF NOT EXISTS idx_accounts_user_id ON accounts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating services/accounts tables: %w", err)
	}

	return nil
}
