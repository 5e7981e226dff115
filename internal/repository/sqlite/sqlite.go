// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of the SQLite C code, so the server builds
// without CGo and cross-compiles like any other Go binary.
//
// CONSTRAINTS LIVE IN THE SCHEMA:
// Every invariant the services rely on is also declared here, so a bug in
// a service cannot corrupt the data:
//   - relation pairs are UNIQUE (the authoritative guard for toggle-add races)
//   - subscriptions carry CHECK (follower_id <> author_id)
//   - ingredient lines are UNIQUE per (recipe, ingredient) with amount >= 1
//   - recipes require cooking_time >= 1
//   - every foreign key cascades on delete
//
// FOREIGN KEYS PER CONNECTION:
// SQLite keeps foreign_keys as connection state and database/sql keeps a pool.
// A one-off "PRAGMA foreign_keys=ON" would only reach one pooled connection,
// so the pragma is passed in the DSN and applied to every connection opened.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
}

// querier is satisfied by both *sql.DB and *sql.Tx, so read helpers can run
// inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/foodgram.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (tests; lost on close)
func New(dbPath string) (*DB, error) {
	// _txlock=immediate makes BEGIN take the write lock, so a transaction
	// that reads before writing waits on busy_timeout instead of failing
	// with SQLITE_BUSY when another writer commits first.
	dsn := dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_txlock=immediate"

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers (e.g. the shopping-list snapshot) proceed while a
	// toggle transaction is writing.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health check.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			username      TEXT NOT NULL UNIQUE,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			is_admin      INTEGER NOT NULL DEFAULT 0,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tags (
			id    INTEGER PRIMARY KEY AUTOINCREMENT,
			name  TEXT NOT NULL UNIQUE,
			color TEXT NOT NULL UNIQUE,
			slug  TEXT NOT NULL UNIQUE
		);
		CREATE TABLE IF NOT EXISTS ingredients (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			name             TEXT NOT NULL,
			measurement_unit TEXT NOT NULL,
			search_name      TEXT NOT NULL,
			UNIQUE (name, measurement_unit)
		);
		CREATE INDEX IF NOT EXISTS idx_ingredients_search_name ON ingredients(search_name);
	`)
	if err != nil {
		return fmt.Errorf("creating catalog tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS recipes (
			id           TEXT PRIMARY KEY,
			author_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name         TEXT NOT NULL,
			image        TEXT NOT NULL DEFAULT '',
			text         TEXT NOT NULL,
			cooking_time INTEGER NOT NULL CHECK (cooking_time >= 1),
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_recipes_created_at ON recipes(created_at);
		CREATE INDEX IF NOT EXISTS idx_recipes_author_id ON recipes(author_id);

		CREATE TABLE IF NOT EXISTS recipe_tags (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			recipe_id TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			tag_id    INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			UNIQUE (recipe_id, tag_id)
		);

		CREATE TABLE IF NOT EXISTS ingredient_lines (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			recipe_id     TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			ingredient_id INTEGER NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
			amount        INTEGER NOT NULL CHECK (amount >= 1),
			UNIQUE (recipe_id, ingredient_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating recipe tables: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS favorites (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, recipe_id)
		);

		CREATE TABLE IF NOT EXISTS shopping_cart (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			recipe_id  TEXT NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, recipe_id)
		);

		CREATE TABLE IF NOT EXISTS subscriptions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			follower_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			author_id   TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (follower_id, author_id),
			CHECK (follower_id <> author_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating relation tables: %w", err)
	}

	return nil
}

// Constraint failures are only exposed through the driver's message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isCheckViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "CHECK constraint failed")
}

// isBusy reports a lock that busy_timeout could not wait out.
func isBusy(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "SQLITE_BUSY") ||
		strings.Contains(err.Error(), "database is locked"))
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
