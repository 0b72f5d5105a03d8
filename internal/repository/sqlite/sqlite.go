// Package sqlite implements the repository interfaces on a single local SQLite file.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means a C compiler on every build machine and
// painful cross-compilation. modernc.org/sqlite is a pure Go translation of SQLite,
// so the binary builds anywhere Go does.
//
// CONNECTION SETTINGS:
// sql.DB is a pool, and SQLite PRAGMAs are per connection. Running
// "PRAGMA foreign_keys=ON" once through the pool would only configure whichever
// connection happened to run it. Instead the settings travel in the DSN
// (_pragma=...), which the driver applies to every connection it opens:
//   - foreign_keys(1)     tasks.user_id must reference a real user
//   - journal_mode(WAL)   readers don't block the writer
//   - busy_timeout(ms)    wait for the write lock instead of failing at once
//   - _txlock=immediate   take the write lock at BEGIN, so a unit of work that
//     reads then writes can't lose a lock upgrade race halfway through
//
// READS AND WRITES USE SEPARATE POOLS:
// IMMEDIATE is only right for units of work that write. A second pool, opened
// with plain (deferred) BEGIN and query_only, serves BeginRead. Under WAL its
// transactions read a snapshot and never wait for the writer.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/task-manager/internal/repository"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// compile-time check that *DB implements repository.Store
var _ repository.Store = (*DB)(nil)

// Config holds the storage settings.
type Config struct {
	// Path is the database file. It is created, along with its directory, if absent.
	Path string
	// BusyTimeout is how long a unit of work waits for the write lock.
	BusyTimeout time.Duration
	// LogStatements logs every executed statement at debug level.
	LogStatements bool
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Path:        "data/taskmanager.db",
		BusyTimeout: 5 * time.Second,
	}
}

// DB wraps a sql.DB connection pool and hands out units of work.
type DB struct {
	conn   *sql.DB // writes, BEGIN IMMEDIATE
	read   *sql.DB // reads, deferred BEGIN, query_only
	config Config
	logger *slog.Logger
}

// New opens (creating if needed) the database file and makes sure both tables exist.
//
// sql.Open does not connect; Ping forces the first connection so that a bad path
// or permissions problem shows up here and not on the first request.
func New(cfg Config, logger *slog.Logger) (*DB, error) {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = DefaultConfig().BusyTimeout
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		// 0755 = owner rwx, everyone else r-x
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("sqlite: creating directory %s: %w", dir, err)
		}
	}

	conn, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn, config: cfg, logger: logger}

	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: creating tables: %w", err)
	}

	// Opened after the write pool has switched the file to WAL, which persists.
	read, err := sql.Open("sqlite", readDSN(cfg))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: opening read pool: %w", err)
	}
	if err := read.Ping(); err != nil {
		read.Close()
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging read pool: %w", err)
	}
	db.read = read

	return db, nil
}

func dsn(cfg Config) string {
	return fmt.Sprintf(
		"%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_txlock=immediate",
		cfg.Path, cfg.BusyTimeout.Milliseconds(),
	)
}

// readDSN has no _txlock, so BEGIN is deferred and takes no lock until the
// first SELECT, which under WAL only needs a read snapshot.
func readDSN(cfg Config) string {
	return fmt.Sprintf(
		"%s?_pragma=busy_timeout(%d)&_pragma=query_only(1)",
		cfg.Path, cfg.BusyTimeout.Milliseconds(),
	)
}

// Close closes both connection pools. Call it once, when the server stops.
func (db *DB) Close() error {
	return errors.Join(db.read.Close(), db.conn.Close())
}

// Ping checks that the database file is still reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Begin starts a unit of work. The caller owns it and must end it with
// Commit or Rollback; deferring Rollback straight after Begin is the usual shape:
//
//	tx, err := db.Begin(ctx)
//	if err != nil { ... }
//	defer tx.Rollback()
func (db *DB) Begin(ctx context.Context) (repository.Tx, error) {
	return db.begin(ctx, db.conn, "unit of work started")
}

// BeginRead starts a read-only unit of work. It does not wait for an open
// write unit of work and sees the data as of its first query. Writes through
// it fail.
func (db *DB) BeginRead(ctx context.Context) (repository.Tx, error) {
	return db.begin(ctx, db.read, "read unit of work started")
}

func (db *DB) begin(ctx context.Context, pool *sql.DB, msg string) (*Tx, error) {
	sqlTx, err := pool.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning unit of work: %w", err)
	}

	t := &Tx{
		tx:            sqlTx,
		id:            xid.New().String(),
		logger:        db.logger,
		logStatements: db.config.LogStatements,
	}
	db.logger.Debug(msg, slog.String("uow", t.id))

	return t, nil
}

// createTables creates both tables if they are missing.
//
// CREATE TABLE IF NOT EXISTS makes this safe to run on every start. There is no
// migration history: the schema is fixed.
//
// tasks.user_id has no ON DELETE action: the service removes a user's tasks
// itself. With foreign keys on, deleting a user that still owns tasks fails
// instead of orphaning them.
func (db *DB) createTables() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			username  TEXT NOT NULL,
			firstname TEXT NOT NULL DEFAULT '',
			lastname  TEXT NOT NULL DEFAULT '',
			age       INTEGER NOT NULL DEFAULT 0,
			slug      TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_users_slug ON users(slug);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tasks (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			title    TEXT NOT NULL,
			content  TEXT NOT NULL DEFAULT '',
			priority INTEGER NOT NULL DEFAULT 0,
			user_id  INTEGER NOT NULL REFERENCES users(id),
			slug     TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);
		CREATE INDEX IF NOT EXISTS idx_tasks_slug ON tasks(slug);
	`)
	if err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}

	return nil
}
