// Package sqlite stores the oasis and the Zen gamification data in SQLite.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/bloom/internal/garden"
	"github.com/zjrosen/bloom/internal/log"
	"github.com/zjrosen/bloom/internal/zen"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB owns the connection pool and hands out repositories.
type DB struct {
	path string
	conn *sql.DB
}

// NewDB opens (creating if needed) the database at path, backs up an
// existing file to path+".bak" and applies pending migrations.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := backup(path, path+".bak"); err != nil {
			return nil, fmt.Errorf("backing up database: %w", err)
		}
	}

	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=journal_mode(wal)" +
		"&_txlock=immediate"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "database opened", "path", path)
	return &DB{path: path, conn: conn}, nil
}

func runMigrations(conn *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("creating migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	// m.Close would close conn as well; only the source is released.
	defer func() { _ = src.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

func backup(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // G304: path comes from config
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600) //nolint:gosec // G304: derived from config path
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection exposes the pool for callers that need raw access.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path is the database file path.
func (db *DB) Path() string {
	return db.path
}

// GardenStore returns the oasis store.
func (db *DB) GardenStore() garden.Store {
	return newGardenStore(db.conn)
}

// ZenRepository returns the gamification repository.
func (db *DB) ZenRepository() zen.Repository {
	return newZenRepository(db.conn)
}
