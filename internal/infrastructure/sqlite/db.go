// Package sqlite implements the registry's persistence layer on a SQLite
// ledger file.
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
	_ "github.com/ncruces/go-sqlite3/driver" // registers the sqlite3 driver
	_ "github.com/ncruces/go-sqlite3/embed"  // embeds the sqlite wasm binary

	"github.com/curioledger/curio/internal/log"
	"github.com/curioledger/curio/internal/registry/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB owns the connection to the ledger database and hands out repositories
// bound to it.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if necessary) the ledger database at path and brings
// its schema up to date. The parent directory is created with 0700. An
// existing ledger file is copied to <path>.bak before migrations run.
func NewDB(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	if err := backupExisting(path); err != nil {
		return nil, fmt.Errorf("backing up ledger: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	// The ledger is written by one serialized caller at a time; a single
	// connection keeps transaction scoping simple.
	conn.SetMaxOpenConns(1)

	if err := runMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "ledger opened", "path", path)
	return &DB{conn: conn, path: path}, nil
}

// backupExisting copies a non-empty ledger file to <path>.bak so a botched
// migration can be rolled back by hand.
func backupExisting(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return nil
	}

	src, err := os.Open(path) //nolint:gosec // G304: path is the user-configured ledger path
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	dst, err := os.OpenFile(path+".bak", os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	_, err = io.Copy(dst, src)
	return err
}

func runMigrations(conn *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("preparing migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// RegistryRepository returns the ledger repository bound to this database.
func (d *DB) RegistryRepository() domain.RegistryRepository {
	return newRegistryRepository(d.conn)
}

// Path returns the ledger file path.
func (d *DB) Path() string {
	return d.path
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	return d.conn.Close()
}
