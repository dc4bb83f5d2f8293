// Package storage persists user records in PostgreSQL or SQLite and applies
// the schema migrations for either dialect (via goose).
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

// Supported values of database.driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

type dialect struct {
	sqlDriver string // database/sql driver name
	goose     string // goose dialect
	dir       string // migrations directory
}

var dialects = map[string]dialect{
	DriverPostgres: {sqlDriver: "pgx", goose: "pgx", dir: "migrations/postgres"},
	DriverSQLite:   {sqlDriver: "sqlite3", goose: "sqlite3", dir: "migrations/sqlite"},
}

// Open connects to the database and verifies the connection.
func Open(ctx context.Context, driver, url string, maxOpenConns int) (*sqlx.DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(d.sqlDriver, url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for driver.
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	d, ok := dialects[driver]
	if !ok {
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	sub, err := fs.Sub(migrations, d.dir)
	if err != nil {
		return err
	}

	goose.SetBaseFS(sub)
	if err := goose.SetDialect(d.goose); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
