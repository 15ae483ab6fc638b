// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	moderncsqlite "modernc.org/sqlite"

	"github.com/Mustapha-who/kre/cliparse"
)

//go:embed migrations
var migrations embed.FS

// CaseFold is the SQLite function that lower-cases text with Unicode rules.
// SQLite's built-in LOWER only folds ASCII letters.
const CaseFold = "casefold"

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	moderncsqlite.MustRegisterDeterministicScalarFunction(CaseFold, 1, caseFold)
}

func caseFold(_ *moderncsqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, dbType, url string) (*sqlx.DB, error) {
	conn, err := sqlx.Open(dbType, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	if dbType == cliparse.DatabaseSQLite {
		// SQLite serializes writers anyway; one connection also keeps
		// in-memory databases and per-connection pragmas alive.
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)
		conn.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if dbType == cliparse.DatabaseSQLite {
		if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	return conn, nil
}

// CreateSchema applies all pending migrations for the database type.
// Safe to call multiple times - already applied migrations are skipped.
func CreateSchema(conn *sqlx.DB, dbType, url string) error {
	src, err := iofs.New(migrations, "migrations/"+dbType)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	var m *migrate.Migrate
	switch dbType {
	case cliparse.DatabaseSQLite:
		// Migrate through the live handle: an in-memory database only
		// exists on that connection.
		driver, err := sqlite.WithInstance(conn.DB, &sqlite.Config{})
		if err != nil {
			return fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err = migrate.NewWithInstance("iofs", src, dbType, driver)
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}
		// m.Close would close conn, so only the source is released
		defer src.Close()
	case cliparse.DatabasePostgres:
		m, err = migrate.NewWithSourceInstance("iofs", src, url)
		if err != nil {
			return fmt.Errorf("failed to create migrator: %w", err)
		}
		defer m.Close()
	default:
		return fmt.Errorf("unsupported database type %q", dbType)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
