// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/Mustapha-who/kre/db"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already in use")
	ErrConflict   = errors.New("conflicting record")
)

// Store wraps every query the API runs. Queries are written with "?"
// placeholders and rebound for the driver in use.
type Store struct {
	db *sqlx.DB
}

func New(conn *sqlx.DB) *Store {
	return &Store{db: conn}
}

// DB exposes the underlying handle for health checks and tests
func (s *Store) DB() *sqlx.DB {
	return s.db
}

func (s *Store) q(query string) string {
	return s.db.Rebind(query)
}

// notFound maps sql.ErrNoRows to ErrNotFound and passes everything else through
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// fold lower-cases a column expression the same way strings.ToLower does.
// SQLite connections use the casefold function registered by package db;
// PostgreSQL's LOWER is already Unicode-aware.
func (s *Store) fold(expr string) string {
	if s.db.DriverName() == "sqlite" {
		return db.CaseFold + "(" + expr + ")"
	}
	return "LOWER(" + expr + ")"
}

// likePattern builds a case-insensitive substring pattern for
// `fold(col) LIKE ? ESCAPE '\'`
func likePattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

// prefixPattern matches folded values starting with q
func prefixPattern(q string) string {
	return likeEscaper.Replace(strings.ToLower(q)) + "%"
}
