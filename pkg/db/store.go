package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

// Store implements ledger.Store on a Connection.
type Store struct {
	conn *Connection
}

// NewStore creates a new Store.
func NewStore(conn *Connection) *Store {
	return &Store{conn: conn}
}

// Update runs fn in a read-write transaction.
func (s *Store) Update(ctx context.Context, fn func(ledger.Repository) error) error {
	return s.conn.Transaction(ctx, false, func(tx *sql.Tx) error {
		return fn(&repository{tx: tx, dialect: s.conn.dialect})
	})
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(ledger.Repository) error) error {
	return s.conn.Transaction(ctx, true, func(tx *sql.Tx) error {
		return fn(&repository{tx: tx, dialect: s.conn.dialect})
	})
}

// repository runs every statement on one *sql.Tx.
type repository struct {
	tx      *sql.Tx
	dialect Dialect
}

func (r *repository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.tx.ExecContext(ctx, rebind(r.dialect, query), args...)
}

func (r *repository) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.tx.QueryContext(ctx, rebind(r.dialect, query), args...)
}

func (r *repository) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.tx.QueryRowContext(ctx, rebind(r.dialect, query), args...)
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUniqueViolation reports whether err is a unique or primary key
// constraint failure from either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// Compile-time check: ensure Store implements ledger.Store
var _ ledger.Store = (*Store)(nil)
