package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Dialect names a supported SQL driver.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// ParseDialect accepts the driver names used in configuration.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// Connection manages a database connection for either dialect.
type Connection struct {
	db      *sql.DB
	dialect Dialect
	dsn     string
}

// Open opens a database connection and initializes the schema.
// For SQLite, dsn is a file path; for PostgreSQL, a lib/pq connection string.
func Open(dialect Dialect, dsn string) (*Connection, error) {
	var (
		db  *sql.DB
		err error
	)

	switch dialect {
	case SQLite:
		// Ensure database file's parent directory exists
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}

		// Writers take the lock at BEGIN so read-then-write transactions
		// cannot interleave.
		connStr := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000", dsn)
		db, err = sql.Open(string(SQLite), connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		db.SetMaxOpenConns(1)
	case Postgres:
		db, err = sql.Open(string(Postgres), dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database dialect: %s", dialect)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn := &Connection{
		db:      db,
		dialect: dialect,
		dsn:     dsn,
	}

	if err := InitializeSchema(conn); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return conn, nil
}

// Close closes the database connection.
func (c *Connection) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Dialect returns the connection's SQL dialect.
func (c *Connection) Dialect() Dialect {
	return c.dialect
}

// GetPath returns the SQLite file path, or "" for PostgreSQL.
func (c *Connection) GetPath() string {
	if c.dialect != SQLite {
		return ""
	}
	return c.dsn
}

// Transaction executes fn within a transaction.
// If fn returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
func (c *Connection) Transaction(ctx context.Context, readOnly bool, fn func(*sql.Tx) error) error {
	var opts *sql.TxOptions
	if readOnly && c.dialect == Postgres {
		opts = &sql.TxOptions{ReadOnly: true}
	}

	tx, err := c.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func rebind(dialect Dialect, query string) string {
	if dialect != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
