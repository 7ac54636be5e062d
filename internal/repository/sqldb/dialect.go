package sqldb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
)

// foldFunc is the SQLite scalar that lowercases text the way strings.ToLower
// does. The built-in LOWER only folds ASCII.
const foldFunc = "todo_fold"

func init() {
	if err := sqlite.RegisterDeterministicScalarFunction(foldFunc, 1, foldValue); err != nil {
		panic(fmt.Sprintf("register %s: %v", foldFunc, err))
	}
}

func foldValue(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// FoldCase lowercases s the same way every dialect's Fold expression does.
func FoldCase(s string) string {
	return strings.ToLower(s)
}

// Dialect captures the few places where the supported SQL engines differ.
// Queries are written with `?` placeholders and rebound per dialect.
type Dialect interface {
	Name() string
	DriverName() string
	// Rebind rewrites `?` placeholders into the dialect's syntax.
	Rebind(query string) string
	// LockOwner serializes writers of one owner's list for the rest of tx.
	LockOwner(ctx context.Context, tx *sql.Tx, ownerID string) error
	// ReadTxOptions returns options for a consistent multi-statement read.
	ReadTxOptions() *sql.TxOptions
	// Configure tunes the connection pool after opening.
	Configure(db *sql.DB, maxOpenConns int)
	// Fold wraps a text expression so it compares case-insensitively
	// against a FoldCase'd term.
	Fold(expr string) string
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "sqlite", "":
		return sqliteDialect{}, nil
	case "postgres", "postgresql", "pgx":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", name)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string               { return "sqlite" }
func (sqliteDialect) DriverName() string         { return "sqlite" }
func (sqliteDialect) Rebind(query string) string { return query }

// A single pooled connection already serializes every transaction.
func (sqliteDialect) LockOwner(context.Context, *sql.Tx, string) error { return nil }

func (sqliteDialect) ReadTxOptions() *sql.TxOptions { return nil }

func (sqliteDialect) Fold(expr string) string { return foldFunc + "(" + expr + ")" }

func (sqliteDialect) Configure(db *sql.DB, _ int) {
	db.SetMaxOpenConns(1)
}

// sqliteDSN adds the pragmas the store relies on to a plain file path.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") || strings.HasPrefix(path, "file:") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

type postgresDialect struct{}

func (postgresDialect) Name() string       { return "postgres" }
func (postgresDialect) DriverName() string { return "pgx" }

func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (postgresDialect) LockOwner(ctx context.Context, tx *sql.Tx, ownerID string) error {
	_, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", ownerID)
	return err
}

func (postgresDialect) ReadTxOptions() *sql.TxOptions {
	return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
}

// LOWER is locale aware for UTF8 databases.
func (postgresDialect) Fold(expr string) string { return "LOWER(" + expr + ")" }

func (postgresDialect) Configure(db *sql.DB, maxOpenConns int) {
	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
		db.SetMaxIdleConns(maxOpenConns)
	}
}
