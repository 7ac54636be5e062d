package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"todo-list/internal/domain"
	"todo-list/internal/errors"
	"todo-list/internal/repository/sqldb/migrations"
)

// OrderPlanner receives an owner's current positions, sorted by order then
// id, and returns the slots whose order must change.
type OrderPlanner func(current []domain.OrderSlot) ([]domain.OrderSlot, error)

// TaskMutator edits a loaded task in place inside the update transaction.
type TaskMutator func(task *domain.Task) error

// Repository defines the task store. Every method is scoped to one owner;
// tasks of other owners behave as if they did not exist.
type Repository interface {
	// CreateTask inserts task, assigning it the next order for its owner.
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, ownerID, id string) (*domain.Task, error)
	// UpdateTask loads a task, applies mutate and persists the result atomically.
	UpdateTask(ctx context.Context, ownerID, id string, mutate TaskMutator) (*domain.Task, error)
	DeleteTask(ctx context.Context, ownerID, id string) error

	// UpdateStatusBatch sets status on the owned tasks among ids and
	// returns how many matched.
	UpdateStatusBatch(ctx context.Context, ownerID string, ids []string, status domain.Status, now time.Time) (int, error)
	// DeleteBatch deletes the owned tasks among ids and returns how many
	// were removed.
	DeleteBatch(ctx context.Context, ownerID string, ids []string) (int, error)

	// QueryTasks returns one page of matching tasks and the total match count.
	QueryTasks(ctx context.Context, ownerID string, q domain.TaskQuery) ([]domain.Task, int, error)

	// ReorderTasks applies plan to the owner's positions in one transaction
	// and returns the number of tasks whose order changed.
	ReorderTasks(ctx context.Context, ownerID string, plan OrderPlanner) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

// Options configures the SQL store.
type Options struct {
	Driver       string
	DSN          string
	QueryTimeout time.Duration
	WriteTimeout time.Duration
	MaxOpenConns int
	// SkipMigrations leaves the schema untouched on open.
	SkipMigrations bool
}

func (o *Options) setDefaults() {
	if o.QueryTimeout <= 0 {
		o.QueryTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
}

// Store implements Repository on database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	opts    Options
	now     func() time.Time
}

var _ Repository = (*Store)(nil)

// New opens the database described by opts and applies pending migrations.
func New(ctx context.Context, opts Options) (*Store, error) {
	opts.setDefaults()

	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, errors.NewInvalidInputError("database.driver", opts.Driver, err.Error())
	}

	dsn := opts.DSN
	if dialect.Name() == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	dialect.Configure(db, opts.MaxOpenConns)

	store := &Store{db: db, dialect: dialect, opts: opts, now: time.Now}

	if !opts.SkipMigrations {
		migrateCtx, cancel := context.WithTimeout(ctx, 4*opts.WriteTimeout)
		defer cancel()
		if err := migrations.RunMigrations(migrateCtx, db, dialect.Rebind); err != nil {
			db.Close()
			return nil, errors.NewDatabaseError("run migrations", err)
		}
	}

	return store, nil
}

// NewSQLite opens a sqlite store at path with default timeouts.
func NewSQLite(ctx context.Context, path string) (*Store, error) {
	return New(ctx, Options{Driver: "sqlite", DSN: path})
}

// DB exposes the underlying handle for maintenance commands.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the store's SQL dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable within the query timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return HandleDatabaseError("ping", err)
	}
	return nil
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

// inOwnerTx runs fn in a write transaction holding the owner's lock.
func (s *Store) inOwnerTx(ctx context.Context, operation, ownerID string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.WriteTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return HandleDatabaseError(operation, err)
	}
	defer tx.Rollback()

	if err := s.dialect.LockOwner(ctx, tx, ownerID); err != nil {
		return HandleDatabaseError(fmt.Sprintf("%s: lock owner", operation), err)
	}

	if err := fn(ctx, tx); err != nil {
		return HandleDatabaseError(operation, err)
	}

	if err := tx.Commit(); err != nil {
		return HandleDatabaseError(fmt.Sprintf("%s: commit", operation), err)
	}
	return nil
}

// inReadTx runs fn in a transaction that sees one consistent snapshot.
func (s *Store) inReadTx(ctx context.Context, operation string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.QueryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, s.dialect.ReadTxOptions())
	if err != nil {
		return HandleDatabaseError(operation, err)
	}
	defer tx.Rollback()

	if err := fn(ctx, tx); err != nil {
		return HandleDatabaseError(operation, err)
	}
	if err := tx.Commit(); err != nil {
		return HandleDatabaseError(operation, err)
	}
	return nil
}
