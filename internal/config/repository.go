package config

import (
	"context"
	"fmt"
	"os"

	"todo-list/internal/repository/sqldb"
)

// StoreOptions maps the database section onto store options. For sqlite
// without an explicit DSN the database lives at Dir/Filename.
func (c *Config) StoreOptions() sqldb.Options {
	dsn := c.Database.DSN
	if c.Database.Driver == "sqlite" && dsn == "" {
		dsn = c.GetDatabasePath()
	}
	return sqldb.Options{
		Driver:       c.Database.Driver,
		DSN:          dsn,
		QueryTimeout: c.GetQueryTimeout(),
		WriteTimeout: c.GetWriteTimeout(),
		MaxOpenConns: c.Database.MaxOpenConns,
	}
}

// OpenStore creates the configured store, making the sqlite directory first
// when needed, and applies pending migrations.
func OpenStore(ctx context.Context, config *Config) (*sqldb.Store, error) {
	return openStore(ctx, config, false)
}

// OpenStoreWithoutMigrations opens the store leaving the schema untouched,
// for the migrate command.
func OpenStoreWithoutMigrations(ctx context.Context, config *Config) (*sqldb.Store, error) {
	return openStore(ctx, config, true)
}

func openStore(ctx context.Context, config *Config, skipMigrations bool) (*sqldb.Store, error) {
	if config.Database.Driver == "sqlite" && config.Database.DSN == "" {
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	opts := config.StoreOptions()
	opts.SkipMigrations = skipMigrations
	store, err := sqldb.New(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}
