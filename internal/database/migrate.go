package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

var requiredTables = []string{
	"content_nodes",
	"registry_records",
}

func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing tables; applying initial migration")
		if _, err := db.Pool.Exec(ctx, initialMigrationSQL); err != nil {
			return fmt.Errorf("apply initial migration: %w", err)
		}

		exists, err = db.hasAllRequiredTables(ctx)
		if err != nil {
			return fmt.Errorf("re-check tables after migration: %w", err)
		}

		if !exists {
			return fmt.Errorf("schema initialization incomplete: required tables are still missing")
		}
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	for _, table := range requiredTables {
		var exists bool
		err := db.Pool.QueryRow(ctx,
			`SELECT EXISTS (
			     SELECT 1 FROM information_schema.tables
			     WHERE table_schema = 'public' AND table_name = $1
			 )`, table).Scan(&exists)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}

	return true, nil
}
