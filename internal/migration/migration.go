package migration

import (
	"context"

	"reactorviz/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

var _ Migrator = (*MigrationRunner)(nil)

// MigrationRunner creates the publication schema. The DDL sticks to types
// both PostgreSQL and SQLite accept.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createImportRunsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create import_runs table", err)
	}

	if err := r.createReactorEntriesTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create reactor_entries table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createImportRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS import_runs (
			id VARCHAR(36) PRIMARY KEY,
			source TEXT NOT NULL,
			reactor_count INTEGER NOT NULL,
			fingerprint VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createReactorEntriesTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS reactor_entries (
			run_id VARCHAR(36) NOT NULL REFERENCES import_runs(id) ON DELETE CASCADE,
			source_row INTEGER NOT NULL,
			country TEXT NOT NULL,
			name TEXT NOT NULL,
			block TEXT NOT NULL DEFAULT '',
			net_capacity_mw DOUBLE PRECISION,
			construction_start DATE,
			grid_sync DATE,
			commercial_operation DATE,
			shutdown DATE,
			abandoned DATE,
			status VARCHAR(32) NOT NULL,
			raw_status TEXT NOT NULL DEFAULT '',
			closing_age DOUBLE PRECISION,
			construction_time DOUBLE PRECISION,
			construction_aborted_time DOUBLE PRECISION,
			operational_age DOUBLE PRECISION,
			PRIMARY KEY (run_id, source_row)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_import_runs_created_at ON import_runs (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_reactor_entries_country ON reactor_entries (run_id, country)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
