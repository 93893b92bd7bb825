package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"projdocs/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_libraries",
		SQL: `CREATE TABLE IF NOT EXISTS libraries (
  name       TEXT        PRIMARY KEY,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_library_fields",
		SQL: `CREATE TABLE IF NOT EXISTS library_fields (
  library  TEXT    NOT NULL REFERENCES libraries (name) ON DELETE CASCADE,
  name     TEXT    NOT NULL,
  type     TEXT    NOT NULL,
  required BOOLEAN NOT NULL DEFAULT false,
  PRIMARY KEY (library, name)
);`,
	},
	{
		Name: "create_index_library_fields_name_ci",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_library_fields_name_ci ON library_fields (library, lower(name));`,
	},
	{
		Name: "create_table_list_items",
		SQL: `CREATE TABLE IF NOT EXISTS list_items (
  id          BIGSERIAL   PRIMARY KEY,
  library     TEXT        NOT NULL REFERENCES libraries (name) ON DELETE CASCADE,
  fields      JSONB       NOT NULL DEFAULT '{}'::jsonb,
  file_ref    TEXT        UNIQUE,
  editor      TEXT,
  modified_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_list_items_library",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_list_items_library ON list_items (library);`,
	},
	{
		Name: "create_index_list_items_fields",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_list_items_fields ON list_items USING GIN (fields);`,
	},
	{
		Name: "create_table_file_checkouts",
		SQL: `CREATE TABLE IF NOT EXISTS file_checkouts (
  file_ref       TEXT        PRIMARY KEY REFERENCES list_items (file_ref) ON DELETE CASCADE,
  checked_out_by TEXT        NOT NULL,
  checked_out_at TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_table_file_versions",
		SQL: `CREATE TABLE IF NOT EXISTS file_versions (
  id         BIGSERIAL   PRIMARY KEY,
  file_ref   TEXT        NOT NULL REFERENCES list_items (file_ref) ON DELETE CASCADE,
  label      TEXT        NOT NULL,
  size       BIGINT      NOT NULL CHECK (size >= 0),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  created_by TEXT        NOT NULL,
  comment    TEXT        NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_index_file_versions_file_ref",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_file_versions_file_ref ON file_versions (file_ref, id);`,
	},
}

// EnsureMigrated checks if the 'list_items' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	log = logging.OrNop(log).Named("database")
	start := time.Now()

	log.Info("db_migration_check", zap.String("event", "db_migration_check"), zap.String("status", "starting"), zap.String("db_host", dbHost))

	var exists bool
	query := "SELECT to_regclass('public.list_items') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("event", "db_migration_failed"),
			zap.String("status", "error"),
			zap.String("db_host", dbHost),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			zap.String("event", "db_migration_skip"),
			zap.String("status", "success"),
			zap.String("db_host", dbHost),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("event", "db_migration_failed"),
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("db_host", dbHost),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
				zap.Error(err),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug("db_migration_step",
			zap.String("event", "db_migration_step"),
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("event", "db_migration_success"),
		zap.String("status", "success"),
		zap.String("db_host", dbHost),
		zap.Int("steps", len(steps)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
