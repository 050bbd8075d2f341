package migration

import (
	"context"
	"database/sql"
	"log/slog"
)

// Migration represents a database migration. Every step is idempotent.
type Migration struct {
	Name string
	SQL  string
}

var migrations = []Migration{
	{
		Name: "create_resumes",
		SQL: `CREATE TABLE IF NOT EXISTS resumes (
			id UUID PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			document JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "index_resumes_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS resumes_created_at_idx ON resumes (created_at DESC)`,
	},
	{
		Name: "create_export_jobs",
		SQL: `CREATE TABLE IF NOT EXISTS export_jobs (
			id UUID PRIMARY KEY,
			resume_id UUID NULL,
			owner_id TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL,
			file_name TEXT NOT NULL,
			pages INT NOT NULL DEFAULT 0,
			bytes INT NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "index_export_jobs_resume_id",
		SQL:  `CREATE INDEX IF NOT EXISTS export_jobs_resume_id_idx ON export_jobs (resume_id)`,
	},
}

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	logger.Info("Starting database migrations")

	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.SQL); err != nil {
			logger.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		logger.Info("Migration completed", "name", m.Name)
	}

	logger.Info("All migrations completed successfully")
	return nil
}
