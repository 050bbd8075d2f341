package repository

import (
	"context"
	"database/sql"

	"resume-builder/internal/domain"
)

// ExportsRepo records export runs.
type ExportsRepo struct {
	db *sql.DB
}

func NewExportsRepo(db *sql.DB) *ExportsRepo {
	return &ExportsRepo{db: db}
}

// Save upserts the job row. A nil database makes this a no-op so the export
// pipeline keeps working without persistence.
func (r *ExportsRepo) Save(ctx context.Context, j *domain.ExportJob) error {
	if r.db == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO export_jobs (id, resume_id, owner_id, state, file_name, pages, bytes, location, message, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, pages = EXCLUDED.pages, bytes = EXCLUDED.bytes, location = EXCLUDED.location, message = EXCLUDED.message, updated_at = EXCLUDED.updated_at`,
		j.ID, j.ResumeID, j.OwnerID, j.State, j.FileName, j.Pages, j.Bytes, j.Location, j.Message, j.CreatedAt, j.UpdatedAt)
	return err
}

// ListByResume returns the runs for one resume, newest first.
func (r *ExportsRepo) ListByResume(ctx context.Context, resumeID string) ([]domain.ExportJob, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, resume_id, owner_id, state, file_name, pages, bytes, location, message, created_at, updated_at
		FROM export_jobs WHERE resume_id = $1 ORDER BY created_at DESC`, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.ExportJob, 0)
	for rows.Next() {
		var j domain.ExportJob
		if err := rows.Scan(&j.ID, &j.ResumeID, &j.OwnerID, &j.State, &j.FileName, &j.Pages, &j.Bytes,
			&j.Location, &j.Message, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
