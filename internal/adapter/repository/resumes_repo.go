package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"resume-builder/internal/model"
)

// ResumesRepo stores resume documents in PostgreSQL. The document column
// holds the encoded document; identity and timestamps live in their own
// columns and win over whatever the JSON says.
type ResumesRepo struct {
	db  *sql.DB
	log *slog.Logger
}

func NewResumesRepo(db *sql.DB, logger *slog.Logger) *ResumesRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResumesRepo{db: db, log: logger}
}

const resumeColumns = `id, owner_id, title, document, created_at, updated_at`

func (r *ResumesRepo) List(ctx context.Context) ([]model.Document, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+resumeColumns+` FROM resumes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Document, 0)
	for rows.Next() {
		d, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ResumesRepo) Get(ctx context.Context, id string) (model.Document, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id)
	d, err := r.scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	return d, err
}

// Create inserts doc. ID, OwnerID and CreatedAt must already be set.
func (r *ResumesRepo) Create(ctx context.Context, doc model.Document) error {
	body, err := encodeBody(doc)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO resumes (id, owner_id, title, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		doc.ID, doc.OwnerID, doc.Title, body, timeOrNow(doc.CreatedAt), timeOrNow(doc.UpdatedAt))
	return err
}

func (r *ResumesRepo) Update(ctx context.Context, doc model.Document) error {
	body, err := encodeBody(doc)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE resumes SET title = $2, document = $3, updated_at = $4 WHERE id = $1`,
		doc.ID, doc.Title, body, timeOrNow(doc.UpdatedAt))
	if err != nil {
		return err
	}
	return expectRow(res, doc.ID)
}

func (r *ResumesRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return expectRow(res, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *ResumesRepo) scan(s scanner) (model.Document, error) {
	var (
		id, owner, title string
		body             []byte
		created, updated time.Time
	)
	if err := s.Scan(&id, &owner, &title, &body, &created, &updated); err != nil {
		return model.Document{}, err
	}
	doc, err := model.DecodeAny(body)
	if err != nil {
		// A row written by an older client is still listed, just empty.
		r.log.Warn("resumes: undecodable document column", "id", id, "error", err)
		doc = model.New()
	}
	doc.ID, doc.OwnerID, doc.Title = id, owner, title
	doc.CreatedAt, doc.UpdatedAt = &created, &updated
	return doc, nil
}

func encodeBody(doc model.Document) ([]byte, error) {
	doc.ID, doc.OwnerID, doc.CreatedAt, doc.UpdatedAt = "", "", nil, nil
	return model.Encode(doc)
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("resume %s: %w", id, ErrNotFound)
	}
	return nil
}

func timeOrNow(t *time.Time) time.Time {
	if t == nil {
		return time.Now().UTC()
	}
	return *t
}
