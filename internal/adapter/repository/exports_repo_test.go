package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"resume-builder/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportsRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	rid := uuid.New()
	j := &domain.ExportJob{ID: uuid.New(), ResumeID: &rid, OwnerID: "u", State: "saved", FileName: "Ada.pdf",
		Pages: 2, Bytes: 1024, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec("INSERT INTO export_jobs (.+) ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs(j.ID, rid, "u", "saved", "Ada.pdf", 2, 1024, "", "", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewExportsRepo(db).Save(context.Background(), j))

	mock.ExpectExec("INSERT INTO export_jobs").WillReturnError(errors.New("db down"))
	assert.Error(t, NewExportsRepo(db).Save(context.Background(), j))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportsRepo_NilDB(t *testing.T) {
	assert.NoError(t, NewExportsRepo(nil).Save(context.Background(), &domain.ExportJob{}))
}

func TestExportsRepo_ListByResume(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	id := uuid.New()
	mock.ExpectQuery("SELECT (.+) FROM export_jobs WHERE resume_id = ?").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "resume_id", "owner_id", "state", "file_name", "pages", "bytes", "location", "message", "created_at", "updated_at"}).
			AddRow(id.String(), nil, "u", "failed", "resume.pdf", 0, 0, "", "capture failed", now, now))

	jobs, err := NewExportsRepo(db).ListByResume(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, id, jobs[0].ID)
	assert.Nil(t, jobs[0].ResumeID)
	assert.Equal(t, "failed", jobs[0].State)
	assert.NoError(t, mock.ExpectationsWereMet())
}
