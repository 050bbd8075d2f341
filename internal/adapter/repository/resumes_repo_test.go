package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"resume-builder/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "owner_id", "title", "document", "created_at", "updated_at"}

func newRepo(t *testing.T) (*ResumesRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewResumesRepo(db, nil), mock
}

func TestResumesRepo_Create(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	doc := model.New()
	doc.ID, doc.OwnerID, doc.Title = "11111111-1111-1111-1111-111111111111", "user-1", "Backend"
	doc.Contact.Name = "Ada"
	doc.CreatedAt, doc.UpdatedAt = &now, &now

	mock.ExpectExec("INSERT INTO resumes").
		WithArgs(doc.ID, "user-1", "Backend", sqlmock.AnyArg(), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResumesRepo_Get(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		body := []byte(`{"contact":{"name":"Ada"},"summary":"Engineer.","sections":[{"kind":"interests","items":["chess"]}]}`)
		mock.ExpectQuery("SELECT (.+) FROM resumes WHERE id = ?").
			WithArgs("id-1").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("id-1", "user-1", "Backend", body, now, now))

		doc, err := repo.Get(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, "id-1", doc.ID)
		assert.Equal(t, "user-1", doc.OwnerID)
		assert.Equal(t, "Backend", doc.Title)
		assert.Equal(t, "Ada", doc.Contact.Name)
		assert.Equal(t, []string{"chess"}, doc.Sections[0].Text)
		assert.Equal(t, now, *doc.CreatedAt)
	})

	t.Run("legacy shape", func(t *testing.T) {
		body := []byte(`{"name":"Ada","experiences":[{"role":"Dev","company":"A","points":["Built reports"]}]}`)
		mock.ExpectQuery("SELECT (.+) FROM resumes WHERE id = ?").
			WithArgs("id-2").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("id-2", "user-1", "", body, now, now))

		doc, err := repo.Get(ctx, "id-2")
		require.NoError(t, err)
		i := doc.Find(model.KindExperience)
		require.GreaterOrEqual(t, i, 0)
		assert.Equal(t, []string{"Built reports"}, doc.Sections[i].Experience[0].Bullets)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM resumes WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResumesRepo_List(t *testing.T) {
	repo, mock := newRepo(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM resumes ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("id-2", "u", "B", []byte(`{}`), now, now).
			AddRow("id-1", "u", "A", []byte(`not json`), now.Add(-time.Hour), now))

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "id-2", docs[0].ID)
	assert.Equal(t, "A", docs[1].Title)
	assert.Empty(t, docs[1].Sections)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResumesRepo_UpdateDelete(t *testing.T) {
	repo, mock := newRepo(t)
	ctx := context.Background()
	doc := model.New()
	doc.ID = "id-1"

	mock.ExpectExec("UPDATE resumes SET").
		WithArgs("id-1", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(ctx, doc))

	mock.ExpectExec("UPDATE resumes SET").
		WithArgs("id-1", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(ctx, doc), ErrNotFound)

	mock.ExpectExec("DELETE FROM resumes WHERE id = ?").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(ctx, "id-1"))

	mock.ExpectExec("DELETE FROM resumes WHERE id = ?").
		WithArgs("id-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, "id-1"), ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEncodeBody_StripsIdentity(t *testing.T) {
	now := time.Now()
	doc := model.New()
	doc.ID, doc.OwnerID, doc.CreatedAt = "x", "y", &now
	b, err := encodeBody(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"id"`)
	assert.NotContains(t, string(b), `"ownerId"`)
	assert.NotContains(t, string(b), `"createdAt"`)
}
