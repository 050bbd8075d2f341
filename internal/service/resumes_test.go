package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/auth"
	"resume-builder/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context) ([]model.Document, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id string) (model.Document, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Document), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, doc model.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockRepository) Update(ctx context.Context, doc model.Document) error {
	return m.Called(ctx, doc).Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

const docID = "11111111-1111-1111-1111-111111111111"

var (
	owner    = auth.Identity{Subject: "owner-1"}
	stranger = auth.Identity{Subject: "someone-else"}
)

func stored() model.Document {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	doc := model.New()
	doc.ID, doc.OwnerID = docID, owner.Subject
	doc.CreatedAt, doc.UpdatedAt = &created, &created
	return doc
}

func TestResumeService_Create(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("Create", ctx, mock.MatchedBy(func(d model.Document) bool {
		return d.ID != "" && d.OwnerID == owner.Subject && d.CreatedAt != nil
	})).Return(nil)

	in := model.New()
	in.Contact.Name = "Ada"
	out, err := NewResumeService(repo, nil).Create(ctx, owner, in)
	require.NoError(t, err)
	assert.Equal(t, owner.Subject, out.OwnerID)
	assert.Len(t, out.ID, 36)
	assert.Equal(t, "Ada", out.Contact.Name)
	repo.AssertExpectations(t)
}

func TestResumeService_Create_Anonymous(t *testing.T) {
	repo := new(MockRepository)
	_, err := NewResumeService(repo, nil).Create(context.Background(), auth.Anonymous, model.New())
	assert.ErrorIs(t, err, ErrUnauthorized)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResumeService_Create_Invalid(t *testing.T) {
	repo := new(MockRepository)
	doc := model.New()
	doc.Title = strings.Repeat("x", 201)
	_, err := NewResumeService(repo, nil).Create(context.Background(), owner, doc)
	assert.ErrorIs(t, err, model.ErrInvalidDocument)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestResumeService_Get(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("Get", ctx, docID).Return(stored(), nil)
	repo.On("Get", ctx, "22222222-2222-2222-2222-222222222222").Return(model.Document{}, repository.ErrNotFound)
	svc := NewResumeService(repo, nil)

	doc, err := svc.Get(ctx, docID)
	require.NoError(t, err)
	assert.Equal(t, docID, doc.ID)

	_, err = svc.Get(ctx, "22222222-2222-2222-2222-222222222222")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Get(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResumeService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("Get", ctx, docID).Return(stored(), nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)
	svc := NewResumeService(repo, nil)

	in := model.New()
	in.ID, in.OwnerID = "forged", "forged"
	in.Summary = "New"
	out, err := svc.Update(ctx, owner, docID, in)
	require.NoError(t, err)
	assert.Equal(t, docID, out.ID)
	assert.Equal(t, owner.Subject, out.OwnerID)
	assert.Equal(t, "New", out.Summary)
	assert.Equal(t, stored().CreatedAt, out.CreatedAt)
	assert.True(t, out.UpdatedAt.After(*out.CreatedAt))

	_, err = svc.Update(ctx, stranger, docID, in)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.Update(ctx, auth.Anonymous, docID, in)
	assert.ErrorIs(t, err, ErrUnauthorized)
	repo.AssertNumberOfCalls(t, "Update", 1)
}

func TestResumeService_Delete(t *testing.T) {
	ctx := context.Background()
	missing := "33333333-3333-3333-3333-333333333333"
	repo := new(MockRepository)
	repo.On("Get", ctx, docID).Return(stored(), nil)
	repo.On("Get", ctx, missing).Return(model.Document{}, repository.ErrNotFound)
	repo.On("Delete", ctx, docID).Return(nil)
	svc := NewResumeService(repo, nil)

	assert.ErrorIs(t, svc.Delete(ctx, stranger, docID), ErrUnauthorized)
	assert.ErrorIs(t, svc.Delete(ctx, owner, missing), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, owner, docID))
	repo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestResumeService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("List", ctx).Return(nil, errors.New("db down"))
	_, err := NewResumeService(repo, nil).List(ctx)
	assert.Error(t, err)
}
