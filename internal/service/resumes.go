package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/auth"
	"resume-builder/internal/model"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("resume not found")
)

// Repository is the storage the service needs.
type Repository interface {
	List(ctx context.Context) ([]model.Document, error)
	Get(ctx context.Context, id string) (model.Document, error)
	Create(ctx context.Context, doc model.Document) error
	Update(ctx context.Context, doc model.Document) error
	Delete(ctx context.Context, id string) error
}

// ResumeService applies ownership rules on top of the repository. Reads are
// public; writes need a signed-in owner.
type ResumeService struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func NewResumeService(repo Repository, logger *slog.Logger) *ResumeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResumeService{repo: repo, log: logger, now: func() time.Time { return time.Now().UTC() }}
}

func (s *ResumeService) List(ctx context.Context) ([]model.Document, error) {
	return s.repo.List(ctx)
}

func (s *ResumeService) Get(ctx context.Context, id string) (model.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return model.Document{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	doc, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return doc, err
}

// Create stores doc under a new id owned by who.
func (s *ResumeService) Create(ctx context.Context, who auth.Identity, doc model.Document) (model.Document, error) {
	if who.IsAnonymous() {
		return model.Document{}, ErrUnauthorized
	}
	doc = model.Normalize(doc)
	if err := model.Validate(doc); err != nil {
		return model.Document{}, err
	}
	now := s.now()
	doc.ID = uuid.NewString()
	doc.OwnerID = who.Subject
	doc.CreatedAt, doc.UpdatedAt = &now, &now
	if err := s.repo.Create(ctx, doc); err != nil {
		return model.Document{}, err
	}
	s.log.Info("resumes: created", "id", doc.ID, "owner", doc.OwnerID)
	return doc, nil
}

// Update replaces the stored document. Identity fields of doc are ignored.
func (s *ResumeService) Update(ctx context.Context, who auth.Identity, id string, doc model.Document) (model.Document, error) {
	existing, err := s.owned(ctx, who, id)
	if err != nil {
		return model.Document{}, err
	}
	doc = model.Normalize(doc)
	if err := model.Validate(doc); err != nil {
		return model.Document{}, err
	}
	now := s.now()
	doc.ID, doc.OwnerID = existing.ID, existing.OwnerID
	doc.CreatedAt, doc.UpdatedAt = existing.CreatedAt, &now
	if err := s.repo.Update(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return model.Document{}, err
	}
	return doc, nil
}

func (s *ResumeService) Delete(ctx context.Context, who auth.Identity, id string) error {
	if _, err := s.owned(ctx, who, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return err
	}
	s.log.Info("resumes: deleted", "id", id, "owner", who.Subject)
	return nil
}

// owned loads id and checks that who may write it.
func (s *ResumeService) owned(ctx context.Context, who auth.Identity, id string) (model.Document, error) {
	if who.IsAnonymous() {
		return model.Document{}, ErrUnauthorized
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return model.Document{}, err
	}
	if existing.OwnerID != who.Subject {
		return model.Document{}, fmt.Errorf("%w: %s is not the owner", ErrUnauthorized, who.Subject)
	}
	return existing, nil
}
