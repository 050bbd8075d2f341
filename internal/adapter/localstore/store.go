package localstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"resume-builder/internal/model"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("local resume not found")

// legacyIDSpace derives stable ids for stored entries that never had one.
var legacyIDSpace = uuid.MustParse("6f0e8a52-3f7b-4c55-9a4e-2f1f3b8c9d10")

// Store is the fallback resume store for sessions without a backend
// identity. The collection is a JSON array of documents, newest first.
// There is no ownership check.
type Store struct {
	backend Backend
	log     *slog.Logger
	mu      sync.Mutex
}

func New(b Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: b, log: logger}
}

func (s *Store) List(ctx context.Context) ([]model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (model.Document, error) {
	docs, err := s.List(ctx)
	if err != nil {
		return model.Document{}, err
	}
	if i := indexOf(docs, id); i >= 0 {
		return docs[i], nil
	}
	return model.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Create prepends doc with a fresh id.
func (s *Store) Create(ctx context.Context, doc model.Document) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load(ctx)
	if err != nil {
		return model.Document{}, err
	}
	doc = model.Normalize(doc)
	doc.ID = uuid.NewString()
	doc.OwnerID = ""
	if err := s.save(ctx, append([]model.Document{doc}, docs...)); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

func (s *Store) Update(ctx context.Context, id string, doc model.Document) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load(ctx)
	if err != nil {
		return model.Document{}, err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return model.Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	doc = model.Normalize(doc)
	doc.ID, doc.OwnerID = id, ""
	docs[i] = doc
	if err := s.save(ctx, docs); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, err := s.load(ctx)
	if err != nil {
		return err
	}
	i := indexOf(docs, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.save(ctx, append(docs[:i], docs[i+1:]...))
}

// load decodes the collection. A corrupt blob reads as empty and a single
// undecodable entry is skipped; both are logged.
func (s *Store) load(ctx context.Context) ([]model.Document, error) {
	blob, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Document, 0)
	blob = bytes.TrimSpace(blob)
	if len(blob) == 0 {
		return out, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(blob, &entries); err != nil {
		var byID map[string]json.RawMessage
		if err2 := json.Unmarshal(blob, &byID); err2 != nil {
			s.log.Warn("localstore: corrupt collection, treating as empty", "error", err)
			return out, nil
		}
		for _, k := range slices.Sorted(maps.Keys(byID)) {
			entries = append(entries, byID[k])
		}
	}
	for i, raw := range entries {
		doc, err := model.DecodeAny(raw)
		if err != nil {
			s.log.Warn("localstore: skipping undecodable entry", "index", i, "error", err)
			continue
		}
		if doc.ID == "" {
			doc.ID = uuid.NewSHA1(legacyIDSpace, raw).String()
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, docs []model.Document) error {
	entries := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		b, err := model.Encode(d)
		if err != nil {
			return err
		}
		entries = append(entries, b)
	}
	blob, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return s.backend.Store(ctx, blob)
}

func indexOf(docs []model.Document, id string) int {
	for i, d := range docs {
		if d.ID == id {
			return i
		}
	}
	return -1
}
