package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"time"
)

// Artifact is the finished export handed to a Saver.
type Artifact struct {
	JobID       string
	Name        string
	ContentType string
	Data        []byte
}

// Saver persists an artifact and returns where it went.
type Saver interface {
	Save(ctx context.Context, a Artifact) (string, error)
}

// AttachmentSaver leaves the artifact in the Result; the HTTP handler streams
// it as the response body.
type AttachmentSaver struct{}

func (AttachmentSaver) Save(_ context.Context, a Artifact) (string, error) {
	if len(a.Data) == 0 {
		return "", fmt.Errorf("empty artifact %q", a.Name)
	}
	return "attachment:" + a.Name, nil
}

// DirSaver writes artifacts into a directory.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(_ context.Context, a Artifact) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}
	p := filepath.Join(s.Dir, filepath.Base(a.Name))
	if err := os.WriteFile(p, a.Data, 0o644); err != nil {
		return "", err
	}
	return p, nil
}

// ObjectStore is the subset of the object storage client the saver needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	PresignedGetURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ObjectSaver uploads artifacts under Prefix and returns a presigned URL.
type ObjectSaver struct {
	Store  ObjectStore
	Prefix string
	Expiry time.Duration
}

func (s ObjectSaver) Save(ctx context.Context, a Artifact) (string, error) {
	key := path.Join(s.Prefix, a.JobID, path.Base(a.Name))
	if err := s.Store.Put(ctx, key, bytes.NewReader(a.Data), int64(len(a.Data)), a.ContentType); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	expiry := s.Expiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	u, err := s.Store.PresignedGetURL(ctx, key, expiry)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return u, nil
}
