package localstore

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Backend holds the raw collection blob under a single key.
type Backend interface {
	// Load returns nil when nothing is stored yet.
	Load(ctx context.Context) ([]byte, error)
	Store(ctx context.Context, blob []byte) error
}

// RedisBackend keeps the collection in one Redis string.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend stores under prefix+"resumes". Prefix may be empty.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	return &RedisBackend{client: client, key: prefix + "resumes"}
}

func (r *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	b, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *RedisBackend) Store(ctx context.Context, blob []byte) error {
	return r.client.Set(ctx, r.key, blob, 0).Err()
}

// MemoryBackend is an in-process backend for tests and single-node use.
type MemoryBackend struct {
	mu   sync.RWMutex
	blob []byte
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (m *MemoryBackend) Load(context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.blob == nil {
		return nil, nil
	}
	return append([]byte(nil), m.blob...), nil
}

func (m *MemoryBackend) Store(_ context.Context, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blob = append([]byte(nil), blob...)
	return nil
}
