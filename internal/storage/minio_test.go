package storage

import (
	"context"
	"testing"

	"resume-builder/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
	}{
		{"no endpoint", config.MinIOConfig{AccessKey: "a", SecretKey: "s", Bucket: "b"}},
		{"no credentials", config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "b"}},
		{"no bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}
