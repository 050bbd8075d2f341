package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url, key string) *Client {
	c := NewClient(Options{BaseURL: url, APIKey: key}, nil)
	c.backoff = time.Millisecond
	return c
}

func completion(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
	return string(b)
}

func TestParseHint(t *testing.T) {
	assert.Equal(t, HintJobTitle, ParseHint("jobTitle"))
	assert.Equal(t, HintProject, ParseHint(" project "))
	assert.Equal(t, HintGeneric, ParseHint(""))
	assert.Equal(t, HintGeneric, ParseHint("poem"))
}

func TestImprove_Success(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completion("\"- Cut report build time by 40%\"")))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, "sk-test").Improve(context.Background(), "Built reports", HintExperience)
	require.NoError(t, err)
	assert.Equal(t, "Cut report build time by 40%", out)

	assert.Equal(t, DefaultModel, got.Model)
	assert.InDelta(t, 0.6, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[1].Content, "measurable, action-oriented, and ATS-optimized")
	assert.Contains(t, got.Messages[1].Content, `"Built reports"`)
}

func TestImprove_MissingKey(t *testing.T) {
	out, err := newTestClient("http://127.0.0.1:1", "").Improve(context.Background(), "Built reports", HintGeneric)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "Built reports", out)
}

func TestImprove_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(completion("Senior Platform Engineer.")))
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL, "k").Improve(context.Background(), "dev", HintJobTitle)
	require.NoError(t, err)
	assert.Equal(t, "Senior Platform Engineer", out)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestImprove_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"always 500", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"bad request", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) }},
		{"no choices", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"choices":[]}`)) }},
		{"blank content", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(completion("  \"\" "))) }},
		{"not json", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			out, err := newTestClient(srv.URL, "k").Improve(context.Background(), "Built reports", HintSummary)
			assert.ErrorIs(t, err, ErrUnavailable)
			assert.Equal(t, "Built reports", out)
		})
	}
}

func TestImprove_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, "k")
	c.backoff = time.Hour
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out, err := c.Improve(ctx, "text", HintGeneric)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "text", out)
}
