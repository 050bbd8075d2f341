package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"resume-builder/pkg/ai/formatters"
)

// Hint tells the model which part of a resume the text belongs to.
type Hint string

const (
	HintJobTitle   Hint = "jobTitle"
	HintSummary    Hint = "summary"
	HintExperience Hint = "experience"
	HintProject    Hint = "project"
	HintGeneric    Hint = "generic"
)

// ParseHint maps a client supplied hint to a known one. Unknown or empty
// values fall back to HintGeneric.
func ParseHint(s string) Hint {
	switch h := Hint(strings.TrimSpace(s)); h {
	case HintJobTitle, HintSummary, HintExperience, HintProject:
		return h
	}
	return HintGeneric
}

// ErrUnavailable wraps every failure to obtain an improvement. Improve still
// returns the original text alongside it.
var ErrUnavailable = errors.New("ai: text improvement unavailable")

const (
	DefaultBaseURL     = "https://api.openai.com"
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.6
)

// Client calls an OpenAI compatible chat completion API to rewrite short
// pieces of resume text.
type Client struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Language    string
	HTTP        *http.Client
	Logger      *slog.Logger

	attempts int
	backoff  time.Duration
}

type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Language    string
	Timeout     time.Duration
}

func NewClient(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL:     strings.TrimRight(opts.BaseURL, "/"),
		APIKey:      opts.APIKey,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		Language:    opts.Language,
		HTTP:        &http.Client{Timeout: opts.Timeout},
		Logger:      logger,
		attempts:    3,
		backoff:     time.Second,
	}
}

// Formatter returns the prompt formatter for a hint.
func (c *Client) Formatter(h Hint) formatters.Formatter {
	switch h {
	case HintJobTitle:
		return formatters.NewProfileFormatter(c.Language)
	case HintSummary:
		return formatters.NewSummaryFormatter(c.Language)
	case HintExperience:
		return formatters.NewExperienceFormatter(c.Language)
	case HintProject:
		return formatters.NewProjectFormatter(c.Language)
	}
	return formatters.NewGenericFormatter(c.Language)
}

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []formatters.Message `json:"messages"`
	Temperature float64              `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message formatters.Message `json:"message"`
	} `json:"choices"`
}

// Improve asks the model for a better version of text. On any failure it
// returns text unchanged together with an error wrapping ErrUnavailable.
func (c *Client) Improve(ctx context.Context, text string, hint Hint) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return text, fmt.Errorf("%w: api key not configured", ErrUnavailable)
	}
	f := c.Formatter(hint)
	b, err := json.Marshal(chatRequest{Model: c.Model, Messages: f.Messages(text), Temperature: c.Temperature})
	if err != nil {
		return text, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	start := time.Now()
	resp, err := c.doPostWithRetry(ctx, "/v1/chat/completions", b)
	if err != nil {
		c.Logger.Warn("ai: completion request failed", "hint", hint, "error", err)
		return text, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return text, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.Logger.Warn("ai: completion returned non-200", "hint", hint, "status", resp.StatusCode)
		return text, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(rb, &cr); err != nil {
		return text, fmt.Errorf("%w: decode completion: %v", ErrUnavailable, err)
	}
	if len(cr.Choices) == 0 {
		return text, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	out := f.Clean(cr.Choices[0].Message.Content)
	if out == "" {
		return text, fmt.Errorf("%w: empty completion", ErrUnavailable)
	}
	c.Logger.Debug("ai: text improved", "hint", hint, "in_len", len(text), "out_len", len(out), "duration", time.Since(start))
	return out, nil
}

// doPostWithRetry performs an HTTP POST to the given path with retry/backoff.
// Transport errors, 429 and 5xx responses are retried.
func (c *Client) doPostWithRetry(ctx context.Context, path string, body []byte) (*http.Response, error) {
	attempts := c.attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.APIKey)

		resp, err := c.HTTP.Do(req)
		switch {
		case err != nil:
			lastErr = err
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			if i == attempts-1 {
				return resp, nil
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		default:
			return resp, nil
		}
		// exponential backoff before retrying
		if i < attempts-1 {
			backoff := time.Duration(1<<i) * c.backoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
