package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ErrNoToken is returned when a call needs authentication but no token
// became available within the configured wait.
var ErrNoToken = errors.New("user authentication token not found")

// TokenSource supplies the bearer token for authenticated calls. Token
// blocks until a token is available or the context is done, so calls
// issued before the session has rehydrated wait instead of firing
// unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed-token source, used by tests and one-off tools.
type StaticToken string

func (t StaticToken) Token(ctx context.Context) (string, error) {
	if t == "" {
		return "", ErrNoToken
	}
	return string(t), nil
}

// APIError is a failure reported by the platform API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%d): request failed", e.StatusCode)
}

// envelope is the platform's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Config holds API client configuration
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	TokenWaitTimeout time.Duration
}

// Client is a typed HTTP client for the platform REST API.
type Client struct {
	baseURL   string
	client    *http.Client
	tokens    TokenSource
	tokenWait time.Duration
	logger    *zap.Logger
}

// NewClient creates a new API client. tokens may be nil for a client
// that only performs public calls.
func NewClient(cfg Config, tokens TokenSource, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tokenWait := cfg.TokenWaitTimeout
	if tokenWait <= 0 {
		tokenWait = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		client:    &http.Client{Timeout: timeout},
		tokens:    tokens,
		tokenWait: tokenWait,
		logger:    logger,
	}
}

// reqOptions carries the per-call options bag.
type reqOptions struct {
	query   url.Values
	headers http.Header
	auth    bool
}

// do issues a request and unwraps the platform envelope, returning the
// raw data payload. HTTP and network errors propagate untouched; there
// are no retries here.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, opts reqOptions) (json.RawMessage, error) {
	reqURL := c.baseURL + path
	if len(opts.query) > 0 {
		reqURL += "?" + opts.query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, values := range opts.headers {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	// Attach the bearer token unless the caller already set one.
	if opts.auth && req.Header.Get("Authorization") == "" {
		if c.tokens == nil {
			return nil, ErrNoToken
		}
		waitCtx, cancel := context.WithTimeout(ctx, c.tokenWait)
		token, err := c.tokens.Token(waitCtx)
		cancel()
		if err != nil {
			return nil, ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(bodyBytes, &env); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &APIError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		c.logger.Debug("api request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", env.Message))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}

	return env.Data, nil
}

// get issues a GET, authenticated when auth is set, and decodes data
// into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, auth bool, out interface{}) error {
	data, err := c.do(ctx, http.MethodGet, path, nil, reqOptions{query: query, auth: auth})
	if err != nil {
		return err
	}
	return decode(data, out)
}

// post issues a POST, authenticated when auth is set, and decodes data
// into out (out may be nil).
func (c *Client) post(ctx context.Context, path string, body interface{}, auth bool, out interface{}) error {
	data, err := c.do(ctx, http.MethodPost, path, body, reqOptions{auth: auth})
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data json.RawMessage, out interface{}) error {
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
