// Package remote talks to the hosted backend: auth, task rows, session rows
// and the profile. Every call carries the project key and, once signed in,
// the user's bearer token. Calls are bounded by the client timeout.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/MAYANKpandey14/do-it-with-ease/internal/errors"
	"github.com/MAYANKpandey14/do-it-with-ease/internal/model"
)

const defaultTimeout = 10 * time.Second

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	http    *http.Client
	logger  *zap.Logger

	mu    sync.RWMutex
	token string
	user  *model.User
}

// StatusError is a non-2xx response decoded from the error envelope.
type StatusError struct {
	Status  int
	Code    string
	Message string
	Details json.RawMessage
}

func (e *StatusError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("status %d %s: %s", e.Status, e.Code, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
}

func New(opts Options) *Client {
	c := &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
		logger:  opts.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *Client) Tasks() *Tasks {
	return &Tasks{c: c}
}

func (c *Client) Sessions() *Sessions {
	return &Sessions{c: c}
}

func (c *Client) Profiles() *Profiles {
	return &Profiles{c: c}
}

func (c *Client) accessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends one request. body is JSON-encoded when non-nil and out, when
// non-nil, receives the decoded 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any, authenticated bool) error {
	token := c.accessToken()
	if authenticated && token == "" {
		return apperrors.NotAuthenticated(op)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return apperrors.Remote(op, fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperrors.Remote(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("remote request failed", zap.String("op", op), zap.String("path", path), zap.Error(err))
		return apperrors.Remote(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Remote(op, fmt.Errorf("read response: %w", err))
	}
	c.logger.Debug("remote request",
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := decodeStatusError(resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized {
			notAuth := apperrors.NotAuthenticated(op)
			notAuth.Err = statusErr
			return notAuth
		}
		return apperrors.Remote(op, statusErr)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.Remote(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func decodeStatusError(status int, body []byte) *StatusError {
	statusErr := &StatusError{Status: status, Message: http.StatusText(status)}

	var envelope errorEnvelope
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		statusErr.Code = envelope.Error.Code
		statusErr.Message = envelope.Error.Message
		statusErr.Details = envelope.Error.Details
	}
	return statusErr
}

func StatusOf(err error) int {
	var statusErr *StatusError
	if stderrors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}
