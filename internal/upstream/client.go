// Package upstream talks to the timetable generation backend. Every call forwards the
// caller's bearer token; background work falls back to the configured service token.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/thilinahansana/university-scheduler-console/pkg/middleware/requestid"
)

const maxBodyBytes = 8 << 20

// StatusError is returned for non-2xx responses that carry no conflict payload.
type StatusError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
}

// Config configures the backend client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	ServiceToken string
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// Client is a JSON client for the timetable backend.
type Client struct {
	baseURL      string
	serviceToken string
	http         *http.Client
	logger       *zap.Logger
}

// New constructs a backend client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		serviceToken: cfg.ServiceToken,
		http:         cfg.HTTPClient,
		logger:       cfg.Logger,
	}
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token attached with WithToken.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Ping checks that the backend answers, used by the readiness probe.
func (c *Client) Ping(ctx context.Context) error {
	var info json.RawMessage
	return c.do(ctx, http.MethodGet, "/timetable/selected", nil, nil, &info)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if reqID := requestid.FromContext(ctx); reqID != "" {
		req.Header.Set(requestid.Header(), reqID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.logger.Debug("backend call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if conflictErr := decodeConflicts(raw); conflictErr != nil {
		return conflictErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: path, Status: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) token(ctx context.Context) string {
	if token := TokenFrom(ctx); token != "" {
		return token
	}
	return c.serviceToken
}

// errorMessage extracts {"message"} or a string {"detail"} from an error body.
func errorMessage(raw []byte) string {
	var body struct {
		Message string          `json:"message"`
		Detail  json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return strings.TrimSpace(string(raw))
	}
	if body.Message != "" {
		return body.Message
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err == nil {
		return detail
	}
	return ""
}

// IsStatus reports whether err is a StatusError with the given status.
func IsStatus(err error, status int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Status == status
}
