// Package api is the typed REST client for the OurNest backend. All state
// the TUI displays comes through here; nothing is cached between calls.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/404PageFinder/OurNest-App/internal/logging"
)

// Error is a non-2xx response. Detail carries the backend's message when the
// body had the {"detail": "..."} shape.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed: %s", http.StatusText(e.StatusCode))
}

// IsUnauthorized reports whether err is a 401 response.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// Client talks to one backend. Token is set after OTP verification and sent
// as a bearer header on every subsequent call.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken installs (or clears) the bearer token.
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token, empty when unauthenticated.
func (c *Client) Token() string {
	return c.token
}

// errorBody matches FastAPI's HTTPException payload.
type errorBody struct {
	Detail string `json:"detail"`
}

// do runs one request. in (when non-nil) is JSON-encoded as the body; out
// (when non-nil) receives the decoded response.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	logging.Trace("api.request", map[string]interface{}{"method": method, "path": path, "request_id": reqID})

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	logging.Trace("api.response", map[string]interface{}{"path": path, "status": resp.StatusCode, "request_id": reqID})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var eb errorBody
		if data, rerr := io.ReadAll(io.LimitReader(resp.Body, 1<<16)); rerr == nil {
			if jerr := json.Unmarshal(data, &eb); jerr == nil {
				apiErr.Detail = eb.Detail
			}
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Health probes GET /health. A nil error means the backend is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}
