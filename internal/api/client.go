package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"chat-client/internal/observability"
)

// TokenFunc supplies the current bearer token, or "" when logged out.
type TokenFunc func() string

// APIError carries a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Client talks to the REST collaborator. All calls attach the bearer
// token plus X-Request-Id/X-Device-Id correlation headers.
type Client struct {
	baseURL        string
	http           *http.Client
	token          TokenFunc
	deviceID       string
	onUnauthorized func()
	tracer         trace.Tracer
}

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, token TokenFunc) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		token:    token,
		deviceID: observability.NewDeviceID(),
		tracer:   otel.Tracer("chat-client/api"),
	}
}

// SetUnauthorizedHook registers a callback fired whenever the backend
// answers 401 on an authenticated call.
func (c *Client) SetUnauthorizedHook(fn func()) {
	c.onUnauthorized = fn
}

// doJSON issues a JSON request. route is the path template used for
// metrics and spans; path is the concrete request path.
func (c *Client) doJSON(ctx context.Context, method, route, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, method+" "+route)
	defer span.End()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", route, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", route, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req)
	return c.send(req, route, out)
}

func (c *Client) decorate(req *http.Request) {
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
	observability.DecorateRequest(req, observability.NewRequestID(), c.deviceID)
}

func (c *Client) send(req *http.Request, route string, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observability.ObserveHTTP(req.Method, route, 0, time.Since(start))
		return fmt.Errorf("%s %s: %w", req.Method, route, err)
	}
	defer resp.Body.Close()
	observability.ObserveHTTP(req.Method, route, resp.StatusCode, time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return c.apiError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}
	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}
