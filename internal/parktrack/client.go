package parktrack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/parkzone-core/internal/infrastructure/config"
)

const (
	defaultTimeout = 15 * time.Second

	// maxResponseBytes bounds how much of a response is read.
	maxResponseBytes = 32 << 20

	// maxLoggedTextBytes bounds plain-text error bodies used as messages.
	maxLoggedTextBytes = 512
)

// Logger defines the logging interface used by the Client.
// It is compatible with *logging.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer receives one call per completed API request. Route is the
// path template (e.g. "/zones/{id}"), status is 0 on transport failure.
type Observer interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration, err error)
}

// Client talks to the ParkTrack API.
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *RequestLog
	observers  []Observer
	logger     Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithObserver adds a per-request observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRequestLog shares an existing request log.
func WithRequestLog(l *RequestLog) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client from configuration.
//
// Parameters:
//   - cfg: ParkTrack section of config.yaml
//   - opts: Optional overrides (HTTP client, observers, logger)
//
// Returns:
//   - *Client: Ready for use; no connection is made until the first call
func New(cfg config.ParkTrackConfig, opts ...Option) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logSize := cfg.RequestLogSize
	if logSize == 0 {
		logSize = DefaultRequestLogSize
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{Timeout: timeout},
		log:        NewRequestLog(logSize),
		logger:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RequestLog returns the client's request log.
func (c *Client) RequestLog() *RequestLog {
	return c.log
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// response is a raw API reply.
type response struct {
	status int
	header http.Header
	body   []byte
}

// roundTrip performs one request and records it. Non-2xx statuses are
// returned as *APIError. Binary responses are logged as a size summary.
func (c *Client) roundTrip(ctx context.Context, method, route, path string, query url.Values, body any) (*response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("parktrack: encoding %s %s body: %w", method, route, err)
		}
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("parktrack: building %s %s: %w", method, route, err)
	}

	id := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", id)

	c.log.Add(Entry{
		ID:      id,
		Time:    time.Now(),
		Method:  method,
		URL:     endpoint,
		Headers: loggedHeaders(req.Header),
		Body:    loggedBody(payload),
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, route, err)
		c.finish(id, method, endpoint, route, 0, nil, "", start, err)
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		err = fmt.Errorf("%w: reading %s %s: %w", ErrRequestFailed, method, route, err)
		c.finish(id, method, endpoint, route, resp.StatusCode, nil, "", start, err)
		return nil, err
	}

	out := &response{status: resp.StatusCode, header: resp.Header, body: data}

	var callErr error
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		callErr = &APIError{
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, data),
			Method:  method,
			Path:    path,
		}
	}
	c.finish(id, method, endpoint, route, resp.StatusCode, data, resp.Header.Get("Content-Type"), start, callErr)

	if callErr != nil {
		return nil, callErr
	}
	return out, nil
}

// finish records the response side of a call and notifies observers.
func (c *Client) finish(id, method, endpoint, route string, status int, data []byte, contentType string, start time.Time, err error) {
	elapsed := time.Since(start)

	entry := Entry{
		ID:     id + "-resp",
		Time:   time.Now(),
		Method: method,
		URL:    endpoint,
		Status: status,
	}
	switch {
	case err != nil && status == 0:
		entry.Error = err.Error()
	case isBinary(contentType):
		entry.Response = loggedBody([]byte(fmt.Sprintf("[binary %s, %d bytes]", contentType, len(data))))
	default:
		entry.Response = loggedBody(data)
	}
	c.log.Add(entry)

	for _, o := range c.observers {
		o.ObserveRequest(method, route, status, elapsed, err)
	}

	if err != nil {
		c.logger.Warn("parktrack request failed",
			"method", method, "route", route, "status", status,
			"elapsed_ms", elapsed.Milliseconds(), "error", err)
		return
	}
	c.logger.Debug("parktrack request",
		"method", method, "route", route, "status", status,
		"elapsed_ms", elapsed.Milliseconds())
}

// do performs a JSON call and decodes the body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, route, path string, query url.Values, body, out any) error {
	resp, err := c.roundTrip(ctx, method, route, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, route, err)
	}
	return nil
}

// errorMessage extracts the most specific message from an error body.
func errorMessage(status int, body []byte) string {
	var payload struct {
		ErrorDescription any `json:"error_description"`
		Error            any `json:"error"`
		Message          any `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, v := range []any{payload.ErrorDescription, payload.Error, payload.Message} {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= maxLoggedTextBytes && !json.Valid(body) {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

func isBinary(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "application/octet-stream")
}

// idPath escapes an identifier for use as a path segment.
func idPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
