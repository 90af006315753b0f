// Package base provides the single-attempt HTTP executor shared by every
// Wikidot transport operation. Retries are not done here; callers wrap Do in
// infra.Retry so the backoff policy lives in one place.
package base

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/olgasafonova/wikidot-mcp-server/internal/errors"
	"github.com/olgasafonova/wikidot-mcp-server/metrics"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// MaxConcurrentRequests limits parallel API calls
	MaxConcurrentRequests = 3

	// MaxResponseSize caps how much of a response body is read (10 MB)
	MaxResponseSize = 10 << 20
)

// Client executes HTTP requests with a concurrency limit and classifies
// the outcome into the shared error taxonomy.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	Semaphore  chan struct{}
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithTimeout replaces the default HTTP client with one using timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) {
		client.HTTPClient = newHTTPClient(timeout)
	}
}

// WithMaxConcurrent sets how many requests may be in flight at once
func WithMaxConcurrent(n int) ClientOption {
	return func(client *Client) {
		if n > 0 {
			client.Semaphore = make(chan struct{}, n)
		}
	}
}

// NewClient creates a new base client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient: newHTTPClient(DefaultTimeout),
		Logger:     slog.Default(),
		Semaphore:  make(chan struct{}, MaxConcurrentRequests),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AcquireSlot blocks until a request slot is available or context is canceled
func (c *Client) AcquireSlot(ctx context.Context) error {
	select {
	case c.Semaphore <- struct{}{}:
		return nil
	default:
	}

	metrics.RateLimitWaits.Inc()
	select {
	case c.Semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return apierrors.Permanent(fmt.Errorf("context canceled while waiting for rate limiter: %w", ctx.Err()))
	}
}

// ReleaseSlot releases a request slot
func (c *Client) ReleaseSlot() {
	<-c.Semaphore
}

// Request describes one HTTP attempt.
type Request struct {
	Operation string // label for logs, metrics and errors
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
}

// Response is a fully read HTTP response with a 2xx status.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Do performs exactly one attempt. Network failures and non-2xx statuses
// come back as *errors.TransportError, which the retry engine treats as
// transient. Context cancellation is reported as a permanent error.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if err := c.AcquireSlot(ctx); err != nil {
		return nil, err
	}
	defer c.ReleaseSlot()

	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if r.Body != nil {
		body = bytes.NewReader(r.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.URL, body)
	if err != nil {
		return nil, apierrors.Permanent(fmt.Errorf("%s: failed to create request: %w", r.Operation, err))
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		metrics.RecordUpstream(r.Operation, time.Since(start).Seconds(), false, "network")
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, apierrors.Permanent(fmt.Errorf("%s: %w", r.Operation, ctxErr))
		}
		return nil, &apierrors.TransportError{Operation: r.Operation, URL: r.URL, Err: err}
	}

	data, err := readAndClose(resp)
	duration := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordUpstream(r.Operation, duration, false, "read")
		return nil, &apierrors.TransportError{
			Operation:  r.Operation,
			URL:        r.URL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordUpstream(r.Operation, duration, false, "status")
		var cause error
		if snippet := strings.TrimSpace(truncate(string(data), 200)); snippet != "" {
			cause = errors.New(snippet)
		}
		return nil, &apierrors.TransportError{
			Operation:  r.Operation,
			URL:        r.URL,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Err:        cause,
		}
	}

	metrics.RecordUpstream(r.Operation, duration, true, "")
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// readAndClose reads the response body (up to MaxResponseSize) and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}
	return body, nil
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// newHTTPClient creates an HTTP client with optimized transport settings
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		DisableCompression:    false,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
