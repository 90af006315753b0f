// Package wikidot is a client for Wikidot's AJAX module connector and the
// Crom GraphQL mirror. A Client is bound to one site and owns one login
// session.
package wikidot

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/olgasafonova/wikidot-mcp-server/internal/base"
	"github.com/olgasafonova/wikidot-mcp-server/internal/infra"
	"github.com/olgasafonova/wikidot-mcp-server/metrics"
	"github.com/olgasafonova/wikidot-mcp-server/tracing"
)

const (
	// PageIDCacheTTL is how long a resolved page ID is reused
	PageIDCacheTTL = 30 * time.Minute

	// MaxCachedPageIDs bounds the page-ID cache
	MaxCachedPageIDs = 5000
)

// Client talks to one Wikidot site
type Client struct {
	*base.Client

	cfg      Config
	siteName string
	session  Session
	sleep    infra.SleepFunc
	loginMu  sync.Mutex

	pageIDs     *infra.Cache[int]
	ownsPageIDs bool
	dedup       *infra.RequestDeduplicator[int]
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		base.WithHTTPClient(hc)(c.Client)
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		base.WithLogger(l)(c.Client)
	}
}

// WithMaxConcurrent limits in-flight HTTP requests
func WithMaxConcurrent(n int) ClientOption {
	return func(c *Client) {
		base.WithMaxConcurrent(n)(c.Client)
	}
}

// WithSleep replaces the function used for retry backoff and throttle waits
func WithSleep(sleep infra.SleepFunc) ClientOption {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// WithPageIDCache shares a page-ID cache between clients. The caller keeps
// ownership and must close it.
func WithPageIDCache(cache *infra.Cache[int]) ClientOption {
	return func(c *Client) {
		c.pageIDs = cache
	}
}

// NewClient creates a client for the site in cfg
func NewClient(cfg *Config, opts ...ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		Client:   base.NewClient(base.WithTimeout(cfg.Timeout)),
		cfg:      *cfg,
		siteName: SiteName(cfg.BaseURL),
		sleep:    infra.ContextSleep,
		dedup:    infra.NewRequestDeduplicator[int](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pageIDs == nil {
		c.pageIDs = infra.NewCache[int](MaxCachedPageIDs)
		c.ownsPageIDs = true
	}
	return c, nil
}

// Close releases background resources
func (c *Client) Close() {
	if c.ownsPageIDs {
		c.pageIDs.Close()
	}
}

// SiteName returns the short site name the client is bound to
func (c *Client) SiteName() string {
	return c.siteName
}

// BaseURL returns the site root without a trailing slash
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// Config returns a copy of the client configuration
func (c *Client) Config() Config {
	return c.cfg
}

// SiteName derives the short site name from a base URL: the first label of
// the host, so https://scp-wiki.wikidot.com yields "scp-wiki".
func SiteName(baseURL string) string {
	host := baseURL
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		host = u.Hostname()
	} else if _, rest, ok := strings.Cut(baseURL, "//"); ok {
		host = rest
	}
	name, _, _ := strings.Cut(host, ".")
	return name
}

// canonicalURL is the key the GraphQL mirror indexes pages by
func canonicalURL(site, page string) string {
	return "http://" + site + ".wikidot.com/" + page
}

// retrier builds the retry policy for one operation
func (c *Client) retrier(operation string) *infra.Retrier {
	return &infra.Retrier{
		MaxRetries: c.cfg.MaxRetries,
		Step:       c.cfg.RetryStep,
		Sleep:      c.sleep,
		OnRetry: func(retry int, delay time.Duration, err error) {
			metrics.RecordRetry(operation)
			c.Logger.Debug("retrying",
				"operation", operation,
				"retry", retry,
				"delay", delay,
				"error", err,
			)
		},
	}
}

// call runs one transport operation under the retry engine. Each failed
// attempt is logged once where it is detected; the final error is recorded
// on the span and returned unchanged.
func call[T any](ctx context.Context, c *Client, operation, target string, op func(ctx context.Context) (T, error)) (T, error) {
	ctx, span := tracing.StartSpan(ctx, "wikidot."+operation)
	defer span.End()
	tracing.AddWikidotAttributes(span, operation, c.siteName, target)

	attempt := 0
	v, err := infra.Retry(ctx, c.retrier(operation), func(ctx context.Context) (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil {
			c.Logger.Error(operation+" failed",
				"operation", operation,
				"target", target,
				"attempt", attempt,
				"error", err,
			)
		}
		return v, err
	})
	tracing.RecordError(span, err)
	return v, err
}
