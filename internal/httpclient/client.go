// Package httpclient is the only way the server talks to mirrors and origins.
// Every request, including each redirect hop, is checked against the domain
// allow-list before a connection is made.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultTimeout bounds GetBody and Head when the caller's context has no earlier deadline
	DefaultTimeout = 10 * time.Second

	// MaxResponseSize caps bodies read into memory by GetBody (10MB)
	MaxResponseSize = 10 * 1024 * 1024

	// DefaultUserAgent is sent when no user agent is configured
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	maxRedirects = 10
)

// URLValidator decides whether a URL may be fetched
type URLValidator interface {
	IsAllowed(rawURL string) bool
}

// Client performs allow-listed outbound requests
type Client struct {
	http      *http.Client
	validator URLValidator
	userAgent string
	timeout   time.Duration
	maxBody   int64
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient uses base's transport. Its redirect policy is replaced.
func WithHTTPClient(base *http.Client) Option {
	return func(c *Client) {
		if base != nil {
			clone := *base
			c.http = &clone
		}
	}
}

// WithUserAgent sets the User-Agent sent on every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxResponseSize overrides MaxResponseSize
func WithMaxResponseSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// NewClient creates a Client that consults validator before every request
func NewClient(validator URLValidator, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{},
		validator: validator,
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		maxBody:   MaxResponseSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	// The whole-request Timeout would also cut off long streams; bounds are
	// applied per call instead.
	c.http.Timeout = 0
	c.http.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if !c.validator.IsAllowed(req.URL.String()) {
			return fmt.Errorf("%w: redirect to %s", ErrHostNotAllowed, req.URL.Host)
		}
		req.Header.Set("User-Agent", c.userAgent)
		return nil
	}
	return c
}

// Allowed reports whether rawURL passes the allow-list
func (c *Client) Allowed(rawURL string) bool {
	return c.validator.IsAllowed(rawURL)
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string) (*http.Request, error) {
	if !c.validator.IsAllowed(rawURL) {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// GetBody performs a GET and returns the body of a 200 response, read up to
// the configured size limit. accept, when set, is sent as the Accept header.
func (c *Client) GetBody(ctx context.Context, rawURL, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, NewHTTPError(resp.StatusCode, rawURL, resp.Status)
	}

	if resp.ContentLength > c.maxBody {
		return nil, fmt.Errorf("response size %d bytes exceeds maximum allowed size of %d bytes",
			resp.ContentLength, c.maxBody)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("response size exceeds maximum allowed size of %d bytes", c.maxBody)
	}

	return body, nil
}

// Head performs a HEAD request and returns the final status code
func (c *Client) Head(ctx context.Context, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	_ = resp.Body.Close()

	return resp.StatusCode, nil
}

// Open starts a streaming GET. The returned response has a 2xx status and its
// Body must be closed by the caller. idle bounds both the wait for response
// headers and any stall between body reads; cancelling ctx aborts the
// transfer.
func (c *Client) Open(ctx context.Context, rawURL string, idle time.Duration) (*http.Response, error) {
	if idle <= 0 {
		idle = c.timeout
	}

	ctx, cancel := context.WithCancel(ctx)
	watchdog := time.AfterFunc(idle, cancel)
	abort := func() {
		watchdog.Stop()
		cancel()
	}

	req, err := c.newRequest(ctx, http.MethodGet, rawURL)
	if err != nil {
		abort()
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		abort()
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		abort()
		return nil, NewHTTPError(resp.StatusCode, rawURL, resp.Status)
	}

	watchdog.Reset(idle)
	resp.Body = &watchdogBody{
		ReadCloser: resp.Body,
		watchdog:   watchdog,
		idle:       idle,
		cancel:     cancel,
	}
	return resp, nil
}

// watchdogBody re-arms the idle timer on every read that makes progress
type watchdogBody struct {
	io.ReadCloser
	watchdog *time.Timer
	idle     time.Duration
	cancel   context.CancelFunc
	once     sync.Once
}

func (b *watchdogBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.watchdog.Reset(b.idle)
	}
	return n, err
}

func (b *watchdogBody) Close() error {
	err := b.ReadCloser.Close()
	b.once.Do(func() {
		b.watchdog.Stop()
		b.cancel()
	})
	return err
}
