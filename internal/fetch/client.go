package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yourusername/codetrack/scraper-service/pkg/logger"
	"go.uber.org/zap"
)

const (
	DefaultTimeout = 15 * time.Second

	// maxBodyBytes caps how much of a profile page is read into memory
	maxBodyBytes = 8 << 20
)

// Options tune a single request
type Options struct {
	Timeout time.Duration     // zero means the client default
	Headers map[string]string // merged over the browser header set
}

// Response is a fully read 2xx response
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	Latency    time.Duration
}

// Fetcher is the fetch primitive used by the platform providers. It does not
// retry; retry policy belongs to the caller.
type Fetcher interface {
	Get(ctx context.Context, rawURL string, opts Options) (*Response, error)
	Post(ctx context.Context, rawURL string, body []byte, opts Options) (*Response, error)
}

// ClientConfig configures a Client
type ClientConfig struct {
	Timeout        time.Duration
	UserAgent      string
	Referer        string
	AcceptLanguage string
	Limiter        *HostLimiter
	Transport      http.RoundTripper
}

// Client sends requests with a browser-like header set
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	headers    map[string]string
	limiter    *HostLimiter
}

// NewClient creates a new fetch client
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	headers := map[string]string{
		"User-Agent":      cfg.UserAgent,
		"Referer":         cfg.Referer,
		"Accept-Language": cfg.AcceptLanguage,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,application/json;q=0.8,*/*;q=0.7",
		"Cache-Control":   "no-cache",
	}
	for k, v := range headers {
		if v == "" {
			delete(headers, k)
		}
	}

	return &Client{
		// per-request deadlines come from the context
		httpClient: &http.Client{Transport: cfg.Transport},
		timeout:    timeout,
		headers:    headers,
		limiter:    cfg.Limiter,
	}
}

// Get issues a GET request
func (c *Client) Get(ctx context.Context, rawURL string, opts Options) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, opts)
}

// Post issues a POST request with the given body
func (c *Client) Post(ctx context.Context, rawURL string, body []byte, opts Options) (*Response, error) {
	return c.do(ctx, http.MethodPost, rawURL, body, opts)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte, opts Options) (*Response, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, &HTTPError{URL: rawURL, Err: fmt.Errorf("invalid url: %q", rawURL)}
	}

	if c.limiter != nil {
		release, err := c.limiter.Acquire(ctx, parsed.Host)
		if err != nil {
			return nil, &HTTPError{URL: rawURL, Err: fmt.Errorf("waiting for rate limit: %w", err)}
		}
		defer release()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, &HTTPError{URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &HTTPError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	latency := time.Since(start)
	if err != nil {
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	logger.Debug("Fetched external page",
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", latency),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("http status %d", resp.StatusCode)}
	}

	return &Response{
		URL:        rawURL,
		StatusCode: resp.StatusCode,
		Body:       data,
		Latency:    latency,
	}, nil
}
