// Package openlibrary is a small client for the OpenLibrary search API.
package openlibrary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultBaseURL   = "https://openlibrary.org"
	DefaultUserAgent = "bibliotheca/1.0 (+https://github.com/mesh-intelligence/bibliotheca)"
	DefaultTimeout   = 15 * time.Second
	DefaultRPS       = 1
	DefaultRetries   = 2
)

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected status code")

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	RPS       float64
	Retries   int
	Logger    *slog.Logger

	// Backoff returns the wait before retry attempt n (n >= 1).
	// Defaults to 1s, 2s, 4s...
	Backoff func(n int) time.Duration
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
	maxRetries int
	backoff    func(int) time.Duration
	logger     *slog.Logger
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.RPS <= 0 {
		opts.RPS = DefaultRPS
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff == nil {
		opts.Backoff = func(n int) time.Duration {
			return time.Duration(1<<uint(n-1)) * time.Second
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		userAgent:  opts.UserAgent,
		baseURL:    opts.BaseURL,
		limiter:    rate.NewLimiter(rate.Limit(opts.RPS), 1),
		maxRetries: opts.Retries,
		backoff:    opts.Backoff,
		logger:     opts.Logger,
	}
}

// SearchURL builds the search.json URL for query and limit.
func (c *Client) SearchURL(query string, limit int) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("limit", strconv.Itoa(limit))
	return c.baseURL + "/search.json?" + v.Encode()
}

// SearchRaw runs a free-text search and returns the raw JSON body.
func (c *Client) SearchRaw(ctx context.Context, query string, limit int) ([]byte, error) {
	u := c.SearchURL(query, limit)
	c.logger.Debug("openlibrary search", slog.String("query", query), slog.Int("limit", limit))
	return c.get(ctx, u)
}

// get fetches u, retrying transport errors, 429 and 5xx responses.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			wait := c.backoff(i)
			c.logger.Warn("openlibrary retry",
				slog.Int("attempt", i), slog.Duration("backoff", wait), slog.String("error", lastErr.Error()))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retry, err := c.do(ctx, u)
		if err == nil {
			return body, nil
		}
		if !retry {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}

// do performs one request. retry reports whether the failure is transient.
func (c *Client) do(ctx context.Context, u string) (body []byte, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		transient := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, transient, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	return body, false, nil
}
