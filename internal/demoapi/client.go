// Package demoapi fetches the quote and product highlights shown on the
// landing page.
package demoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Defaults for Config.
const (
	DefaultBaseURL      = "https://dummyjson.com"
	DefaultTimeout      = 10 * time.Second
	DefaultCacheTTL     = 5 * time.Minute
	DefaultProductLimit = 3
)

// Quote is a random quote.
type Quote struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// Product is a catalogue entry used as a highlight card.
type Product struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Highlights is everything the landing page decorates itself with.
// Fields are nil when the corresponding request failed.
type Highlights struct {
	Quote    *Quote
	Products []Product
}

// Config configures a Client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	CacheTTL     time.Duration
	ProductLimit int
	// Retries is the number of extra attempts after a transient failure.
	Retries int

	HTTPClient *http.Client
	Logger     *slog.Logger
	Now        func() time.Time
}

// Client talks to the demo API and caches the last good answer.
type Client struct {
	baseURL string
	http    *http.Client
	ttl     time.Duration
	limit   int
	retries uint64
	logger  *slog.Logger
	now     func() time.Time

	refreshes singleflight.Group
	mu        sync.Mutex
	cached    Highlights
	fetchedAt time.Time
}

// NewClient creates a Client.
func NewClient(cfg Config) *Client {
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    cfg.HTTPClient,
		ttl:     cfg.CacheTTL,
		limit:   cfg.ProductLimit,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.http = &http.Client{Timeout: timeout}
	}
	if c.ttl <= 0 {
		c.ttl = DefaultCacheTTL
	}
	if c.limit <= 0 {
		c.limit = DefaultProductLimit
	}
	if cfg.Retries > 0 {
		c.retries = uint64(cfg.Retries)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Quote fetches a random quote.
func (c *Client) Quote(ctx context.Context) (Quote, error) {
	var q Quote
	if err := c.getJSON(ctx, "/quotes/random", nil, &q); err != nil {
		return Quote{}, err
	}
	return q, nil
}

// Products fetches the configured number of highlight products.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(c.limit))
	query.Set("skip", "2")

	var resp struct {
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, "/products", query, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// Highlights returns the cached highlights, refreshing them when the cache
// has expired. Concurrent callers share one refresh, and a caller whose ctx
// ends first gets the previous answer. Failed requests are logged and leave
// their field empty; a failed refresh keeps serving the previous answer.
func (c *Client) Highlights(ctx context.Context) Highlights {
	if h, fresh := c.cachedHighlights(); fresh {
		return h
	}

	ch := c.refreshes.DoChan("highlights", func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx)), nil
	})
	select {
	case res := <-ch:
		return res.Val.(Highlights)
	case <-ctx.Done():
		h, _ := c.cachedHighlights()
		return h
	}
}

func (c *Client) cachedHighlights() (Highlights, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fresh := !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl
	return c.cached, fresh
}

// refresh fetches the quote and products in parallel and merges them into
// the cache. The lock is only held for the merge.
func (c *Client) refresh(ctx context.Context) Highlights {
	var (
		h        Highlights
		quoteErr error
		prodErr  error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := c.Quote(gctx)
		if err != nil {
			quoteErr = err
			return nil
		}
		h.Quote = &q
		return nil
	})
	g.Go(func() error {
		p, err := c.Products(gctx)
		if err != nil {
			prodErr = err
			return nil
		}
		h.Products = p
		return nil
	})
	_ = g.Wait()

	if quoteErr != nil {
		c.logger.Warn("failed to fetch quote", "error", quoteErr)
	}
	if prodErr != nil {
		c.logger.Warn("failed to fetch products", "error", prodErr)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if quoteErr != nil && c.cached.Quote != nil {
		h.Quote = c.cached.Quote
	}
	if prodErr != nil && c.cached.Products != nil {
		h.Products = c.cached.Products
	}
	if quoteErr == nil && prodErr == nil {
		c.fetchedAt = c.now()
	}
	c.cached = h
	return h
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	backoff := retry.WithMaxRetries(c.retries, retry.NewExponential(100*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("failed to call demo api: %w", err))
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(&StatusError{URL: u, Code: resp.StatusCode})
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &StatusError{URL: u, Code: resp.StatusCode}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return nil
	})
}
