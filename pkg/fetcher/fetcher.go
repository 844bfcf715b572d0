// Package fetcher downloads documentation pages over HTTP.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtnitsch/integration-agent/pkg/caching"
)

const (
	UserAgent      = "Documentation Parser Bot/1.0"
	defaultTimeout = 30 * time.Second
	maxPageBytes   = 10 << 20
)

// Fetcher performs GET requests for documentation pages, optionally
// through a page cache.
type Fetcher struct {
	client *http.Client
	cache  *caching.Cache
	logger *slog.Logger
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithCache serves fresh cached pages without a request and stores every
// successful response.
func WithCache(c *caching.Cache) Option {
	return func(f *Fetcher) { f.cache = c }
}

func NewFetcher(logger *slog.Logger, opts ...Option) *Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	f := &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the page body. Any status other than 200 is an error.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if f.cache != nil {
		if data, ok := f.cache.Get(pageURL); ok {
			f.logger.Debug("page cache hit", "url", pageURL)
			return string(data), nil
		}
	}

	body, err := f.get(ctx, pageURL)
	if err != nil {
		return "", err
	}

	if f.cache != nil {
		if err := f.cache.Set(pageURL, body); err != nil {
			f.logger.Warn("page cache write failed", "url", pageURL, "error", err)
		}
	}
	return string(body), nil
}

func (f *Fetcher) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch %s, status code: %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
