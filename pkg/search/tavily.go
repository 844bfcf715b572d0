package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtnitsch/integration-agent/models"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultTavilyURL = "https://api.tavily.com/search"
	defaultCacheSize = 256
)

// TavilyClient is a Searcher backed by the Tavily search API.
// Hits are memoized per query for the lifetime of the client.
type TavilyClient struct {
	endpoint string
	config   models.SearchConfig
	client   *http.Client
	limiter  *rate.Limiter
	cache    *lru.Cache[string, []Hit]
	logger   *slog.Logger
}

// TavilyOption customizes a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithEndpoint overrides the API URL (used by tests).
func WithEndpoint(endpoint string) TavilyOption {
	return func(c *TavilyClient) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) TavilyOption {
	return func(c *TavilyClient) { c.client = hc }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(rps float64, burst int) TavilyOption {
	return func(c *TavilyClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewTavilyClient creates a client. Unset SearchConfig options get their defaults.
func NewTavilyClient(cfg models.SearchConfig, logger *slog.Logger, opts ...TavilyOption) (*TavilyClient, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cache, err := lru.New[string, []Hit](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}

	c := &TavilyClient{
		endpoint: DefaultTavilyURL,
		config:   cfg.WithDefaults(),
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Inf, 0),
		cache:    cache,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tavilyRequest struct {
	APIKey            string   `json:"api_key,omitempty"`
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	MaxResults        int      `json:"max_results"`
	IncludeRawContent bool     `json:"include_raw_content"`
	IncludeDomains    []string `json:"include_domains"`
	ExcludeDomains    []string `json:"exclude_domains"`
}

type tavilyResponse struct {
	Query   string `json:"query"`
	Results []Hit  `json:"results"`
}

// Search runs one query. At most MaxResults hits are returned.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]Hit, error) {
	if hits, ok := c.cache.Get(query); ok {
		c.logger.Debug("search cache hit", "query", query, "hits", len(hits))
		return hits, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search rate limiter: %w", err)
	}

	body, err := json.Marshal(tavilyRequest{
		APIKey:            c.config.APIKey,
		Query:             query,
		SearchDepth:       c.config.SearchDepth,
		MaxResults:        c.config.MaxResults,
		IncludeRawContent: true,
		IncludeDomains:    c.config.IncludeDomains,
		ExcludeDomains:    c.config.ExcludeDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search failed, status code: %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var decoded tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := decoded.Results
	if len(hits) > c.config.MaxResults {
		hits = hits[:c.config.MaxResults]
	}
	c.logger.Debug("search complete", "query", query, "hits", len(hits))
	c.cache.Add(query, hits)
	return hits, nil
}
