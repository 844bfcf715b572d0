// Package search defines the web-search capability and a Tavily-backed client.
package search

import "context"

// Hit is one raw search result, in provider order.
type Hit struct {
	Title      string  `json:"title,omitempty"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content,omitempty"`
	Score      float64 `json:"score,omitempty"` // provider score, not used for ranking
}

// Searcher performs a web search and returns hits in provider order.
type Searcher interface {
	Search(ctx context.Context, query string) ([]Hit, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string) ([]Hit, error)

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, query string) ([]Hit, error) {
	return f(ctx, query)
}
