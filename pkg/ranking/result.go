// Package ranking scores raw search hits for relevance to an integration
// request and merges them into a deterministically ordered result list.
package ranking

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/dtnitsch/integration-agent/pkg/detector"
)

var (
	// ErrScoreOutOfRange is returned when a relevance score falls outside [0, 1].
	ErrScoreOutOfRange = errors.New("relevance score out of range")
	// ErrEmptyURL is returned when a result is built without a URL.
	ErrEmptyURL = errors.New("search result url is empty")
)

// SearchResult is one documentation source judged relevant to a request.
// It is immutable; IsDocumentation is always derived from the URL.
type SearchResult struct {
	url             string
	content         string
	isDocumentation bool
	relevanceScore  float64
}

// NewSearchResult builds a result classified with detector.IsDocumentationURL.
// Out-of-range scores are rejected, not clamped.
func NewSearchResult(url, content string, score float64) (SearchResult, error) {
	return newSearchResult(url, content, score, detector.IsDocumentationURL)
}

func newSearchResult(url, content string, score float64, classify func(string) bool) (SearchResult, error) {
	if url == "" {
		return SearchResult{}, ErrEmptyURL
	}
	if math.IsNaN(score) || score < 0 || score > 1 {
		return SearchResult{}, fmt.Errorf("%w: %v", ErrScoreOutOfRange, score)
	}
	return SearchResult{
		url:             url,
		content:         content,
		isDocumentation: classify(url),
		relevanceScore:  score,
	}, nil
}

func (r SearchResult) URL() string             { return r.url }
func (r SearchResult) Content() string         { return r.content }
func (r SearchResult) IsDocumentation() bool   { return r.isDocumentation }
func (r SearchResult) RelevanceScore() float64 { return r.relevanceScore }

type searchResultJSON struct {
	URL             string  `json:"url" yaml:"url"`
	Content         string  `json:"content" yaml:"content"`
	IsDocumentation bool    `json:"is_documentation" yaml:"is_documentation"`
	RelevanceScore  float64 `json:"relevance_score" yaml:"relevance_score"`
}

func (r SearchResult) view() searchResultJSON {
	return searchResultJSON{
		URL:             r.url,
		Content:         r.content,
		IsDocumentation: r.isDocumentation,
		RelevanceScore:  r.relevanceScore,
	}
}

// MarshalJSON implements json.Marshaler.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.view())
}

// MarshalYAML implements yaml.Marshaler.
func (r SearchResult) MarshalYAML() (interface{}, error) {
	return r.view(), nil
}
