package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/dtnitsch/integration-agent/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavilyClientSearch(t *testing.T) {
	var calls atomic.Int32
	var got tavilyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"query": got.Query,
			"results": []map[string]any{
				{"url": "https://docs.example.com/a", "content": "first", "title": "A"},
				{"url": "https://example.com/b", "content": "second"},
				{"url": "https://example.com/c", "content": "third"},
			},
		})
	}))
	defer srv.Close()

	client, err := NewTavilyClient(models.SearchConfig{APIKey: "test-key", MaxResults: 2}, nil, WithEndpoint(srv.URL))
	require.NoError(t, err)

	hits, err := client.Search(context.Background(), "stripe api reference")
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "https://docs.example.com/a", hits[0].URL)
	assert.Equal(t, "second", hits[1].Content)

	// config is passed through with defaults filled in
	assert.Equal(t, "stripe api reference", got.Query)
	assert.Equal(t, "advanced", got.SearchDepth)
	assert.Equal(t, 2, got.MaxResults)
	assert.Equal(t, []string{".io", ".com", ".dev", ".org"}, got.IncludeDomains)
	assert.Equal(t, []string{}, got.ExcludeDomains)
	assert.True(t, got.IncludeRawContent)

	// second call for the same query is served from the cache
	_, err = client.Search(context.Background(), "stripe api reference")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestTavilyClientSearchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewTavilyClient(models.SearchConfig{}, nil, WithEndpoint(srv.URL))
	require.NoError(t, err)

	_, err = client.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
