package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/dtnitsch/integration-agent/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordScorer(t *testing.T) {
	tests := []struct {
		name string
		hit  search.Hit
		rc   RequestContext
		want float64
	}{
		{
			name: "documentation url with two keywords scores exactly 0.6",
			hit:  search.Hit{URL: "https://docs.test.com/api", Content: "API documentation with examples"},
			rc:   RequestContext{ServiceName: "Test", IntegrationType: "API"},
			want: 0.6,
		},
		{
			name: "non documentation url",
			hit:  search.Hit{URL: "https://example.com/x", Content: "a guide and a reference"},
			rc:   RequestContext{ServiceName: "Acme", IntegrationType: "REST"},
			want: 0.2,
		},
		{
			name: "all keywords clamp to one",
			hit: search.Hit{
				URL:     "https://api.acme.io",
				Content: "Acme REST API integration documentation guide and reference",
			},
			rc:   RequestContext{ServiceName: "Acme", IntegrationType: "REST"},
			want: 1.0,
		},
		{
			name: "keyword counted once however often it appears",
			hit:  search.Hit{URL: "https://example.com", Content: "api api api API"},
			rc:   RequestContext{ServiceName: "Acme", IntegrationType: "REST"},
			want: 0.1,
		},
		{
			name: "service name equal to a generic keyword counts once",
			hit:  search.Hit{URL: "https://example.com", Content: "the api"},
			rc:   RequestContext{ServiceName: "API", IntegrationType: "REST"},
			want: 0.1,
		},
		{
			name: "empty service and type match once",
			hit:  search.Hit{URL: "https://example.com", Content: "nothing relevant"},
			rc:   RequestContext{},
			want: 0.1,
		},
		{
			name: "empty type matches any content",
			hit:  search.Hit{URL: "https://docs.x.io", Content: "api"},
			rc:   RequestContext{ServiceName: "Stripe"},
			want: 0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeywordScorer{}.Score(tt.hit, tt.rc))
		})
	}
}

func TestContextScorer(t *testing.T) {
	tests := []struct {
		name string
		hit  search.Hit
		rc   RequestContext
		want float64
	}{
		{
			name: "every signal clamps to one",
			hit: search.Hit{
				URL:     "https://example.com/docs/stripe",
				Content: "Stripe API reference with examples for webhooks",
			},
			rc:   RequestContext{ServiceName: "Stripe", IntegrationType: "webhook", Keywords: []string{"payments", "webhooks"}},
			want: 1.0,
		},
		{
			name: "free keywords add 0.05 each",
			hit:  search.Hit{URL: "https://example.com", Content: "labels and issues"},
			rc:   RequestContext{ServiceName: "Acme", IntegrationType: "REST", Keywords: []string{"Labels", "issues", "repos"}},
			want: 0.1,
		},
		{
			name: "phrase bonuses",
			hit:  search.Hit{URL: "https://example.com", Content: "Developer Guide and tutorial"},
			rc:   RequestContext{ServiceName: "Acme", IntegrationType: "REST"},
			want: 0.3,
		},
		{
			name: "extended url markers",
			hit:  search.Hit{URL: "https://example.com/developer/start", Content: ""},
			rc:   RequestContext{ServiceName: "Acme", IntegrationType: "REST"},
			want: 0.4,
		},
		{
			name: "missing type still earns its bonus",
			hit:  search.Hit{URL: "https://example.com/docs/x", Content: "stripe api reference"},
			rc:   RequestContext{ServiceName: "Stripe"},
			want: 0.9,
		},
		{
			name: "empty context and empty keyword all match",
			hit:  search.Hit{URL: "https://example.com", Content: "unrelated"},
			rc:   RequestContext{Keywords: []string{""}},
			want: 0.35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ContextScorer{}.Score(tt.hit, tt.rc), 1e-9)
		})
	}
}

func randomHitAndContext(r *rand.Rand) (string, RequestContext) {
	words := []string{
		"api", "integration", "documentation", "guide", "reference", "example",
		"tutorial", "api reference", "developer guide", "acme", "rest", "webhook", "noise",
	}
	content := ""
	for i := 0; i < r.Intn(12); i++ {
		content += words[r.Intn(len(words))] + " "
	}
	rc := RequestContext{
		ServiceName:     words[r.Intn(len(words))],
		IntegrationType: words[r.Intn(len(words))],
	}
	for i := 0; i < r.Intn(6); i++ {
		rc.Keywords = append(rc.Keywords, words[r.Intn(len(words))])
	}
	return content, rc
}

func TestScoresAreBounded(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	urls := []string{"https://docs.acme.io/x", "https://example.com/docs/x", "https://example.com", ""}
	scorers := []Scorer{KeywordScorer{}, ContextScorer{}}

	for i := 0; i < 500; i++ {
		content, rc := randomHitAndContext(r)
		hit := search.Hit{URL: urls[r.Intn(len(urls))], Content: content}
		for _, s := range scorers {
			score := s.Score(hit, rc)
			require.GreaterOrEqual(t, score, 0.0)
			require.LessOrEqual(t, score, 1.0)
		}
	}
}

func TestDocumentationURLNeverLowersScore(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		content, rc := randomHitAndContext(r)
		doc := search.Hit{URL: "docs.example.com/x", Content: content}
		plain := search.Hit{URL: "example.com/x", Content: content}

		assert.GreaterOrEqual(t, KeywordScorer{}.Score(doc, rc), KeywordScorer{}.Score(plain, rc))
		assert.GreaterOrEqual(t, ContextScorer{}.Score(doc, rc), ContextScorer{}.Score(plain, rc))
	}
}

func TestPasses(t *testing.T) {
	assert.False(t, Passes(0.6))
	assert.True(t, Passes(0.61))
	assert.False(t, Passes(0))
	assert.True(t, Passes(1))
}

func TestNewSearchResult(t *testing.T) {
	res, err := NewSearchResult("https://docs.acme.io", "content", 0.7)
	require.NoError(t, err)
	assert.Equal(t, "https://docs.acme.io", res.URL())
	assert.Equal(t, "content", res.Content())
	assert.True(t, res.IsDocumentation())
	assert.Equal(t, 0.7, res.RelevanceScore())

	_, err = NewSearchResult("https://acme.io", "", 1.01)
	assert.ErrorIs(t, err, ErrScoreOutOfRange)

	_, err = NewSearchResult("https://acme.io", "", -0.1)
	assert.ErrorIs(t, err, ErrScoreOutOfRange)

	_, err = NewSearchResult("", "", 0.5)
	assert.ErrorIs(t, err, ErrEmptyURL)
}

func TestSearchResultJSON(t *testing.T) {
	res, err := NewSearchResult("https://example.com", "hello", 0.65)
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"https://example.com","content":"hello","is_documentation":false,"relevance_score":0.65}`, string(data))
}

// fakeSearcher returns canned hits per query, optionally delaying earlier
// queries so they complete last.
type fakeSearcher struct {
	hits   map[string][]search.Hit
	errs   map[string]error
	delays map[string]time.Duration
}

func (f fakeSearcher) Search(ctx context.Context, query string) ([]search.Hit, error) {
	if d := f.delays[query]; d > 0 {
		time.Sleep(d)
	}
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.hits[query], nil
}

// strong scores 0.9 for RequestContext{"Acme", "REST"}.
func strong(url string) search.Hit {
	return search.Hit{URL: url, Content: "Acme REST api integration documentation"}
}

func TestRankerOrderingIsStable(t *testing.T) {
	rc := RequestContext{ServiceName: "Acme", IntegrationType: "REST"}
	s := fakeSearcher{
		hits: map[string][]search.Hit{
			"q1": {
				strong("https://docs.acme.io/a"),
				{URL: "https://example.com/weak", Content: "nothing"},
				strong("https://docs.acme.io/c"),
			},
			"q2": {
				{URL: "https://docs.acme.io/b", Content: "Acme REST api integration documentation guide reference"},
				strong("https://docs.acme.io/d"),
			},
		},
		delays: map[string]time.Duration{"q1": 20 * time.Millisecond},
	}

	got := NewRanker(s, KeywordScorer{}, nil).Rank(context.Background(), []string{"q1", "q2"}, rc)
	require.Zero(t, got.FailedQueries())

	var urls []string
	for _, r := range got.Results {
		urls = append(urls, r.URL())
	}
	assert.Equal(t, []string{
		"https://docs.acme.io/b",
		"https://docs.acme.io/a",
		"https://docs.acme.io/c",
		"https://docs.acme.io/d",
	}, urls)
	assert.Equal(t, 1.0, got.Results[0].RelevanceScore())
	assert.Equal(t, 0.9, got.Results[1].RelevanceScore())
}

func TestRankerExcludesThresholdScore(t *testing.T) {
	s := fakeSearcher{hits: map[string][]search.Hit{
		"q": {{URL: "https://docs.test.com/api", Content: "API documentation with examples"}},
	}}
	rc := RequestContext{ServiceName: "Test", IntegrationType: "API"}

	got := NewRanker(s, nil, nil).Rank(context.Background(), []string{"q"}, rc)
	assert.Empty(t, got.Results)
}

func TestRankerCollectsAndContinues(t *testing.T) {
	boom := errors.New("provider unavailable")
	s := fakeSearcher{
		hits: map[string][]search.Hit{"ok": {strong("https://docs.acme.io/a")}},
		errs: map[string]error{"bad": boom},
	}
	rc := RequestContext{ServiceName: "Acme", IntegrationType: "REST"}

	got := NewRanker(s, nil, nil).WithConcurrency(1).Rank(context.Background(), []string{"bad", "ok"}, rc)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "https://docs.acme.io/a", got.Results[0].URL())
	require.Equal(t, 1, got.FailedQueries())
	assert.Equal(t, "bad", got.Failures[0].Query)
	assert.ErrorIs(t, got.Failures[0].Err, boom)
}

func TestRankerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := fakeSearcher{hits: map[string][]search.Hit{"q": {strong("https://docs.acme.io/a")}}}
	got := NewRanker(s, nil, nil).Rank(ctx, []string{"q"}, RequestContext{ServiceName: "Acme", IntegrationType: "REST"})
	assert.Empty(t, got.Results)
	require.Equal(t, 1, got.FailedQueries())
	assert.ErrorIs(t, got.Failures[0].Err, context.Canceled)
}

func TestRankerUsesScorerClassifier(t *testing.T) {
	hit := search.Hit{URL: "https://example.com/docs/acme", Content: "Acme api reference example"}
	s := fakeSearcher{hits: map[string][]search.Hit{"q": {hit}}}

	got := NewRanker(s, ContextScorer{}, nil).Rank(context.Background(), []string{"q"}, RequestContext{ServiceName: "Acme"})
	require.Len(t, got.Results, 1, fmt.Sprintf("score %v", ContextScorer{}.Score(hit, RequestContext{ServiceName: "Acme"})))
	assert.True(t, got.Results[0].IsDocumentation())
}
