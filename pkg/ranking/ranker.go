package ranking

import (
	"context"
	"log/slog"
	"sort"

	"github.com/dtnitsch/integration-agent/pkg/search"
	"golang.org/x/sync/errgroup"
)

// RelevanceThreshold is the score a hit must strictly exceed to be kept.
const RelevanceThreshold = 0.6

// DefaultConcurrency bounds the number of in-flight search queries.
const DefaultConcurrency = 3

// QueryFailure records a query whose search call failed.
type QueryFailure struct {
	Query string `json:"query" yaml:"query"`
	Error string `json:"error" yaml:"error"`
	Err   error  `json:"-" yaml:"-"`
}

// Ranking is the merged, sorted output of one Rank call.
type Ranking struct {
	Results  []SearchResult `json:"results" yaml:"results"`
	Failures []QueryFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// FailedQueries returns the number of queries whose search failed.
func (r Ranking) FailedQueries() int {
	return len(r.Failures)
}

// Passes reports whether a score clears RelevanceThreshold.
func Passes(score float64) bool {
	return score > RelevanceThreshold
}

// Ranker searches a set of queries and keeps the hits that clear the threshold.
type Ranker struct {
	searcher    search.Searcher
	scorer      Scorer
	logger      *slog.Logger
	concurrency int
}

// NewRanker creates a Ranker. A nil scorer means KeywordScorer.
func NewRanker(s search.Searcher, scorer Scorer, logger *slog.Logger) *Ranker {
	if scorer == nil {
		scorer = KeywordScorer{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ranker{searcher: s, scorer: scorer, logger: logger, concurrency: DefaultConcurrency}
}

// WithConcurrency sets how many queries may be searched at once (minimum 1).
func (r *Ranker) WithConcurrency(n int) *Ranker {
	if n < 1 {
		n = 1
	}
	r.concurrency = n
	return r
}

// Rank searches every query and returns the results sorted by relevance,
// highest first. Ties keep query order, then hit order. A failed query is
// recorded in Failures and does not discard the results of the others.
func (r *Ranker) Rank(ctx context.Context, queries []string, rc RequestContext) Ranking {
	perQuery := make([][]SearchResult, len(queries))
	errs := make([]error, len(queries))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			perQuery[i], errs[i] = r.rankQuery(ctx, q, rc)
			return nil
		})
	}
	_ = g.Wait()

	var out Ranking
	for i, q := range queries {
		if errs[i] != nil {
			r.logger.Warn("search query failed", "query", q, "error", errs[i])
			out.Failures = append(out.Failures, QueryFailure{Query: q, Error: errs[i].Error(), Err: errs[i]})
			continue
		}
		out.Results = append(out.Results, perQuery[i]...)
	}

	sort.SliceStable(out.Results, func(a, b int) bool {
		return out.Results[a].relevanceScore > out.Results[b].relevanceScore
	})

	r.logger.Info("ranking complete",
		"queries", len(queries),
		"results", len(out.Results),
		"failed_queries", out.FailedQueries(),
	)
	return out
}

func (r *Ranker) rankQuery(ctx context.Context, query string, rc RequestContext) ([]SearchResult, error) {
	r.logger.Debug("executing search query", "query", query)
	hits, err := r.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	var kept []SearchResult
	for _, hit := range hits {
		if hit.URL == "" {
			continue
		}
		score := r.scorer.Score(hit, rc)
		if !Passes(score) {
			continue
		}
		res, err := newSearchResult(hit.URL, hit.Content, score, r.scorer.IsDocumentation)
		if err != nil {
			r.logger.Warn("dropping search hit", "url", hit.URL, "error", err)
			continue
		}
		kept = append(kept, res)
	}
	r.logger.Debug("query ranked", "query", query, "hits", len(hits), "kept", len(kept))
	return kept, nil
}
