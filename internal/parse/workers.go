package parse

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dtnitsch/integration-agent/pkg/parser"
)

// Job defines a URL for a worker to process. Index is its position in the
// input so results can be returned in input order.
type Job struct {
	Index int
	URL   string
}

type pageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

type pool struct {
	fetcher pageFetcher
	parser  *parser.Parser
	logger  *slog.Logger
	workers int
}

// run fetches and parses urls concurrently and returns one Result per URL,
// in input order.
func (p *pool) run(ctx context.Context, urls []string) []Result {
	workers := p.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(urls) {
		workers = len(urls)
	}

	p.logger.Info("starting parse", "url_count", len(urls), "workers", workers)

	var wg sync.WaitGroup
	jobs := make(chan Job, len(urls))
	results := make([]Result, len(urls))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go p.worker(ctx, w, &wg, jobs, results)
	}

	for i, u := range urls {
		jobs <- Job{Index: i, URL: u}
	}
	close(jobs)
	wg.Wait()

	return results
}

// worker processes jobs until the channel closes. Each job writes only its
// own slot of results.
func (p *pool) worker(ctx context.Context, id int, wg *sync.WaitGroup, jobs <-chan Job, results []Result) {
	defer wg.Done()
	for job := range jobs {
		p.logger.Debug("worker started job", "worker", id, "url", job.URL)
		result := Result{URL: job.URL}

		html, err := p.fetcher.Fetch(ctx, job.URL)
		if err != nil {
			p.logger.Warn("fetch failed", "worker", id, "url", job.URL, "error", err)
			result.Error = err.Error()
			result.ErrorType = "fetch_error"
			results[job.Index] = result
			continue
		}

		doc, err := p.parser.ParseWithMetadata(job.URL, html)
		if err != nil {
			p.logger.Warn("parse failed", "worker", id, "url", job.URL, "error", err)
			result.Error = err.Error()
			result.ErrorType = "parse_error"
			results[job.Index] = result
			continue
		}

		result.Documentation = doc
		results[job.Index] = result
	}
}
