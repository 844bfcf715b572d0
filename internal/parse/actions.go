package parse

import (
	"fmt"
	"os"

	"github.com/dtnitsch/integration-agent/internal/common"
	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/caching"
	"github.com/dtnitsch/integration-agent/pkg/fetcher"
	"github.com/dtnitsch/integration-agent/pkg/parser"
	"github.com/urfave/cli/v2"
)

// Output is what the parse command prints.
type Output struct {
	Results     []Result `json:"results" yaml:"results"`
	InvalidURLs []string `json:"invalid_urls,omitempty" yaml:"invalid_urls,omitempty"`
	Failed      int      `json:"failed" yaml:"failed"`
}

func ParseAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c, 0)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	urls, invalid := common.SanitizeAndValidateURLs(common.SplitList(c.String("urls")))
	for _, u := range invalid {
		logger.Warn("skipping invalid URL", "url", u)
	}
	if len(urls) == 0 {
		return cli.Exit("no valid URLs given (use --urls a,b)", 1)
	}

	var opts []fetcher.Option
	if !c.Bool("no-cache") {
		cache, err := caching.NewCache(cfg.CacheDir, cfg.CacheTTL)
		if err != nil {
			logger.Warn("page cache disabled", "dir", cfg.CacheDir, "error", err)
		} else {
			opts = append(opts, fetcher.WithCache(cache))
		}
	}

	p := &pool{
		fetcher: fetcher.NewFetcher(logger, opts...),
		parser:  parser.NewParser(logger),
		logger:  logger,
		workers: cfg.Workers,
	}
	results := p.run(c.Context, urls)

	out := Output{Results: results, InvalidURLs: invalid}
	for _, r := range results {
		if r.Error != "" {
			out.Failed++
		}
	}

	if err := common.WriteOutput(os.Stdout, c.String("format"), out); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if out.Failed == len(results) {
		return cli.Exit(fmt.Sprintf("all %d URLs failed", out.Failed), 1)
	}
	return nil
}

// Result is the outcome of one URL.
type Result struct {
	URL           string                `json:"url" yaml:"url"`
	Documentation *models.Documentation `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Error         string                `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorType     string                `json:"error_type,omitempty" yaml:"error_type,omitempty"`
}
