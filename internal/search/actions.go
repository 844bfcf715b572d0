package search

import (
	"log/slog"
	"os"

	"github.com/dtnitsch/integration-agent/internal/common"
	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/agent"
	"github.com/dtnitsch/integration-agent/pkg/ranking"
	"github.com/urfave/cli/v2"
)

// Output is what the search command prints.
type Output struct {
	RunID    int64                  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	Queries  []string               `json:"queries" yaml:"queries"`
	Results  []ranking.SearchResult `json:"results" yaml:"results"`
	Failures []ranking.QueryFailure `json:"failures,omitempty" yaml:"failures,omitempty"`
}

func SearchAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c, models.NeedSearch)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	searcher, err := common.NewSearcher(cfg, logger)
	if err != nil {
		logger.Error("failed to create search client", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	rc := ranking.RequestContext{
		ServiceName:     c.String("service"),
		IntegrationType: c.String("type"),
		Keywords:        common.SplitList(c.String("keywords")),
	}
	queries := c.StringSlice("query")
	if len(queries) == 0 {
		queries = agent.DocumentationQueries(models.IntegrationRequest{
			ServiceName:     rc.ServiceName,
			IntegrationType: rc.IntegrationType,
		})
	}

	var scorer ranking.Scorer = ranking.ContextScorer{}
	if c.String("scorer") == "keyword" {
		scorer = ranking.KeywordScorer{}
	}

	ranker := ranking.NewRanker(searcher, scorer, logger).WithConcurrency(cfg.Workers)
	result := ranker.Rank(c.Context, queries, rc)

	out := Output{
		Queries:  queries,
		Results:  result.Results,
		Failures: result.Failures,
	}
	out.RunID = record(cfg, logger, queries, result)

	if err := common.WriteOutput(os.Stdout, c.String("format"), out); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if len(queries) > 0 && result.FailedQueries() == len(queries) {
		return cli.Exit("all search queries failed", 1)
	}
	return nil
}

func record(cfg *models.Config, logger *slog.Logger, queries []string, result ranking.Ranking) int64 {
	database := common.OpenHistory(cfg, logger)
	if database == nil {
		return 0
	}
	defer database.Close()

	runID, err := database.CreateRun("search", result.FailedQueries())
	if err != nil {
		logger.Warn("failed to record run", "error", err)
		return 0
	}
	if err := database.InsertSearchResults(runID, queries, common.SearchRecords(result.Results)); err != nil {
		logger.Warn("failed to record search results", "run_id", runID, "error", err)
	}
	return runID
}
