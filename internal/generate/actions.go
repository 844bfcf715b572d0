package generate

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dtnitsch/integration-agent/internal/common"
	"github.com/dtnitsch/integration-agent/models"
	"github.com/dtnitsch/integration-agent/pkg/agent"
	"github.com/dtnitsch/integration-agent/pkg/caching"
	"github.com/dtnitsch/integration-agent/pkg/db"
	"github.com/dtnitsch/integration-agent/pkg/fetcher"
	"github.com/dtnitsch/integration-agent/pkg/storage"
	"github.com/urfave/cli/v2"
)

// Outcome is one generated integration and where it went.
type Outcome struct {
	Result agent.Result         `json:"result" yaml:"result"`
	Saved  *storage.SavedFiles  `json:"saved,omitempty" yaml:"saved,omitempty"`
	Record db.IntegrationRecord `json:"-" yaml:"-"`
}

// Runner creates integrations and persists them.
type Runner struct {
	Agent   *agent.Agent
	Storage *storage.Storage // nil skips writing files
	Logger  *slog.Logger
}

// NewRunner builds the full pipeline from cfg.
func NewRunner(ctx context.Context, cfg *models.Config, logger *slog.Logger, save bool) (*Runner, error) {
	searcher, err := common.NewSearcher(cfg, logger)
	if err != nil {
		return nil, err
	}
	completer, err := common.NewCompleter(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	fetchOpts := []fetcher.Option{}
	if cache, err := caching.NewCache(cfg.CacheDir, cfg.CacheTTL); err == nil {
		fetchOpts = append(fetchOpts, fetcher.WithCache(cache))
	}

	r := &Runner{
		Agent: agent.New(searcher, completer,
			agent.WithLogger(logger),
			agent.WithFetcher(fetcher.NewFetcher(logger, fetchOpts...)),
		),
		Logger: logger,
	}
	if save {
		r.Storage = storage.NewStorage(cfg.OutputDir)
	}
	return r, nil
}

// Run creates one integration and saves it when it has generated content.
func (r *Runner) Run(ctx context.Context, req models.IntegrationRequest) Outcome {
	res := r.Agent.CreateIntegration(ctx, req)
	out := Outcome{
		Result: res,
		Record: db.IntegrationRecord{
			ServiceName:     req.ServiceName,
			IntegrationType: req.IntegrationType,
			Status:          string(res.Status),
			Error:           res.Error,
		},
	}
	if res.Request.ServiceName != "" {
		out.Record.ServiceName = res.Request.ServiceName
		out.Record.IntegrationType = res.Request.IntegrationType
	}

	if r.Storage == nil || res.Integration == nil {
		return out
	}
	saved, err := r.Storage.SaveIntegration(res)
	switch {
	case err == nil:
		out.Saved = &saved
		out.Record.OutputDir = saved.Dir
		r.Logger.Info("integration saved", "service", out.Record.ServiceName, "dir", saved.Dir, "files", len(saved.Files))
	case errors.Is(err, storage.ErrNoIntegration):
	default:
		r.Logger.Error("failed to save integration", "service", out.Record.ServiceName, "error", err)
		out.Record.Status = string(agent.StatusError)
		out.Record.Error = err.Error()
	}
	return out
}

// Record stores the sources and outcome of out under runID.
func Record(database *db.DB, runID int64, out Outcome, logger *slog.Logger) {
	if len(out.Result.Sources) > 0 {
		queries := agent.DocumentationQueries(out.Result.Request)
		if err := database.InsertSearchResults(runID, queries, common.SearchRecords(out.Result.Sources)); err != nil {
			logger.Warn("failed to record search results", "run_id", runID, "error", err)
		}
	}
	if err := database.InsertIntegration(runID, out.Record); err != nil {
		logger.Warn("failed to record integration", "run_id", runID, "error", err)
	}
}

func GenerateAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c, models.NeedSearch|models.NeedLLM)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	runner, err := NewRunner(c.Context, cfg, logger, !c.Bool("no-save"))
	if err != nil {
		logger.Error("failed to initialize pipeline", "error", err)
		return cli.Exit(err.Error(), 2)
	}

	req := models.IntegrationRequest{
		ServiceName:        c.String("service"),
		IntegrationType:    c.String("type"),
		Description:        c.String("description"),
		AuthenticationType: c.String("auth"),
		SpecificEndpoints:  common.SplitList(c.String("endpoints")),
	}

	out := runner.Run(c.Context, req)

	if database := common.OpenHistory(cfg, logger); database != nil {
		defer database.Close()
		runID, err := database.CreateRun("generate", out.Result.FailedQueries)
		if err != nil {
			logger.Warn("failed to record run", "error", err)
		} else {
			Record(database, runID, out, logger)
		}
	}

	if err := common.WriteOutput(os.Stdout, c.String("format"), out); err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if out.Record.Status != string(agent.StatusSuccess) {
		return cli.Exit(out.Record.Error, 1)
	}
	return nil
}
